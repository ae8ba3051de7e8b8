package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"

	"github.com/gnolang/jsxlint/internal/syntax"
)

// ErrSyntax is returned when the source does not parse cleanly.
var ErrSyntax = errors.New("syntax error")

// Language selects the grammar used for a file.
type Language int

const (
	TSX Language = iota
	JavaScript
)

func (l Language) String() string {
	switch l {
	case TSX:
		return "tsx"
	case JavaScript:
		return "javascript"
	}
	return "unknown"
}

func (l Language) grammar() *sitter.Language {
	if l == JavaScript {
		return javascript.GetLanguage()
	}
	return tsx.GetLanguage()
}

var languageByExt = map[string]Language{
	".tsx": TSX,
	".jsx": JavaScript,
	".js":  JavaScript,
	".mjs": JavaScript,
}

// Supported reports whether filename has an extension the linter parses.
func Supported(filename string) bool {
	_, ok := languageByExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// LanguageFor picks the grammar for filename. Unknown extensions use TSX.
func LanguageFor(filename string) Language {
	if lang, ok := languageByExt[strings.ToLower(filepath.Ext(filename))]; ok {
		return lang
	}
	return TSX
}

// Parse parses src with the grammar matching filename.
func Parse(ctx context.Context, filename string, src []byte) (*syntax.File, error) {
	return ParseLanguage(ctx, LanguageFor(filename), filename, src)
}

// ParseLanguage parses src with the given grammar and converts the result
// into a syntax tree. Sources containing syntax errors are rejected.
func ParseLanguage(ctx context.Context, lang Language, filename string, src []byte) (*syntax.File, error) {
	p := sitter.NewParser()
	p.SetLanguage(lang.grammar())

	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	root := tree.RootNode()

	if root.HasError() {
		bad := firstError(root)
		if bad == nil {
			bad = root
		}
		pt := bad.StartPoint()
		return nil, fmt.Errorf("%w at %s:%d:%d", ErrSyntax, filename, pt.Row+1, pt.Column+1)
	}

	c := &converter{src: src}
	c.collectComments(root)

	var body []syntax.Node
	for _, child := range c.namedChildren(root) {
		body = append(body, c.convert(child))
	}
	return syntax.NewFile(filename, src, body, c.comments), nil
}

// firstError returns the first ERROR or MISSING node in source order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstError(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}
