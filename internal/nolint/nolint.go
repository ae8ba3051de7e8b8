package nolint

import (
	"fmt"
	"strings"

	"github.com/gnolang/jsxlint/internal/syntax"
)

const nolintPrefix = "nolint"

// Manager manages nolint scopes of a single file and checks if a line is nolinted.
type Manager struct {
	scopes []nolintScope
}

// nolintScope represents a range of lines where nolint applies.
type nolintScope struct {
	rules map[string]struct{}
	start int
	end   int
}

// ParseComments parses nolint comments in the given file and returns a Manager.
//
// Recognized forms are `// nolint`, `/* nolint */` and, inside markup,
// `{/* nolint */}`, each optionally followed by `:rule1,rule2`.
func ParseComments(f *syntax.File) *Manager {
	manager := Manager{
		scopes: make([]nolintScope, 0, len(f.Comments)),
	}
	anchors := indexAnchorsByLine(f)
	firstDecl := firstDeclOffset(f)

	for _, comment := range f.Comments {
		ns, err := parseComment(f, comment, anchors, firstDecl)
		if err != nil {
			// ignore invalid nolint comments
			continue
		}
		manager.scopes = append(manager.scopes, ns)
	}
	return &manager
}

// parseComment parses a single nolint comment and determines its scope.
func parseComment(
	f *syntax.File,
	comment *syntax.Comment,
	anchors map[int]syntax.Node,
	firstDecl int,
) (nolintScope, error) {
	var ns nolintScope

	text := commentBody(comment.Text())
	if !strings.HasPrefix(text, nolintPrefix) {
		return ns, fmt.Errorf("invalid nolint comment")
	}
	rest := text[len(nolintPrefix):]

	// A nolint comment can either have a list of rules after a colon (:)
	// or if no rules are specified, it applies to all rules
	if len(rest) > 0 && rest[0] != ':' {
		return ns, fmt.Errorf("invalid nolint comment format")
	}
	if len(rest) > 0 {
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return ns, fmt.Errorf("invalid nolint comment: no rules specified after colon")
		}
	}
	ns.rules = parseIgnoreRuleNames(rest)

	span := comment.Span()
	line := f.Line(span.Start)

	// A comment above the first declaration applies to the entire file
	if span.End <= firstDecl {
		ns.start = 1
		ns.end = f.Line(len(f.Source()))
		return ns, nil
	}

	// Inline comments apply to the construct they trail
	if anchor, ok := anchors[line]; ok && anchor.Span().Start < span.Start {
		ns.start = f.Line(anchor.Span().Start)
		ns.end = f.Line(anchor.Span().End)
		return ns, nil
	}

	// A standalone comment applies to the construct on the next line,
	// including the comment line itself
	if anchor, ok := anchors[line+1]; ok {
		ns.start = line
		ns.end = f.Line(anchor.Span().End)
		return ns, nil
	}

	// default behavior:
	// apply only to the comment line
	ns.start = line
	ns.end = line
	return ns, nil
}

// commentBody strips the comment delimiters and surrounding blanks.
func commentBody(text string) string {
	switch {
	case strings.HasPrefix(text, "//"):
		text = text[2:]
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(text[2:], "*/")
	}
	return strings.TrimSpace(text)
}

// parseIgnoreRuleNames parses the rule list from the nolint comment.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	if text == "" {
		return rulesMap
	}
	rules := strings.Split(text, ",")
	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

// indexAnchorsByLine traverses the tree once and maps each line to the
// outermost construct that starts on it.
func indexAnchorsByLine(f *syntax.File) map[int]syntax.Node {
	anchors := make(map[int]syntax.Node)
	syntax.Inspect(f, func(n syntax.Node) bool {
		if !isAnchor(n) {
			return true
		}
		line := f.Line(n.Span().Start)
		if _, exists := anchors[line]; !exists {
			anchors[line] = n
		}
		return true
	})
	return anchors
}

func isAnchor(n syntax.Node) bool {
	switch n := n.(type) {
	case *syntax.Element, *syntax.Attribute:
		return true
	case *syntax.ExprContainer:
		// `{/* nolint */}` holds nothing but the comment
		return n.X != nil
	}
	return syntax.IsStatement(n)
}

// firstDeclOffset returns the offset of the first top-level construct, or
// the end of the file when there is none.
func firstDeclOffset(f *syntax.File) int {
	if len(f.Body) == 0 {
		return len(f.Source())
	}
	return f.Body[0].Span().Start
}

// IsNolint checks if a given line and rule are nolinted.
func (m *Manager) IsNolint(line int, ruleName string) bool {
	for _, ns := range m.scopes {
		if line < ns.start || line > ns.end {
			continue
		}
		// If the rules list is empty, nolint applies to all rules
		if len(ns.rules) == 0 {
			return true
		}
		if _, exists := ns.rules[ruleName]; exists {
			return true
		}
	}
	return false
}
