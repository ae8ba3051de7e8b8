package syntax

import (
	"go/token"
	"sort"
)

// Span is a half-open byte range [Start, End) in a source file.
type Span struct {
	Start int
	End   int
}

// Width returns the number of bytes covered by the span.
func (s Span) Width() int { return s.End - s.Start }

// Contains reports whether off falls inside the span.
func (s Span) Contains(off int) bool { return off >= s.Start && off < s.End }

// Node is implemented by every node of a syntax tree.
// The set of implementations is closed; use a type switch to dispatch.
type Node interface {
	Span() Span
	// Parent returns the enclosing node, or nil for the root.
	Parent() Node
	// Children returns the direct children in source order.
	Children() []Node
	// Text returns the source text covered by the node.
	Text() string

	link(parent Node, src []byte)
}

type base struct {
	parent Node
	span   Span
	src    []byte
}

func (b *base) Span() Span   { return b.span }
func (b *base) Parent() Node { return b.parent }

func (b *base) Text() string {
	if b.src == nil || b.span.Start < 0 || b.span.End > len(b.src) || b.span.Start > b.span.End {
		return ""
	}
	return string(b.src[b.span.Start:b.span.End])
}

func (b *base) set(parent Node, src []byte) {
	b.parent = parent
	b.src = src
}

type (
	// File is the root of a tree.
	File struct {
		base
		Path     string
		Body     []Node
		Comments []*Comment

		lines []int // offsets of line starts
	}

	// BinaryExpr is an infix expression such as `a && b` or `x > 0`.
	BinaryExpr struct {
		base
		Op    Operator
		Left  Node
		Right Node
	}

	// UnaryExpr is a prefix expression such as `!x` or `typeof x`.
	UnaryExpr struct {
		base
		Op string
		X  Node
	}

	// ParenExpr is a parenthesized expression.
	ParenExpr struct {
		base
		X Node
	}

	// CallExpr is a call such as `Boolean(x)`.
	CallExpr struct {
		base
		Fun  Node
		Args []Node
	}

	// Element is a markup element: `<A>...</A>`, a fragment `<>...</>`
	// (empty Name) or a self-closing `<A/>`.
	Element struct {
		base
		Name        string
		SelfClosing bool
		Attrs       []Node
		Body        []Node
	}

	// Attribute is a markup attribute `name={value}` or a spread
	// attribute `{...props}`.
	Attribute struct {
		base
		Name   string
		Spread bool
		Value  Node // nil for valueless attributes
	}

	// ExprContainer is an embedded expression `{x}` inside markup.
	ExprContainer struct {
		base
		X Node // nil for `{}`
	}

	// Comment is a line or block comment.
	Comment struct {
		base
	}

	// Generic is any other grammar node, tagged by its grammar type.
	Generic struct {
		base
		Type  string
		Nodes []Node
	}
)

func (f *File) Children() []Node { return f.Body }

func (x *BinaryExpr) Children() []Node { return compact(x.Left, x.Right) }

func (x *UnaryExpr) Children() []Node { return compact(x.X) }

func (x *ParenExpr) Children() []Node { return compact(x.X) }

func (x *CallExpr) Children() []Node {
	return append(compact(x.Fun), x.Args...)
}

func (e *Element) Children() []Node {
	out := make([]Node, 0, len(e.Attrs)+len(e.Body))
	out = append(out, e.Attrs...)
	return append(out, e.Body...)
}

func (a *Attribute) Children() []Node { return compact(a.Value) }

func (c *ExprContainer) Children() []Node { return compact(c.X) }

func (c *Comment) Children() []Node { return nil }

func (g *Generic) Children() []Node { return g.Nodes }

func compact(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (f *File) link(parent Node, src []byte) {
	f.set(parent, src)
	for _, n := range f.Body {
		n.link(f, src)
	}
	for _, c := range f.Comments {
		c.link(f, src)
	}
}

func (x *BinaryExpr) link(parent Node, src []byte)    { x.set(parent, src); linkAll(x, src) }
func (x *UnaryExpr) link(parent Node, src []byte)     { x.set(parent, src); linkAll(x, src) }
func (x *ParenExpr) link(parent Node, src []byte)     { x.set(parent, src); linkAll(x, src) }
func (x *CallExpr) link(parent Node, src []byte)      { x.set(parent, src); linkAll(x, src) }
func (e *Element) link(parent Node, src []byte)       { e.set(parent, src); linkAll(e, src) }
func (a *Attribute) link(parent Node, src []byte)     { a.set(parent, src); linkAll(a, src) }
func (c *ExprContainer) link(parent Node, src []byte) { c.set(parent, src); linkAll(c, src) }
func (c *Comment) link(parent Node, src []byte)       { c.set(parent, src) }
func (g *Generic) link(parent Node, src []byte)       { g.set(parent, src); linkAll(g, src) }

func linkAll(parent Node, src []byte) {
	for _, c := range parent.Children() {
		c.link(parent, src)
	}
}

// NewFile creates the root of a tree over src and links every node
// reachable from body and comments to its parent.
func NewFile(path string, src []byte, body []Node, comments []*Comment) *File {
	f := &File{
		base:     base{span: Span{Start: 0, End: len(src)}},
		Path:     path,
		Body:     body,
		Comments: comments,
		lines:    lineStarts(src),
	}
	f.link(nil, src)
	return f
}

// Source returns the full source text of the file.
func (f *File) Source() []byte { return f.src }

// Position converts a byte offset into a file position with
// 1-based line and byte column.
func (f *File) Position(offset int) token.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.src) {
		offset = len(f.src)
	}
	line := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset })
	return token.Position{
		Filename: f.Path,
		Offset:   offset,
		Line:     line,
		Column:   offset - f.lines[line-1] + 1,
	}
}

// Line returns the 1-based line of offset.
func (f *File) Line(offset int) int { return f.Position(offset).Line }

func lineStarts(src []byte) []int {
	lines := []int{0}
	for i, b := range src {
		if b == '\n' {
			lines = append(lines, i+1)
		}
	}
	return lines
}

func NewBinary(span Span, op Operator, left, right Node) *BinaryExpr {
	return &BinaryExpr{base: base{span: span}, Op: op, Left: left, Right: right}
}

func NewUnary(span Span, op string, x Node) *UnaryExpr {
	return &UnaryExpr{base: base{span: span}, Op: op, X: x}
}

func NewParen(span Span, x Node) *ParenExpr {
	return &ParenExpr{base: base{span: span}, X: x}
}

func NewCall(span Span, fun Node, args []Node) *CallExpr {
	return &CallExpr{base: base{span: span}, Fun: fun, Args: args}
}

func NewElement(span Span, name string, selfClosing bool, attrs, body []Node) *Element {
	return &Element{base: base{span: span}, Name: name, SelfClosing: selfClosing, Attrs: attrs, Body: body}
}

func NewAttribute(span Span, name string, spread bool, value Node) *Attribute {
	return &Attribute{base: base{span: span}, Name: name, Spread: spread, Value: value}
}

func NewExprContainer(span Span, x Node) *ExprContainer {
	return &ExprContainer{base: base{span: span}, X: x}
}

func NewComment(span Span) *Comment {
	return &Comment{base: base{span: span}}
}

func NewGeneric(span Span, typ string, nodes []Node) *Generic {
	return &Generic{base: base{span: span}, Type: typ, Nodes: nodes}
}
