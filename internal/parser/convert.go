package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/gnolang/jsxlint/internal/syntax"
)

// converter maps tree-sitter nodes onto the closed syntax node set.
// Only named nodes are kept; punctuation lives in the spans.
type converter struct {
	src      []byte
	comments []*syntax.Comment
}

func span(n *sitter.Node) syntax.Span {
	return syntax.Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func (c *converter) collectComments(n *sitter.Node) {
	if n.Type() == "comment" {
		c.comments = append(c.comments, syntax.NewComment(span(n)))
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c.collectComments(n.Child(i))
	}
}

// namedChildren returns the named children of n, comments excluded.
func (c *converter) namedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func (c *converter) convertAll(nodes []*sitter.Node) []syntax.Node {
	out := make([]syntax.Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, c.convert(n))
	}
	return out
}

func (c *converter) convert(n *sitter.Node) syntax.Node {
	switch n.Type() {
	case "binary_expression":
		left, right := n.ChildByFieldName("left"), n.ChildByFieldName("right")
		op := n.ChildByFieldName("operator")
		if left == nil || right == nil || op == nil {
			break
		}
		return syntax.NewBinary(span(n), syntax.Operator(op.Type()), c.convert(left), c.convert(right))

	case "unary_expression":
		op, arg := n.ChildByFieldName("operator"), n.ChildByFieldName("argument")
		if op == nil || arg == nil {
			break
		}
		return syntax.NewUnary(span(n), op.Type(), c.convert(arg))

	case "parenthesized_expression":
		children := c.namedChildren(n)
		if len(children) != 1 {
			break
		}
		return syntax.NewParen(span(n), c.convert(children[0]))

	case "call_expression":
		fn := n.ChildByFieldName("function")
		if fn == nil {
			break
		}
		var args []syntax.Node
		if a := n.ChildByFieldName("arguments"); a != nil {
			args = c.convertAll(c.namedChildren(a))
		}
		return syntax.NewCall(span(n), c.convert(fn), args)

	case "jsx_element", "jsx_fragment":
		return c.element(n)

	case "jsx_self_closing_element":
		name, attrs := c.openingTag(n)
		return syntax.NewElement(span(n), name, true, attrs, nil)

	case "jsx_attribute":
		return c.attribute(n)

	case "jsx_expression":
		return c.exprContainer(n)
	}

	return syntax.NewGeneric(span(n), n.Type(), c.convertAll(c.namedChildren(n)))
}

func (c *converter) element(n *sitter.Node) syntax.Node {
	var (
		name  string
		attrs []syntax.Node
		body  []syntax.Node
	)
	for _, child := range c.namedChildren(n) {
		switch child.Type() {
		case "jsx_opening_element":
			name, attrs = c.openingTag(child)
		case "jsx_closing_element":
		default:
			body = append(body, c.convert(child))
		}
	}
	return syntax.NewElement(span(n), name, false, attrs, body)
}

// openingTag extracts the tag name and attributes of an opening or
// self-closing tag. Fragments have an empty name.
func (c *converter) openingTag(n *sitter.Node) (string, []syntax.Node) {
	var name string
	nameNode := n.ChildByFieldName("name")
	if nameNode != nil {
		name = nameNode.Content(c.src)
	}

	var attrs []syntax.Node
	for _, child := range c.namedChildren(n) {
		if nameNode != nil && child.StartByte() == nameNode.StartByte() && child.EndByte() == nameNode.EndByte() {
			continue
		}
		switch child.Type() {
		case "jsx_attribute":
			attrs = append(attrs, c.attribute(child))
		case "jsx_expression":
			// {...props}
			attrs = append(attrs, syntax.NewAttribute(span(child), "", true, c.exprContainer(child)))
		}
	}
	return name, attrs
}

func (c *converter) attribute(n *sitter.Node) syntax.Node {
	children := c.namedChildren(n)
	if len(children) == 0 {
		return syntax.NewAttribute(span(n), n.Content(c.src), false, nil)
	}
	name := children[0].Content(c.src)
	var value syntax.Node
	if len(children) > 1 {
		value = c.convert(children[len(children)-1])
	}
	return syntax.NewAttribute(span(n), name, false, value)
}

func (c *converter) exprContainer(n *sitter.Node) syntax.Node {
	children := c.namedChildren(n)
	if len(children) == 0 {
		return syntax.NewExprContainer(span(n), nil)
	}
	return syntax.NewExprContainer(span(n), c.convert(children[0]))
}
