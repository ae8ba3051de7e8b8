package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Inspect traverses the tree rooted at n in depth-first, source order.
// It calls fn for each node; if fn returns false, the children of that
// node are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Inspect(c, fn)
	}
}

// Ancestors returns the parents of n from the nearest to the root.
func Ancestors(n Node) []Node {
	var out []Node
	for p := n.Parent(); p != nil; p = p.Parent() {
		out = append(out, p)
	}
	return out
}

// Root returns the outermost ancestor of n (n itself when it has no parent).
func Root(n Node) Node {
	for n.Parent() != nil {
		n = n.Parent()
	}
	return n
}

// IsStatement reports whether n is a statement or declaration.
func IsStatement(n Node) bool {
	g, ok := n.(*Generic)
	if !ok {
		return false
	}
	return strings.HasSuffix(g.Type, "_statement") || strings.HasSuffix(g.Type, "_declaration")
}

// TypeName returns a short name for the node type, used when printing trees.
func TypeName(n Node) string {
	switch n := n.(type) {
	case *File:
		return "File"
	case *BinaryExpr:
		return "BinaryExpr"
	case *UnaryExpr:
		return "UnaryExpr"
	case *ParenExpr:
		return "ParenExpr"
	case *CallExpr:
		return "CallExpr"
	case *Element:
		return "Element"
	case *Attribute:
		return "Attribute"
	case *ExprContainer:
		return "ExprContainer"
	case *Comment:
		return "Comment"
	case *Generic:
		return n.Type
	}
	return fmt.Sprintf("%T", n)
}

// Fprint writes an indented outline of the tree rooted at n to w.
func Fprint(w io.Writer, n Node) error {
	var err error
	depth := 0
	var visit func(Node)
	visit = func(n Node) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, "%s%s [%d,%d)%s\n", strings.Repeat("  ", depth), TypeName(n), n.Span().Start, n.Span().End, detail(n))
		depth++
		for _, c := range n.Children() {
			visit(c)
		}
		depth--
	}
	visit(n)
	return err
}

func detail(n Node) string {
	switch n := n.(type) {
	case *BinaryExpr:
		return " " + string(n.Op)
	case *UnaryExpr:
		return " " + n.Op
	case *Element:
		if n.Name == "" {
			return " <>"
		}
		return " <" + n.Name + ">"
	case *Attribute:
		if n.Spread {
			return " ..."
		}
		return " " + n.Name
	case *Comment:
		return " " + firstLine(n.Text())
	case *Generic:
		if len(n.Nodes) == 0 {
			return " " + firstLine(n.Text())
		}
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + "..."
	}
	return s
}
