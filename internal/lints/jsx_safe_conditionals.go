package lints

import (
	"strings"

	"github.com/gnolang/jsxlint/internal/syntax"
	tt "github.com/gnolang/jsxlint/internal/types"
)

const (
	SafeConditionalsRule = "jsx-safe-conditionals"

	safeConditionalsMessage = "Please use safe conditional expressions in JSX 🙏"
	safeConditionalsNote    = "a falsy left operand that is not a boolean (0, NaN, \"\") is rendered as text; coerce it with !!"
)

// Replacement replaces the source covered by Span with Text.
type Replacement struct {
	Span syntax.Span
	Text string
}

// Diagnostic is a single finding of CheckSafeConditionals.
type Diagnostic struct {
	Span    syntax.Span
	Message string
	Fix     *Replacement
}

// CheckSafeConditionals reports `&&` expressions rendered as markup children
// whose left operand is not known to be a boolean, e.g. `{count && <Badge />}`
// which renders "0" when count is zero.
//
// Expressions inside attributes are left alone, as are expressions nested in
// an enclosing boolean expression. The suggested fix coerces the left
// operand with `!!`. A flagged expression is not searched any further.
func CheckSafeConditionals(root syntax.Node) []Diagnostic {
	var diags []Diagnostic
	syntax.Inspect(root, func(n syntax.Node) bool {
		expr, ok := n.(*syntax.BinaryExpr)
		if !ok || expr.Op != syntax.LogicalAnd {
			return true
		}
		if !inMarkupContext(expr) || isBooleanExpr(expr.Left) || withinBooleanExpr(expr) {
			return true
		}

		diags = append(diags, Diagnostic{
			Span:    expr.Span(),
			Message: safeConditionalsMessage,
			Fix: &Replacement{
				Span: expr.Left.Span(),
				Text: coerce(expr.Left),
			},
		})
		return false
	})
	return diags
}

// inMarkupContext reports whether the nearest markup ancestor of n is an
// element rather than an attribute.
func inMarkupContext(n syntax.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.(type) {
		case *syntax.Attribute:
			return false
		case *syntax.Element:
			return true
		}
	}
	return false
}

// isBooleanExpr reports whether n always evaluates to a boolean, judged
// from its syntax alone.
func isBooleanExpr(n syntax.Node) bool {
	if paren, ok := n.(*syntax.ParenExpr); ok {
		return isBooleanExpr(paren.X)
	}

	text := n.Text()
	if strings.HasPrefix(text, "!") || strings.HasPrefix(text, "Boolean(") {
		return true
	}

	expr, ok := n.(*syntax.BinaryExpr)
	if !ok {
		return false
	}
	if expr.Op.IsComparison() {
		return true
	}
	return expr.Op.IsLogical() && isBooleanExpr(expr.Left) && isBooleanExpr(expr.Right)
}

func withinBooleanExpr(n syntax.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if _, ok := p.(*syntax.File); ok {
			return false
		}
		if isBooleanExpr(p) {
			return true
		}
	}
	return false
}

func coerce(left syntax.Node) string {
	if _, ok := left.(*syntax.BinaryExpr); ok {
		return "!!(" + left.Text() + ")"
	}
	return "!!" + left.Text()
}

// DetectUnsafeConditionals runs CheckSafeConditionals over a parsed file and
// converts the findings into issues.
func DetectUnsafeConditionals(filename string, file *syntax.File, severity tt.Severity) ([]tt.Issue, error) {
	diags := CheckSafeConditionals(file)
	if len(diags) == 0 {
		return nil, nil
	}

	src := file.Source()
	issues := make([]tt.Issue, 0, len(diags))
	for _, d := range diags {
		issue := tt.Issue{
			Rule:       SafeConditionalsRule,
			Category:   "jsx",
			Filename:   filename,
			Message:    d.Message,
			Note:       safeConditionalsNote,
			Start:      file.Position(d.Span.Start),
			End:        file.Position(d.Span.End),
			Severity:   severity,
			Confidence: 1.0,
		}
		if d.Fix != nil {
			issue.Edits = []tt.TextEdit{{
				Start:   d.Fix.Span.Start,
				End:     d.Fix.Span.End,
				NewText: d.Fix.Text,
				OldText: string(src[d.Fix.Span.Start:d.Fix.Span.End]),
			}}
			issue.Suggestion = string(src[d.Span.Start:d.Fix.Span.Start]) +
				d.Fix.Text +
				string(src[d.Fix.Span.End:d.Span.End])
		}
		issues = append(issues, issue)
	}
	return issues, nil
}
