package lints

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/gnolang/jsxlint/internal/parser"
	"github.com/gnolang/jsxlint/internal/syntax"
	tt "github.com/gnolang/jsxlint/internal/types"
)

func parseSource(t *testing.T, filename, src string) *syntax.File {
	t.Helper()
	f, err := parser.Parse(context.Background(), filename, []byte(src))
	require.NoError(t, err)
	return f
}

func TestCheckSafeConditionalsFixtures(t *testing.T) {
	t.Parallel()
	ar, err := txtar.ParseFile(filepath.Join("testdata", "safe_conditionals.txtar"))
	require.NoError(t, err)

	want := make(map[string]string)
	for _, f := range ar.Files {
		if strings.HasSuffix(f.Name, ".want") {
			want[strings.TrimSuffix(f.Name, ".want")] = strings.TrimSpace(string(f.Data))
		}
	}

	cases := 0
	for _, f := range ar.Files {
		if strings.HasSuffix(f.Name, ".want") {
			continue
		}
		f := f
		name := strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
		expected, ok := want[name]
		require.True(t, ok, "missing %s.want", name)
		cases++

		t.Run(name, func(t *testing.T) {
			t.Parallel()
			file := parseSource(t, f.Name, string(f.Data))

			var got []string
			for _, d := range CheckSafeConditionals(file) {
				src := string(f.Data)
				require.NotNil(t, d.Fix)
				assert.Equal(t, safeConditionalsMessage, d.Message)
				got = append(got, src[d.Span.Start:d.Span.End]+" => "+d.Fix.Text)
			}
			assert.Equal(t, expected, strings.Join(got, "\n"))
		})
	}
	assert.Greater(t, cases, 10)
}

func TestCheckSafeConditionalsFixSpan(t *testing.T) {
	t.Parallel()
	src := `const A = () => <View>{props.count && <Badge />}</View>`
	file := parseSource(t, "a.tsx", src)

	diags := CheckSafeConditionals(file)
	require.Len(t, diags, 1)

	d := diags[0]
	exprStart := strings.Index(src, "props.count &&")
	assert.Equal(t, exprStart, d.Span.Start)
	assert.Equal(t, len("props.count && <Badge />"), d.Span.Width())

	// the fix replaces the left operand only
	assert.Equal(t, exprStart, d.Fix.Span.Start)
	assert.Equal(t, len("props.count"), d.Fix.Span.Width())
	assert.Equal(t, "!!props.count", d.Fix.Text)
}

func TestCheckSafeConditionalsIsIdempotent(t *testing.T) {
	t.Parallel()
	src := `const A = () => (
  <View>
    {a && <One />}
    {b.c && d && <Two />}
    <Text style={e && f}>{g && <Three />}</Text>
  </View>
)`
	file := parseSource(t, "a.tsx", src)

	first := CheckSafeConditionals(file)
	second := CheckSafeConditionals(file)
	require.Len(t, first, 3)
	assert.Equal(t, first, second)

	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].Span.Start, first[i].Span.Start, "diagnostics must be in source order")
	}
}

func TestCheckSafeConditionalsFixRoundTrip(t *testing.T) {
	t.Parallel()
	src := `const A = () => (
  <View>
    {count && <Badge />}
    {a && b && <Both />}
  </View>
)`
	file := parseSource(t, "a.tsx", src)
	diags := CheckSafeConditionals(file)
	require.Len(t, diags, 2)

	// apply from the last edit backwards so earlier offsets stay valid
	fixed := src
	for i := len(diags) - 1; i >= 0; i-- {
		fix := diags[i].Fix
		fixed = fixed[:fix.Span.Start] + fix.Text + fixed[fix.Span.End:]
	}
	assert.Contains(t, fixed, "{!!count && <Badge />}")
	assert.Contains(t, fixed, "{!!(a && b) && <Both />}")

	refixed := parseSource(t, "a.tsx", fixed)
	assert.Empty(t, CheckSafeConditionals(refixed))
}

func TestIsBooleanExpr(t *testing.T) {
	t.Parallel()
	tests := []struct {
		expr     string
		expected bool
	}{
		{"!x", true},
		{"!!x", true},
		{"Boolean(x)", true},
		{"x > 0", true},
		{"x >= 0", true},
		{"x < 0", true},
		{"x <= 0", true},
		{"x === y", true},
		{"x == y", true},
		{"x !== y", true},
		{"x != y", true},
		{"(x > 0)", true},
		{"!a && !b", true},
		{"a > 1 || b < 2", true},
		{"x", false},
		{"x.y", false},
		{"x + y", false},
		{"a && !b", false},
		{"x ?? y", false},
		{"x instanceof Y", false},
		{"f(x)", false},
		{"(x)", false},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			t.Parallel()
			file := parseSource(t, "expr.tsx", "const v = "+tc.expr)

			var value syntax.Node
			syntax.Inspect(file, func(n syntax.Node) bool {
				if value == nil && n.Text() == tc.expr {
					value = n
				}
				return value == nil
			})
			require.NotNil(t, value, "expression %q not found", tc.expr)
			assert.Equal(t, tc.expected, isBooleanExpr(value))
		})
	}
}

func TestInMarkupContext(t *testing.T) {
	t.Parallel()
	src := "<A>{a && b}</A>"
	left := syntax.NewGeneric(syntax.Span{Start: 4, End: 5}, "identifier", nil)
	right := syntax.NewGeneric(syntax.Span{Start: 9, End: 10}, "identifier", nil)
	inner := syntax.NewBinary(syntax.Span{Start: 4, End: 10}, syntax.LogicalAnd, left, right)
	container := syntax.NewExprContainer(syntax.Span{Start: 3, End: 11}, inner)
	element := syntax.NewElement(syntax.Span{Start: 0, End: len(src)}, "A", false, nil, []syntax.Node{container})
	syntax.NewFile("hand.tsx", []byte(src), []syntax.Node{element}, nil)

	assert.True(t, inMarkupContext(inner))
	assert.False(t, inMarkupContext(element))

	attrSrc := "<A b={a && c} />"
	aLeft := syntax.NewGeneric(syntax.Span{Start: 6, End: 7}, "identifier", nil)
	aRight := syntax.NewGeneric(syntax.Span{Start: 11, End: 12}, "identifier", nil)
	aExpr := syntax.NewBinary(syntax.Span{Start: 6, End: 12}, syntax.LogicalAnd, aLeft, aRight)
	aContainer := syntax.NewExprContainer(syntax.Span{Start: 5, End: 13}, aExpr)
	attr := syntax.NewAttribute(syntax.Span{Start: 3, End: 13}, "b", false, aContainer)
	self := syntax.NewElement(syntax.Span{Start: 0, End: len(attrSrc)}, "A", true, []syntax.Node{attr}, nil)
	file := syntax.NewFile("hand.tsx", []byte(attrSrc), []syntax.Node{self}, nil)

	assert.False(t, inMarkupContext(aExpr))
	assert.Empty(t, CheckSafeConditionals(file))
}

func TestDetectUnsafeConditionals(t *testing.T) {
	t.Parallel()
	src := "const A = () => (\n  <View>\n    {visible && <Text />}\n  </View>\n)\n"
	file := parseSource(t, "screen.tsx", src)

	issues, err := DetectUnsafeConditionals("screen.tsx", file, tt.SeverityWarning)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, SafeConditionalsRule, issue.Rule)
	assert.Equal(t, "screen.tsx", issue.Filename)
	assert.Equal(t, safeConditionalsMessage, issue.Message)
	assert.Equal(t, tt.SeverityWarning, issue.Severity)
	assert.Equal(t, "!!visible && <Text />", issue.Suggestion)
	assert.NotEmpty(t, issue.Note)

	assert.Equal(t, 3, issue.Start.Line)
	assert.Equal(t, 6, issue.Start.Column)
	assert.Equal(t, 3, issue.End.Line)
	assert.Equal(t, 6+len("visible && <Text />"), issue.End.Column)

	require.Len(t, issue.Edits, 1)
	edit := issue.Edits[0]
	assert.Equal(t, "visible", edit.OldText)
	assert.Equal(t, "!!visible", edit.NewText)
	assert.Equal(t, "visible", src[edit.Start:edit.End])
}

func TestDetectUnsafeConditionalsClean(t *testing.T) {
	t.Parallel()
	file := parseSource(t, "clean.tsx", `const A = () => <View>{!!visible && <Text />}</View>`)

	issues, err := DetectUnsafeConditionals("clean.tsx", file, tt.SeverityError)
	require.NoError(t, err)
	assert.Empty(t, issues)
}
