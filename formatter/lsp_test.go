package formatter

import (
	"bytes"
	"encoding/json"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/gnolang/jsxlint/internal"
	tt "github.com/gnolang/jsxlint/internal/types"
)

func TestConvertSeverity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    tt.Severity
		expected protocol.DiagnosticSeverity
	}{
		{tt.SeverityError, protocol.DiagnosticSeverityError},
		{tt.SeverityWarning, protocol.DiagnosticSeverityWarning},
		{tt.SeverityInfo, protocol.DiagnosticSeverityInformation},
		{tt.SeverityOff, protocol.DiagnosticSeverityHint},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, convertSeverity(tc.input), tc.input.String())
	}
}

func TestToDiagnosticsUTF16(t *testing.T) {
	t.Parallel()
	src := "const a = 1\n<A>{名 && <B />}</A>\n"
	source := internal.NewSourceCode([]byte(src))

	// `名` is three bytes in UTF-8 and one UTF-16 unit
	issue := tt.Issue{
		Rule:     "jsx-safe-conditionals",
		Filename: "/src/a.tsx",
		Message:  "msg",
		Start:    token.Position{Line: 2, Column: 5},
		End:      token.Position{Line: 2, Column: 17},
		Severity: tt.SeverityWarning,
		Edits:    []tt.TextEdit{{Start: 16, End: 19, NewText: "!!名", OldText: "名"}},
	}

	params := ToDiagnostics("/src/a.tsx", []tt.Issue{issue}, source)
	assert.Equal(t, "file:///src/a.tsx", string(params.URI))
	require.Len(t, params.Diagnostics, 1)

	d := params.Diagnostics[0]
	assert.Equal(t, protocol.Position{Line: 1, Character: 4}, d.Range.Start)
	assert.Equal(t, protocol.Position{Line: 1, Character: 14}, d.Range.End)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, d.Severity)
	assert.Equal(t, "jsx-safe-conditionals", d.Code)
	assert.Equal(t, "jsxlint", d.Source)

	edits, ok := d.Data.([]protocol.TextEdit)
	require.True(t, ok)
	require.Len(t, edits, 1)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 4},
		End:   protocol.Position{Line: 1, Character: 5},
	}, edits[0].Range)
	assert.Equal(t, "!!名", edits[0].NewText)
}

func TestToDiagnosticsWithoutEdits(t *testing.T) {
	t.Parallel()
	issue := tt.Issue{
		Rule:    "r",
		Message: "m",
		Start:   token.Position{Line: 1, Column: 1},
		End:     token.Position{Line: 1, Column: 4},
	}
	params := ToDiagnostics("a.tsx", []tt.Issue{issue}, internal.NewSourceCode([]byte("abc")))
	require.Len(t, params.Diagnostics, 1)
	assert.Nil(t, params.Diagnostics[0].Data)
	assert.Equal(t, protocol.Position{Line: 0, Character: 3}, params.Diagnostics[0].Range.End)
}

func TestWriteLSP(t *testing.T) {
	t.Parallel()
	second := screenIssue()
	second.Filename = "/b/screen.tsx"
	first := screenIssue()
	first.Filename = "/a/screen.tsx"

	var buf bytes.Buffer
	err := Write(&buf, FormatLSP, []tt.Issue{second, first}, sourcesOf(map[string]string{
		"/a/screen.tsx": screenSource,
		"/b/screen.tsx": screenSource,
	}))
	require.NoError(t, err)

	var decoded []protocol.PublishDiagnosticsParams
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "file:///a/screen.tsx", string(decoded[0].URI))
	assert.Equal(t, "file:///b/screen.tsx", string(decoded[1].URI))

	d := decoded[0].Diagnostics[0]
	assert.Equal(t, protocol.Position{Line: 2, Character: 5}, d.Range.Start)
	assert.Equal(t, protocol.Position{Line: 2, Character: 23}, d.Range.End)
	assert.Equal(t, protocol.DiagnosticSeverityError, d.Severity)
}

func TestOffsetToLineColumn(t *testing.T) {
	t.Parallel()
	offsets := lineOffsets(internal.NewSourceCode([]byte("ab\ncd\n")))
	assert.Equal(t, []int{0, 3, 6}, offsets)

	line, col := offsetToLineColumn(offsets, 0)
	assert.Equal(t, []int{1, 1}, []int{line, col})
	line, col = offsetToLineColumn(offsets, 4)
	assert.Equal(t, []int{2, 2}, []int{line, col})
	line, col = offsetToLineColumn(offsets, 6)
	assert.Equal(t, []int{3, 1}, []int{line, col})
}

func TestUTF16Len(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected int
	}{
		{"", 0},
		{"abc", 3},
		{"名前", 2},
		{"🙏", 2},
		{"a🙏b", 4},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, utf16Len(tc.input), tc.input)
	}
}
