package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf16"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/gnolang/jsxlint/internal"
	tt "github.com/gnolang/jsxlint/internal/types"
)

const diagnosticSource = "jsxlint"

// ToDiagnostics converts the issues of one file into LSP diagnostics.
// Positions are zero-based with UTF-16 character offsets; fixes are
// carried as text edits in the diagnostic data.
func ToDiagnostics(filename string, issues []tt.Issue, source *internal.SourceCode) protocol.PublishDiagnosticsParams {
	diagnostics := make([]protocol.Diagnostic, 0, len(issues))
	for _, issue := range issues {
		d := protocol.Diagnostic{
			Range: protocol.Range{
				Start: toPosition(source, issue.Start.Line, issue.Start.Column),
				End:   toPosition(source, issue.End.Line, issue.End.Column),
			},
			Severity: convertSeverity(issue.Severity),
			Code:     issue.Rule,
			Source:   diagnosticSource,
			Message:  issue.Message,
		}
		if edits := toTextEdits(source, issue); len(edits) > 0 {
			d.Data = edits
		}
		diagnostics = append(diagnostics, d)
	}

	return protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(uri.File(filename)),
		Diagnostics: diagnostics,
	}
}

func writeLSP(w io.Writer, issues []tt.Issue, sources SourceFunc) error {
	issuesByFile, sortedFiles := groupByFile(issues)

	params := make([]protocol.PublishDiagnosticsParams, 0, len(sortedFiles))
	for _, filename := range sortedFiles {
		source, err := sources(filename)
		if err != nil {
			return fmt.Errorf("error reading source file %s: %w", filename, err)
		}
		params = append(params, ToDiagnostics(filename, issuesByFile[filename], source))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(params)
}

func toTextEdits(source *internal.SourceCode, issue tt.Issue) []protocol.TextEdit {
	if len(issue.Edits) == 0 {
		return nil
	}
	offsets := lineOffsets(source)

	edits := make([]protocol.TextEdit, 0, len(issue.Edits))
	for _, e := range issue.Edits {
		startLine, startCol := offsetToLineColumn(offsets, e.Start)
		endLine, endCol := offsetToLineColumn(offsets, e.End)
		edits = append(edits, protocol.TextEdit{
			Range: protocol.Range{
				Start: toPosition(source, startLine, startCol),
				End:   toPosition(source, endLine, endCol),
			},
			NewText: e.NewText,
		})
	}
	return edits
}

// toPosition converts a 1-based line and byte column into an LSP position.
func toPosition(source *internal.SourceCode, line, column int) protocol.Position {
	if line < 1 {
		return protocol.Position{}
	}
	character := column - 1
	if source != nil && line <= len(source.Lines) {
		text := source.Lines[line-1]
		if character > len(text) {
			character = len(text)
		}
		if character > 0 {
			character = utf16Len(text[:character])
		}
	}
	if character < 0 {
		character = 0
	}
	return protocol.Position{
		Line:      uint32(line - 1),
		Character: uint32(character),
	}
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// lineOffsets returns the byte offset at which each line starts.
func lineOffsets(source *internal.SourceCode) []int {
	if source == nil {
		return []int{0}
	}
	offsets := make([]int, len(source.Lines))
	off := 0
	for i, line := range source.Lines {
		offsets[i] = off
		off += len(line) + 1
	}
	return offsets
}

func offsetToLineColumn(offsets []int, offset int) (int, int) {
	line := 0
	for i, start := range offsets {
		if start > offset {
			break
		}
		line = i
	}
	return line + 1, offset - offsets[line] + 1
}

// convertSeverity converts issue severity to LSP severity
func convertSeverity(severity tt.Severity) protocol.DiagnosticSeverity {
	switch severity {
	case tt.SeverityError:
		return protocol.DiagnosticSeverityError
	case tt.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case tt.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityHint
	}
}
