package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/gnolang/jsxlint/internal"
	tt "github.com/gnolang/jsxlint/internal/types"
)

// Format selects how issues are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatLSP  Format = "lsp"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatLSP:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or lsp)", s)
}

// SourceFunc returns the content of the named file.
type SourceFunc func(filename string) (*internal.SourceCode, error)

// Write writes issues to w in the given format. Text and LSP output need
// the file contents, which are obtained from sources.
func Write(w io.Writer, format Format, issues []tt.Issue, sources SourceFunc) error {
	if sources == nil {
		sources = internal.ReadSourceCode
	}
	switch format {
	case FormatJSON:
		return writeJSON(w, issues)
	case FormatLSP:
		return writeLSP(w, issues, sources)
	default:
		return writeText(w, issues, sources)
	}
}

// groupByFile groups issues by filename and returns the sorted filenames.
func groupByFile(issues []tt.Issue) (map[string][]tt.Issue, []string) {
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)
	return issuesByFile, sortedFiles
}

func writeText(w io.Writer, issues []tt.Issue, sources SourceFunc) error {
	issuesByFile, sortedFiles := groupByFile(issues)
	for _, filename := range sortedFiles {
		sourceCode, err := sources(filename)
		if err != nil {
			return fmt.Errorf("error reading source file %s: %w", filename, err)
		}
		if _, err := io.WriteString(w, GenerateFormattedIssue(issuesByFile[filename], sourceCode)); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, issues []tt.Issue) error {
	issuesByFile, _ := groupByFile(issues)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(issuesByFile); err != nil {
		return fmt.Errorf("error marshalling issues to JSON: %w", err)
	}
	return nil
}
