package fixer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gnolang/jsxlint/internal/parser"
	tt "github.com/gnolang/jsxlint/internal/types"
)

// ErrUnparsable is returned when applying the fixes would leave the file
// with syntax errors. The file is not modified in that case.
var ErrUnparsable = errors.New("fixed source does not parse")

type Fixer struct {
	DryRun        bool
	MinConfidence float64 // threshold for fixing issues

	out io.Writer
}

func New(dryRun bool, threshold float64, out io.Writer) *Fixer {
	if out == nil {
		out = io.Discard
	}
	return &Fixer{
		DryRun:        dryRun,
		MinConfidence: threshold,
		out:           out,
	}
}

// Fix applies the edits of issues to filename and returns how many were
// applied.
func (f *Fixer) Fix(filename string, issues []tt.Issue) (int, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to read file: %w", err)
	}
	info, err := os.Stat(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to stat file: %w", err)
	}

	if f.DryRun {
		for _, issue := range f.fixable(issues) {
			fmt.Fprintf(f.out, "Would fix issue in %s at line %d: %s\n", filename, issue.Start.Line, issue.Message)
			fmt.Fprintf(f.out, "Suggestion:\n%s\n", issue.Suggestion)
		}
		return 0, nil
	}

	fixed, applied, err := f.FixSource(filename, content, issues)
	if err != nil {
		return 0, err
	}
	if applied == 0 {
		return 0, nil
	}

	if err := os.WriteFile(filename, fixed, info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Fprintf(f.out, "Fixed %d issue(s) in %s\n", applied, filename)
	return applied, nil
}

// FixSource applies the edits of issues to src and checks that the result
// still parses.
func (f *Fixer) FixSource(filename string, src []byte, issues []tt.Issue) ([]byte, int, error) {
	var edits []tt.TextEdit
	for _, issue := range f.fixable(issues) {
		edits = append(edits, issue.Edits...)
	}

	fixed, applied, err := ApplyEdits(src, edits)
	if err != nil {
		return nil, 0, err
	}
	if applied == 0 {
		return src, 0, nil
	}

	if _, err := parser.Parse(context.Background(), filename, fixed); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	return fixed, applied, nil
}

func (f *Fixer) fixable(issues []tt.Issue) []tt.Issue {
	var out []tt.Issue
	for _, issue := range issues {
		if issue.Confidence < f.MinConfidence || len(issue.Edits) == 0 {
			continue
		}
		out = append(out, issue)
	}
	return out
}

// ApplyEdits applies edits to src from the end of the file backwards so
// earlier offsets stay valid. Edits overlapping an already applied edit,
// and edits whose OldText no longer matches, are skipped. It returns the
// new content and the number of edits applied.
func ApplyEdits(src []byte, edits []tt.TextEdit) ([]byte, int, error) {
	for _, e := range edits {
		if e.Start < 0 || e.Start > e.End || e.End > len(src) {
			return nil, 0, fmt.Errorf("edit [%d,%d) out of range for %d bytes", e.Start, e.End, len(src))
		}
	}

	sorted := make([]tt.TextEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start > sorted[j].Start
		}
		return sorted[i].End > sorted[j].End
	})

	out := bytes.Clone(src)
	applied := 0
	limit := len(src) + 1
	for _, e := range sorted {
		if e.End > limit || (e.End == limit && e.Start == e.End) {
			continue
		}
		if e.OldText != "" && string(src[e.Start:e.End]) != e.OldText {
			continue
		}

		var buf bytes.Buffer
		buf.Grow(len(out) - (e.End - e.Start) + len(e.NewText))
		buf.Write(out[:e.Start])
		buf.WriteString(e.NewText)
		buf.Write(out[e.End:])
		out = buf.Bytes()

		limit = e.Start
		applied++
	}
	return out, applied, nil
}
