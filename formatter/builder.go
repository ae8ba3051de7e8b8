package formatter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/gnolang/jsxlint/internal"
	tt "github.com/gnolang/jsxlint/internal/types"
)

const tabWidth = 8

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	infoStyle       = color.New(color.FgHiCyan, color.Bold)
	ruleStyle       = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	gutterStyle     = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
)

var issueTemplate = template.Must(template.New("issue").Funcs(template.FuncMap{
	"level":     level,
	"rule":      func(s string) string { return ruleStyle.Sprint(s) },
	"location":  func(s string) string { return fileStyle.Sprint(s) },
	"message":   func(s string) string { return messageStyle.Sprint(s) },
	"title":     func(s string) string { return suggestionStyle.Sprint(s) },
	"note":      func(s string) string { return gutterStyle.Sprint(s) },
	"arrow":     func(width int) string { return gutterStyle.Sprint(strings.Repeat(" ", width) + "--> ") },
	"margin":    func(width int, mark string) string { return gutterStyle.Sprint(strings.Repeat(" ", width+1) + mark) },
	"lineNo":    func(width, n int) string { return gutterStyle.Sprintf("%*d | ", width, n) },
	"underline": func(offset, length int) string { return strings.Repeat(" ", offset) + messageStyle.Sprint(strings.Repeat("~", length)) },
}).Parse(generalTemplate))

// GenerateFormattedIssue formats the issues of a single file into a
// human-readable string.
func GenerateFormattedIssue(issues []tt.Issue, source *internal.SourceCode) string {
	var out strings.Builder
	for _, issue := range issues {
		var buf bytes.Buffer
		if err := issueTemplate.Execute(&buf, newIssueView(issue, source.Lines)); err != nil {
			fmt.Fprintf(&out, "Error formatting issue: %v", err)
			continue
		}
		out.Write(buf.Bytes())
	}
	return out.String()
}

type numberedLine struct {
	Num  int
	Text string
}

// issueView is what the issue template renders.
type issueView struct {
	Severity   tt.Severity
	Rule       string
	Location   string
	Width      int // digits of the widest line number
	Snippet    []numberedLine
	InRange    bool
	Offset     int // display cells before the underline
	Length     int
	Message    string
	Suggestion []numberedLine
	Note       string
}

func newIssueView(issue tt.Issue, lines []string) issueView {
	first, last := issue.Start.Line, issue.End.Line
	view := issueView{
		Severity: issue.Severity,
		Rule:     issue.Rule,
		Location: fmt.Sprintf("%s:%d:%d", issue.Filename, first, issue.Start.Column),
		Width:    len(strconv.Itoa(last)),
		InRange:  first > 0 && first <= last && last <= len(lines),
		Message:  issue.Message,
		Note:     issue.Note,
	}

	var indent string
	if view.InRange {
		indent = findCommonIndent(lines[first-1 : last])
		view.Offset, view.Length = underlineSpan(lines[first-1:last], issue.Start.Column, issue.End.Column, indent)
	}
	for n := first; n <= last; n++ {
		if n >= 1 && n <= len(lines) {
			view.Snippet = append(view.Snippet, numberedLine{n, strings.TrimPrefix(lines[n-1], indent)})
		}
	}
	if issue.Suggestion != "" {
		for i, text := range strings.Split(issue.Suggestion, "\n") {
			view.Suggestion = append(view.Suggestion, numberedLine{first + i, text})
		}
	}
	return view
}

// underlineSpan locates the "~" marker under span, a slice of source lines,
// in display cells after indent has been stripped. The end column is
// exclusive; a range over several lines reaches the end of its widest line.
func underlineSpan(span []string, startCol, endCol int, indent string) (offset, length int) {
	shift := calculateVisualColumn(indent, len(indent)+1)
	offset = max(calculateVisualColumn(span[0], startCol)-shift, 0)

	end := 0
	if len(span) == 1 {
		end = calculateVisualColumn(span[0], endCol) - shift
	} else {
		for _, line := range span {
			end = max(end, calculateVisualColumn(line, len(line)+1)-shift)
		}
	}
	return offset, max(end-offset, 1)
}

func level(s tt.Severity) string {
	switch s {
	case tt.SeverityError:
		return errorStyle.Sprint("error: ")
	case tt.SeverityWarning:
		return warningStyle.Sprint("warning: ")
	case tt.SeverityInfo:
		return infoStyle.Sprint("info: ")
	}
	return ""
}

// calculateVisualColumn returns the display width of line before the
// 1-based byte column, expanding tabs and counting wide characters twice.
func calculateVisualColumn(line string, column int) int {
	width := 0
	for i, ch := range line {
		if i+1 >= column {
			break
		}
		if ch == '\t' {
			width += tabWidth - width%tabWidth
			continue
		}
		width += runewidth.RuneWidth(ch)
	}
	return width
}

// findCommonIndent returns the leading whitespace shared by every non-blank
// line.
func findCommonIndent(lines []string) string {
	indent, seen := "", false
	for _, line := range lines {
		body := strings.TrimLeftFunc(line, unicode.IsSpace)
		if body == "" {
			continue
		}
		lead := line[:len(line)-len(body)]
		if !seen {
			indent, seen = lead, true
		} else {
			indent = commonPrefix(indent, lead)
		}
		if indent == "" {
			break
		}
	}
	return indent
}

func commonPrefix(a, b string) string {
	for i, r := range a {
		if i >= len(b) {
			return a[:i]
		}
		if rb, _ := utf8.DecodeRuneInString(b[i:]); rb != r {
			return a[:i]
		}
	}
	return a
}
