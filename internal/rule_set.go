package internal

import (
	"github.com/gnolang/jsxlint/internal/lints"
	"github.com/gnolang/jsxlint/internal/syntax"
	tt "github.com/gnolang/jsxlint/internal/types"
)

/*
* Implement each lint rule as a separate struct
 */

// LintRule defines the interface for all lint rules.
type LintRule interface {
	// Check runs the lint rule on the given file and returns a slice of Issues.
	Check(filename string, file *syntax.File) ([]tt.Issue, error)

	// Name returns the name of the lint rule.
	Name() string

	Severity() tt.Severity
	SetSeverity(tt.Severity)
}

type SafeConditionalsRule struct {
	severity tt.Severity
}

func NewSafeConditionalsRule() LintRule {
	return &SafeConditionalsRule{severity: tt.SeverityError}
}

func (r *SafeConditionalsRule) Check(filename string, file *syntax.File) ([]tt.Issue, error) {
	return lints.DetectUnsafeConditionals(filename, file, r.severity)
}

func (r *SafeConditionalsRule) Name() string {
	return lints.SafeConditionalsRule
}

func (r *SafeConditionalsRule) Severity() tt.Severity {
	return r.severity
}

func (r *SafeConditionalsRule) SetSeverity(severity tt.Severity) {
	r.severity = severity
}
