package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/gnolang/jsxlint/internal/nolint"
	"github.com/gnolang/jsxlint/internal/parser"
	tt "github.com/gnolang/jsxlint/internal/types"
)

// Engine manages the linting process.
// It is safe for concurrent use once configured.
type Engine struct {
	rootDir      string
	rules        map[string]LintRule
	ignoredRules map[string]bool
	ignoredPaths []string
	cache        *Cache
	logger       *zap.Logger
}

// EngineOption configures optional engine collaborators.
type EngineOption func(*Engine)

// WithLogger sets the logger used for non-fatal problems.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithCache makes the engine reuse results of unchanged files.
func WithCache(cache *Cache) EngineOption {
	return func(e *Engine) {
		e.cache = cache
	}
}

// NewEngine creates a new lint engine.
func NewEngine(rootDir string, rules map[string]tt.ConfigRule, opts ...EngineOption) (*Engine, error) {
	engine := &Engine{
		rootDir:      rootDir,
		ignoredRules: make(map[string]bool),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	if err := engine.applyRules(rules); err != nil {
		return nil, err
	}

	return engine, nil
}

type ruleConstructor func() LintRule

type ruleMap map[string]ruleConstructor

var allRuleConstructors = ruleMap{
	"jsx-safe-conditionals": NewSafeConditionalsRule,
}

// RuleNames returns the names of all known rules, sorted.
func RuleNames() []string {
	names := make([]string, 0, len(allRuleConstructors))
	for name := range allRuleConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRules returns the configuration of every known rule with its
// default severity.
func DefaultRules() map[string]tt.ConfigRule {
	rules := make(map[string]tt.ConfigRule, len(allRuleConstructors))
	for name, newRule := range allRuleConstructors {
		rules[name] = tt.ConfigRule{Severity: newRule().Severity()}
	}
	return rules
}

func (e *Engine) applyRules(rules map[string]tt.ConfigRule) error {
	e.rules = make(map[string]LintRule)
	e.registerDefaultRules()

	for key, rule := range rules {
		newRule, ok := allRuleConstructors[key]
		if !ok {
			e.logger.Warn("unknown rule in configuration", zap.String("rule", key))
			continue
		}
		if rule.Severity == tt.SeverityOff {
			delete(e.rules, key)
			continue
		}
		r := e.findRule(key)
		if r == nil {
			r = newRule()
			e.rules[key] = r
		}
		r.SetSeverity(rule.Severity)
	}
	return nil
}

func (e *Engine) registerDefaultRules() {
	for key, newRule := range allRuleConstructors {
		rule := newRule()
		if rule.Severity() != tt.SeverityOff {
			e.rules[key] = rule
		}
	}
}

func (e *Engine) findRule(name string) LintRule {
	if rule, ok := e.rules[name]; ok {
		return rule
	}
	return nil
}

// activeRules returns the enabled rules in name order, including ignored
// ones. Cached results hold every rule; Run drops ignored rules afterwards.
func (e *Engine) activeRules() []LintRule {
	names := make([]string, 0, len(e.rules))
	for name := range e.rules {
		names = append(names, name)
	}
	sort.Strings(names)

	rules := make([]LintRule, 0, len(names))
	for _, name := range names {
		rules = append(rules, e.rules[name])
	}
	return rules
}

func (e *Engine) filterIgnoredRules(issues []tt.Issue) []tt.Issue {
	if len(e.ignoredRules) == 0 || len(issues) == 0 {
		return issues
	}
	filtered := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if !e.ignoredRules[issue.Rule] {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// Run applies all lint rules to the given file and returns a slice of Issues.
func (e *Engine) Run(filename string) ([]tt.Issue, error) {
	if e.IsIgnoredPath(filename) {
		return nil, nil
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if e.cache != nil {
		if issues, ok := e.cache.Get(filename, source); ok {
			e.logger.Debug("using cached result", zap.String("file", filename))
			return e.filterIgnoredRules(issues), nil
		}
	}

	issues, err := e.run(filename, source)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(filename, source, issues); err != nil {
			e.logger.Warn("failed to update cache", zap.String("file", filename), zap.Error(err))
		}
	}
	return e.filterIgnoredRules(issues), nil
}

// RunSource applies all lint rules to the given TSX source and returns a slice of Issues.
func (e *Engine) RunSource(source []byte) ([]tt.Issue, error) {
	issues, err := e.run("", source)
	if err != nil {
		return nil, err
	}
	return e.filterIgnoredRules(issues), nil
}

func (e *Engine) run(filename string, source []byte) ([]tt.Issue, error) {
	file, err := parser.Parse(context.Background(), filename, source)
	if err != nil {
		return nil, fmt.Errorf("error parsing file: %w", err)
	}

	nolintMgr := nolint.ParseComments(file)

	var allIssues []tt.Issue
	for _, rule := range e.activeRules() {
		issues, err := rule.Check(filename, file)
		if err != nil {
			e.logger.Warn("rule failed", zap.String("rule", rule.Name()), zap.String("file", filename), zap.Error(err))
			continue
		}
		allIssues = append(allIssues, filterNolintIssues(nolintMgr, issues)...)
	}

	sort.SliceStable(allIssues, func(i, j int) bool {
		if allIssues[i].Start.Offset != allIssues[j].Start.Offset {
			return allIssues[i].Start.Offset < allIssues[j].Start.Offset
		}
		return allIssues[i].Rule < allIssues[j].Rule
	})
	return allIssues, nil
}

// SaveCache persists the result cache, if any.
func (e *Engine) SaveCache() error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Save()
}

func (e *Engine) IgnoreRule(rule string) {
	e.ignoredRules[rule] = true
}

// IgnorePath excludes files matching pattern. Patterns are matched against
// the path, the path relative to the root directory and the base name; a
// plain directory path excludes everything below it.
func (e *Engine) IgnorePath(pattern string) {
	if pattern == "" {
		return
	}
	e.ignoredPaths = append(e.ignoredPaths, filepath.Clean(pattern))
}

func (e *Engine) IsIgnoredPath(path string) bool {
	if len(e.ignoredPaths) == 0 {
		return false
	}

	candidates := []string{filepath.Clean(path)}
	if rel, err := filepath.Rel(e.rootDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		candidates = append(candidates, rel)
	}

	for _, pattern := range e.ignoredPaths {
		for _, c := range candidates {
			if c == pattern || strings.HasPrefix(c, pattern+string(filepath.Separator)) {
				return true
			}
			if ok, _ := filepath.Match(pattern, c); ok {
				return true
			}
			if ok, _ := filepath.Match(pattern, filepath.Base(c)); ok {
				return true
			}
		}
	}
	return false
}

// filterNolintIssues filters issues based on nolint comments.
func filterNolintIssues(mgr *nolint.Manager, issues []tt.Issue) []tt.Issue {
	if mgr == nil {
		return issues
	}
	filtered := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if !mgr.IsNolint(issue.Start.Line, issue.Rule) {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(content), nil
}

// NewSourceCode splits content into lines.
func NewSourceCode(content []byte) *SourceCode {
	return &SourceCode{Lines: strings.Split(string(content), "\n")}
}
