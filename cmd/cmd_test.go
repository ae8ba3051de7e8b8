package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/jsxlint/formatter"
	tt "github.com/gnolang/jsxlint/internal/types"
	"github.com/gnolang/jsxlint/lint"
)

const screen = `const Screen = ({ items, ready }) => (
  <View>
    {items.length && <List />}
    {!!ready && <Done />}
  </View>
)
`

type mockLintEngine struct {
	mock.Mock
}

func (m *mockLintEngine) Run(filePath string) ([]tt.Issue, error) {
	args := m.Called(filePath)
	return args.Get(0).([]tt.Issue), args.Error(1)
}

func (m *mockLintEngine) RunSource(source []byte) ([]tt.Issue, error) {
	args := m.Called(source)
	return args.Get(0).([]tt.Issue), args.Error(1)
}

func (m *mockLintEngine) IgnoreRule(rule string) {
	m.Called(rule)
}

func (m *mockLintEngine) IgnorePath(path string) {
	m.Called(path)
}

func writeScreen(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(screen), 0o644))
	return path
}

func TestRunLint(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeScreen(t, dir, "screen.tsx")

	engine, err := lint.New(dir, "")
	require.NoError(t, err)

	var out bytes.Buffer
	code := runLint(context.Background(), zap.NewNop(), engine, []string{dir}, lintOptions{format: formatter.FormatText}, &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "jsx-safe-conditionals")
	assert.Contains(t, out.String(), path)
	assert.Contains(t, out.String(), "!!items.length && <List />")
}

func TestRunLintJSONOutputFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeScreen(t, dir, "screen.jsx")
	report := filepath.Join(dir, "report.json")

	engine, err := lint.New(dir, "")
	require.NoError(t, err)

	var out bytes.Buffer
	opts := lintOptions{format: formatter.FormatJSON, output: report, jobs: 2}
	code := runLint(context.Background(), zap.NewNop(), engine, []string{path}, opts, &out)
	assert.Equal(t, 1, code)
	assert.Empty(t, out.String())

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var byFile map[string][]tt.Issue
	require.NoError(t, json.Unmarshal(data, &byFile))
	require.Len(t, byFile[path], 1)
	assert.Equal(t, 3, byFile[path][0].Start.Line)
}

func TestRunLintWarningsDoNotFail(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeScreen(t, dir, "screen.tsx")
	config := filepath.Join(dir, ".jsxlint.yaml")
	require.NoError(t, os.WriteFile(config, []byte("rules:\n  jsx-safe-conditionals:\n    severity: warning\n"), 0o644))

	engine, err := lint.New(dir, config, lint.WithCacheDir(filepath.Join(dir, ".cache")))
	require.NoError(t, err)

	var out bytes.Buffer
	code := runLint(context.Background(), zap.NewNop(), engine, []string{dir}, lintOptions{format: formatter.FormatText}, &out)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "warning")

	// the cache is written at the end of the run
	_, err = os.Stat(filepath.Join(dir, ".cache", "lint_cache.mp"))
	assert.NoError(t, err)
}

func TestRunLintProcessingError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "app.tsx")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	engine := new(mockLintEngine)
	engine.On("Run", path).Return([]tt.Issue(nil), errors.New("boom"))

	var out bytes.Buffer
	code := runLint(context.Background(), zap.NewNop(), engine, []string{path}, lintOptions{format: formatter.FormatText}, &out)
	assert.Equal(t, 1, code)
	assert.Empty(t, out.String())
	engine.AssertExpectations(t)
}

func TestApplyIgnores(t *testing.T) {
	t.Parallel()
	engine := new(mockLintEngine)
	engine.On("IgnoreRule", "jsx-safe-conditionals").Return()
	engine.On("IgnorePath", "build").Return()
	engine.On("IgnorePath", "*.test.tsx").Return()

	applyIgnores(engine, " jsx-safe-conditionals, ", "build,*.test.tsx")
	engine.AssertExpectations(t)
	engine.AssertNumberOfCalls(t, "IgnoreRule", 1)
}

func TestSplitList(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{" a , b ,,", []string{"a", "b"}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, splitList(tc.input), tc.input)
	}
}

func TestHasErrors(t *testing.T) {
	t.Parallel()
	assert.False(t, hasErrors(nil))
	assert.False(t, hasErrors([]tt.Issue{{Severity: tt.SeverityWarning}, {Severity: tt.SeverityInfo}}))
	assert.True(t, hasErrors([]tt.Issue{{Severity: tt.SeverityWarning}, {Severity: tt.SeverityError}}))
}

func TestRunAutoFix(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeScreen(t, dir, "screen.tsx")

	engine, err := lint.New(dir, "")
	require.NoError(t, err)

	var out bytes.Buffer
	code := runAutoFix(context.Background(), zap.NewNop(), engine, []string{dir}, false, 0.75, &out)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Fixed 1 issue(s)")

	fixed, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(fixed), "{!!items.length && <List />}")
	assert.Contains(t, string(fixed), "{!!ready && <Done />}")

	issues, err := engine.Run(path)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestRunAutoFixDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeScreen(t, dir, "screen.tsx")

	engine, err := lint.New(dir, "")
	require.NoError(t, err)

	var out bytes.Buffer
	code := runAutoFix(context.Background(), zap.NewNop(), engine, []string{path}, true, 0.75, &out)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Would fix issue in")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, screen, string(content))
}

func TestInitConfigurationFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	for _, name := range []string{"jsxlint.yaml", "jsxlint.toml"} {
		path := filepath.Join(dir, name)
		got, err := initConfigurationFile(path, false)
		require.NoError(t, err)
		assert.Equal(t, path, got)

		config, err := lint.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, lint.DefaultConfig(), config)

		_, err = initConfigurationFile(path, false)
		assert.ErrorIs(t, err, os.ErrExist)

		_, err = initConfigurationFile(path, true)
		assert.NoError(t, err)
	}
}

func TestPrintTree(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeScreen(t, dir, "screen.tsx")

	var out bytes.Buffer
	require.NoError(t, printTree(context.Background(), &out, path))
	assert.Contains(t, out.String(), "File [0,")
	assert.Contains(t, out.String(), "<View>")
	assert.Contains(t, out.String(), "BinaryExpr")

	assert.Error(t, printTree(context.Background(), &out, filepath.Join(dir, "missing.tsx")))
}

func TestWatchReporter(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeScreen(t, dir, "screen.tsx")

	var out bytes.Buffer
	report := watchReporter(zap.NewNop(), &out)

	report(path, nil, nil)
	assert.Contains(t, out.String(), path+": ok")

	out.Reset()
	report(path, []tt.Issue{{
		Rule:     "jsx-safe-conditionals",
		Filename: path,
		Message:  "Please use safe conditional expressions in JSX 🙏",
		Start:    token.Position{Filename: path, Offset: 53, Line: 3, Column: 5},
		End:      token.Position{Filename: path, Offset: 77, Line: 3, Column: 29},
	}}, nil)
	assert.Contains(t, out.String(), "jsx-safe-conditionals")

	out.Reset()
	report(path, nil, errors.New("boom"))
	assert.Empty(t, out.String())
}
