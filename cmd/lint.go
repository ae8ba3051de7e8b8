package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/jsxlint/formatter"
	"github.com/gnolang/jsxlint/internal"
	tt "github.com/gnolang/jsxlint/internal/types"
	"github.com/gnolang/jsxlint/lint"
)

var (
	ignoreRules  string
	ignorePaths  string
	outputFormat string
	outPath      string
	cacheDir     string
	showProgress bool
)

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Report conditional renders that may leak falsy values into the markup",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "error: Please provide file or directory paths")
			os.Exit(1)
		}

		format, err := formatter.ParseFormat(outputFormat)
		if err != nil {
			logger.Fatal("Invalid output format", zap.Error(err))
		}

		engine, err := newEngine(cacheDir)
		if err != nil {
			logger.Fatal("Failed to initialize lint engine", zap.Error(err))
		}
		applyIgnores(engine, ignoreRules, ignorePaths)

		opts := lintOptions{
			format: format,
			output: outPath,
			jobs:   jobs,
		}
		if showProgress {
			opts.progress = cmd.ErrOrStderr()
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		code := runLint(ctx, logger, engine, args, opts, cmd.OutOrStdout())
		cancel()
		if code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	lintCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of lint rules to ignore")
	lintCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
	lintCmd.Flags().StringVar(&outputFormat, "format", string(formatter.FormatText), "Output format: text, json or lsp")
	lintCmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the report to this file instead of stdout")
	lintCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory for the result cache (disabled when empty)")
	lintCmd.Flags().BoolVar(&showProgress, "progress", isatty.IsTerminal(os.Stderr.Fd()), "Show a progress bar on stderr")
}

// newEngine builds the engine for the current directory from the global
// configuration flag.
func newEngine(cacheDir string) (*internal.Engine, error) {
	opts := []lint.Option{lint.WithLogger(logger)}
	if cacheDir != "" {
		opts = append(opts, lint.WithCacheDir(cacheDir))
	}
	return lint.New(".", cfgFile, opts...)
}

func applyIgnores(engine lint.LintEngine, rules, paths string) {
	for _, rule := range splitList(rules) {
		engine.IgnoreRule(rule)
	}
	for _, path := range splitList(paths) {
		engine.IgnorePath(path)
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

type lintOptions struct {
	format   formatter.Format
	output   string
	jobs     int
	progress io.Writer
}

// runLint lints paths, reports the issues and returns the process exit
// code: 1 when linting failed or an error-severity issue was found.
func runLint(ctx context.Context, logger *zap.Logger, engine lint.LintEngine, paths []string, opts lintOptions, stdout io.Writer) int {
	processOpts := []lint.ProcessOption{lint.WithJobs(opts.jobs)}
	if opts.progress != nil {
		processOpts = append(processOpts, lint.WithProgress(opts.progress))
	}

	exitCode := 0
	issues, err := lint.ProcessFiles(ctx, logger, engine, paths, lint.ProcessFile, processOpts...)
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
		exitCode = 1
	}
	saveCache(logger, engine)

	if err := printIssues(issues, opts.format, opts.output, stdout); err != nil {
		logger.Error("Error writing issues", zap.Error(err))
		return 1
	}

	if hasErrors(issues) {
		return 1
	}
	return exitCode
}

func saveCache(logger *zap.Logger, engine lint.LintEngine) {
	if c, ok := engine.(interface{ SaveCache() error }); ok {
		if err := c.SaveCache(); err != nil {
			logger.Warn("Failed to save cache", zap.Error(err))
		}
	}
}

func printIssues(issues []tt.Issue, format formatter.Format, outPath string, stdout io.Writer) error {
	if outPath == "" {
		return formatter.Write(stdout, format, issues, nil)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	if err := formatter.Write(f, format, issues, nil); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func hasErrors(issues []tt.Issue) bool {
	for _, issue := range issues {
		if issue.Severity == tt.SeverityError {
			return true
		}
	}
	return false
}
