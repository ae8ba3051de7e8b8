package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/jsxlint/internal/fixer"
	tt "github.com/gnolang/jsxlint/internal/types"
	"github.com/gnolang/jsxlint/lint"
)

var (
	dryRun              bool
	confidenceThreshold float64
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Automatically fix issues",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "error: Please provide file or directory paths")
			os.Exit(1)
		}

		// the cache is not used: files change under it
		engine, err := newEngine("")
		if err != nil {
			logger.Fatal("Failed to initialize lint engine", zap.Error(err))
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		code := runAutoFix(ctx, logger, engine, args, dryRun, confidenceThreshold, cmd.OutOrStdout())
		cancel()
		if code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run in dry-run mode (show fixes without applying them)")
	fixCmd.Flags().Float64Var(&confidenceThreshold, "confidence", 0.75, "Confidence threshold for auto-fixing (0.0 to 1.0)")
}

func runAutoFix(
	ctx context.Context,
	logger *zap.Logger,
	engine lint.LintEngine,
	paths []string,
	dryRun bool,
	confidenceThreshold float64,
	out io.Writer,
) int {
	fix := fixer.New(dryRun, confidenceThreshold, out)
	exitCode := 0

	issues, err := lint.ProcessFiles(ctx, logger, engine, paths, lint.ProcessFile, lint.WithJobs(jobs))
	if err != nil {
		logger.Error("error processing paths", zap.Error(err))
		exitCode = 1
	}

	byFile := make(map[string][]tt.Issue)
	var files []string
	for _, issue := range issues {
		if _, ok := byFile[issue.Filename]; !ok {
			files = append(files, issue.Filename)
		}
		byFile[issue.Filename] = append(byFile[issue.Filename], issue)
	}

	total := 0
	for _, file := range files {
		n, err := fix.Fix(file, byFile[file])
		if err != nil {
			logger.Error("error fixing issues", zap.String("path", file), zap.Error(err))
			exitCode = 1
			continue
		}
		total += n
	}
	logger.Debug("fix finished", zap.Int("files", len(files)), zap.Int("fixed", total))
	return exitCode
}
