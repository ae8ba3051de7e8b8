package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/jsxlint/formatter"
	"github.com/gnolang/jsxlint/internal"
	tt "github.com/gnolang/jsxlint/internal/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Lint files again whenever they change",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			args = []string{"."}
		}

		engine, err := newEngine(cacheDir)
		if err != nil {
			logger.Fatal("Failed to initialize lint engine", zap.Error(err))
		}
		applyIgnores(engine, ignoreRules, ignorePaths)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runWatch(ctx, logger, engine, args, cmd.OutOrStdout()); err != nil {
			logger.Error("Watch failed", zap.Error(err))
		}
		saveCache(logger, engine)
	},
}

func init() {
	watchCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of lint rules to ignore")
	watchCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
	watchCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory for the result cache (disabled when empty)")
}

func runWatch(ctx context.Context, logger *zap.Logger, engine *internal.Engine, dirs []string, out io.Writer) error {
	w, err := engine.NewWatcher(dirs, watchReporter(logger, out))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Watching %d director%s for changes\n", len(dirs), plural(len(dirs), "y", "ies"))
	return w.Watch(ctx)
}

func watchReporter(logger *zap.Logger, out io.Writer) internal.ReportFunc {
	return func(filename string, issues []tt.Issue, err error) {
		if err != nil {
			logger.Error("Error linting file", zap.String("file", filename), zap.Error(err))
			return
		}
		if len(issues) == 0 {
			fmt.Fprintf(out, "%s: ok\n", filename)
			return
		}
		if err := formatter.Write(out, formatter.FormatText, issues, nil); err != nil {
			logger.Error("Error writing issues", zap.String("file", filename), zap.Error(err))
		}
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
