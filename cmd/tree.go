package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/jsxlint/internal/parser"
	"github.com/gnolang/jsxlint/internal/syntax"
)

var treeCmd = &cobra.Command{
	Use:   "tree [files...]",
	Short: "Print the syntax tree the linter sees",
	Long: `Prints the simplified syntax tree of each file, one node per line with its byte range.
Example) jsxlint tree src/App.tsx`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "error: Please provide file paths")
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		for _, path := range args {
			if err := printTree(ctx, cmd.OutOrStdout(), path); err != nil {
				logger.Error("Failed to print syntax tree", zap.String("path", path), zap.Error(err))
			}
		}
	},
}

func printTree(ctx context.Context, w io.Writer, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	file, err := parser.Parse(ctx, path, src)
	if err != nil {
		return err
	}
	return syntax.Fprint(w, file)
}
