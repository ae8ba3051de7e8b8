package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	envPrefix      = "JSXLINT"
	defaultTimeout = 5 * time.Minute
)

var (
	cfgFile string
	timeout time.Duration
	verbose bool
	jobs    int

	logger = zap.NewNop()
	v      = viper.New()
)

var rootCmd = &cobra.Command{
	Use:              "jsxlint [paths...]",
	Short:            "jsxlint - finds unsafe conditional rendering in JSX",
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	Run: func(cmd *cobra.Command, args []string) {
		// no subcommand
		if len(args) == 0 {
			_ = cmd.Help()
			return
		}
		// Format: jsxlint [path1 path2 ...] => behaves like the lint subcommand
		lintCmd.Run(lintCmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Configuration file (default: .jsxlint.yaml or .jsxlint.toml in the current directory)")
	flags.DurationVar(&timeout, "timeout", defaultTimeout, "Timeout for the whole run")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.IntVarP(&jobs, "jobs", "j", 0, "Number of files linted in parallel (default: number of CPUs)")

	for _, name := range []string{"config", "timeout", "verbose", "jobs"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(treeCmd)
}

// setup resolves the global options from flags and JSXLINT_* variables and
// builds the logger.
func setup() error {
	cfgFile = v.GetString("config")
	timeout = v.GetDuration("timeout")
	verbose = v.GetBool("verbose")
	jobs = v.GetInt("jobs")
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	l, err := newLogger(verbose)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.DisableStacktrace = true
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.OutputPaths = []string{"stderr"}
	return config.Build()
}
