package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/jsxlint/lint"
)

var forceInit bool

// initCmd: jsxlint init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new linter configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := initConfigurationFile(cfgFile, forceInit)
		if err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created/updated: %s\n", path)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing configuration file")
}

// initConfigurationFile writes the default configuration. The file format
// follows the extension, YAML unless it is .toml.
func initConfigurationFile(configurationPath string, overwrite bool) (string, error) {
	if configurationPath == "" {
		configurationPath = lint.DefaultConfigFiles[0]
	}
	if err := lint.WriteConfig(configurationPath, lint.DefaultConfig(), overwrite); err != nil {
		return "", err
	}
	return configurationPath, nil
}
