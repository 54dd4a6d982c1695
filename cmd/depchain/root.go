package main

import (
	"github.com/spf13/cobra"

	"depchain/internal/version"
)

var (
	// logLevelFlag overrides logging.level from config
	logLevelFlag string
	// logFormatFlag overrides logging.format from config
	logFormatFlag string
	// noCacheFlag bypasses the listing cache for this run
	noCacheFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "depchain",
	Short: "depchain - find every file that depends on a file",
	Long: `depchain builds a reverse import map of a repository (on GitHub or on local
disk) and walks it outward from a target file, reporting each direct and
transitive dependent together with the chain of imports that reaches it.

Supported languages: javascript, typescript, jsx, tsx, python.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("depchain version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format on stderr: human or json (default from config)")
	rootCmd.PersistentFlags().BoolVar(&noCacheFlag, "no-cache", false,
		"Do not read or write the file listing cache")
}
