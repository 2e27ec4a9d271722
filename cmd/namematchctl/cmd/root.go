package cmd

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "namematchctl",
		Short:        "namematchctl",
		SilenceUsage: true,
		Long:         `CLI for building and querying a namematch fuzzy name-matching index.`,
	}

	configPath string
)

// Execute executes the root command.
func Execute() error {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "namematchctl.yaml", "path to engine config file")
	return rootCmd.Execute()
}
