// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "timeline",
	Short: "A CLI tool to chart a user's commit history per repository.",
	Long: `timeline sweeps a user's repositories on a Git hosting platform
(GitHub, GitLab, Bitbucket or SourceHut), buckets commit activity into
per-day series, and outputs the aggregate as JSON for chart rendering.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
