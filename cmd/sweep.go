// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/0xshariq/timeline/internal/config"
	"github.com/0xshariq/timeline/internal/gateway"
	"github.com/0xshariq/timeline/internal/usecase"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Collects commit history and outputs per-day series as JSON",
	Long: `Sweeps the user's repositories on the selected platform, fetches each
repository's commit history, buckets it into per-day series, and prints the
aggregated result as JSON. Repositories that fail or have no commits are
reported as skipped without aborting the sweep.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Interrupt cancels the sweep between repositories.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.WarnLevel)
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}

		platformStr, _ := cmd.Flags().GetString("platform")
		identity, _ := cmd.Flags().GetString("user")
		repositories, _ := cmd.Flags().GetStringSlice("repo")
		includeMerges, _ := cmd.Flags().GetBool("include-merges")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		withSummary, _ := cmd.Flags().GetBool("summary")

		platform, err := gateway.ParsePlatform(platformStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cfg := config.Load(platform, identity)
		cfg.Repositories = repositories
		cfg.IncludeMergeCommits = includeMerges
		if concurrency > 0 {
			cfg.Concurrency = concurrency
		}
		if cfg.Token == "" {
			logger.Warnf("%s not set, using anonymous %s access (stricter rate limits)",
				config.CredentialEnv(platform), platform)
		}

		// Inject dependencies and run the main business logic.
		provider, err := gateway.New(platform, gateway.Options{
			Token:               cfg.Token,
			IncludeMergeCommits: cfg.IncludeMergeCommits,
			Logger:              logger,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s provider: %v\n", platform, err)
			os.Exit(1)
		}

		ingestor := usecase.NewIngestor(provider, logger,
			usecase.WithConcurrency(cfg.Concurrency),
			usecase.WithReporter(&logReporter{logger: logger}),
		)

		result, err := ingestor.Run(ctx, cfg.Identity, cfg.Repositories)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to collect commit history: %v\n", err)
			os.Exit(1)
		}

		// Marshal the result into a pretty-printed JSON string. This is the
		// hand-off boundary to the chart renderer.
		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal result to JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))

		if withSummary {
			summary := usecase.Summarize(result)
			summaryData, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to marshal summary to JSON: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(summaryData))
		}
	},
}

// logReporter forwards sweep progress events to the logger.
type logReporter struct {
	logger *logrus.Logger
}

func (r *logReporter) ResolvingRepositories(platform, identity string) {
	r.logger.Infof("Resolving repositories for %s on %s...", identity, platform)
}

func (r *logReporter) ProcessingRepository(index, total int, repository string) {
	r.logger.Infof("Processing repository %d/%d: %s", index, total, repository)
}

func (r *logReporter) RepositoryDone(repository string, commits int) {
	r.logger.Infof("%s: %d commits", repository, commits)
}

func (r *logReporter) RepositorySkipped(repository, reason string) {
	r.logger.Warnf("%s skipped: %s", repository, reason)
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().StringP("platform", "p", "github", "Hosting platform (github, gitlab, bitbucket, sourcehut)")
	sweepCmd.Flags().StringP("user", "u", "", "User/account identity to sweep (required)")
	sweepCmd.MarkFlagRequired("user")
	sweepCmd.Flags().StringSlice("repo", nil, "Explicit repository name (repeatable; skips discovery)")
	sweepCmd.Flags().Bool("include-merges", false, "Include merge commits in the series")
	sweepCmd.Flags().Int("concurrency", 1, "Concurrent repository fetches")
	sweepCmd.Flags().Bool("summary", false, "Also print summary statistics")
}
