// Package main provides the entry point for the sharecrawl CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nholik/sharecrawl/internal/config"
	logx "github.com/nholik/sharecrawl/internal/log"
)

// NewRootCmd creates the root command for sharecrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sharecrawl",
		Short: "Crawler for browser-based file share links",
		Long: `sharecrawl explores file shares that are only reachable through a
browser UI: it opens a share link, walks the folder tree the way a user
would (list, click, go back), and extracts the preview image reference
of every matching file.

Each crawl produces a JSON artifact holding the nested folder tree and
a flat listing. Batch runs over a CSV target list are resumable: an
append-only ledger records completed targets so a rerun picks up where
the previous one stopped.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger based on verbosity. Crawl
// narration carries a depth attribute that the handler turns into
// message indentation, so the log reads like the tree being walked.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := logx.NewDepthHandler(slog.NewTextHandler(os.Stderr, opts))
	return slog.New(handler)
}

// loadShares resolves the configuration file and loads per-share
// overrides into cfg. An explicitly requested file that does not exist
// is an error; a missing default file is not.
func loadShares(cfg *config.Config) error {
	explicit := cfg.ConfigFilePath != ""
	path := config.FindConfigFile(cfg.ConfigFilePath)

	if path != "" {
		shares, err := config.LoadConfigFile(path)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.Shares = shares
		return nil
	}
	if explicit {
		return fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.Shares = &config.File{
		Shares: make(map[string]config.ShareConfig),
	}
	return nil
}
