package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nholik/sharecrawl/internal/config"
	"github.com/nholik/sharecrawl/internal/crawler"
	"github.com/nholik/sharecrawl/internal/database"
	"github.com/nholik/sharecrawl/internal/report"
	"github.com/nholik/sharecrawl/internal/session"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <share-link>",
		Short: "Crawl a single share link",
		Long: `Crawl opens the share link in a headless browser, walks its folder
tree depth first, and extracts the preview image reference of every
file matching the extension allow-list.

The result is written as a JSON artifact holding the nested tree, a
flat listing, and the crawl parameters.

Examples:
  # Crawl a share and print the artifact to stdout
  sharecrawl crawl "https://share.example/cgi-bin/filemanager/share.cgi?ssid=abc"

  # Limit depth and write the artifact to a file
  sharecrawl crawl -d 2 -o out/share.json "https://share.example/..."

  # Restrict extraction to PNG files
  sharecrawl crawl --ext .png "https://share.example/..."

Configuration file (.sharecrawl) example:
  defaults:
    depth: -1
  shares:
    "https://share.example/...":
      depth: 3
      extensions: [.png, .jpg]`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	cmd.Flags().IntP("depth", "d", config.UnboundedDepth,
		"Maximum crawl depth (negative: unbounded, 0: root listing only)")
	cmd.Flags().StringSliceP("ext", "e", config.DefaultExtensions(),
		"File extensions to extract previews for")
	cmd.Flags().StringP("output", "o", "",
		"Write the artifact to specified file path (default: stdout)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sharecrawl in current or home directory)")
	cmd.Flags().Bool("headful", false,
		"Run the browser with a visible window")
	cmd.Flags().Bool("no-db", false,
		"Skip saving the artifact to the history database")
	cmd.Flags().Duration("ready-timeout", config.DefaultReadyTimeout,
		"Timeout for a folder listing to render")
	cmd.Flags().Duration("preview-timeout", config.DefaultPreviewTimeout,
		"Timeout for a file preview to appear")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, outputPath, err := buildCrawlConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, args[0], outputPath, logger)
}

// buildCrawlConfig creates a Config from crawl command flags.
func buildCrawlConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.NewConfig()

	var err error

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, "", err
	}

	cfg.Extensions, err = cmd.Flags().GetStringSlice("ext")
	if err != nil {
		return nil, "", err
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return nil, "", err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", err
	}
	if err := loadShares(cfg); err != nil {
		return nil, "", err
	}

	headful, err := cmd.Flags().GetBool("headful")
	if err != nil {
		return nil, "", err
	}
	cfg.Headless = !headful

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, "", err
	}
	cfg.SaveToDB = !noDB

	cfg.ReadyTimeout, err = cmd.Flags().GetDuration("ready-timeout")
	if err != nil {
		return nil, "", err
	}

	cfg.PreviewTimeout, err = cmd.Flags().GetDuration("preview-timeout")
	if err != nil {
		return nil, "", err
	}

	return cfg, outputPath, nil
}

// sessionOptions derives browser session options from the configuration.
func sessionOptions(cfg *config.Config, logger *slog.Logger) session.Options {
	return session.Options{
		Headless:        cfg.Headless,
		ReadyTimeout:    cfg.ReadyTimeout,
		LocationTimeout: cfg.LocationTimeout,
		PreviewTimeout:  cfg.PreviewTimeout,
		ActivateRetries: cfg.ActivateRetries,
		RetryDelay:      cfg.RetryDelay,
		SettleDelay:     cfg.SettleDelay,
		Logger:          logger,
	}
}

// runCrawl executes the single-share crawl.
func runCrawl(ctx context.Context, cfg *config.Config, locator, outputPath string, logger *slog.Logger) error {
	browser, err := session.Launch(sessionOptions(cfg, logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := browser.Close(); err != nil {
			logger.Error("failed to close browser", "error", err)
		}
	}()

	nav, err := browser.NewSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = nav.Close()
	}()

	engine := crawler.New(nav,
		crawler.WithMaxDepth(cfg.EffectiveDepth(locator)),
		crawler.WithExtensions(cfg.EffectiveExtensions(locator)),
		crawler.WithLogger(logger),
	)

	fmt.Fprintf(os.Stderr, "Crawling %s...\n", locator)
	result, err := engine.Crawl(ctx, locator)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Crawl completed in %s: %d folders, %d files\n",
		result.Elapsed.Round(time.Millisecond),
		result.Root.NodeCount(),
		result.Root.LeafCount(),
	)

	doc := report.NewDocument(result, nil)

	if outputPath != "" {
		if err := report.WriteFile(outputPath, doc); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Artifact written to %s\n", outputPath)
	} else {
		if _, err := report.NewJSONWriter(os.Stdout).Write(doc); err != nil {
			return err
		}
	}

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.SaveArtifact(ctx, locator, doc); err != nil {
			logger.Error("failed to save artifact history", "error", err)
		}
	}

	return nil
}
