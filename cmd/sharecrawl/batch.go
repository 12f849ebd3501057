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

	"github.com/nholik/sharecrawl/internal/batch"
	"github.com/nholik/sharecrawl/internal/config"
	"github.com/nholik/sharecrawl/internal/database"
	"github.com/nholik/sharecrawl/internal/ledger"
	"github.com/nholik/sharecrawl/internal/model"
	"github.com/nholik/sharecrawl/internal/report"
	"github.com/nholik/sharecrawl/internal/session"
)

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Crawl every target from a CSV list, resumably",
		Long: `Batch crawls each target from a CSV file, one at a time, each on a
fresh browser session. Completed targets are recorded in an append-only
ledger and skipped on the next run, so an interrupted batch resumes
where it stopped.

A target's crawl failure is logged and the batch moves on. Pressing
Ctrl+C stops the batch after the target currently being crawled has
finished and been recorded.

Examples:
  # Crawl all targets from a CSV with "brand" and "link" columns
  sharecrawl batch --csv targets.csv

  # Custom columns and output directory
  sharecrawl batch --csv list.csv --id-column name --link-column url --outdir artifacts

  # Re-crawl everything, ignoring the ledger
  sharecrawl batch --csv targets.csv --overwrite

  # Write a Markdown summary of the run
  sharecrawl batch --csv targets.csv --summary summary.md`,
		RunE: runBatchCmd,
	}

	cmd.Flags().String("csv", "", "CSV file holding the target list (required)")
	cmd.Flags().String("id-column", config.DefaultIDColumn,
		"CSV column holding the target identifier")
	cmd.Flags().String("link-column", config.DefaultLocatorColumn,
		"CSV column holding the share link")
	cmd.Flags().StringP("outdir", "o", config.DefaultOutputDir,
		"Directory to write per-target artifacts to")
	cmd.Flags().String("ledger", "",
		"Processed-target ledger file (default: processed.log in the data directory)")
	cmd.Flags().IntP("depth", "d", config.UnboundedDepth,
		"Maximum crawl depth (negative: unbounded, 0: root listing only)")
	cmd.Flags().StringSliceP("ext", "e", config.DefaultExtensions(),
		"File extensions to extract previews for")
	cmd.Flags().Duration("sleep", config.DefaultPacingDelay,
		"Pause between targets")
	cmd.Flags().Bool("overwrite", false,
		"Re-crawl targets already recorded in the ledger")
	cmd.Flags().String("summary", "",
		"Write a Markdown summary of the run to specified file path")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sharecrawl in current or home directory)")
	cmd.Flags().Bool("headful", false,
		"Run the browser with a visible window")
	cmd.Flags().Bool("no-db", false,
		"Skip saving artifacts to the history database")

	_ = cmd.MarkFlagRequired("csv") //nolint:errcheck // Flag is registered above

	return cmd
}

// runBatchCmd executes the batch command.
func runBatchCmd(cmd *cobra.Command, _ []string) error {
	cfg, summaryPath, err := buildBatchConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// SIGINT stops the batch between targets; the in-flight target
	// finishes and is recorded first.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runBatch(ctx, cfg, summaryPath, logger)
}

// buildBatchConfig creates a Config from batch command flags.
func buildBatchConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.NewConfig()

	var err error

	cfg.TargetsPath, err = cmd.Flags().GetString("csv")
	if err != nil {
		return nil, "", err
	}

	cfg.IDColumn, err = cmd.Flags().GetString("id-column")
	if err != nil {
		return nil, "", err
	}

	cfg.LocatorColumn, err = cmd.Flags().GetString("link-column")
	if err != nil {
		return nil, "", err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("outdir")
	if err != nil {
		return nil, "", err
	}

	ledgerPath, err := cmd.Flags().GetString("ledger")
	if err != nil {
		return nil, "", err
	}
	if ledgerPath != "" {
		cfg.LedgerPath = ledgerPath
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, "", err
	}

	cfg.Extensions, err = cmd.Flags().GetStringSlice("ext")
	if err != nil {
		return nil, "", err
	}

	cfg.PacingDelay, err = cmd.Flags().GetDuration("sleep")
	if err != nil {
		return nil, "", err
	}

	cfg.Overwrite, err = cmd.Flags().GetBool("overwrite")
	if err != nil {
		return nil, "", err
	}

	summaryPath, err := cmd.Flags().GetString("summary")
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

	return cfg, summaryPath, nil
}

// runBatch executes the batch run.
func runBatch(ctx context.Context, cfg *config.Config, summaryPath string, logger *slog.Logger) error {
	targets, err := batch.LoadTargets(cfg.TargetsPath, cfg.IDColumn, cfg.LocatorColumn)
	if err != nil {
		return err
	}

	logger.Info("starting batch",
		"targets", len(targets),
		"outdir", cfg.OutputDir,
		"ledger", cfg.LedgerPath,
		"overwrite", cfg.Overwrite,
	)

	browser, err := session.Launch(sessionOptions(cfg, logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := browser.Close(); err != nil {
			logger.Error("failed to close browser", "error", err)
		}
	}()

	opts := []batch.Option{batch.WithLogger(logger)}

	var db *database.CrawlDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		opts = append(opts, batch.WithDatabase(db))
	}

	o := batch.NewOrchestrator(cfg, browser.NewSession, ledger.New(cfg.LedgerPath), opts...)

	startTime := time.Now()
	summary, err := o.Run(ctx, targets)
	if err != nil {
		return err
	}

	fmt.Printf("\nBatch completed in %s: %d succeeded, %d failed, %d skipped\n",
		time.Since(startTime).Round(time.Millisecond),
		summary.Succeeded, summary.Failed, summary.Skipped,
	)
	if summary.Interrupted {
		fmt.Println("Batch was interrupted; rerun to resume.")
	}

	if summaryPath != "" {
		if err := writeSummary(summaryPath, summary, o); err != nil {
			return err
		}
		fmt.Printf("Summary written to %s\n", summaryPath)
	}

	return nil
}

// writeSummary renders the batch summary as Markdown to path.
func writeSummary(path string, summary model.BatchSummary, o *batch.Orchestrator) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer f.Close()

	if _, err := report.NewMarkdownWriter(f).WriteSummary(summary, o.Outcomes()); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
