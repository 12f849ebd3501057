package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/nholik/sharecrawl/internal/config"
	"github.com/nholik/sharecrawl/internal/crawler"
	"github.com/nholik/sharecrawl/internal/database"
	"github.com/nholik/sharecrawl/internal/model"
	"github.com/nholik/sharecrawl/internal/report"
	"github.com/nholik/sharecrawl/internal/session"
)

// ErrLedgerAppend indicates a completed target could not be recorded.
// The orchestrator stops the whole run on this error: continuing would
// produce artifacts that a rerun cannot distinguish from unprocessed
// work.
var ErrLedgerAppend = errors.New("failed to record completed target")

// SessionFactory acquires a fresh navigation session for one target.
// The orchestrator closes the returned session before moving to the
// next target, whatever the crawl outcome was.
type SessionFactory func(ctx context.Context) (session.Navigator, error)

// Ledger is the record keeping the orchestrator depends on.
// *ledger.Ledger satisfies it.
type Ledger interface {
	// Load returns the set of completed target identifiers.
	Load() (map[string]struct{}, error)

	// Append durably records one completed target.
	Append(id string) error
}

// Orchestrator runs a resumable multi-target batch. Targets are
// processed strictly in source order, one at a time, each on its own
// navigation session. A failed target is logged and skipped; the batch
// only aborts when its own record keeping fails.
type Orchestrator struct {
	cfg      *config.Config
	sessions SessionFactory
	ledger   Ledger
	db       *database.CrawlDB
	logger   *slog.Logger

	// outcomes accumulates per-target results for the summary report.
	outcomes []model.TargetOutcome
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDatabase enables artifact history persistence.
func WithDatabase(db *database.CrawlDB) Option {
	return func(o *Orchestrator) {
		o.db = db
	}
}

// WithLogger sets a custom logger for batch narration.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an Orchestrator over the given configuration,
// session factory, and ledger.
func NewOrchestrator(cfg *config.Config, sessions SessionFactory, led Ledger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		sessions: sessions,
		ledger:   led,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}

	return o
}

// Outcomes returns the per-target outcomes of the most recent Run call,
// in processing order.
func (o *Orchestrator) Outcomes() []model.TargetOutcome {
	return o.outcomes
}

// Run processes the target list. Completed targets recorded in the
// ledger are skipped unless overwrite is enabled, which makes reruns
// idempotent. Cancelling ctx stops the run between targets; a target
// already being crawled finishes first.
//
// Run returns a non-nil error only for faults that invalidate the whole
// batch, such as a ledger that cannot be appended to. Individual target
// failures are reflected in the summary instead.
func (o *Orchestrator) Run(ctx context.Context, targets []model.Target) (model.BatchSummary, error) {
	done, err := o.ledger.Load()
	if err != nil {
		return model.BatchSummary{}, fmt.Errorf("failed to load ledger: %w", err)
	}

	o.outcomes = make([]model.TargetOutcome, 0, len(targets))
	summary := model.BatchSummary{}

	for _, target := range targets {
		if ctx.Err() != nil {
			summary.Interrupted = true
			o.logger.Info("batch interrupted", "remaining", len(targets)-summary.Total)
			break
		}

		summary.Total++

		if _, ok := done[target.ID]; ok && !o.cfg.Overwrite {
			summary.Skipped++
			o.outcomes = append(o.outcomes, model.TargetOutcome{ID: target.ID, Status: model.StatusSkipped})
			o.logger.Info("skipping completed target", "target", target.ID)
			o.pace(ctx)
			continue
		}

		if err := o.processTarget(ctx, target); err != nil {
			if errors.Is(err, ErrLedgerAppend) {
				return summary, err
			}
			summary.Failed++
			o.outcomes = append(o.outcomes, model.TargetOutcome{
				ID:     target.ID,
				Status: model.StatusFailed,
				Detail: err.Error(),
			})
			o.logger.Error("target failed", "target", target.ID, "error", err)
			o.pace(ctx)
			continue
		}

		done[target.ID] = struct{}{}
		summary.Succeeded++
		o.outcomes = append(o.outcomes, model.TargetOutcome{ID: target.ID, Status: model.StatusSucceeded})
		o.logger.Info("target completed", "target", target.ID)
		o.pace(ctx)
	}

	// An interrupt during the final target never reaches the top of the
	// loop; the summary still has to report it so reruns are prompted.
	if ctx.Err() != nil {
		summary.Interrupted = true
	}

	return summary, nil
}

// processTarget crawls one target end to end: session acquisition,
// crawl, artifact write, optional history save, ledger append. The
// in-flight crawl is shielded from batch cancellation so an interrupt
// never leaves a half-recorded target behind.
func (o *Orchestrator) processTarget(ctx context.Context, target model.Target) error {
	crawlCtx := context.WithoutCancel(ctx)

	nav, err := o.sessions(crawlCtx)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer func() {
		_ = nav.Close()
	}()

	engine := crawler.New(nav,
		crawler.WithMaxDepth(o.cfg.EffectiveDepth(target.Locator)),
		crawler.WithExtensions(o.cfg.EffectiveExtensions(target.Locator)),
		crawler.WithLogger(o.logger),
	)

	result, err := engine.Crawl(crawlCtx, target.Locator)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	doc := report.NewDocument(result, map[string]string{"target_id": target.ID})

	artifactPath := filepath.Join(o.cfg.OutputDir, report.SanitizeFilename(target.ID)+".json")
	if err := report.WriteFile(artifactPath, doc); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	o.logger.Info("artifact written",
		"target", target.ID,
		"path", artifactPath,
		"folders", result.Root.NodeCount(),
		"files", result.Root.LeafCount(),
		"elapsed", result.Elapsed.Round(time.Millisecond),
	)

	if o.db != nil {
		if err := o.db.SaveArtifact(crawlCtx, target.ID, doc); err != nil {
			// History is auxiliary; the JSON artifact is the deliverable.
			o.logger.Warn("failed to save artifact history", "target", target.ID, "error", err)
		}
	}

	if err := o.ledger.Append(target.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerAppend, err)
	}

	return nil
}

// pace sleeps the configured pacing delay, returning early if the batch
// is cancelled. The delay applies after every target regardless of its
// outcome.
func (o *Orchestrator) pace(ctx context.Context) {
	if o.cfg.PacingDelay <= 0 {
		return
	}

	timer := time.NewTimer(o.cfg.PacingDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
