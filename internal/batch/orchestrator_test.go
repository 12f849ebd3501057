package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/nholik/sharecrawl/internal/config"
	"github.com/nholik/sharecrawl/internal/ledger"
	"github.com/nholik/sharecrawl/internal/model"
	"github.com/nholik/sharecrawl/internal/session"
)

// stubNavigator serves a single-folder share with one previewable file.
// failOpen makes the session unusable, simulating a dead share link.
type stubNavigator struct {
	failOpen bool
	closed   bool
}

var _ session.Navigator = (*stubNavigator)(nil)

func (s *stubNavigator) Open(_ context.Context, locator string) error {
	if s.failOpen {
		return fmt.Errorf("%w: %s", session.ErrReadyTimeout, locator)
	}
	return nil
}

func (s *stubNavigator) CurrentLocation() (string, error)       { return "/root", nil }
func (s *stubNavigator) WaitUntilReady(_ context.Context) error { return nil }

func (s *stubNavigator) ListEntries(_ context.Context) ([]string, []string, error) {
	return nil, []string{"photo.png"}, nil
}

func (s *stubNavigator) ActivateEntry(_ context.Context, _ string, _ model.EntryKind) error {
	return nil
}

func (s *stubNavigator) WaitForLocationChange(_ context.Context, _ string) error {
	return nil
}

func (s *stubNavigator) RequestPreview(_ context.Context, _ string) (string, bool, error) {
	return "blob:preview", true, nil
}

func (s *stubNavigator) ClosePreview(_ context.Context) error      { return nil }
func (s *stubNavigator) GoBack(_ context.Context, _ string) error  { return nil }
func (s *stubNavigator) Close() error                              { s.closed = true; return nil }

// testConfig returns a configuration pointed at test-owned directories.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.LedgerPath = filepath.Join(dir, "processed.log")
	cfg.PacingDelay = 0
	cfg.SaveToDB = false
	return cfg
}

// quietLogger drops all batch narration.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// factoryFor returns a SessionFactory handing out the given navigators
// in order. It fails the test if more sessions are requested.
func factoryFor(t *testing.T, navs ...*stubNavigator) SessionFactory {
	t.Helper()

	i := 0
	return func(_ context.Context) (session.Navigator, error) {
		if i >= len(navs) {
			t.Fatal("session factory exhausted")
		}
		nav := navs[i]
		i++
		return nav, nil
	}
}

func TestRunProcessesAllTargets(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	led := ledger.New(cfg.LedgerPath)
	navs := []*stubNavigator{{}, {}, {}}
	o := NewOrchestrator(cfg, factoryFor(t, navs...), led, WithLogger(quietLogger()))

	targets := []model.Target{
		{ID: "alpha", Locator: "https://share.example/a"},
		{ID: "Троси", Locator: "https://share.example/b"},
		{ID: "gamma", Locator: "https://share.example/c"},
	}

	summary, err := o.Run(context.Background(), targets)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Total != 3 || summary.Succeeded != 3 || summary.Failed != 0 || summary.Skipped != 0 {
		t.Errorf("summary = %+v, want 3 succeeded", summary)
	}

	// Artifacts exist under sanitized names.
	for _, name := range []string{"alpha.json", "Троси.json", "gamma.json"} {
		if _, err := os.Stat(filepath.Join(cfg.OutputDir, name)); err != nil {
			t.Errorf("artifact %s missing: %v", name, err)
		}
	}

	// All targets recorded.
	done, err := led.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(done) != 3 {
		t.Errorf("ledger has %d entries, want 3", len(done))
	}

	// Sessions released.
	for i, nav := range navs {
		if !nav.closed {
			t.Errorf("session %d not closed", i)
		}
	}

	// Outcomes follow processing order.
	outcomes := o.Outcomes()
	if len(outcomes) != 3 || outcomes[0].ID != "alpha" || outcomes[2].ID != "gamma" {
		t.Errorf("Outcomes() = %+v, want processing order", outcomes)
	}
}

func TestRunSkipsCompletedTargets(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	led := ledger.New(cfg.LedgerPath)
	if err := led.Append("alpha"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	o := NewOrchestrator(cfg, factoryFor(t, &stubNavigator{}), led, WithLogger(quietLogger()))

	targets := []model.Target{
		{ID: "alpha", Locator: "https://share.example/a"},
		{ID: "beta", Locator: "https://share.example/b"},
	}

	summary, err := o.Run(context.Background(), targets)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Skipped != 1 || summary.Succeeded != 1 {
		t.Errorf("summary = %+v, want 1 skipped and 1 succeeded", summary)
	}
	if got := o.Outcomes()[0].Status; got != model.StatusSkipped {
		t.Errorf("first outcome = %q, want %q", got, model.StatusSkipped)
	}
}

func TestRunOverwriteRecrawls(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Overwrite = true
	led := ledger.New(cfg.LedgerPath)
	if err := led.Append("alpha"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	o := NewOrchestrator(cfg, factoryFor(t, &stubNavigator{}), led, WithLogger(quietLogger()))

	summary, err := o.Run(context.Background(), []model.Target{
		{ID: "alpha", Locator: "https://share.example/a"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Succeeded != 1 || summary.Skipped != 0 {
		t.Errorf("summary = %+v, want overwrite to re-crawl", summary)
	}
}

func TestRunIsolatesFailedTargets(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	led := ledger.New(cfg.LedgerPath)
	navs := []*stubNavigator{{}, {failOpen: true}, {}}
	o := NewOrchestrator(cfg, factoryFor(t, navs...), led, WithLogger(quietLogger()))

	targets := []model.Target{
		{ID: "alpha", Locator: "https://share.example/a"},
		{ID: "beta", Locator: "https://share.example/b"},
		{ID: "gamma", Locator: "https://share.example/c"},
	}

	summary, err := o.Run(context.Background(), targets)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Succeeded != 2 || summary.Failed != 1 {
		t.Errorf("summary = %+v, want 2 succeeded and 1 failed", summary)
	}

	done, err := led.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := done["beta"]; ok {
		t.Error("failed target must not be recorded in the ledger")
	}
	for _, id := range []string{"alpha", "gamma"} {
		if _, ok := done[id]; !ok {
			t.Errorf("ledger missing %q", id)
		}
	}

	outcome := o.Outcomes()[1]
	if outcome.Status != model.StatusFailed || outcome.Detail == "" {
		t.Errorf("failed outcome = %+v, want failure with detail", outcome)
	}

	// The failed session is still released.
	if !navs[1].closed {
		t.Error("failed session not closed")
	}
}

func TestRunInterruptedBeforeStart(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	led := ledger.New(cfg.LedgerPath)
	o := NewOrchestrator(cfg, factoryFor(t), led, WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := o.Run(ctx, []model.Target{
		{ID: "alpha", Locator: "https://share.example/a"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !summary.Interrupted || summary.Total != 0 {
		t.Errorf("summary = %+v, want interrupted before any target", summary)
	}
}

func TestRunInterruptedDuringFinalTarget(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	led := ledger.New(cfg.LedgerPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The interrupt arrives while the last target is being crawled, so
	// the loop never observes it at the top of another iteration.
	nav := &stubNavigator{}
	sessions := func(_ context.Context) (session.Navigator, error) {
		cancel()
		return nav, nil
	}
	o := NewOrchestrator(cfg, sessions, led, WithLogger(quietLogger()))

	summary, err := o.Run(ctx, []model.Target{
		{ID: "omega", Locator: "https://share.example/z"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !summary.Interrupted {
		t.Errorf("summary = %+v, want interrupted", summary)
	}
	if summary.Succeeded != 1 {
		t.Errorf("summary = %+v, want the in-flight target finished", summary)
	}

	// The finished target must still have been recorded.
	done, err := led.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := done["omega"]; !ok {
		t.Error("expected omega in the ledger despite the interrupt")
	}
}

// brokenLedger loads fine but cannot be appended to.
type brokenLedger struct{}

func (brokenLedger) Load() (map[string]struct{}, error) { return map[string]struct{}{}, nil }
func (brokenLedger) Append(string) error                { return errors.New("disk full") }

func TestRunLedgerFailureIsFatal(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	o := NewOrchestrator(cfg, factoryFor(t, &stubNavigator{}, &stubNavigator{}), brokenLedger{}, WithLogger(quietLogger()))

	targets := []model.Target{
		{ID: "alpha", Locator: "https://share.example/a"},
		{ID: "beta", Locator: "https://share.example/b"},
	}

	_, err := o.Run(context.Background(), targets)
	if !errors.Is(err, ErrLedgerAppend) {
		t.Fatalf("Run() error = %v, want ErrLedgerAppend", err)
	}

	// The run must stop at the first unrecordable target.
	if len(o.Outcomes()) != 0 {
		t.Errorf("Outcomes() = %+v, want none after fatal ledger error", o.Outcomes())
	}
}
