package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/nholik/sharecrawl/internal/model"
)

// Selectors for the share UI. Listing rows are anchors whose ng-if
// expression encodes the entry kind; previews render into a dedicated
// container that is hidden rather than removed when closed.
const (
	listingSelector      = `a[ng-if]`
	previewSelector      = `div.preview-content[ng-show*="image"]`
	previewImageSelector = previewSelector + ` img[src]`

	directoryMarker    = `== 'directory'`
	notDirectoryMarker = `!= 'directory'`
)

// closeSelectors are tried in order when dismissing a preview after the
// primary Escape key press did not take effect.
var closeSelectors = []string{
	`[ng-click*="close"]`,
	`.icon-close`,
	`.close`,
	`button[title*="Close"]`,
}

// pollInterval is the pause between observation polls (location change,
// preview visibility, entry lookup).
const pollInterval = 100 * time.Millisecond

// previewCloseTimeout bounds the wait for a preview to disappear after a
// dismissal attempt.
const previewCloseTimeout = 5 * time.Second

// Options configures browser sessions.
type Options struct {
	// Headless controls whether the browser runs without a window.
	Headless bool

	// ReadyTimeout bounds the wait for a listing to render.
	ReadyTimeout time.Duration

	// LocationTimeout bounds waits for location convergence.
	LocationTimeout time.Duration

	// PreviewTimeout bounds the wait for a preview surface.
	PreviewTimeout time.Duration

	// ActivateRetries is the number of interactive click attempts before
	// the forced activation fallback.
	ActivateRetries int

	// RetryDelay is the pause between click attempts.
	RetryDelay time.Duration

	// SettleDelay is the grace pause after a successful click, letting
	// UI animations finish before the next observation.
	SettleDelay time.Duration

	// Logger receives session narration. Nil means slog.Default.
	Logger *slog.Logger
}

// DefaultOptions returns session options matching the share UI's typical
// render behavior.
func DefaultOptions() Options {
	return Options{
		Headless:        true,
		ReadyTimeout:    20 * time.Second,
		LocationTimeout: 10 * time.Second,
		PreviewTimeout:  20 * time.Second,
		ActivateRetries: 3,
		RetryDelay:      250 * time.Millisecond,
		SettleDelay:     200 * time.Millisecond,
	}
}

// Browser owns one launched browser process and hands out sessions.
// Sessions share the process but each gets its own page, so a crashed
// target does not poison the next one.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	opts     Options
}

// Launch starts a browser process and connects to it.
// Callers must Close the Browser when the batch is done.
func Launch(opts Options) (*Browser, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	l := launcher.New().
		Headless(opts.Headless).
		NoSandbox(true)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Browser{
		browser:  browser,
		launcher: l,
		opts:     opts,
	}, nil
}

// NewSession opens a fresh page and returns a Navigator bound to it.
func (b *Browser) NewSession(ctx context.Context) (Navigator, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &Session{
		page:   page.Context(ctx),
		opts:   b.opts,
		logger: b.opts.Logger,
	}, nil
}

// Close shuts the browser process down.
func (b *Browser) Close() error {
	err := b.browser.Close()
	b.launcher.Cleanup()
	return err
}

// Session is the rod-backed Navigator implementation.
// It is bound to one page and must be used from a single goroutine.
type Session struct {
	page   *rod.Page
	opts   Options
	logger *slog.Logger
}

// compile-time interface check
var _ Navigator = (*Session)(nil)

// Open navigates to the share locator and waits for the first listing.
func (s *Session) Open(ctx context.Context, locator string) error {
	err := rod.Try(func() {
		s.page.Context(ctx).Timeout(s.opts.ReadyTimeout).
			MustNavigate(locator).
			MustWaitLoad()
	})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", locator, err)
	}
	return s.WaitUntilReady(ctx)
}

// CurrentLocation returns the SPA location of the page.
func (s *Session) CurrentLocation() (string, error) {
	info, err := s.page.Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page URL: %w", err)
	}
	return LocationFromURL(info.URL), nil
}

// WaitUntilReady blocks until at least one listing anchor is present.
func (s *Session) WaitUntilReady(ctx context.Context) error {
	err := rod.Try(func() {
		s.page.Context(ctx).Timeout(s.opts.ReadyTimeout).MustElement(listingSelector)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w after %v", ErrReadyTimeout, s.opts.ReadyTimeout)
	}
	return nil
}

// ListEntries reads the current listing, partitioned into folder and
// file names. Duplicate names keep their first occurrence; rows that go
// stale mid-read are skipped, matching what a human retrying the glance
// would see.
func (s *Session) ListEntries(ctx context.Context) ([]string, []string, error) {
	elements, err := s.page.Context(ctx).Timeout(s.opts.ReadyTimeout).Elements(listingSelector)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list entries: %w", err)
	}

	var folders, files []string
	seenFolders := make(map[string]bool)
	seenFiles := make(map[string]bool)

	for _, el := range elements {
		text, err := el.Text()
		if err != nil {
			continue // stale row
		}
		name := strings.TrimSpace(text)
		if name == "" {
			continue
		}

		ngIf, err := el.Attribute("ng-if")
		if err != nil || ngIf == nil {
			continue
		}

		switch {
		case strings.Contains(*ngIf, directoryMarker):
			if !seenFolders[name] {
				seenFolders[name] = true
				folders = append(folders, name)
			}
		case strings.Contains(*ngIf, notDirectoryMarker):
			if !seenFiles[name] {
				seenFiles[name] = true
				files = append(files, name)
			}
		}
	}

	return folders, files, nil
}

// ActivateEntry clicks the named entry, retrying transient interaction
// faults, then falls back to a JS-eval click.
func (s *Session) ActivateEntry(ctx context.Context, name string, kind model.EntryKind) error {
	el, err := s.findEntry(ctx, name, kind)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrActivationFailed, kind, name, err)
	}

	_ = rod.Try(func() { el.MustScrollIntoView() })

	clickErr := Do(ctx, s.opts.ActivateRetries, Constant(s.opts.RetryDelay), func() error {
		return rod.Try(func() { el.MustClick() })
	})
	if clickErr == nil {
		s.settle(ctx)
		return nil
	}

	// Forced non-interactive activation: dispatch the click from JS so
	// overlays and pointer interception cannot get in the way.
	if err := rod.Try(func() { el.MustEval(`() => this.click()`) }); err != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrActivationFailed, kind, name, err)
	}
	s.settle(ctx)
	return nil
}

// WaitForLocationChange polls until the location differs from old.
func (s *Session) WaitForLocationChange(ctx context.Context, old string) error {
	deadline := time.Now().Add(s.opts.LocationTimeout)
	for {
		loc, err := s.CurrentLocation()
		if err != nil {
			return err
		}
		if loc != old {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: still at %s", ErrNavigationTimeout, old)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// RequestPreview activates the named leaf and extracts the resolved
// reference from the preview surface. ok is false when no preview
// appeared within the preview timeout.
func (s *Session) RequestPreview(ctx context.Context, name string) (string, bool, error) {
	if err := s.ActivateEntry(ctx, name, model.KindLeaf); err != nil {
		return "", false, err
	}

	var src string
	err := rod.Try(func() {
		img := s.page.Context(ctx).Timeout(s.opts.PreviewTimeout).MustElement(previewImageSelector)
		src = img.MustProperty("src").Str()
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		s.logger.Debug("no preview image appeared", "name", name)
		return "", false, nil
	}
	if src == "" {
		return "", false, nil
	}
	return src, true, nil
}

// ClosePreview dismisses the preview overlay: Escape first, then the
// known close affordances. Never fails outright; callers re-validate
// readiness independently.
func (s *Session) ClosePreview(ctx context.Context) error {
	_ = rod.Try(func() {
		s.page.Context(ctx).Keyboard.MustType(input.Escape)
	})
	if s.previewGone(ctx) {
		return nil
	}

	for _, sel := range closeSelectors {
		err := rod.Try(func() {
			s.page.Context(ctx).Timeout(time.Second).MustElement(sel).MustClick()
		})
		if err != nil {
			continue
		}
		if s.previewGone(ctx) {
			return nil
		}
	}

	s.logger.Warn("could not confirm preview closed, continuing")
	return nil
}

// GoBack invokes history back and waits for convergence on expected.
// On timeout it forces the hash to expected and re-syncs. Never fails
// outright.
func (s *Session) GoBack(ctx context.Context, expected string) error {
	err := rod.Try(func() {
		s.page.Context(ctx).MustNavigateBack()
	})
	if err == nil && s.waitForLocation(ctx, expected) == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.Warn("history back did not converge, forcing hash", "expected", expected)
	_ = rod.Try(func() {
		s.page.Context(ctx).MustEval(`(hash) => { window.location.hash = hash }`, hashbang+expected)
	})
	if err := s.WaitUntilReady(ctx); err != nil {
		s.logger.Warn("listing not ready after forced jump", "expected", expected, "error", err)
	}
	return nil
}

// Close releases the page.
func (s *Session) Close() error {
	return s.page.Close()
}

// waitForLocation polls until the location equals expected.
func (s *Session) waitForLocation(ctx context.Context, expected string) error {
	deadline := time.Now().Add(s.opts.LocationTimeout)
	for {
		loc, err := s.CurrentLocation()
		if err != nil {
			return err
		}
		if loc == expected {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: at %s, expected %s", ErrNavigationTimeout, loc, expected)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// findEntry polls the listing for an anchor of the right kind whose
// trimmed text equals name. Rows can re-render at any moment, so a
// fresh query per poll beats holding references.
func (s *Session) findEntry(ctx context.Context, name string, kind model.EntryKind) (*rod.Element, error) {
	marker := directoryMarker
	if kind == model.KindLeaf {
		marker = notDirectoryMarker
	}

	deadline := time.Now().Add(s.opts.ReadyTimeout)
	for {
		elements, err := s.page.Context(ctx).Elements(listingSelector)
		if err == nil {
			for _, el := range elements {
				text, err := el.Text()
				if err != nil {
					continue
				}
				if strings.TrimSpace(text) != name {
					continue
				}
				ngIf, err := el.Attribute("ng-if")
				if err != nil || ngIf == nil || !strings.Contains(*ngIf, marker) {
					continue
				}
				return el, nil
			}
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("entry not found in listing")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// previewGone polls until the preview container is absent or hidden.
func (s *Session) previewGone(ctx context.Context) bool {
	deadline := time.Now().Add(previewCloseTimeout)
	for {
		has, el, err := s.page.Context(ctx).Has(previewSelector)
		if err == nil {
			if !has {
				return true
			}
			if visible, err := el.Visible(); err == nil && !visible {
				return true
			}
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(pollInterval):
		}
	}
}

// settle pauses briefly after a successful click so UI animations finish
// before the next observation.
func (s *Session) settle(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(s.opts.SettleDelay):
	}
}
