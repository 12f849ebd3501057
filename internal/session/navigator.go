package session

import (
	"context"

	"github.com/nholik/sharecrawl/internal/model"
)

// Navigator is the capability surface of one remote navigation session.
//
// Implementations are stateful: the session has a single current location
// that every operation reads or moves. Calls must be strictly sequential;
// the interface is not safe for concurrent use and is not meant to be.
//
// The zero-cost way to test the crawl engine is to implement Navigator
// with an in-memory fake, which is what the crawler package tests do.
type Navigator interface {
	// Open navigates the session to the given share locator and waits
	// for the first listing to render.
	Open(ctx context.Context, locator string) error

	// CurrentLocation returns the location reflecting the most recently
	// completed navigation.
	CurrentLocation() (string, error)

	// WaitUntilReady polls until the listing for the current location is
	// fully rendered. Returns ErrReadyTimeout if it never is.
	WaitUntilReady(ctx context.Context) error

	// ListEntries returns the visible entries of the current listing,
	// partitioned by kind. Order is remote listing order and duplicate
	// names are collapsed to the first occurrence. Requires a prior
	// successful WaitUntilReady.
	ListEntries(ctx context.Context) (folders, files []string, err error)

	// ActivateEntry selects or opens the named entry. Transient
	// interaction faults are retried a fixed number of times, then a
	// forced non-interactive activation is attempted. Returns
	// ErrActivationFailed only if the fallback also errs.
	ActivateEntry(ctx context.Context, name string, kind model.EntryKind) error

	// WaitForLocationChange blocks until the current location differs
	// from old. Returns ErrNavigationTimeout if it never does.
	WaitForLocationChange(ctx context.Context, old string) error

	// RequestPreview activates the named leaf, waits for a preview
	// surface, and extracts the resolved reference. ok is false when no
	// preview appeared, which is an expected, frequent outcome and not
	// an error.
	RequestPreview(ctx context.Context, name string) (src string, ok bool, err error)

	// ClosePreview dismisses an open preview surface, trying a primary
	// action and then an ordered list of fallbacks. It never fails
	// outright; callers re-validate readiness independently afterwards.
	ClosePreview(ctx context.Context) error

	// GoBack invokes the back affordance and waits for the location to
	// converge on expected. On timeout it performs a corrective forced
	// jump to expected and re-syncs. It never fails outright.
	GoBack(ctx context.Context, expected string) error

	// Close releases the session. Safe to call on every exit path.
	Close() error
}
