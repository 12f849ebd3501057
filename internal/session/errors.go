package session

import "errors"

// Session fault taxonomy. Adapter operations retry transient faults
// locally; these sentinels are returned only after retry plus fallback
// both failed, and callers are expected to branch with errors.Is.
var (
	// ErrReadyTimeout is returned when the listing for the current
	// location did not finish rendering within the ready timeout.
	ErrReadyTimeout = errors.New("ready timeout: listing did not render")

	// ErrActivationFailed is returned when an entry could not be
	// activated even by the forced non-interactive fallback.
	ErrActivationFailed = errors.New("activation failed")

	// ErrNavigationTimeout is returned when the location did not change
	// within the navigation timeout. Callers fall back to a plain
	// readiness wait: some activations legitimately do not move the
	// location.
	ErrNavigationTimeout = errors.New("navigation timeout: location did not change")
)
