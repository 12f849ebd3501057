package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Package-level sentinels let callers branch with errors.Is while still
// carrying a human-readable message.
var (
	// ErrInvalidTimeout is returned when a wait bound is not positive.
	// A zero timeout would fail every readiness poll immediately.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetries is returned when the click retry count is below
	// one. At least one interactive attempt must happen before the
	// forced activation fallback.
	ErrInvalidRetries = errors.New("invalid retry count: must be at least 1")

	// ErrInvalidPacingDelay is returned when the pacing delay is
	// negative. Use 0 for no delay between targets.
	ErrInvalidPacingDelay = errors.New("invalid pacing delay: must be non-negative")

	// ErrNoExtensions is returned when the extension allow-list is empty.
	// An empty list would make every crawl produce zero resources.
	ErrNoExtensions = errors.New("no extensions: allow-list must name at least one suffix")
)
