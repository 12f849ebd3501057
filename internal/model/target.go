package model

// Target is one independent root to crawl, taken from the external
// target list. The orchestrator treats targets in source order and in
// isolation: one target's failure never affects another.
type Target struct {
	// ID is the stable identifier used for ledger membership and for
	// deriving the artifact file name.
	ID string

	// Locator is the share link to open the navigation session at.
	Locator string
}

// Target outcome statuses reported per batch row.
const (
	// StatusSucceeded marks a target crawled and recorded this run.
	StatusSucceeded = "succeeded"

	// StatusFailed marks a target whose crawl raised an error.
	StatusFailed = "failed"

	// StatusSkipped marks a target already present in the ledger.
	StatusSkipped = "skipped"
)

// TargetOutcome records how one batch row ended, for summary reporting.
type TargetOutcome struct {
	// ID is the target identifier.
	ID string

	// Status is one of the Status constants.
	Status string

	// Detail carries the error text for failed targets.
	Detail string
}

// BatchSummary counts the outcomes of one batch run.
type BatchSummary struct {
	// Total is the number of target rows iterated.
	Total int

	// Succeeded is the number of targets crawled and recorded this run.
	Succeeded int

	// Failed is the number of targets whose crawl raised an error.
	Failed int

	// Skipped is the number of targets already present in the ledger.
	Skipped int

	// Interrupted reports whether the run was stopped by the user before
	// the target list was exhausted.
	Interrupted bool
}
