// Package ledger persists the append-only record of completed batch
// targets. A target identifier is appended only after its artifact is
// durable, and every append is synced to disk before it is reported as
// successful. On the next run the loaded set decides which targets are
// skipped, which makes batch runs resumable and idempotent.
package ledger
