// Package batch runs resumable multi-target crawls. Each target from
// the CSV target list is crawled on its own navigation session, in
// source order, with an append-only ledger deciding what a rerun
// skips. One target's failure never stops the batch; only a ledger
// that cannot be written does.
package batch
