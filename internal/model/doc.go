// Package model defines the core data structures shared across sharecrawl.
//
// The central type is Node, the in-memory tree built from one crawl of a
// remote share. Nodes exist only for the duration of a single crawl
// invocation; durable output is produced by the report package from a
// finished tree.
//
// EntryKind distinguishes the two kinds of raw listing rows.
// Target and BatchSummary carry batch bookkeeping for the orchestrator.
package model
