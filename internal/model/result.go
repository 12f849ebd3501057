package model

import "time"

// CrawlMeta records the parameters a crawl ran with. It is copied into
// the artifact metadata so a document is self-describing.
type CrawlMeta struct {
	// RootLocator is the share link the crawl was opened at.
	RootLocator string

	// MaxDepth is the configured depth budget. Nil means unbounded.
	MaxDepth *int

	// Extensions is the case-insensitive suffix allow-list that selected
	// extractable leaves.
	Extensions []string

	// GeneratedAt is when the crawl finished, in UTC at second precision.
	GeneratedAt time.Time
}

// CrawlResult is the complete outcome of one crawl invocation.
// It owns the root node and is discarded after serialization.
type CrawlResult struct {
	// Root is the tree built from the share's starting location.
	Root *Node

	// Meta records the crawl parameters.
	Meta CrawlMeta

	// Visited is the number of distinct locations expanded.
	Visited int

	// Elapsed is the wall-clock duration of the crawl.
	Elapsed time.Duration
}
