// Package database provides SQLite-based persistence for crawl
// artifacts. The JSON files under the output directory remain the
// primary deliverable; the database adds queryable per-target history
// across batch runs, accessed through the history command.
package database
