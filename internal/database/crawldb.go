package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nholik/sharecrawl/internal/report"
)

// dbFileName is the database file created inside the configured directory.
const dbFileName = "sharecrawl.db"

// CrawlDB provides SQLite-based storage for crawl artifacts. Every
// successful crawl of a target appends one artifact row, so the history
// of a target accumulates across batch runs.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB inside the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an
// error is returned instead of creating an empty one.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Artifacts store one complete crawl document per successful target run
	CREATE TABLE IF NOT EXISTS artifacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target_id TEXT NOT NULL,
		root_url TEXT NOT NULL,
		max_depth INTEGER,
		folder_count INTEGER NOT NULL,
		file_count INTEGER NOT NULL,
		generated_at TEXT NOT NULL,
		stored_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		document TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_artifacts_target ON artifacts(target_id);
	CREATE INDEX IF NOT EXISTS idx_artifacts_stored ON artifacts(stored_at);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveArtifact stores a crawl document for a target. Repeated saves for
// the same target append history rows rather than replacing earlier ones.
func (cdb *CrawlDB) SaveArtifact(ctx context.Context, targetID string, doc *report.Document) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	folders, files := 0, 0
	if doc.Tree != nil {
		folders = doc.Tree.NodeCount()
		files = doc.Tree.LeafCount()
	}

	var maxDepth sql.NullInt64
	if doc.Meta.MaxDepth != nil {
		maxDepth = sql.NullInt64{Int64: int64(*doc.Meta.MaxDepth), Valid: true}
	}

	query := `
	INSERT INTO artifacts (target_id, root_url, max_depth, folder_count, file_count, generated_at, document)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = cdb.db.ExecContext(ctx, query,
		targetID,
		doc.Meta.RootLocator,
		maxDepth,
		folders,
		files,
		doc.Meta.GeneratedAt,
		string(docJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact: %w", err)
	}

	return nil
}

// GetLatestArtifact retrieves the most recent stored document for a
// target. It returns nil without error when the target has no history.
func (cdb *CrawlDB) GetLatestArtifact(ctx context.Context, targetID string) (*report.Document, error) {
	query := `
	SELECT document FROM artifacts
	WHERE target_id = ?
	ORDER BY id DESC
	LIMIT 1
	`

	var docJSON string
	err := cdb.db.QueryRowContext(ctx, query, targetID).Scan(&docJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}

	var doc report.Document
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse artifact: %w", err)
	}

	return &doc, nil
}

// ListTargets returns the distinct target identifiers with stored history.
func (cdb *CrawlDB) ListTargets(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT target_id FROM artifacts
	ORDER BY target_id
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, target)
	}

	return targets, rows.Err()
}

// ArtifactMetadata summarizes one stored artifact without its document
// body. It is used for displaying history without loading full trees.
type ArtifactMetadata struct {
	// ID is the unique identifier of the artifact row.
	ID int64

	// TargetID is the batch target the artifact belongs to.
	TargetID string

	// RootLocator is the share link the crawl started from.
	RootLocator string

	// MaxDepth is the depth budget the crawl ran with; nil means unbounded.
	MaxDepth *int

	// FolderCount and FileCount are the tree sizes at crawl time.
	FolderCount int
	FileCount   int

	// GeneratedAt is when the crawl finished.
	GeneratedAt time.Time

	// StoredAt is when the artifact row was written.
	StoredAt time.Time
}

// History retrieves artifact metadata for a target, newest first.
func (cdb *CrawlDB) History(ctx context.Context, targetID string) ([]ArtifactMetadata, error) {
	query := `
	SELECT id, target_id, root_url, max_depth, folder_count, file_count, generated_at, stored_at
	FROM artifacts
	WHERE target_id = ?
	ORDER BY id DESC
	`

	rows, err := cdb.db.QueryContext(ctx, query, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact history: %w", err)
	}
	defer rows.Close()

	return scanMetadata(rows)
}

// AllHistory retrieves artifact metadata for every target, newest first.
func (cdb *CrawlDB) AllHistory(ctx context.Context) ([]ArtifactMetadata, error) {
	query := `
	SELECT id, target_id, root_url, max_depth, folder_count, file_count, generated_at, stored_at
	FROM artifacts
	ORDER BY id DESC
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact history: %w", err)
	}
	defer rows.Close()

	return scanMetadata(rows)
}

// scanMetadata materializes metadata rows from a history query.
func scanMetadata(rows *sql.Rows) ([]ArtifactMetadata, error) {
	var results []ArtifactMetadata
	for rows.Next() {
		var meta ArtifactMetadata
		var maxDepth sql.NullInt64
		var generatedAt, storedAt string

		err := rows.Scan(
			&meta.ID,
			&meta.TargetID,
			&meta.RootLocator,
			&maxDepth,
			&meta.FolderCount,
			&meta.FileCount,
			&generatedAt,
			&storedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		if maxDepth.Valid {
			depth := int(maxDepth.Int64)
			meta.MaxDepth = &depth
		}
		meta.GeneratedAt = parseTimestamp(generatedAt)
		meta.StoredAt = parseTimestamp(storedAt)

		results = append(results, meta)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending
// on configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
