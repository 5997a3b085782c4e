// Package registry provides a SQLite-backed record of every ingestion
// attempt: which file went into which knowledge base, how many chunks it
// produced, and whether it succeeded. The registry is bookkeeping only — the
// vector index and object store remain the sources of truth for content.
package registry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Entry is one recorded ingestion attempt.
type Entry struct {
	// IndexName is the knowledge base the file was ingested into.
	IndexName string `json:"index_name"`
	// Filename is the client-declared filename.
	Filename string `json:"filename"`
	// FileKey is the object-storage key, empty when the file was rejected
	// before upload.
	FileKey string `json:"filekey,omitempty"`
	// SourceKind is "chunk" for documents, "caption" for images.
	SourceKind string `json:"source_kind"`
	// Chunks is the number of vectors upserted for this file.
	Chunks int `json:"chunks"`
	// Status is the per-file ingestion outcome.
	Status string `json:"status"`
	// CreatedAt is when the attempt was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// Registry persists and lists ingestion attempts. Implementations must be
// safe for concurrent use.
type Registry interface {
	// Record persists a single ingestion attempt.
	Record(ctx context.Context, indexName, filename, fileKey, sourceKind string, chunks int, status string) error
	// Recent returns the most recent n attempts across all indexes,
	// newest-first. If fewer than n exist, all are returned.
	Recent(ctx context.Context, n int) ([]Entry, error)
	// Close releases any resources held by the registry.
	Close() error
}

// SQLiteRegistry is a Registry backed by a local SQLite database.
type SQLiteRegistry struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the ingestion registry database.
// It resolves to ~/.askdocs/registry.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("registry: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".askdocs")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("registry: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "registry.db"), nil
}

// Open opens (or creates) a SQLiteRegistry at the given path and runs the
// schema migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteRegistry, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("registry: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	r := &SQLiteRegistry{db: db}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// migrate creates the schema if it does not already exist.
func (r *SQLiteRegistry) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS ingestions (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    index_name   TEXT    NOT NULL,
    filename     TEXT    NOT NULL,
    filekey      TEXT    NOT NULL DEFAULT '',
    source_kind  TEXT    NOT NULL CHECK(source_kind IN ('chunk','caption')),
    chunks       INTEGER NOT NULL DEFAULT 0,
    status       TEXT    NOT NULL,
    created_at   INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_ingestions_created
    ON ingestions (created_at);
CREATE INDEX IF NOT EXISTS idx_ingestions_index_created
    ON ingestions (index_name, created_at);
`
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("registry: migrate: %w", err)
	}
	return nil
}

// Record persists a single ingestion attempt.
func (r *SQLiteRegistry) Record(ctx context.Context, indexName, filename, fileKey, sourceKind string, chunks int, status string) error {
	const q = `INSERT INTO ingestions (index_name, filename, filekey, source_kind, chunks, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, indexName, filename, fileKey, sourceKind, chunks, status, time.Now().Unix()); err != nil {
		return fmt.Errorf("registry: record: %w", err)
	}
	return nil
}

// Recent returns the most recent n attempts across all indexes, newest-first.
func (r *SQLiteRegistry) Recent(ctx context.Context, n int) ([]Entry, error) {
	const q = `
SELECT index_name, filename, filekey, source_kind, chunks, status, created_at
FROM   ingestions
ORDER  BY created_at DESC, id DESC
LIMIT  ?`

	rows, err := r.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("registry: recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.IndexName, &e.Filename, &e.FileKey, &e.SourceKind, &e.Chunks, &e.Status, &ts); err != nil {
			return nil, fmt.Errorf("registry: recent scan: %w", err)
		}
		e.CreatedAt = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("registry: recent rows: %w", err)
	}
	return entries, nil
}

// Close releases the database connection pool.
func (r *SQLiteRegistry) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("registry: close: %w", err)
	}
	return nil
}
