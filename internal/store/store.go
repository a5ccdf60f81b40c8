// Package store provides SQLite-backed persistence for the pending write queue.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB with price tracker specific configuration.
type DB struct {
	*sql.DB
}

// Open opens the local SQLite database. The database is opened with WAL
// mode and a single writer, and the queue schema is created if missing.
func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "pricetrack.db")

	// modernc.org/sqlite is pure Go, no CGO.
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't support multiple writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{db}, nil
}

// initSchema creates the pending operations table. Position is the queue
// index; insertion order is retry order.
func initSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS pending_operations (
		position INTEGER PRIMARY KEY CHECK(position >= 0),
		id TEXT NOT NULL,
		kind TEXT NOT NULL CHECK(length(kind) > 0),
		payload TEXT NOT NULL,
		queued_at INTEGER NOT NULL
	);`
	_, err := db.Exec(query)
	return err
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
