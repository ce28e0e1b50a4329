package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the underlying sql.DB so repositories share one handle.
type DB struct {
	*sql.DB
}

// NewConnection opens (or creates) the SQLite database at dbPath.
// Foreign keys are enabled so posting deletions cascade to interactions.
func NewConnection(dbPath string) (*DB, error) {
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY churn under concurrent handler access.
	db.SetMaxOpenConns(1)

	return &DB{db}, nil
}
