package database

import (
	"path/filepath"
	"testing"
	"time"
)

// newTestDB opens a fresh migrated database in a per-test temp directory.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func testPosting(id, country string, scrapedAt *time.Time) Posting {
	return Posting{
		ID:        id,
		Title:     "Posting " + id,
		Company:   "ACME",
		Location:  country,
		Country:   country,
		JobURL:    "https://example.com/" + id,
		ScrapedAt: scrapedAt,
	}
}

func TestNewConnection(t *testing.T) {
	_, err := NewConnection("/nonexistent-dir/test.db")
	if err == nil {
		t.Error("Expected error for an unwritable database path")
	}
}

func TestRunMigrations(t *testing.T) {
	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	if dirty {
		t.Error("Expected clean migration state")
	}
	if version == 0 {
		t.Error("Expected non-zero schema version")
	}

	// Running again on a migrated database is a no-op
	again, _, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Failed to re-run migrations: %v", err)
	}
	if again != version {
		t.Errorf("Expected version %d after re-run, got %d", version, again)
	}
}
