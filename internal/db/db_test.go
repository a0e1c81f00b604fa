package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
)

func TestNew_Locations(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		path   string
		memory bool
	}{
		{"File", filepath.Join(dir, "fetch.db"), false},
		{"NestedFile", filepath.Join(dir, "a", "b", "fetch.db"), false},
		{"Memory", MemoryPath, true},
		{"EmptyMeansMemory", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := New(tt.path)
			if err != nil {
				t.Fatalf("New(%q) error = %v", tt.path, err)
			}
			t.Cleanup(func() { _ = db.Close() })

			if db.InMemory() != tt.memory {
				t.Errorf("InMemory() = %v, want %v", db.InMemory(), tt.memory)
			}
			if !tt.memory {
				if db.Path() != tt.path {
					t.Errorf("Path() = %q, want %q", db.Path(), tt.path)
				}
				if _, err := os.Stat(tt.path); err != nil {
					t.Errorf("database file missing: %v", err)
				}
			}
			// Queries must see the schema, including on the single
			// in-memory connection.
			if _, err := db.GetFetchStats(); err != nil {
				t.Errorf("GetFetchStats() error = %v", err)
			}
		})
	}
}

func TestNew_ReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fetch.db")

	for attempt := range 2 {
		db, err := New(path)
		if err != nil {
			t.Fatalf("open #%d: %v", attempt+1, err)
		}
		var table string
		if err := db.QueryRowContext(context.Background(),
			"SELECT name FROM sqlite_master WHERE type='table' AND name='fetch_calls'").Scan(&table); err != nil {
			t.Errorf("open #%d: fetch_calls missing: %v", attempt+1, err)
		}
		v, err := db.SchemaVersion()
		if err != nil || v != len(migrations) {
			t.Errorf("open #%d: SchemaVersion() = %d, %v; want %d", attempt+1, v, err, len(migrations))
		}
		if err := db.Close(); err != nil {
			t.Errorf("open #%d: Close() = %v", attempt+1, err)
		}
	}
}

func TestCompact(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	for i := range 5 {
		call := &models.FetchCall{Timestamp: time.Now().Add(time.Duration(i) * time.Second), Mode: "top", StatusCode: 200}
		if err := db.InsertFetchCall(call); err != nil {
			t.Fatalf("InsertFetchCall failed: %v", err)
		}
	}

	if err := db.Compact(2); err != nil {
		t.Fatalf("Compact failed: %v", err)
	}
	calls, err := db.GetRecentFetchCalls(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 {
		t.Errorf("rows after Compact = %d, want 2", len(calls))
	}

	// Nothing left to prune.
	if err := db.Compact(2); err != nil {
		t.Errorf("second Compact failed: %v", err)
	}
}

func TestCompact_Memory(t *testing.T) {
	db, err := New(MemoryPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := db.InsertFetchCall(&models.FetchCall{Timestamp: time.Now(), Mode: "top"}); err != nil {
		t.Fatal(err)
	}
	if err := db.Compact(0); err != nil {
		t.Fatal(err)
	}
	if calls, _ := db.GetRecentFetchCalls(10); len(calls) != 1 {
		t.Errorf("in-memory log should not be compacted, got %d rows", len(calls))
	}
}

// newTestDB opens a file database in a fresh temp directory.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "fetch.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return db
}
