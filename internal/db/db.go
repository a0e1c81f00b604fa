// Package db keeps the fetch log: one row per request made to the event
// feed, in SQLite.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// MemoryPath opens a database that lives only as long as the process.
const MemoryPath = ":memory:"

// DB wraps the SQL database connection with fetch log queries.
type DB struct {
	*sql.DB
	path string
}

// New opens the database at path, creating its directory and schema as
// needed. An empty path means MemoryPath.
func New(path string) (*DB, error) {
	if path == "" {
		path = MemoryPath
	}
	db := &DB{path: path}

	if !db.InMemory() {
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.DB = sqlDB

	// Every pooled connection to :memory: would see its own empty database.
	if db.InMemory() {
		sqlDB.SetMaxOpenConns(1)
	}

	steps := []struct {
		what string
		run  func() error
	}{
		{"connect to database", func() error { return sqlDB.PingContext(context.Background()) }},
		{"configure database", db.configure},
		{"create schema", db.migrate},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to %s: %w", step.what, err)
		}
	}

	return db, nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// InMemory reports whether the database is discarded on exit.
func (db *DB) InMemory() bool {
	return db.path == MemoryPath
}

func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	if !db.InMemory() {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}

// Compact trims a file-backed fetch log to its newest keep rows and
// reclaims the freed space. In-memory logs are left alone.
func (db *DB) Compact(keep int) error {
	if db.InMemory() {
		return nil
	}
	n, err := db.PruneFetchCalls(keep)
	if err != nil || n == 0 {
		return err
	}
	if _, err := db.ExecContext(context.Background(), "VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

// Close checkpoints the WAL of file-backed databases and closes the
// connection.
func (db *DB) Close() error {
	if !db.InMemory() {
		_, _ = db.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	}
	return db.DB.Close()
}
