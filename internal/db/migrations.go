package db

import (
	"context"
	"fmt"
)

// migrations are applied in order; the index+1 is stored in user_version.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS fetch_calls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		request_id TEXT,
		mode TEXT NOT NULL,
		drug TEXT,
		query_limit INTEGER NOT NULL DEFAULT 0,
		status_code INTEGER NOT NULL DEFAULT 0,
		results INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_fetch_calls_timestamp ON fetch_calls(timestamp);`,
	`CREATE INDEX IF NOT EXISTS idx_fetch_calls_drug ON fetch_calls(drug COLLATE NOCASE);`,
}

// SchemaVersion returns the applied schema version.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	if err := db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// migrate brings the schema up to date.
func (db *DB) migrate() error {
	current, err := db.SchemaVersion()
	if err != nil {
		return err
	}

	for i := current; i < len(migrations); i++ {
		if _, err := db.ExecContext(context.Background(), migrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		// PRAGMA does not accept bind parameters.
		if _, err := db.ExecContext(context.Background(), fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("failed to record schema version %d: %w", i+1, err)
		}
	}
	return nil
}
