package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/logger"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
)

// InsertFetchCall logs a feed request.
func (db *DB) InsertFetchCall(call *models.FetchCall) error {
	query := `
		INSERT INTO fetch_calls (
			timestamp, request_id, mode, drug, query_limit,
			status_code, results, duration_ms, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	timestamp := call.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := db.ExecContext(context.Background(), query,
		timestamp.UTC().Format(timestampLayout),
		nullString(call.RequestID),
		call.Mode,
		nullString(call.Drug),
		call.Limit,
		call.StatusCode,
		call.Results,
		call.DurationMs,
		nullString(call.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to insert fetch call: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		call.ID = id
	}

	return nil
}

// GetRecentFetchCalls returns the most recent fetch calls, newest first.
func (db *DB) GetRecentFetchCalls(limit int) ([]models.FetchCall, error) {
	if limit <= 0 {
		limit = DefaultRecentCalls
	}

	query := `
		SELECT id, timestamp, request_id, mode, drug, query_limit,
			   status_code, results, duration_ms, error
		FROM fetch_calls
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent fetch calls: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var calls []models.FetchCall
	for rows.Next() {
		var call models.FetchCall
		var ts string
		var reqID, drug, errStr sql.NullString

		err := rows.Scan(
			&call.ID,
			&ts,
			&reqID,
			&call.Mode,
			&drug,
			&call.Limit,
			&call.StatusCode,
			&call.Results,
			&call.DurationMs,
			&errStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fetch call: %w", err)
		}

		call.Timestamp = parseTimestamp(ts)
		call.RequestID = reqID.String
		call.Drug = drug.String
		call.Error = errStr.String
		calls = append(calls, call)
	}

	return calls, rows.Err()
}

// GetFetchStats returns aggregate statistics over the whole fetch log.
func (db *DB) GetFetchStats() (*models.FetchStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN error IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status_code = 404 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(results), 0),
			COALESCE(AVG(duration_ms), 0),
			COALESCE(MAX(timestamp), '')
		FROM fetch_calls
	`

	var stats models.FetchStats
	var last string
	err := db.QueryRowContext(context.Background(), query).Scan(
		&stats.TotalCalls,
		&stats.FailedCalls,
		&stats.NotFoundCalls,
		&stats.TotalResults,
		&stats.AvgDurationMs,
		&last,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch stats: %w", err)
	}

	stats.LastCall = parseTimestamp(last)
	return &stats, nil
}

// GetSearchedDrugs returns the drugs searched most often, ignoring case.
func (db *DB) GetSearchedDrugs(limit int) ([]models.DrugCount, error) {
	query := `
		SELECT MIN(drug), COUNT(*) AS n
		FROM fetch_calls
		WHERE mode = 'search' AND drug IS NOT NULL
		GROUP BY drug COLLATE NOCASE
		ORDER BY n DESC, MIN(id) ASC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query searched drugs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.DrugCount
	for rows.Next() {
		var dc models.DrugCount
		if err := rows.Scan(&dc.Drug, &dc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan searched drug: %w", err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// PruneFetchCalls keeps only the newest keep rows and returns how many were
// deleted.
func (db *DB) PruneFetchCalls(keep int) (int64, error) {
	query := `
		DELETE FROM fetch_calls
		WHERE id NOT IN (
			SELECT id FROM fetch_calls ORDER BY timestamp DESC, id DESC LIMIT ?
		)
	`
	result, err := db.ExecContext(context.Background(), query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune fetch calls: %w", err)
	}
	return result.RowsAffected()
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString converts an empty string to sql.NullString.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
