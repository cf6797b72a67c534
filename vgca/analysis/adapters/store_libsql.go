package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	ports "github.com/ZanzyTHEbar/vgc-analyzer/vgca/analysis/ports"
)

// storedTimeLayout is RFC 3339 with a fixed-width fraction. RFC3339Nano
// trims trailing zeros, which breaks lexicographic ordering on second
// boundaries.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// LibSQLHistoryStore implements HistoryStore on a LibSQL database.
type LibSQLHistoryStore struct {
	db *sql.DB
}

// NewLibSQLHistoryStore creates a new LibSQL history store.
func NewLibSQLHistoryStore(db *sql.DB) *LibSQLHistoryStore {
	return &LibSQLHistoryStore{
		db: db,
	}
}

// SaveAnalysis records a completed analysis. Replaying the same ID
// overwrites the previous row. Timestamps are stored as RFC 3339 UTC text
// so their lexicographic order matches chronological order.
func (s *LibSQLHistoryStore) SaveAnalysis(ctx context.Context, rec ports.HistoryRecord) error {
	query := `
		INSERT OR REPLACE INTO analysis_history (id, source_url, title, result_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	createdAt := rec.CreatedAt.UTC().Format(storedTimeLayout)
	_, err := s.db.ExecContext(ctx, query, rec.ID, rec.SourceURL, rec.Title, string(rec.Result), createdAt)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	return nil
}

// ListRecent returns the last k analyses, newest first.
func (s *LibSQLHistoryStore) ListRecent(ctx context.Context, k int) ([]ports.HistoryRecord, error) {
	query := `
		SELECT id, source_url, title, result_json, created_at FROM analysis_history
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []ports.HistoryRecord
	for rows.Next() {
		var rec ports.HistoryRecord
		var result, createdAt string
		if err := rows.Scan(&rec.ID, &rec.SourceURL, &rec.Title, &result, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		rec.Result = []byte(result)
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return records, nil
}

// Ensure LibSQLHistoryStore implements the HistoryStore interface.
var _ ports.HistoryStore = (*LibSQLHistoryStore)(nil)
