package analysisports

import (
	"context"
	"time"
)

// HistoryRecord is one persisted analysis outcome.
type HistoryRecord struct {
	ID        string
	SourceURL string
	Title     string
	Result    []byte // marshaled team.Analysis
	CreatedAt time.Time
}

// HistoryStore persists finished analyses for later inspection. Saving is
// best-effort from the pipeline's point of view; a store failure never
// fails an analysis.
type HistoryStore interface {
	SaveAnalysis(ctx context.Context, rec HistoryRecord) error
	// ListRecent returns up to k records, most recent first.
	ListRecent(ctx context.Context, k int) ([]HistoryRecord, error)
}
