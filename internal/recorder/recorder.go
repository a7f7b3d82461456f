package recorder

import (
	"context"
	"time"

	"PropertyProspector/internal/model"
)

// Store persists completed analyses and their user-editable metadata.
type Store interface {
	// Save upserts the analysis keyed by its id and returns the id.
	Save(ctx context.Context, result model.PropertyAnalysisResult) (string, error)
	// Load returns ANALYSIS_NOT_FOUND for unknown ids.
	Load(ctx context.Context, id string) (*model.PropertyAnalysisResult, error)
	// ListByUser returns summaries, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.AnalysisSummary, error)
	SetFavorite(ctx context.Context, id string, favorite bool) error
	SetNotes(ctx context.Context, id string, notes string) error
	SetStatus(ctx context.Context, id string, status model.AnalysisStatus) error
	// ArchiveStale archives non-favorite analyses not updated since olderThan.
	ArchiveStale(ctx context.Context, olderThan time.Time) (int, error)
	Close() error
}
