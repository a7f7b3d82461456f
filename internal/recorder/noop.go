package recorder

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "PropertyProspector/internal/errors"
	"PropertyProspector/internal/model"
)

// NoopStore is used when no database is configured. Nothing is retained.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Save(_ context.Context, result model.PropertyAnalysisResult) (string, error) {
	if result.ID == "" {
		return uuid.NewString(), nil
	}
	return result.ID, nil
}

func (n *NoopStore) Load(_ context.Context, id string) (*model.PropertyAnalysisResult, error) {
	return nil, apperrors.NewNotFoundError(id)
}

func (n *NoopStore) ListByUser(_ context.Context, _ string) ([]model.AnalysisSummary, error) {
	return nil, nil
}

func (n *NoopStore) SetFavorite(_ context.Context, id string, _ bool) error {
	return apperrors.NewNotFoundError(id)
}

func (n *NoopStore) SetNotes(_ context.Context, id string, _ string) error {
	return apperrors.NewNotFoundError(id)
}

func (n *NoopStore) SetStatus(_ context.Context, id string, _ model.AnalysisStatus) error {
	return apperrors.NewNotFoundError(id)
}

func (n *NoopStore) ArchiveStale(_ context.Context, _ time.Time) (int, error) { return 0, nil }
func (n *NoopStore) Close() error                                             { return nil }
