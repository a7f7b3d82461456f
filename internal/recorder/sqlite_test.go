package recorder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "PropertyProspector/internal/errors"
	"PropertyProspector/internal/model"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
func newClock() *fakeClock                   { return &fakeClock{t: baseTime} }

func openTestStore(t *testing.T) (*SQLiteStore, *fakeClock) {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "analyses.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	clock := newClock()
	s.now = clock.Now
	return s, clock
}

func sampleResult(id, user string) model.PropertyAnalysisResult {
	return model.PropertyAnalysisResult{
		ID:     id,
		UserID: user,
		Attributes: model.PropertyAttributes{
			Size:     200,
			Stories:  2,
			Usage:    "Residential - Duplex",
			Location: "Lekki",
		},
		Valuation: model.ValuationResult{CurrentValue: 49_075_000, MarketValue: 56_436_250},
		Category:  model.IdentifiedCategory{Label: "building", Category: model.CategoryResidential, Confidence: 0.9},
		Prospects: []model.ProspectInstance{
			{Rank: 1, TemplateID: "res-short-let", Title: "Short-Let Apartments", ExpectedROI: 18.5},
		},
		CatalogVersion: "2024.06-1",
	}
}

func TestSQLiteStore_SaveAndLoad(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, sampleResult("a-1", "user-1"))
	require.NoError(t, err)
	assert.Equal(t, "a-1", id)

	got, err := s.Load(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, 49_075_000.0, got.Valuation.CurrentValue)
	require.Len(t, got.Prospects, 1)
	assert.Equal(t, "res-short-let", got.Prospects[0].TemplateID)
	assert.True(t, got.CreatedAt.Equal(baseTime))
}

func TestSQLiteStore_SaveGeneratesID(t *testing.T) {
	s, _ := openTestStore(t)

	id, err := s.Save(context.Background(), sampleResult("", "user-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = s.Load(context.Background(), id)
	assert.NoError(t, err)
}

func TestSQLiteStore_SaveIsIdempotentUpsert(t *testing.T) {
	s, clock := openTestStore(t)
	ctx := context.Background()

	r := sampleResult("a-1", "user-1")
	_, err := s.Save(ctx, r)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	r.Notes = "second save"
	_, err = s.Save(ctx, r)
	require.NoError(t, err)

	list, err := s.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "second save", list[0].Notes)
	assert.True(t, list[0].CreatedAt.Equal(baseTime))
	assert.True(t, list[0].UpdatedAt.Equal(baseTime.Add(time.Hour)))
}

func TestSQLiteStore_LoadMissing(t *testing.T) {
	s, _ := openTestStore(t)

	_, err := s.Load(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestSQLiteStore_ListByUserNewestFirst(t *testing.T) {
	s, clock := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"old", "mid", "new"} {
		_, err := s.Save(ctx, sampleResult(id, "user-1"))
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}
	_, err := s.Save(ctx, sampleResult("other", "user-2"))
	require.NoError(t, err)

	list, err := s.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[2].ID)
	assert.Equal(t, model.CategoryResidential, list[0].Category)
	assert.Equal(t, 49_075_000.0, list[0].CurrentValue)
}

func TestSQLiteStore_Mutations(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, sampleResult("a-1", "user-1"))
	require.NoError(t, err)

	require.NoError(t, s.SetFavorite(ctx, "a-1", true))
	require.NoError(t, s.SetNotes(ctx, "a-1", "call the agent"))
	require.NoError(t, s.SetStatus(ctx, "a-1", model.StatusDraft))

	got, err := s.Load(ctx, "a-1")
	require.NoError(t, err)
	assert.True(t, got.Favorite)
	assert.Equal(t, "call the agent", got.Notes)
	assert.Equal(t, model.StatusDraft, got.Status)

	err = s.SetStatus(ctx, "a-1", "deleted")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	assert.True(t, errors.Is(s.SetFavorite(ctx, "missing", true), apperrors.ErrNotFound))
	assert.True(t, errors.Is(s.SetNotes(ctx, "missing", "x"), apperrors.ErrNotFound))
}

func TestSQLiteStore_ArchiveStaleSkipsFavorites(t *testing.T) {
	s, clock := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "fav"} {
		_, err := s.Save(ctx, sampleResult(id, "user-1"))
		require.NoError(t, err)
	}
	require.NoError(t, s.SetFavorite(ctx, "fav", true))

	clock.Advance(100 * 24 * time.Hour)
	_, err := s.Save(ctx, sampleResult("fresh", "user-1"))
	require.NoError(t, err)

	cutoff := clock.Now().Add(-90 * 24 * time.Hour)
	n, err := s.ArchiveStale(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for id, want := range map[string]model.AnalysisStatus{
		"a":     model.StatusArchived,
		"b":     model.StatusArchived,
		"fav":   model.StatusCompleted,
		"fresh": model.StatusCompleted,
	} {
		got, err := s.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status, id)
	}

	n, err = s.ArchiveStale(ctx, cutoff)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNoopStore(t *testing.T) {
	n := NewNoopStore()
	ctx := context.Background()

	id, err := n.Save(ctx, sampleResult("x", ""))
	require.NoError(t, err)
	assert.Equal(t, "x", id)

	id, err = n.Save(ctx, model.PropertyAnalysisResult{})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = n.Load(ctx, "x")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	count, err := n.ArchiveStale(ctx, time.Now())
	assert.NoError(t, err)
	assert.Zero(t, count)
}

func TestSQLiteStore_MigrateReportsShortStatement(t *testing.T) {
	s, _ := openTestStore(t)

	err := s.migrate([]string{"BOGUS"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"BOGUS"`)
}
