package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"PropertyProspector/internal/classifier"
	apperrors "PropertyProspector/internal/errors"
	"PropertyProspector/internal/model"
	"PropertyProspector/internal/prospect"
	"PropertyProspector/internal/recorder"
	"PropertyProspector/internal/rng"
)

func lekkiFamilyHome() model.PropertyAttributes {
	return model.PropertyAttributes{
		Size:      150,
		Usage:     "Residential - Family Home",
		Location:  "Lekki Phase 1",
		Amenities: []string{"Swimming Pool", "Generator/Backup Power"},
		Stories:   2,
	}
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Random == nil {
		opts.Random = rng.NewFactory(42)
	}
	opts.Logger = zaptest.NewLogger(t)
	e, err := New(opts)
	require.NoError(t, err)
	return e
}

// blockingClassifier never answers and ignores its context.
type blockingClassifier struct{ release chan struct{} }

func (b *blockingClassifier) Name() string { return "blocking" }
func (b *blockingClassifier) Classify(_ context.Context, _ []byte) ([]classifier.Prediction, error) {
	<-b.release
	return nil, nil
}

type failingStore struct{ *recorder.NoopStore }

func (failingStore) Save(context.Context, model.PropertyAnalysisResult) (string, error) {
	return "", apperrors.NewPersistenceError("save", errors.New("disk full"))
}

func warningCodes(ws []model.Warning) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Code
	}
	return out
}

func TestRunFullAnalysis_EndToEnd(t *testing.T) {
	e := newTestEngine(t, Options{})

	res, err := e.RunFullAnalysis(context.Background(), AnalysisRequest{UserID: "u-1", Attributes: lekkiFamilyHome()})
	require.NoError(t, err)

	_, err = uuid.Parse(res.ID)
	assert.NoError(t, err)
	assert.Equal(t, "u-1", res.UserID)
	assert.Equal(t, 49_075_000.0, res.Valuation.CurrentValue)
	assert.Equal(t, 56_436_250.0, res.Valuation.MarketValue)
	assert.Equal(t, model.CategoryResidential, res.Category.Category)
	assert.Equal(t, "usage", res.Category.Source)
	assert.False(t, res.Rejected)
	assert.Equal(t, model.StatusCompleted, res.Status)
	assert.NotEmpty(t, res.CatalogVersion)

	require.Len(t, res.Prospects, 5)
	for i, p := range res.Prospects {
		assert.Equal(t, i+1, p.Rank)
		assert.Equal(t, model.CategoryResidential, p.Category)
		if i > 0 {
			assert.GreaterOrEqual(t, res.Prospects[i-1].ExpectedROI, p.ExpectedROI)
		}
	}
}

func TestRunFullAnalysis_ImageClassified(t *testing.T) {
	e := newTestEngine(t, Options{Classifier: &classifier.StaticClassifier{
		Predictions: []classifier.Prediction{{Label: "Warehouse", Confidence: 0.81}, {Label: "house", Confidence: 0.1}},
	}})

	attrs := lekkiFamilyHome()
	attrs.Size = 2000
	res, err := e.RunFullAnalysis(context.Background(), AnalysisRequest{Attributes: attrs, Image: []byte{0xff, 0xd8}})
	require.NoError(t, err)

	assert.Equal(t, model.CategoryIndustrial, res.Category.Category)
	assert.Equal(t, "classifier", res.Category.Source)
	assert.InDelta(t, 0.81, res.Category.Confidence, 1e-9)
	require.Len(t, res.Prospects, 5)
	for _, p := range res.Prospects {
		assert.Equal(t, model.CategoryIndustrial, p.Category)
	}
}

func TestRunFullAnalysis_RejectedImage(t *testing.T) {
	e := newTestEngine(t, Options{Classifier: &classifier.StaticClassifier{
		Predictions: []classifier.Prediction{{Label: "human", Confidence: 0.99}},
	}})

	for _, size := range []float64{0, 150, 10_000} {
		attrs := lekkiFamilyHome()
		attrs.Size = size
		res, err := e.RunFullAnalysis(context.Background(), AnalysisRequest{Attributes: attrs, Image: []byte("selfie")})
		require.NoError(t, err)

		assert.True(t, res.Rejected)
		assert.NotNil(t, res.Prospects)
		assert.Empty(t, res.Prospects)
		assert.Contains(t, warningCodes(res.Warnings), string(apperrors.ErrCodeImageRejected))
	}
}

func TestRunFullAnalysis_ClassifierErrorFallsBack(t *testing.T) {
	e := newTestEngine(t, Options{Classifier: &classifier.StaticClassifier{Err: errors.New("connection refused")}})

	res, err := e.RunFullAnalysis(context.Background(), AnalysisRequest{Attributes: lekkiFamilyHome(), Image: []byte("img")})
	require.NoError(t, err)

	assert.Equal(t, classifier.DefaultLabel, res.Category.Label)
	assert.Equal(t, model.CategoryResidential, res.Category.Category)
	assert.True(t, res.Category.Fallback)
	assert.Len(t, res.Prospects, 5)
	assert.Contains(t, warningCodes(res.Warnings), string(apperrors.ErrCodeClassificationUnavailable))
}

func TestRunFullAnalysis_ClassifierTimeoutFallsBack(t *testing.T) {
	bc := &blockingClassifier{release: make(chan struct{})}
	defer close(bc.release)
	e := newTestEngine(t, Options{Classifier: bc, ClassifierTimeout: 20 * time.Millisecond})

	start := time.Now()
	res, err := e.RunFullAnalysis(context.Background(), AnalysisRequest{Attributes: lekkiFamilyHome(), Image: []byte("img")})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, model.CategoryResidential, res.Category.Category)
	assert.Len(t, res.Prospects, 5)
	assert.Contains(t, warningCodes(res.Warnings), string(apperrors.ErrCodeClassificationUnavailable))
}

func TestRunFullAnalysis_NoClassifierConfigured(t *testing.T) {
	e := newTestEngine(t, Options{})

	res, err := e.RunFullAnalysis(context.Background(), AnalysisRequest{Attributes: lekkiFamilyHome(), Image: []byte("img")})
	require.NoError(t, err)
	assert.Equal(t, "default", res.Category.Source)
	assert.Len(t, res.Prospects, 5)
}

func TestRunFullAnalysis_ManualCategory(t *testing.T) {
	e := newTestEngine(t, Options{})

	attrs := lekkiFamilyHome()
	attrs.Category = model.CategoryCommercial
	res, err := e.RunFullAnalysis(context.Background(), AnalysisRequest{Attributes: attrs})
	require.NoError(t, err)
	assert.Equal(t, model.CategoryCommercial, res.Category.Category)
	assert.Equal(t, "manual", res.Category.Source)
}

func TestRunFullAnalysis_InvalidAttributes(t *testing.T) {
	e := newTestEngine(t, Options{})

	attrs := lekkiFamilyHome()
	attrs.Size = -10
	res, err := e.RunFullAnalysis(context.Background(), AnalysisRequest{Attributes: attrs})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestAnalyze_RejectsAttributesThatOverflow(t *testing.T) {
	store, err := recorder.NewSQLiteStore(filepath.Join(t.TempDir(), "overflow.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	e := newTestEngine(t, Options{Store: store})

	attrs := model.PropertyAttributes{Size: 1e304, Usage: "Residential - Apartment", Location: "Ikoyi"}
	res, err := e.Analyze(context.Background(), AnalysisRequest{Attributes: attrs})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.False(t, errors.Is(err, apperrors.ErrPersistence))
}

func TestRunFullAnalysis_UnknownManualCategory(t *testing.T) {
	e := newTestEngine(t, Options{})

	attrs := lekkiFamilyHome()
	attrs.Category = "castle"
	res, err := e.RunFullAnalysis(context.Background(), AnalysisRequest{Attributes: attrs})
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestIdentify_UnknownManualCategoryWarns(t *testing.T) {
	e := newTestEngine(t, Options{})

	id, warnings := e.Identify(context.Background(), nil, model.PropertyAttributes{Usage: "Commercial - Office", Category: "castle"})
	assert.Equal(t, model.CategoryCommercial, id.Category)
	assert.Equal(t, []string{string(apperrors.ErrCodeValidationFailed)}, warningCodes(warnings))
}

func TestRunFullAnalysis_Cancelled(t *testing.T) {
	e := newTestEngine(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := e.RunFullAnalysis(ctx, AnalysisRequest{Attributes: lekkiFamilyHome()})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunFullAnalysis_PaddingWarning(t *testing.T) {
	e := newTestEngine(t, Options{})

	attrs := model.PropertyAttributes{Usage: "Mixed Use", Location: "Yaba"}
	res, err := e.RunFullAnalysis(context.Background(), AnalysisRequest{Attributes: attrs})
	require.NoError(t, err)

	assert.Equal(t, model.CategoryMixedUse, res.Category.Category)
	require.Len(t, res.Prospects, 5)
	assert.Contains(t, warningCodes(res.Warnings), string(apperrors.ErrCodeCatalogMiss))
}

func TestRunFullAnalysis_AllCategories(t *testing.T) {
	e := newTestEngine(t, Options{Random: rng.NewFactory(0)})

	seen := map[model.Category]bool{}
	for i := 0; i < 30; i++ {
		res, err := e.RunFullAnalysis(context.Background(), AnalysisRequest{Attributes: lekkiFamilyHome(), AllCategories: true})
		require.NoError(t, err)
		require.Len(t, res.Prospects, 5)
		for _, p := range res.Prospects {
			seen[p.Category] = true
		}
	}
	assert.Greater(t, len(seen), 1)
}

func TestRunFullAnalysis_SeededIsReproducible(t *testing.T) {
	a := newTestEngine(t, Options{Random: rng.NewFactory(7)})
	b := newTestEngine(t, Options{Random: rng.NewFactory(7)})

	ra, err := a.RunFullAnalysis(context.Background(), AnalysisRequest{Attributes: lekkiFamilyHome()})
	require.NoError(t, err)
	rb, err := b.RunFullAnalysis(context.Background(), AnalysisRequest{Attributes: lekkiFamilyHome()})
	require.NoError(t, err)

	assert.Equal(t, ra.Valuation, rb.Valuation)
	assert.Equal(t, ra.Prospects, rb.Prospects)
	assert.NotEqual(t, ra.ID, rb.ID)
}

func TestGenerateProspects_AlwaysFive(t *testing.T) {
	e := newTestEngine(t, Options{})

	for _, cat := range model.Categories {
		for _, attrs := range []*model.PropertyAttributes{nil, {}, {Size: 0}, {Size: 5000, Stories: 4, Rooms: 10}} {
			got := e.GenerateProspects(prospect.Target{Category: cat, Attributes: attrs}, model.ValuationResult{}, 0)
			assert.Len(t, got, 5, "category %s", cat)
		}
	}
	got := e.GenerateProspects(prospect.Target{All: true}, model.ValuationResult{CurrentValue: 1_000_000}, 0)
	assert.Len(t, got, 5)
}

func TestComputeValuation(t *testing.T) {
	e := newTestEngine(t, Options{})

	v, err := e.ComputeValuation(lekkiFamilyHome())
	require.NoError(t, err)
	assert.Equal(t, 49_075_000.0, v.CurrentValue)
	assert.Equal(t, 53_982_500.0, v.EstimatedWorth)
}

func TestAnalyze_SavesResult(t *testing.T) {
	store, err := recorder.NewSQLiteStore(filepath.Join(t.TempDir(), "engine.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	e := newTestEngine(t, Options{Store: store})

	res, err := e.Analyze(context.Background(), AnalysisRequest{UserID: "u-9", Attributes: lekkiFamilyHome()})
	require.NoError(t, err)

	loaded, err := e.Store().Load(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Valuation, loaded.Valuation)
	assert.Len(t, loaded.Prospects, 5)
	assert.Equal(t, model.StatusCompleted, loaded.Status)
}

func TestAnalyze_PersistenceErrorReturnedWithResult(t *testing.T) {
	e := newTestEngine(t, Options{Store: failingStore{recorder.NewNoopStore()}})

	res, err := e.Analyze(context.Background(), AnalysisRequest{Attributes: lekkiFamilyHome()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPersistence))
	require.NotNil(t, res)
	assert.Len(t, res.Prospects, 5)
}

func TestRunFullAnalysis_Concurrent(t *testing.T) {
	e := newTestEngine(t, Options{Random: rng.NewFactory(0), Classifier: &classifier.StaticClassifier{
		Predictions: []classifier.Prediction{{Label: "office", Confidence: 0.7}},
	}})

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.RunFullAnalysis(context.Background(), AnalysisRequest{Attributes: lekkiFamilyHome(), Image: []byte("img")})
			if err == nil && len(res.Prospects) != 5 {
				err = errors.New("wrong prospect count")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
