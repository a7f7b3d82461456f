// Package engine runs the property analysis pipeline: valuation, category
// identification, prospect selection and projection, and result packaging.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"PropertyProspector/internal/calculator"
	"PropertyProspector/internal/catalog"
	"PropertyProspector/internal/classifier"
	apperrors "PropertyProspector/internal/errors"
	"PropertyProspector/internal/logger"
	"PropertyProspector/internal/metrics"
	"PropertyProspector/internal/model"
	"PropertyProspector/internal/prospect"
	"PropertyProspector/internal/recorder"
	"PropertyProspector/internal/rng"
)

// DefaultClassifierTimeout bounds a single classifier call.
const DefaultClassifierTimeout = 10 * time.Second

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Classifier        classifier.Classifier // nil: images degrade to the default category
	Catalog           *catalog.Catalog      // nil: embedded catalog
	Store             recorder.Store        // nil: NoopStore
	Random            rng.Factory           // nil: independently seeded sources
	Logger            *zap.Logger
	ClassifierTimeout time.Duration
	ProspectCount     int
}

// AnalysisRequest is the input of one full analysis.
type AnalysisRequest struct {
	UserID     string
	Attributes model.PropertyAttributes
	// Image is optional; without it the category comes from Attributes.
	Image         []byte
	AllCategories bool
}

// Engine is safe for concurrent use. Each analysis draws from its own random source.
type Engine struct {
	classifier classifier.Classifier
	adapter    *classifier.Adapter
	catalog    *catalog.Catalog
	selector   *prospect.Selector
	projector  *prospect.Projector
	store      recorder.Store
	random     rng.Factory
	logger     *zap.Logger
	timeout    time.Duration
	count      int
	now        func() time.Time
}

// New creates an Engine.
func New(opts Options) (*Engine, error) {
	l := logger.OrNop(opts.Logger)

	cat := opts.Catalog
	if cat == nil {
		var err error
		if cat, err = catalog.Default(); err != nil {
			return nil, err
		}
	}
	store := opts.Store
	if store == nil {
		store = recorder.NewNoopStore()
	}
	random := opts.Random
	if random == nil {
		random = rng.NewFactory(0)
	}
	timeout := opts.ClassifierTimeout
	if timeout <= 0 {
		timeout = DefaultClassifierTimeout
	}
	count := opts.ProspectCount
	if count <= 0 {
		count = prospect.DefaultCount
	}

	return &Engine{
		classifier: opts.Classifier,
		adapter:    classifier.NewAdapter(l),
		catalog:    cat,
		selector:   prospect.NewSelector(cat, l),
		projector:  prospect.NewProjector(cat),
		store:      store,
		random:     random,
		logger:     l,
		timeout:    timeout,
		count:      count,
		now:        time.Now,
	}, nil
}

// Store returns the store analyses are saved to.
func (e *Engine) Store() recorder.Store { return e.store }

// ComputeValuation values a property on its own.
func (e *Engine) ComputeValuation(attrs model.PropertyAttributes) (model.ValuationResult, error) {
	return calculator.ComputeValuation(attrs, e.random())
}

// GenerateProspects selects and projects count prospects (the engine default when
// count <= 0) for the target, ranked by expected ROI.
func (e *Engine) GenerateProspects(target prospect.Target, valuation model.ValuationResult, count int) []model.ProspectInstance {
	prospects, _ := e.generate(target, valuation, count, e.random())
	return prospects
}

func (e *Engine) generate(target prospect.Target, valuation model.ValuationResult, count int, src rng.Source) ([]model.ProspectInstance, []model.Warning) {
	if count <= 0 {
		count = e.count
	}
	templates, padded := e.selector.Select(target, count, src)

	prospects := make([]model.ProspectInstance, len(templates))
	for i, t := range templates {
		prospects[i] = e.projector.Project(t, valuation, src)
	}
	prospect.Rank(prospects)

	var warnings []model.Warning
	if padded > 0 {
		label := string(target.Category)
		if target.All {
			label = "all"
		}
		metrics.FillerPaddings.WithLabelValues(label).Add(float64(padded))
		warnings = append(warnings, warningOf(apperrors.NewCatalogMissError(label, count-padded, count)))
	}
	return prospects, warnings
}

// Identify determines the property category from an image, or from the attributes
// when no image is given. Classifier failures degrade to the default category.
func (e *Engine) Identify(ctx context.Context, image []byte, attrs model.PropertyAttributes) (model.IdentifiedCategory, []model.Warning) {
	if len(image) == 0 {
		if attrs.Category.Valid() {
			return classifier.Manual(attrs.Category), nil
		}
		if attrs.Category != "" {
			err := apperrors.NewValidationError("category", fmt.Sprintf("unknown category %q, inferred from usage", attrs.Category))
			return classifier.FromUsage(attrs.Usage), []model.Warning{warningOf(err)}
		}
		return classifier.FromUsage(attrs.Usage), nil
	}
	if e.classifier == nil {
		err := apperrors.NewClassificationUnavailableError(errors.New("no classifier configured"))
		metrics.ClassifierFallbacks.WithLabelValues("unconfigured").Inc()
		return e.adapter.Unavailable(err), []model.Warning{warningOf(err)}
	}

	preds, err := e.classify(ctx, image)
	if err != nil {
		reason := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		metrics.ClassifierFallbacks.WithLabelValues(reason).Inc()
		se := apperrors.NewClassificationUnavailableError(err)
		return e.adapter.Unavailable(se), []model.Warning{warningOf(se)}
	}
	if len(preds) == 0 {
		metrics.ClassifierFallbacks.WithLabelValues("empty").Inc()
		se := apperrors.NewClassificationUnavailableError(errors.New("classifier returned no predictions"))
		return e.adapter.Unavailable(se), []model.Warning{warningOf(se)}
	}

	id := e.adapter.Resolve(preds)
	if id.Rejected {
		return id, []model.Warning{warningOf(apperrors.NewImageRejectedError(id.Label))}
	}
	return id, nil
}

// classify calls the classifier with a deadline. A classifier that ignores its
// context is abandoned when the deadline passes.
func (e *Engine) classify(ctx context.Context, image []byte) ([]classifier.Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type reply struct {
		preds []classifier.Prediction
		err   error
	}
	ch := make(chan reply, 1)
	go func() {
		preds, err := e.classifier.Classify(ctx, image)
		ch <- reply{preds, err}
	}()

	select {
	case r := <-ch:
		return r.preds, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RunFullAnalysis runs the whole pipeline. Only invalid attributes and cancellation
// return an error; every other degradation is reported as a warning on the result.
func (e *Engine) RunFullAnalysis(ctx context.Context, req AnalysisRequest) (*model.PropertyAnalysisResult, error) {
	start := time.Now()
	mode := "category"
	if req.AllCategories {
		mode = "all"
	}
	defer func() {
		metrics.AnalysisDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	}()

	if err := ctx.Err(); err != nil {
		metrics.AnalysesTotal.WithLabelValues("cancelled").Inc()
		return nil, err
	}

	src := e.random()
	valuation, err := calculator.ComputeValuation(req.Attributes, src)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	identified, warnings := e.Identify(ctx, req.Image, req.Attributes)
	if err := ctx.Err(); err != nil {
		metrics.AnalysesTotal.WithLabelValues("cancelled").Inc()
		return nil, err
	}

	prospects := []model.ProspectInstance{}
	if !identified.Rejected {
		target := prospect.Target{
			Category:   identified.Category,
			All:        req.AllCategories,
			Attributes: &req.Attributes,
		}
		var padWarnings []model.Warning
		prospects, padWarnings = e.generate(target, valuation, e.count, src)
		warnings = append(warnings, padWarnings...)
	}

	if err := ctx.Err(); err != nil {
		metrics.AnalysesTotal.WithLabelValues("cancelled").Inc()
		return nil, err
	}

	now := e.now().UTC()
	result := &model.PropertyAnalysisResult{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		Attributes:     req.Attributes,
		Valuation:      valuation,
		Category:       identified,
		Prospects:      prospects,
		Rejected:       identified.Rejected,
		Warnings:       warnings,
		CatalogVersion: e.catalog.Version(),
		Status:         model.StatusCompleted,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	outcome := "completed"
	if result.Rejected {
		outcome = "rejected"
	}
	metrics.AnalysesTotal.WithLabelValues(outcome).Inc()
	e.logger.Info("analysis completed",
		zap.String("id", result.ID),
		zap.String("category", string(identified.Category)),
		zap.Bool("rejected", result.Rejected),
		zap.Int("prospects", len(prospects)),
		zap.Int("warnings", len(warnings)),
		zap.Float64("current_value", valuation.CurrentValue))
	return result, nil
}

// Analyze runs a full analysis and saves it. A persistence failure is returned
// together with the computed result.
func (e *Engine) Analyze(ctx context.Context, req AnalysisRequest) (*model.PropertyAnalysisResult, error) {
	result, err := e.RunFullAnalysis(ctx, req)
	if err != nil {
		return nil, err
	}
	if _, err := e.store.Save(ctx, *result); err != nil {
		e.logger.Warn("failed to save analysis", zap.String("id", result.ID), zap.Error(err))
		return result, err
	}
	return result, nil
}

func warningOf(err *apperrors.StandardError) model.Warning {
	return model.Warning{Code: string(err.Code), Message: err.Error()}
}
