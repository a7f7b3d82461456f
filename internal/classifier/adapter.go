package classifier

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"PropertyProspector/internal/logger"
	"PropertyProspector/internal/model"
)

const (
	// RejectLabel marks an image that shows a person rather than a property.
	RejectLabel = "human"
	// DefaultLabel is reported when the classifier cannot be used.
	DefaultLabel = "building"
)

// LabelCategories maps classifier labels to internal categories. Matching is exact
// after normalization; anything absent maps to model.DefaultCategory.
var LabelCategories = map[string]model.Category{
	"building":   model.CategoryResidential,
	"house":      model.CategoryResidential,
	"home":       model.CategoryResidential,
	"apartment":  model.CategoryResidential,
	"villa":      model.CategoryResidential,
	"duplex":     model.CategoryResidential,
	"bungalow":   model.CategoryResidential,
	"office":     model.CategoryCommercial,
	"shop":       model.CategoryCommercial,
	"store":      model.CategoryCommercial,
	"mall":       model.CategoryCommercial,
	"hotel":      model.CategoryCommercial,
	"restaurant": model.CategoryCommercial,
	"warehouse":  model.CategoryIndustrial,
	"factory":    model.CategoryIndustrial,
	"industrial": model.CategoryIndustrial,
	"land":       model.CategoryLand,
	"plot":       model.CategoryLand,
	"farm":       model.CategoryLand,
	"field":      model.CategoryLand,
	"mixed use":  model.CategoryMixedUse,
	"mixed_use":  model.CategoryMixedUse,
}

// usagePrefixes maps the segment of a usage label before " - " to a category.
var usagePrefixes = map[string]model.Category{
	"residential": model.CategoryResidential,
	"commercial":  model.CategoryCommercial,
	"industrial":  model.CategoryIndustrial,
	"land":        model.CategoryLand,
	"mixed use":   model.CategoryMixedUse,
}

// Adapter normalizes classifier output into an IdentifiedCategory.
type Adapter struct {
	logger *zap.Logger
}

// NewAdapter creates an Adapter. A nil logger disables logging.
func NewAdapter(l *zap.Logger) *Adapter {
	return &Adapter{logger: logger.OrNop(l)}
}

// Resolve maps the top prediction to a category. Confidence only annotates the result;
// any label other than RejectLabel yields a usable category.
func (a *Adapter) Resolve(preds []Prediction) model.IdentifiedCategory {
	if len(preds) == 0 {
		return a.Unavailable(nil)
	}
	top := preds[0]
	label := model.NormalizeKey(top.Label)
	conf := clampConfidence(top.Confidence)

	if label == RejectLabel {
		a.logger.Info("image rejected", zap.String("label", label), zap.Float64("confidence", conf))
		return model.IdentifiedCategory{
			Label:      label,
			Confidence: conf,
			Rejected:   true,
			Source:     "classifier",
		}
	}

	cat, ok := LabelCategories[label]
	if !ok {
		a.logger.Debug("unmapped classifier label", zap.String("label", label))
		cat = model.DefaultCategory
	}
	return model.IdentifiedCategory{
		Label:      label,
		Confidence: conf,
		Category:   cat,
		Fallback:   !ok,
		Source:     "classifier",
	}
}

// Unavailable returns the default category used when the classifier fails or times out.
func (a *Adapter) Unavailable(err error) model.IdentifiedCategory {
	if err != nil {
		a.logger.Warn("classifier unavailable, using default category", zap.Error(err))
	}
	return model.IdentifiedCategory{
		Label:    DefaultLabel,
		Category: LabelCategories[DefaultLabel],
		Fallback: true,
		Source:   "default",
	}
}

// FromUsage infers a category from a usage label such as "Commercial - Office".
func FromUsage(usage string) model.IdentifiedCategory {
	prefix := model.NormalizeKey(usage)
	if i := strings.Index(prefix, "-"); i >= 0 {
		prefix = strings.TrimSpace(prefix[:i])
	}
	cat, ok := usagePrefixes[prefix]
	if !ok {
		cat = model.DefaultCategory
	}
	return model.IdentifiedCategory{
		Label:      strings.TrimSpace(usage),
		Confidence: 1,
		Category:   cat,
		Fallback:   !ok,
		Source:     "usage",
	}
}

// Manual wraps a caller-chosen category.
func Manual(cat model.Category) model.IdentifiedCategory {
	return model.IdentifiedCategory{
		Label:      string(cat),
		Confidence: 1,
		Category:   cat,
		Source:     "manual",
	}
}

func clampConfidence(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	return math.Min(c, 1)
}
