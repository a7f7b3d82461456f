package prospect

import (
	"go.uber.org/zap"

	"PropertyProspector/internal/catalog"
	"PropertyProspector/internal/logger"
	"PropertyProspector/internal/model"
	"PropertyProspector/internal/rng"
)

// DefaultCount is the number of prospects every analysis returns.
const DefaultCount = 5

// Target describes what to select from: one category, or every category when All is set.
// Attributes feed the eligibility predicates in category mode; nil means an empty property.
type Target struct {
	Category   model.Category
	All        bool
	Attributes *model.PropertyAttributes
}

// Selector draws a fixed-size set of templates from the catalog.
type Selector struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewSelector creates a Selector over an immutable catalog.
func NewSelector(c *catalog.Catalog, l *zap.Logger) *Selector {
	return &Selector{catalog: c, logger: logger.OrNop(l)}
}

// Select returns exactly count templates (DefaultCount when count <= 0) and how many of
// them are generic fillers. Category mode applies eligibility predicates; cross-category
// mode samples the whole catalog without them.
func (s *Selector) Select(target Target, count int, src rng.Source) ([]model.ProspectTemplate, int) {
	if count <= 0 {
		count = DefaultCount
	}

	var pool []model.ProspectTemplate
	fillerCat := target.Category
	if target.All {
		pool = s.catalog.All()
		fillerCat = model.DefaultCategory
	} else {
		if !fillerCat.Valid() {
			fillerCat = model.DefaultCategory
		}
		for _, t := range s.catalog.Templates(fillerCat) {
			if Eligible(t, target.Attributes) {
				pool = append(pool, t)
			}
		}
	}

	src.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > count {
		pool = pool[:count]
	}

	padded := 0
	for len(pool) < count {
		padded++
		pool = append(pool, s.catalog.Filler(fillerCat, padded))
	}
	if padded > 0 {
		s.logger.Debug("padded prospect selection",
			zap.String("category", string(fillerCat)),
			zap.Bool("all", target.All),
			zap.Int("fillers", padded))
	}
	return pool, padded
}

// Eligible reports whether a property satisfies a template's predicates.
func Eligible(t model.ProspectTemplate, attrs *model.PropertyAttributes) bool {
	if attrs == nil {
		attrs = &model.PropertyAttributes{}
	}
	e := t.Eligibility
	if e.SizeAbove > 0 && attrs.Size <= e.SizeAbove {
		return false
	}
	if e.MinStories > 0 && attrs.Stories < e.MinStories {
		return false
	}
	if e.MinRooms > 0 && attrs.Rooms < e.MinRooms {
		return false
	}
	for _, a := range e.RequiresAmenities {
		if !attrs.HasAmenity(a) {
			return false
		}
	}
	return true
}
