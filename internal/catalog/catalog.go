// Package catalog loads the versioned prospect knowledge base. A Catalog is
// read-only after Load and safe for concurrent readers.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "PropertyProspector/internal/errors"
	"PropertyProspector/internal/model"
)

//go:embed prospects.yaml
var defaultAsset []byte

// Range is an inclusive numeric band.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Baseline holds the per-category business constants used by projection.
type Baseline struct {
	ROI           Range             `yaml:"roi"`     // percent per year
	Success       Range             `yaml:"success"` // percent
	Risk          []model.RiskLevel `yaml:"risk"`
	Contingency   float64           `yaml:"contingency"`
	RevenueSpread float64           `yaml:"revenue_spread"`
}

type fillerSpec struct {
	Title                 string   `yaml:"title"`
	Narrative             string   `yaml:"narrative"`
	PurchaseCostFactor    float64  `yaml:"purchase_cost_factor"`
	DevelopmentCostFactor float64  `yaml:"development_cost_factor"`
	RealizationTips       []string `yaml:"realization_tips"`
	ImageRef              string   `yaml:"image_ref"`
}

type document struct {
	Version    string                   `yaml:"version"`
	Categories map[string]Baseline      `yaml:"categories"`
	Filler     fillerSpec               `yaml:"filler"`
	Templates  []model.ProspectTemplate `yaml:"templates"`
}

// Catalog is an immutable set of prospect templates grouped by category.
type Catalog struct {
	version    string
	baselines  map[model.Category]Baseline
	byCategory map[model.Category][]model.ProspectTemplate
	all        []model.ProspectTemplate
	filler     fillerSpec
}

var fallbackBaseline = Baseline{
	ROI:           Range{Min: 10, Max: 20},
	Success:       Range{Min: 60, Max: 80},
	Risk:          []model.RiskLevel{model.RiskMedium},
	Contingency:   0.10,
	RevenueSpread: 0.20,
}

var fallbackFiller = fillerSpec{
	Title:                 "Hold and Improve",
	Narrative:             "Keep the property in its current use while carrying out targeted upgrades.",
	PurchaseCostFactor:    0.05,
	DevelopmentCostFactor: 0.25,
}

// Default parses the embedded catalog asset.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultAsset))
}

// LoadFile parses a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses and validates a catalog document.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, apperrors.NewCatalogInvalidError("parse: " + err.Error())
	}
	if err := validate(&doc); err != nil {
		return nil, err
	}

	c := &Catalog{
		version:    doc.Version,
		baselines:  make(map[model.Category]Baseline, len(doc.Categories)),
		byCategory: make(map[model.Category][]model.ProspectTemplate),
		all:        make([]model.ProspectTemplate, 0, len(doc.Templates)),
		filler:     doc.Filler,
	}
	for name, b := range doc.Categories {
		c.baselines[model.Category(name)] = b
	}
	for _, t := range doc.Templates {
		c.byCategory[t.Category] = append(c.byCategory[t.Category], t)
		c.all = append(c.all, t)
	}
	if c.filler.Title == "" {
		c.filler = fallbackFiller
	}
	return c, nil
}

func validate(doc *document) error {
	if doc.Version == "" {
		return apperrors.NewCatalogInvalidError("missing version")
	}
	for name, b := range doc.Categories {
		if !model.Category(name).Valid() {
			return apperrors.NewCatalogInvalidError("unknown category " + name)
		}
		if b.ROI.Min > b.ROI.Max || b.Success.Min > b.Success.Max {
			return apperrors.NewCatalogInvalidError("inverted range in category " + name)
		}
		if b.ROI.Min < 0 {
			return apperrors.NewCatalogInvalidError("negative roi in category " + name)
		}
		for _, r := range b.Risk {
			if !r.Valid() {
				return apperrors.NewCatalogInvalidError(fmt.Sprintf("unknown risk level %q in category %s", r, name))
			}
		}
		if b.Success.Min < 0 || b.Success.Max > 100 {
			return apperrors.NewCatalogInvalidError("success range out of 0-100 in category " + name)
		}
		if b.Contingency < 0 || b.RevenueSpread < 0 || b.RevenueSpread > 1 {
			return apperrors.NewCatalogInvalidError("negative contingency or spread outside 0-1 in category " + name)
		}
	}
	if doc.Filler.PurchaseCostFactor < 0 || doc.Filler.DevelopmentCostFactor < 0 {
		return apperrors.NewCatalogInvalidError("negative filler cost factor")
	}

	seen := make(map[string]struct{}, len(doc.Templates))
	for _, t := range doc.Templates {
		if t.ID == "" {
			return apperrors.NewCatalogInvalidError("template without id")
		}
		if _, dup := seen[t.ID]; dup {
			return apperrors.NewCatalogInvalidError("duplicate template id " + t.ID)
		}
		seen[t.ID] = struct{}{}
		if !t.Category.Valid() {
			return apperrors.NewCatalogInvalidError(fmt.Sprintf("template %s: unknown category %q", t.ID, t.Category))
		}
		if t.PurchaseCostFactor < 0 || t.DevelopmentCostFactor < 0 {
			return apperrors.NewCatalogInvalidError("template " + t.ID + ": negative cost factor")
		}
		share := 0.0
		for _, p := range t.Phases {
			if p.Months < 0 || p.CostShare < 0 || p.CostShare > 1 {
				return apperrors.NewCatalogInvalidError("template " + t.ID + ": bad phase " + p.Name)
			}
			share += p.CostShare
		}
		if share > 1+1e-9 {
			return apperrors.NewCatalogInvalidError(fmt.Sprintf("template %s: phase cost shares sum to %.2f", t.ID, share))
		}
	}
	return nil
}

// Version identifies the loaded asset.
func (c *Catalog) Version() string { return c.version }

// Templates returns a copy of the templates for one category, in catalog order.
func (c *Catalog) Templates(cat model.Category) []model.ProspectTemplate {
	src := c.byCategory[cat]
	out := make([]model.ProspectTemplate, len(src))
	copy(out, src)
	return out
}

// All returns a copy of every template across categories, in catalog order.
func (c *Catalog) All() []model.ProspectTemplate {
	out := make([]model.ProspectTemplate, len(c.all))
	copy(out, c.all)
	return out
}

// Baseline returns the financial constants for a category, or a generic default.
func (c *Catalog) Baseline(cat model.Category) Baseline {
	if b, ok := c.baselines[cat]; ok {
		return b
	}
	return fallbackBaseline
}

// Filler synthesizes the n-th generic padding template (1-based) for a category.
func (c *Catalog) Filler(cat model.Category, n int) model.ProspectTemplate {
	tips := make([]string, len(c.filler.RealizationTips))
	copy(tips, c.filler.RealizationTips)
	return model.ProspectTemplate{
		ID:                    fmt.Sprintf("generic-%s-%d", cat, n),
		Title:                 c.filler.Title,
		Category:              cat,
		Narrative:             c.filler.Narrative,
		PurchaseCostFactor:    c.filler.PurchaseCostFactor,
		DevelopmentCostFactor: c.filler.DevelopmentCostFactor,
		RealizationTips:       tips,
		ImageRef:              c.filler.ImageRef,
		Filler:                true,
	}
}
