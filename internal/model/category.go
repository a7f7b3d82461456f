package model

import "strings"

// Category is an internal property-usage category.
type Category string

const (
	CategoryResidential Category = "residential"
	CategoryCommercial  Category = "commercial"
	CategoryIndustrial  Category = "industrial"
	CategoryLand        Category = "land"
	CategoryMixedUse    Category = "mixed_use"
)

// DefaultCategory is used whenever a label cannot be mapped.
const DefaultCategory = CategoryResidential

// Categories lists all known categories in catalog order.
var Categories = []Category{
	CategoryResidential,
	CategoryCommercial,
	CategoryIndustrial,
	CategoryLand,
	CategoryMixedUse,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// IdentifiedCategory is the normalized classifier verdict for one analysis.
type IdentifiedCategory struct {
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"` // 0~1
	Category   Category `json:"category"`
	Rejected   bool     `json:"rejected"`
	Fallback   bool     `json:"fallback"`
	Source     string   `json:"source"` // "classifier", "usage", "manual", "default"
}

// NormalizeKey lowercases and trims a lookup key.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
