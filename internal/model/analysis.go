package model

import "time"

// AnalysisStatus is the lifecycle state of a persisted analysis.
type AnalysisStatus string

const (
	StatusDraft     AnalysisStatus = "draft"
	StatusAnalyzing AnalysisStatus = "analyzing"
	StatusCompleted AnalysisStatus = "completed"
	StatusArchived  AnalysisStatus = "archived"
)

// Valid reports whether s is a known status.
func (s AnalysisStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusAnalyzing, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// Warning annotates a result with a degradation that did not fail the analysis.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PropertyAnalysisResult is the complete output of one analysis.
// It is not mutated after the engine returns it.
type PropertyAnalysisResult struct {
	ID             string             `json:"id"`
	UserID         string             `json:"user_id,omitempty"`
	Attributes     PropertyAttributes `json:"attributes"`
	Valuation      ValuationResult    `json:"valuation"`
	Category       IdentifiedCategory `json:"category"`
	Prospects      []ProspectInstance `json:"prospects"`
	Rejected       bool               `json:"rejected"`
	Warnings       []Warning          `json:"warnings,omitempty"`
	CatalogVersion string             `json:"catalog_version"`
	Status         AnalysisStatus     `json:"status"`
	Favorite       bool               `json:"favorite"`
	Notes          string             `json:"notes,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// AnalysisSummary is a lightweight listing row for stored analyses.
type AnalysisSummary struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Status       AnalysisStatus `json:"status"`
	Favorite     bool           `json:"favorite"`
	Notes        string         `json:"notes"`
	CurrentValue float64        `json:"current_value"`
	Category     Category       `json:"category"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
