package model

// RiskLevel is a coarse risk tier attached to a prospect.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is a known risk tier.
func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// Eligibility holds the predicates a property must satisfy for a template to be offered.
type Eligibility struct {
	SizeAbove         float64  `yaml:"size_above" json:"size_above,omitempty"` // strict: size must exceed it
	MinStories        int      `yaml:"min_stories" json:"min_stories,omitempty"`
	MinRooms          int      `yaml:"min_rooms" json:"min_rooms,omitempty"`
	RequiresAmenities []string `yaml:"requires_amenities" json:"requires_amenities,omitempty"`
}

// PhaseTemplate is one timeline phase as defined by the catalog.
type PhaseTemplate struct {
	Name      string  `yaml:"name" json:"name"`
	Months    int     `yaml:"months" json:"months"`
	CostShare float64 `yaml:"cost_share" json:"cost_share"`
}

// ProspectTemplate is a catalog entry describing an alternative use for a property.
// Cost factors are multipliers of the current valuation, not absolute currency.
type ProspectTemplate struct {
	ID                    string          `yaml:"id" json:"id"`
	Title                 string          `yaml:"title" json:"title"`
	Category              Category        `yaml:"category" json:"category"`
	Narrative             string          `yaml:"narrative" json:"narrative"`
	PurchaseCostFactor    float64         `yaml:"purchase_cost_factor" json:"purchase_cost_factor"`
	DevelopmentCostFactor float64         `yaml:"development_cost_factor" json:"development_cost_factor"`
	RealizationTips       []string        `yaml:"realization_tips" json:"realization_tips"`
	ImageRef              string          `yaml:"image_ref" json:"image_ref"`
	Eligibility           Eligibility     `yaml:"eligibility" json:"eligibility"`
	Phases                []PhaseTemplate `yaml:"phases" json:"phases,omitempty"`
	Filler                bool            `yaml:"-" json:"filler,omitempty"`
}

// TimelinePhase is a concrete, costed phase of a prospect.
type TimelinePhase struct {
	Name       string  `json:"name"`
	StartMonth int     `json:"start_month"`
	Months     int     `json:"months"`
	Cost       float64 `json:"cost"`
}

// RevenueRange is the projected annual revenue band.
type RevenueRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ProspectInstance is a template projected against a concrete valuation.
type ProspectInstance struct {
	Rank               int             `json:"rank"`
	TemplateID         string          `json:"template_id"`
	Title              string          `json:"title"`
	Category           Category        `json:"category"`
	Narrative          string          `json:"narrative"`
	RealizationTips    []string        `json:"realization_tips"`
	ImageRef           string          `json:"image_ref"`
	EstimatedCost      float64         `json:"estimated_cost"`
	TotalInvestment    float64         `json:"total_investment"`
	Revenue            RevenueRange    `json:"revenue"`
	MonthlyIncome      float64         `json:"monthly_income"`
	ExpectedROI        float64         `json:"expected_roi"`   // percent per year
	PaybackPeriod      int             `json:"payback_period"` // months
	Timeline           []TimelinePhase `json:"timeline"`
	TimelineMonths     int             `json:"timeline_months"`
	RiskLevel          RiskLevel       `json:"risk_level"`
	SuccessProbability float64         `json:"success_probability"` // percent
	Filler             bool            `json:"filler,omitempty"`
}
