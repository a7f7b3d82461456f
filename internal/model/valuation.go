package model

// ComparableProperty is a synthetic reference row produced alongside a valuation.
type ComparableProperty struct {
	Address    string  `json:"address"`
	Price      float64 `json:"price"`
	Size       float64 `json:"size"`
	Similarity float64 `json:"similarity"` // percent
}

// ValuationBreakdown records every factor that went into currentValue.
type ValuationBreakdown struct {
	UnitValue          float64 `json:"unit_value"`
	LocationKey        string  `json:"location_key,omitempty"`
	LocationMultiplier float64 `json:"location_multiplier"`
	BaseValue          float64 `json:"base_value"`
	StoryMultiplier    float64 `json:"story_multiplier"`
	RoomEfficiency     float64 `json:"room_efficiency"`
	AmenityValue       float64 `json:"amenity_value"`
}

// ValuationResult is the computed worth of a property.
type ValuationResult struct {
	CurrentValue     float64              `json:"current_value"`
	MarketValue      float64              `json:"market_value"`
	EstimatedWorth   float64              `json:"estimated_worth"`
	AppreciationRate float64              `json:"appreciation_rate"` // percent per year
	Confidence       float64              `json:"confidence"`        // percent
	Breakdown        ValuationBreakdown   `json:"breakdown"`
	Comparables      []ComparableProperty `json:"comparables"`
}
