package calculator

import (
	"fmt"
	"math"
	"strings"

	apperrors "PropertyProspector/internal/errors"
	"PropertyProspector/internal/model"
	"PropertyProspector/internal/rng"
)

// Validate rejects attributes that cannot be valued. Zero values mean "not provided".
func Validate(attrs *model.PropertyAttributes) error {
	if !finite(attrs.Size) || attrs.Size < 0 || attrs.Size > MaxSize {
		return apperrors.NewValidationError("size", fmt.Sprintf("must be within 0-%g, got %v", MaxSize, attrs.Size))
	}
	if attrs.Stories < 0 {
		return apperrors.NewValidationError("stories", fmt.Sprintf("must be >= 0, got %d", attrs.Stories))
	}
	if attrs.Rooms < 0 {
		return apperrors.NewValidationError("rooms", fmt.Sprintf("must be >= 0, got %d", attrs.Rooms))
	}
	if !finite(attrs.AvgRoomSize) || attrs.AvgRoomSize < 0 || attrs.AvgRoomSize > MaxSize {
		return apperrors.NewValidationError("avg_room_size", fmt.Sprintf("must be within 0-%g, got %v", MaxSize, attrs.AvgRoomSize))
	}
	if attrs.Category != "" && !attrs.Category.Valid() {
		return apperrors.NewValidationError("category", fmt.Sprintf("unknown category %q", attrs.Category))
	}
	seen := make(map[string]struct{}, len(attrs.Amenities))
	for _, a := range attrs.Amenities {
		k := model.NormalizeKey(a)
		if k == "" {
			return apperrors.NewValidationError("amenities", "empty amenity name")
		}
		if _, dup := seen[k]; dup {
			return apperrors.NewValidationError("amenities", "duplicate amenity "+a)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// UnitValue returns the per-m² base value for a usage label.
func UnitValue(usage string) float64 {
	k := model.NormalizeKey(usage)
	for _, u := range UnitValues {
		if model.NormalizeKey(u.Usage) == k {
			return u.Value
		}
	}
	return DefaultUnitValue
}

// LocationMultiplier returns the matched key and multiplier for a location string.
func LocationMultiplier(location string) (string, float64) {
	loc := model.NormalizeKey(location)
	if loc == "" {
		return "", DefaultLocationMultiplier
	}
	bestKey, best := "", DefaultLocationMultiplier
	for _, l := range Locations {
		if len(l.Key) <= len(bestKey) {
			continue
		}
		if strings.Contains(loc, model.NormalizeKey(l.Key)) {
			bestKey, best = l.Key, l.Multiplier
		}
	}
	return bestKey, best
}

// AmenityValue sums the additions of every recognized amenity. Unknown names add 0.
func AmenityValue(amenities []string) float64 {
	sum := 0.0
	for _, a := range amenities {
		k := model.NormalizeKey(a)
		for _, am := range Amenities {
			if model.NormalizeKey(am.Name) == k {
				sum += am.Value
				break
			}
		}
	}
	return sum
}

// StoryMultiplier adds 15% per floor above the first. Zero stories means not provided.
func StoryMultiplier(stories int) float64 {
	if stories <= 0 {
		return 1
	}
	return 1 + float64(stories-1)*storyIncrement
}

// RoomEfficiency scores the average room size against a 25 m² efficient room, capped at 1.5.
func RoomEfficiency(avgRoomSize float64) float64 {
	if avgRoomSize <= 0 {
		return 1
	}
	return math.Min(avgRoomSize/efficientRoomSize, maxRoomEfficiency)
}

// ComputeValuation values a property. src supplies the comparable perturbations and
// the placeholder market-feed figures (appreciation rate, confidence).
func ComputeValuation(attrs model.PropertyAttributes, src rng.Source) (model.ValuationResult, error) {
	if err := Validate(&attrs); err != nil {
		return model.ValuationResult{}, err
	}

	unit := UnitValue(attrs.Usage)
	locKey, locMult := LocationMultiplier(attrs.Location)
	baseValue := unit * attrs.Size * locMult
	amenities := AmenityValue(attrs.Amenities)
	storyMult := StoryMultiplier(attrs.Stories)
	roomEff := RoomEfficiency(attrs.AvgRoomSize)

	current := math.Round(baseValue*storyMult*roomEff + amenities)
	if !finite(current) || current > MaxValue {
		return model.ValuationResult{}, apperrors.NewValidationError("size",
			fmt.Sprintf("attributes value the property beyond %g", MaxValue))
	}
	if current < 0 {
		current = 0
	}

	return model.ValuationResult{
		CurrentValue:     current,
		MarketValue:      math.Round(current * marketPremium),
		EstimatedWorth:   math.Round(current * estimatedPremium),
		AppreciationRate: round1(rng.Between(src, appreciationLo, appreciationHi)),
		Confidence:       math.Round(rng.Between(src, confidenceLo, confidenceHi)),
		Breakdown: model.ValuationBreakdown{
			UnitValue:          unit,
			LocationKey:        locKey,
			LocationMultiplier: locMult,
			BaseValue:          math.Round(baseValue),
			StoryMultiplier:    storyMult,
			RoomEfficiency:     roomEff,
			AmenityValue:       amenities,
		},
		Comparables: comparables(attrs, current, src),
	}, nil
}

func comparables(attrs model.PropertyAttributes, current float64, src rng.Source) []model.ComparableProperty {
	area := strings.TrimSpace(attrs.Location)
	if area == "" {
		area = "nearby"
	}
	out := make([]model.ComparableProperty, comparableCount)
	for i := range out {
		out[i] = model.ComparableProperty{
			Address:    fmt.Sprintf("Comparable %d, %s", i+1, area),
			Price:      math.Round(current * rng.Between(src, comparablePriceLo, comparablePriceHi)),
			Size:       math.Round(attrs.Size * rng.Between(src, comparableSizeLo, comparableSizeHi)),
			Similarity: round1(rng.Between(src, similarityLo, similarityHi)),
		}
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
