package prospect

import (
	"math"
	"sort"

	"PropertyProspector/internal/catalog"
	"PropertyProspector/internal/model"
	"PropertyProspector/internal/rng"
)

// DefaultPhases is used for templates that do not define their own timeline.
var DefaultPhases = []model.PhaseTemplate{
	{Name: "Planning", Months: 2, CostShare: 0.10},
	{Name: "Approvals", Months: 2, CostShare: 0.05},
	{Name: "Execution", Months: 6, CostShare: 0.70},
	{Name: "Launch", Months: 1, CostShare: 0.10},
}

// Projector turns a template and a valuation into a costed prospect.
type Projector struct {
	catalog *catalog.Catalog
}

// NewProjector creates a Projector reading category baselines from c.
func NewProjector(c *catalog.Catalog) *Projector {
	return &Projector{catalog: c}
}

// Project computes the financial projection of t against v.
// EstimatedCost is linear in v.CurrentValue; the ROI, risk and success figures are
// drawn from the category baseline.
func (p *Projector) Project(t model.ProspectTemplate, v model.ValuationResult, src rng.Source) model.ProspectInstance {
	base := p.catalog.Baseline(t.Category)

	estimatedCost := v.CurrentValue * (t.PurchaseCostFactor + t.DevelopmentCostFactor)
	totalInvestment := math.Round(estimatedCost * (1 + base.Contingency))
	roi := math.Round(rng.Between(src, base.ROI.Min, base.ROI.Max)*10) / 10
	annualIncome := totalInvestment * roi / 100
	monthlyIncome := math.Round(annualIncome / 12)

	payback := 0
	if monthlyIncome > 0 {
		payback = int(math.Ceil(totalInvestment / monthlyIncome))
	}

	risk := model.RiskMedium
	if len(base.Risk) > 0 {
		risk = base.Risk[src.IntN(len(base.Risk))]
	}

	timeline, months := buildTimeline(t.Phases, estimatedCost)

	tips := make([]string, len(t.RealizationTips))
	copy(tips, t.RealizationTips)

	return model.ProspectInstance{
		TemplateID:      t.ID,
		Title:           t.Title,
		Category:        t.Category,
		Narrative:       t.Narrative,
		RealizationTips: tips,
		ImageRef:        t.ImageRef,
		EstimatedCost:   estimatedCost,
		TotalInvestment: totalInvestment,
		Revenue: model.RevenueRange{
			Low:  math.Round(annualIncome * (1 - base.RevenueSpread)),
			High: math.Round(annualIncome * (1 + base.RevenueSpread)),
		},
		MonthlyIncome:      monthlyIncome,
		ExpectedROI:        roi,
		PaybackPeriod:      payback,
		Timeline:           timeline,
		TimelineMonths:     months,
		RiskLevel:          risk,
		SuccessProbability: math.Round(rng.Between(src, base.Success.Min, base.Success.Max)),
		Filler:             t.Filler,
	}
}

// buildTimeline costs each phase. Costs are floored and capped by what is left of
// estimatedCost, so their sum never exceeds it.
func buildTimeline(phases []model.PhaseTemplate, estimatedCost float64) ([]model.TimelinePhase, int) {
	if len(phases) == 0 {
		phases = DefaultPhases
	}
	out := make([]model.TimelinePhase, len(phases))
	start := 0
	spent := 0.0
	for i, ph := range phases {
		cost := math.Min(math.Floor(estimatedCost*ph.CostShare), math.Floor(estimatedCost-spent))
		if cost < 0 {
			cost = 0
		}
		spent += cost
		out[i] = model.TimelinePhase{
			Name:       ph.Name,
			StartMonth: start,
			Months:     ph.Months,
			Cost:       cost,
		}
		start += ph.Months
	}
	return out, start
}

// Rank orders prospects by expected ROI, highest first, and numbers them from 1.
// Fillers sort after catalog templates with the same ROI.
func Rank(prospects []model.ProspectInstance) {
	sort.SliceStable(prospects, func(i, j int) bool {
		if prospects[i].ExpectedROI != prospects[j].ExpectedROI {
			return prospects[i].ExpectedROI > prospects[j].ExpectedROI
		}
		return !prospects[i].Filler && prospects[j].Filler
	})
	for i := range prospects {
		prospects[i].Rank = i + 1
	}
}
