package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"PropertyProspector/internal/model"
)

// Money formats a naira amount rounded to the unit with thousands separators.
func Money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "₦n/a"
	}
	return "₦" + humanize.Comma(int64(math.Round(v)))
}

// FormatAnalysis renders an analysis as a plain-text report.
func FormatAnalysis(r *model.PropertyAnalysisResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Property Analysis %s | %s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04")))
	a := r.Attributes
	b.WriteString(fmt.Sprintf("%s, %s | %.0f m², %d floor(s)\n\n", a.Usage, a.Location, a.Size, a.Stories))

	v := r.Valuation
	b.WriteString("Valuation:\n")
	b.WriteString(fmt.Sprintf("  Current value:   %s\n", Money(v.CurrentValue)))
	b.WriteString(fmt.Sprintf("  Market value:    %s\n", Money(v.MarketValue)))
	b.WriteString(fmt.Sprintf("  Estimated worth: %s\n", Money(v.EstimatedWorth)))
	b.WriteString(fmt.Sprintf("  Appreciation %.1f%%/yr, confidence %.0f%%\n", v.AppreciationRate, v.Confidence))
	bd := v.Breakdown
	b.WriteString(fmt.Sprintf("  %s/m² x %.2f location (%s) x %.2f stories x %.2f rooms + %s amenities\n",
		Money(bd.UnitValue), bd.LocationMultiplier, orNone(bd.LocationKey), bd.StoryMultiplier, bd.RoomEfficiency, Money(bd.AmenityValue)))
	for _, c := range v.Comparables {
		b.WriteString(fmt.Sprintf("  ~ %s: %s, %.0f m² (%.0f%% similar)\n", c.Address, Money(c.Price), c.Size, c.Similarity))
	}

	cat := r.Category
	b.WriteString(fmt.Sprintf("\nCategory: %s (label %q, %.0f%%, via %s)\n", cat.Category, cat.Label, cat.Confidence*100, cat.Source))

	if r.Rejected {
		b.WriteString("\nImage rejected: no property detected, no prospects generated.\n")
	} else {
		b.WriteString("\nProspects:\n")
		for _, p := range r.Prospects {
			b.WriteString(fmt.Sprintf("%d. %s [%s]\n", p.Rank, p.Title, p.Category))
			b.WriteString(fmt.Sprintf("   Cost %s, investment %s, income %s/month\n",
				Money(p.EstimatedCost), Money(p.TotalInvestment), Money(p.MonthlyIncome)))
			b.WriteString(fmt.Sprintf("   ROI %.1f%%, payback %d months, risk %s, success %.0f%%, %d months to launch\n",
				p.ExpectedROI, p.PaybackPeriod, p.RiskLevel, p.SuccessProbability, p.TimelineMonths))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range r.Warnings {
			b.WriteString(fmt.Sprintf("  [%s] %s\n", w.Code, w.Message))
		}
	}
	return b.String()
}

// FormatSummaries renders stored analyses as one line each.
func FormatSummaries(list []model.AnalysisSummary) string {
	if len(list) == 0 {
		return "No analyses stored.\n"
	}
	var b strings.Builder
	for _, s := range list {
		star := " "
		if s.Favorite {
			star = "*"
		}
		b.WriteString(fmt.Sprintf("%s %s  %-10s %-11s %s  %s\n",
			star, s.ID, s.Status, s.Category, Money(s.CurrentValue), s.CreatedAt.Format("2006-01-02")))
	}
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
