package calc

import (
	"fmt"
	"math"
)

// BreakEvenInput parameterises the break-even computation.
type BreakEvenInput struct {
	MonthlyFixedCostsCents int64
	// VariableCostRatio is the variable cost share of revenue, in [0, 1).
	VariableCostRatio float64
	WorkDays          int
}

// BreakEvenResult is the computed break-even point.
type BreakEvenResult struct {
	ContributionMargin    float64 `json:"contribution_margin"`
	BreakEvenRevenueCents int64   `json:"break_even_revenue_cents"`
	DailyTargetCents      int64   `json:"daily_target_cents"`
	SafetyMarginCents     int64   `json:"safety_margin_cents"`
}

// ContributionMargin is 1 - variableRatio. The ratio must be in [0, 1):
// a clinic spending 100% or more of revenue on variable costs has no margin
// to compute with.
func ContributionMargin(variableRatio float64) (float64, error) {
	if variableRatio < 0 || variableRatio >= 1 {
		return 0, fmt.Errorf("variable ratio must be in [0, 1), got %v", variableRatio)
	}
	return 1 - variableRatio, nil
}

// BreakEvenRevenue is fixed costs divided by the contribution margin,
// rounded to the nearest cent.
func BreakEvenRevenue(fixedCostsCents int64, contributionMargin float64) (int64, error) {
	if contributionMargin <= 0 {
		return 0, fmt.Errorf("contribution margin must be positive, got %v", contributionMargin)
	}
	return int64(math.Round(float64(fixedCostsCents) / contributionMargin)), nil
}

// BreakEven computes the complete break-even point. The daily target spreads
// break-even revenue over the configured working days; the safety margin adds
// a 20% buffer on top of break-even revenue.
func BreakEven(in BreakEvenInput) (BreakEvenResult, error) {
	margin, err := ContributionMargin(in.VariableCostRatio)
	if err != nil {
		return BreakEvenResult{}, err
	}
	revenue, err := BreakEvenRevenue(in.MonthlyFixedCostsCents, margin)
	if err != nil {
		return BreakEvenResult{}, err
	}

	var daily int64
	if in.WorkDays > 0 {
		daily = divRound(revenue, int64(in.WorkDays))
	}

	return BreakEvenResult{
		ContributionMargin:    margin,
		BreakEvenRevenueCents: revenue,
		DailyTargetCents:      daily,
		SafetyMarginCents:     int64(math.Round(float64(revenue) * 1.2)),
	}, nil
}

// TreatmentCost is one completed treatment's revenue and variable cost.
type TreatmentCost struct {
	PriceCents        int64
	VariableCostCents int64
}

// VariableCostPercentage derives the clinic's observed variable cost share
// from completed treatments: sum of min(variable cost, price) over total
// revenue, as a percentage clamped to [0, 100]. Treatments whose recorded
// variable cost exceeds their price count at most the price, so data-entry
// outliers cannot push the ratio past 100.
func VariableCostPercentage(treatments []TreatmentCost) float64 {
	var revenue, variable int64
	for _, t := range treatments {
		if t.PriceCents <= 0 {
			continue
		}
		revenue += t.PriceCents
		vc := t.VariableCostCents
		if vc > t.PriceCents {
			vc = t.PriceCents
		}
		if vc < 0 {
			vc = 0
		}
		variable += vc
	}

	if revenue == 0 {
		return 0
	}

	pct := float64(variable) / float64(revenue) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return math.Round(pct*10) / 10
}
