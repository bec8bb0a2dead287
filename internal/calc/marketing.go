package calc

import "math"

// LTV/CAC ratio quality bands.
const (
	RatioExcellent  = "excellent"
	RatioGood       = "good"
	RatioAcceptable = "acceptable"
	RatioCritical   = "critical"
	RatioUnknown    = "unknown"
)

// CAC is the customer acquisition cost: marketing spend divided by patients
// acquired, rounded to the nearest cent. Zero patients yields zero.
func CAC(spentCents int64, patients int) int64 {
	if patients <= 0 {
		return 0
	}
	return divRound(spentCents, int64(patients))
}

// LTV is the average lifetime value: total revenue attributed to a cohort
// divided by its size, rounded to the nearest cent.
func LTV(revenueCents int64, patients int) int64 {
	if patients <= 0 {
		return 0
	}
	return divRound(revenueCents, int64(patients))
}

// ROI is the return on marketing spend as a percentage, rounded to two
// decimals. Zero spend yields zero rather than infinity.
func ROI(revenueCents, spentCents int64) float64 {
	if spentCents <= 0 {
		return 0
	}
	return round2(float64(revenueCents-spentCents) / float64(spentCents) * 100)
}

// ConversionRate is acquired patients over leads as a percentage, rounded to
// two decimals.
func ConversionRate(patients, leads int) float64 {
	if leads <= 0 {
		return 0
	}
	return round2(float64(patients) / float64(leads) * 100)
}

// LTVCACRatio returns the lifetime-value to acquisition-cost ratio and its
// quality band. A zero CAC means the ratio is undefined.
func LTVCACRatio(ltvCents, cacCents int64) (float64, string) {
	if cacCents <= 0 {
		return 0, RatioUnknown
	}
	ratio := round2(float64(ltvCents) / float64(cacCents))
	switch {
	case ratio >= 3:
		return ratio, RatioExcellent
	case ratio >= 2:
		return ratio, RatioGood
	case ratio >= 1:
		return ratio, RatioAcceptable
	case ratio > 0:
		return ratio, RatioCritical
	default:
		return ratio, RatioCritical
	}
}

// GrowthRate is the period-over-period change as a percentage, rounded to
// two decimals. A zero previous value yields 100 when current is positive,
// otherwise zero.
func GrowthRate(current, previous int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round2(float64(current-previous) / float64(previous) * 100)
}

// PaybackPeriodMonths estimates how many months of average revenue per
// patient it takes to recover the acquisition cost, rounded to one decimal.
func PaybackPeriodMonths(cacCents, monthlyRevenuePerPatientCents int64) float64 {
	if monthlyRevenuePerPatientCents <= 0 {
		return 0
	}
	return math.Round(float64(cacCents)/float64(monthlyRevenuePerPatientCents)*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
