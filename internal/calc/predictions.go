package calc

import (
	"math"
	"sort"
	"time"
)

// Trend direction labels.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// slopeSignificanceCents: a monthly change below this is reported as stable.
const slopeSignificanceCents = 10000

// MonthlyRevenue is aggregated revenue for one calendar month.
type MonthlyRevenue struct {
	Month   string `json:"month"` // YYYY-MM
	Revenue int64  `json:"revenue_cents"`
}

// LinearTrend is a least-squares fit over monthly revenue.
type LinearTrend struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Direction string  `json:"direction"`
}

// RevenuePrediction projects revenue from the historical trend.
type RevenuePrediction struct {
	NextMonthCents   int64       `json:"next_month_cents"`
	NextQuarterCents int64       `json:"next_quarter_cents"`
	YearEndCents     int64       `json:"year_end_cents"`
	Confidence       int         `json:"confidence"` // 0-100
	Trend            LinearTrend `json:"trend"`
	MonthsOfData     int         `json:"months_of_data"`
}

// RevenuePoint is one treatment's revenue on a date.
type RevenuePoint struct {
	Date  time.Time
	Cents int64
}

// GroupByMonth buckets revenue points into sorted monthly totals.
func GroupByMonth(points []RevenuePoint) []MonthlyRevenue {
	byMonth := make(map[string]int64)
	for _, p := range points {
		byMonth[p.Date.Format("2006-01")] += p.Cents
	}

	out := make([]MonthlyRevenue, 0, len(byMonth))
	for month, revenue := range byMonth {
		out = append(out, MonthlyRevenue{Month: month, Revenue: revenue})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// FitTrend computes a least-squares regression over the monthly series.
// With fewer than two months the series is flat at the last value.
func FitTrend(data []MonthlyRevenue) LinearTrend {
	n := len(data)
	if n < 2 {
		var last float64
		if n == 1 {
			last = float64(data[0].Revenue)
		}
		return LinearTrend{Slope: 0, Intercept: last, Direction: TrendStable}
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, d := range data {
		x, y := float64(i), float64(d.Revenue)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denom := float64(n)*sumX2 - sumX*sumX
	if denom == 0 {
		return LinearTrend{Slope: 0, Intercept: sumY / float64(n), Direction: TrendStable}
	}

	slope := (float64(n)*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / float64(n)

	direction := TrendStable
	if slope > slopeSignificanceCents {
		direction = TrendUp
	} else if slope < -slopeSignificanceCents {
		direction = TrendDown
	}

	return LinearTrend{Slope: slope, Intercept: intercept, Direction: direction}
}

// Project extrapolates the trend monthsAhead past the month at lastIndex,
// clamped at zero.
func Project(trend LinearTrend, lastIndex, monthsAhead int) int64 {
	projected := trend.Intercept + trend.Slope*float64(lastIndex+monthsAhead)
	if projected < 0 {
		return 0
	}
	return int64(math.Round(projected))
}

// projectToYearEnd sums monthly projections through December of the current
// year, or a full further year when called in December.
func projectToYearEnd(trend LinearTrend, lastIndex int, currentMonth time.Month) int64 {
	remaining := 12 - int(currentMonth)
	if remaining <= 0 {
		return Project(trend, lastIndex, 12)
	}
	var total int64
	for i := 1; i <= remaining; i++ {
		total += Project(trend, lastIndex, i)
	}
	return total
}

// Confidence scores prediction reliability from the coefficient of
// variation of the monthly series: steadier history, higher confidence.
func Confidence(data []MonthlyRevenue) int {
	n := len(data)
	if n < 3 {
		return 30
	}
	if n < 6 {
		return 50
	}

	var sum float64
	for _, d := range data {
		sum += float64(d.Revenue)
	}
	avg := sum / float64(n)
	if avg == 0 {
		return 30
	}

	var variance float64
	for _, d := range data {
		diff := float64(d.Revenue) - avg
		variance += diff * diff
	}
	variance /= float64(n)
	cv := math.Sqrt(variance) / avg

	switch {
	case cv < 0.1:
		return 90
	case cv < 0.2:
		return 80
	case cv < 0.3:
		return 70
	case cv < 0.4:
		return 60
	case cv < 0.5:
		return 50
	default:
		return 40
	}
}

// PredictRevenue builds the full prediction from raw revenue points. Returns
// nil when there is no historical data to project from.
func PredictRevenue(points []RevenuePoint, now time.Time) *RevenuePrediction {
	monthly := GroupByMonth(points)
	if len(monthly) == 0 {
		return nil
	}

	trend := FitTrend(monthly)
	lastIndex := len(monthly) - 1

	return &RevenuePrediction{
		NextMonthCents: Project(trend, lastIndex, 1),
		NextQuarterCents: Project(trend, lastIndex, 1) +
			Project(trend, lastIndex, 2) +
			Project(trend, lastIndex, 3),
		YearEndCents: projectToYearEnd(trend, lastIndex, now.Month()),
		Confidence:   Confidence(monthly),
		Trend:        trend,
		MonthsOfData: len(monthly),
	}
}
