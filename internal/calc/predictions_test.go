package calc

import (
	"testing"
	"time"
)

func TestGroupByMonth(t *testing.T) {
	points := []RevenuePoint{
		{Date: day("2025-01-10"), Cents: 100_000},
		{Date: day("2025-01-20"), Cents: 50_000},
		{Date: day("2025-02-05"), Cents: 200_000},
	}

	monthly := GroupByMonth(points)
	if len(monthly) != 2 {
		t.Fatalf("expected 2 months, got %d", len(monthly))
	}
	if monthly[0].Month != "2025-01" || monthly[0].Revenue != 150_000 {
		t.Errorf("unexpected first month: %+v", monthly[0])
	}
	if monthly[1].Month != "2025-02" || monthly[1].Revenue != 200_000 {
		t.Errorf("unexpected second month: %+v", monthly[1])
	}
}

func TestFitTrendGrowth(t *testing.T) {
	data := []MonthlyRevenue{
		{Month: "2025-01", Revenue: 1_000_000},
		{Month: "2025-02", Revenue: 1_100_000},
		{Month: "2025-03", Revenue: 1_200_000},
	}

	trend := FitTrend(data)
	if trend.Direction != TrendUp {
		t.Errorf("expected up, got %s", trend.Direction)
	}
	if trend.Slope != 100_000 {
		t.Errorf("expected slope 100000, got %v", trend.Slope)
	}
	if trend.Intercept != 1_000_000 {
		t.Errorf("expected intercept 1000000, got %v", trend.Intercept)
	}
}

func TestFitTrendStableWithinThreshold(t *testing.T) {
	// Monthly change under 10000 cents counts as stable.
	data := []MonthlyRevenue{
		{Month: "2025-01", Revenue: 1_000_000},
		{Month: "2025-02", Revenue: 1_005_000},
		{Month: "2025-03", Revenue: 1_010_000},
	}
	if trend := FitTrend(data); trend.Direction != TrendStable {
		t.Errorf("expected stable, got %s", trend.Direction)
	}
}

func TestFitTrendDecline(t *testing.T) {
	data := []MonthlyRevenue{
		{Month: "2025-01", Revenue: 1_200_000},
		{Month: "2025-02", Revenue: 1_000_000},
		{Month: "2025-03", Revenue: 800_000},
	}
	if trend := FitTrend(data); trend.Direction != TrendDown {
		t.Errorf("expected down, got %s", trend.Direction)
	}
}

func TestFitTrendSingleMonth(t *testing.T) {
	trend := FitTrend([]MonthlyRevenue{{Month: "2025-01", Revenue: 500_000}})
	if trend.Slope != 0 || trend.Intercept != 500_000 || trend.Direction != TrendStable {
		t.Errorf("unexpected trend for single month: %+v", trend)
	}
}

func TestProjectClampsNegative(t *testing.T) {
	trend := LinearTrend{Slope: -500_000, Intercept: 1_000_000}
	if got := Project(trend, 1, 3); got != 0 {
		t.Errorf("expected projection clamped to 0, got %d", got)
	}
}

func TestConfidenceBands(t *testing.T) {
	flat := func(n int, revenue int64) []MonthlyRevenue {
		out := make([]MonthlyRevenue, n)
		for i := range out {
			out[i] = MonthlyRevenue{Month: "2025-01", Revenue: revenue}
		}
		return out
	}

	if got := Confidence(flat(2, 1_000_000)); got != 30 {
		t.Errorf("expected 30 for under 3 months, got %d", got)
	}
	if got := Confidence(flat(4, 1_000_000)); got != 50 {
		t.Errorf("expected 50 for under 6 months, got %d", got)
	}
	// A perfectly steady 6-month series has zero variation.
	if got := Confidence(flat(6, 1_000_000)); got != 90 {
		t.Errorf("expected 90 for steady series, got %d", got)
	}

	volatile := []MonthlyRevenue{
		{Revenue: 100_000}, {Revenue: 900_000}, {Revenue: 150_000},
		{Revenue: 1_200_000}, {Revenue: 50_000}, {Revenue: 800_000},
	}
	if got := Confidence(volatile); got != 40 {
		t.Errorf("expected 40 for volatile series, got %d", got)
	}
}

func TestPredictRevenue(t *testing.T) {
	var points []RevenuePoint
	months := []string{"2025-01", "2025-02", "2025-03"}
	for i, m := range months {
		points = append(points, RevenuePoint{
			Date:  day(m + "-15"),
			Cents: 1_000_000 + int64(i)*100_000,
		})
	}

	pred := PredictRevenue(points, day("2025-03-20"))
	if pred == nil {
		t.Fatal("expected a prediction")
	}
	if pred.NextMonthCents != 1_300_000 {
		t.Errorf("expected next month 1300000, got %d", pred.NextMonthCents)
	}
	if pred.NextQuarterCents != 1_300_000+1_400_000+1_500_000 {
		t.Errorf("unexpected quarter projection: %d", pred.NextQuarterCents)
	}
	if pred.MonthsOfData != 3 {
		t.Errorf("expected 3 months of data, got %d", pred.MonthsOfData)
	}
	if pred.Trend.Direction != TrendUp {
		t.Errorf("expected up trend, got %s", pred.Trend.Direction)
	}
}

func TestPredictRevenueNoData(t *testing.T) {
	if got := PredictRevenue(nil, time.Now()); got != nil {
		t.Errorf("expected nil without data, got %+v", got)
	}
}
