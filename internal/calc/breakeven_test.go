package calc

import (
	"math"
	"testing"
)

func TestContributionMargin(t *testing.T) {
	got, err := ContributionMargin(0.35)
	if err != nil {
		t.Fatalf("ContributionMargin failed: %v", err)
	}
	if math.Abs(got-0.65) > 1e-9 {
		t.Errorf("expected 0.65, got %v", got)
	}
}

func TestContributionMarginRejectsInvalidRatio(t *testing.T) {
	for _, ratio := range []float64{-0.1, 1.0, 1.5} {
		if _, err := ContributionMargin(ratio); err == nil {
			t.Errorf("expected error for ratio %v", ratio)
		}
	}
}

func TestBreakEvenRevenue(t *testing.T) {
	got, err := BreakEvenRevenue(1_854_533, 0.65)
	if err != nil {
		t.Fatalf("BreakEvenRevenue failed: %v", err)
	}
	if got != 2_853_128 {
		t.Errorf("expected 2853128, got %d", got)
	}
}

func TestBreakEvenRevenueRejectsZeroMargin(t *testing.T) {
	if _, err := BreakEvenRevenue(1_000_000, 0); err == nil {
		t.Error("expected error for zero margin")
	}
}

func TestBreakEven(t *testing.T) {
	result, err := BreakEven(BreakEvenInput{
		MonthlyFixedCostsCents: 1_854_533,
		VariableCostRatio:      0.35,
		WorkDays:               20,
	})
	if err != nil {
		t.Fatalf("BreakEven failed: %v", err)
	}

	if result.BreakEvenRevenueCents != 2_853_128 {
		t.Errorf("expected revenue 2853128, got %d", result.BreakEvenRevenueCents)
	}
	if result.DailyTargetCents != 142_656 {
		t.Errorf("expected daily target 142656, got %d", result.DailyTargetCents)
	}
	if result.SafetyMarginCents != 3_423_754 {
		t.Errorf("expected safety margin 3423754, got %d", result.SafetyMarginCents)
	}
}

func TestBreakEvenZeroWorkDays(t *testing.T) {
	result, err := BreakEven(BreakEvenInput{
		MonthlyFixedCostsCents: 1_000_000,
		VariableCostRatio:      0.5,
		WorkDays:               0,
	})
	if err != nil {
		t.Fatalf("BreakEven failed: %v", err)
	}
	if result.DailyTargetCents != 0 {
		t.Errorf("expected zero daily target without work days, got %d", result.DailyTargetCents)
	}
}

func TestVariableCostPercentage(t *testing.T) {
	treatments := []TreatmentCost{
		{PriceCents: 100_000, VariableCostCents: 30_000},
		{PriceCents: 200_000, VariableCostCents: 80_000},
	}
	if got := VariableCostPercentage(treatments); got != 36.7 {
		t.Errorf("expected 36.7, got %v", got)
	}
}

func TestVariableCostPercentageCapsOutliers(t *testing.T) {
	// Variable cost above price counts only up to the price.
	treatments := []TreatmentCost{
		{PriceCents: 100_000, VariableCostCents: 250_000},
	}
	if got := VariableCostPercentage(treatments); got != 100 {
		t.Errorf("expected 100, got %v", got)
	}
}

func TestVariableCostPercentageSkipsFreeTreatments(t *testing.T) {
	treatments := []TreatmentCost{
		{PriceCents: 0, VariableCostCents: 50_000},
		{PriceCents: 100_000, VariableCostCents: 20_000},
	}
	if got := VariableCostPercentage(treatments); got != 20 {
		t.Errorf("expected 20, got %v", got)
	}
}

func TestVariableCostPercentageNoData(t *testing.T) {
	if got := VariableCostPercentage(nil); got != 0 {
		t.Errorf("expected 0 for empty input, got %v", got)
	}
}
