package calc

import "testing"

func TestMonthlyDepreciation(t *testing.T) {
	got, err := MonthlyDepreciation(6_762_000, 36)
	if err != nil {
		t.Fatalf("MonthlyDepreciation failed: %v", err)
	}
	if got != 187_833 {
		t.Errorf("expected 187833, got %d", got)
	}
}

func TestMonthlyDepreciationRounding(t *testing.T) {
	got, err := MonthlyDepreciation(100_000, 3)
	if err != nil {
		t.Fatalf("MonthlyDepreciation failed: %v", err)
	}
	if got != 33_333 {
		t.Errorf("expected 33333, got %d", got)
	}

	got, err = MonthlyDepreciation(200_000, 3)
	if err != nil {
		t.Fatalf("MonthlyDepreciation failed: %v", err)
	}
	if got != 66_667 {
		t.Errorf("expected 66667, got %d", got)
	}
}

func TestMonthlyDepreciationInvalidMonths(t *testing.T) {
	if _, err := MonthlyDepreciation(100_000, 0); err == nil {
		t.Error("expected error for zero months")
	}
	if _, err := MonthlyDepreciation(100_000, -12); err == nil {
		t.Error("expected error for negative months")
	}
}

func TestAccumulatedDepreciation(t *testing.T) {
	got, err := AccumulatedDepreciation(187_833, 12)
	if err != nil {
		t.Fatalf("AccumulatedDepreciation failed: %v", err)
	}
	if got != 2_253_996 {
		t.Errorf("expected 2253996, got %d", got)
	}

	if _, err := AccumulatedDepreciation(187_833, -1); err == nil {
		t.Error("expected error for negative elapsed months")
	}
}

func TestBookValueFloorsAtZero(t *testing.T) {
	if got := BookValue(6_762_000, 2_253_996); got != 4_508_004 {
		t.Errorf("expected 4508004, got %d", got)
	}
	if got := BookValue(100_000, 150_000); got != 0 {
		t.Errorf("over-depreciated asset should have zero book value, got %d", got)
	}
}

func TestTotalMonthlyDepreciationSkipsInvalidRows(t *testing.T) {
	assets := []AssetInput{
		{PurchasePriceCents: 6_762_000, DepreciationMonths: 36},
		{PurchasePriceCents: 1_200_000, DepreciationMonths: 0},
		{PurchasePriceCents: 360_000, DepreciationMonths: 12},
	}
	if got := TotalMonthlyDepreciation(assets); got != 187_833+30_000 {
		t.Errorf("expected 217833, got %d", got)
	}
}

func TestTotalMonthlyDepreciationEmpty(t *testing.T) {
	if got := TotalMonthlyDepreciation(nil); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}
