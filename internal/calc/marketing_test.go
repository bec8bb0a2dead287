package calc

import "testing"

func TestCAC(t *testing.T) {
	if got := CAC(500_000, 10); got != 50_000 {
		t.Errorf("expected 50000, got %d", got)
	}
	if got := CAC(500_000, 0); got != 0 {
		t.Errorf("expected 0 without patients, got %d", got)
	}
	if got := CAC(100_000, 3); got != 33_333 {
		t.Errorf("expected 33333, got %d", got)
	}
}

func TestLTV(t *testing.T) {
	if got := LTV(3_000_000, 10); got != 300_000 {
		t.Errorf("expected 300000, got %d", got)
	}
	if got := LTV(3_000_000, 0); got != 0 {
		t.Errorf("expected 0 without patients, got %d", got)
	}
}

func TestROI(t *testing.T) {
	if got := ROI(1_500_000, 500_000); got != 200 {
		t.Errorf("expected 200, got %v", got)
	}
	if got := ROI(400_000, 500_000); got != -20 {
		t.Errorf("expected -20, got %v", got)
	}
	if got := ROI(1_000_000, 0); got != 0 {
		t.Errorf("expected 0 without spend, got %v", got)
	}
	if got := ROI(1_000_000, 300_000); got != 233.33 {
		t.Errorf("expected 233.33, got %v", got)
	}
}

func TestConversionRate(t *testing.T) {
	if got := ConversionRate(15, 60); got != 25 {
		t.Errorf("expected 25, got %v", got)
	}
	if got := ConversionRate(1, 3); got != 33.33 {
		t.Errorf("expected 33.33, got %v", got)
	}
	if got := ConversionRate(5, 0); got != 0 {
		t.Errorf("expected 0 without leads, got %v", got)
	}
}

func TestLTVCACRatio(t *testing.T) {
	tests := []struct {
		ltv, cac int64
		ratio    float64
		quality  string
	}{
		{300_000, 50_000, 6, RatioExcellent},
		{150_000, 50_000, 3, RatioExcellent},
		{120_000, 50_000, 2.4, RatioGood},
		{75_000, 50_000, 1.5, RatioAcceptable},
		{25_000, 50_000, 0.5, RatioCritical},
		{100_000, 0, 0, RatioUnknown},
	}

	for _, tc := range tests {
		ratio, quality := LTVCACRatio(tc.ltv, tc.cac)
		if ratio != tc.ratio || quality != tc.quality {
			t.Errorf("LTVCACRatio(%d, %d) = %v, %s; want %v, %s",
				tc.ltv, tc.cac, ratio, quality, tc.ratio, tc.quality)
		}
	}
}

func TestGrowthRate(t *testing.T) {
	if got := GrowthRate(1_200_000, 1_000_000); got != 20 {
		t.Errorf("expected 20, got %v", got)
	}
	if got := GrowthRate(800_000, 1_000_000); got != -20 {
		t.Errorf("expected -20, got %v", got)
	}
	if got := GrowthRate(500_000, 0); got != 100 {
		t.Errorf("expected 100 from zero base, got %v", got)
	}
	if got := GrowthRate(0, 0); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestPaybackPeriodMonths(t *testing.T) {
	if got := PaybackPeriodMonths(50_000, 20_000); got != 2.5 {
		t.Errorf("expected 2.5, got %v", got)
	}
	if got := PaybackPeriodMonths(50_000, 0); got != 0 {
		t.Errorf("expected 0 without revenue, got %v", got)
	}
}
