package services

import (
	"testing"
	"time"

	"github.com/dentia/clinic-api/internal/calc"
	"github.com/dentia/clinic-api/internal/models"
)

func TestBuildCampaignROI(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	campaign := &models.Campaign{
		Name:       "Spring promo",
		SpentCents: 300000,
		LeadCount:  10,
		StartDate:  time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
	}

	roi := buildCampaignROI(campaign, 3, 900000, now)

	if roi.CACCents != 100000 {
		t.Errorf("CACCents = %d, want 100000", roi.CACCents)
	}
	if roi.LTVCents != 300000 {
		t.Errorf("LTVCents = %d, want 300000", roi.LTVCents)
	}
	if roi.LTVCACRatio != 3.0 {
		t.Errorf("LTVCACRatio = %v, want 3.0", roi.LTVCACRatio)
	}
	if roi.RatioQuality != calc.RatioExcellent {
		t.Errorf("RatioQuality = %q, want %q", roi.RatioQuality, calc.RatioExcellent)
	}
	if roi.ROIPercent != 200 {
		t.Errorf("ROIPercent = %v, want 200", roi.ROIPercent)
	}
	if roi.ConversionRate != 30 {
		t.Errorf("ConversionRate = %v, want 30", roi.ConversionRate)
	}
	// Three months active, so monthly revenue per patient is 100000 and
	// the 100000 CAC pays back in one month.
	if roi.PaybackMonths != 1.0 {
		t.Errorf("PaybackMonths = %v, want 1.0", roi.PaybackMonths)
	}
}

func TestBuildCampaignROINoPatients(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	campaign := &models.Campaign{
		Name:       "Flyer drop",
		SpentCents: 50000,
		StartDate:  time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC),
	}

	roi := buildCampaignROI(campaign, 0, 0, now)

	if roi.CACCents != 0 || roi.LTVCents != 0 {
		t.Errorf("expected zero CAC and LTV, got %d and %d", roi.CACCents, roi.LTVCents)
	}
	if roi.RatioQuality != calc.RatioUnknown {
		t.Errorf("RatioQuality = %q, want %q", roi.RatioQuality, calc.RatioUnknown)
	}
	if roi.ConversionRate != 0 || roi.PaybackMonths != 0 {
		t.Errorf("expected zero conversion and payback, got %v and %v", roi.ConversionRate, roi.PaybackMonths)
	}
}

func TestCampaignMonths(t *testing.T) {
	now := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	ended := date(2026, time.March, 10)

	tests := []struct {
		name  string
		start time.Time
		end   *time.Time
		want  int
	}{
		{"running for five months", date(2026, time.January, 10), nil, 5},
		{"stops at the end date", date(2026, time.January, 10), &ended, 2},
		{"starts in the future", date(2026, time.July, 1), nil, 1},
		{"less than a month live", date(2026, time.June, 1), nil, 1},
		{"partial month not counted", date(2026, time.January, 20), nil, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := campaignMonths(tt.start, tt.end, now); got != tt.want {
				t.Errorf("campaignMonths = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuildWorkingDaysReportManual(t *testing.T) {
	// June 1st 2026 is a Monday; the 10th is a Wednesday.
	now := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)
	settings := &models.TimeSettings{WorkDays: 20, UseHistorical: false}

	report := buildWorkingDaysReport(settings, nil, now)

	if report.UsingHistorical {
		t.Error("expected manual configuration to win")
	}
	if len(report.WorkingDays) != 6 {
		t.Errorf("got %d working days, want 6 (Monday-Saturday default)", len(report.WorkingDays))
	}
	if report.MonthlyEstimate != 26 {
		t.Errorf("MonthlyEstimate = %d, want 26", report.MonthlyEstimate)
	}
	if report.MonthDaysElapsed != 10 {
		t.Errorf("MonthDaysElapsed = %d, want 10", report.MonthDaysElapsed)
	}
	// One Sunday (the 7th) falls inside the elapsed window.
	if report.MonthWorkingDays != 9 {
		t.Errorf("MonthWorkingDays = %d, want 9", report.MonthWorkingDays)
	}
}

func TestBuildWorkingDaysReportDetectedPattern(t *testing.T) {
	now := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.UTC)
	settings := &models.TimeSettings{WorkDays: 20, UseHistorical: true}
	detected := &calc.DetectedPattern{
		Pattern:    calc.WeekdayPattern{time.Monday: 1.0},
		Confidence: 80,
		SampleSize: 30,
		DetectedAt: now,
	}

	report := buildWorkingDaysReport(settings, detected, now)

	if !report.UsingHistorical {
		t.Error("expected confident detection to win")
	}
	if len(report.WorkingDays) != 1 || report.WorkingDays[0] != "Monday" {
		t.Errorf("WorkingDays = %v, want [Monday]", report.WorkingDays)
	}
	if report.MonthlyEstimate != 4 {
		t.Errorf("MonthlyEstimate = %d, want 4", report.MonthlyEstimate)
	}
	// Mondays in the elapsed window: the 1st and the 8th.
	if report.MonthWorkingDays != 2 {
		t.Errorf("MonthWorkingDays = %d, want 2", report.MonthWorkingDays)
	}
}
