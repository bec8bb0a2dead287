package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dentia/clinic-api/internal/cache"
	"github.com/dentia/clinic-api/internal/calc"
	"github.com/dentia/clinic-api/internal/models"
	"github.com/dentia/clinic-api/internal/repository"
)

const (
	variableCostWindowDays = 90
	workdayLookbackDays    = 60
	analyticsTTL           = 10 * time.Minute
	defaultVariableRatio   = 0.35
)

// BreakEvenReport is the full break-even analysis for a clinic.
type BreakEvenReport struct {
	calc.BreakEvenResult
	MonthlyFixedCostsCents   int64   `json:"monthly_fixed_costs_cents"`
	MonthlyDepreciationCents int64   `json:"monthly_depreciation_cents"`
	VariableCostPercent      float64 `json:"variable_cost_percent"`
	VariableRatioSource      string  `json:"variable_ratio_source"` // "historical" or "default"
	WorkDays                 int     `json:"work_days"`
}

// WorkingDaysReport describes the effective working-day configuration.
type WorkingDaysReport struct {
	Detected         *calc.DetectedPattern `json:"detected,omitempty"`
	UsingHistorical  bool                  `json:"using_historical"`
	WorkingDays      []string              `json:"working_days"`
	MonthlyEstimate  int                   `json:"monthly_estimate"`
	MonthDaysElapsed int                   `json:"month_days_elapsed"`
	MonthWorkingDays int                   `json:"month_working_days"`
}

// AnalyticsService computes financial reports for a clinic.
type AnalyticsService struct {
	treatments *repository.TreatmentRepository
	finance    *repository.FinanceRepository
	marketing  *repository.MarketingRepository
	patients   *repository.PatientRepository
	cache      cache.Cache
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	treatments *repository.TreatmentRepository,
	finance *repository.FinanceRepository,
	marketing *repository.MarketingRepository,
	patients *repository.PatientRepository,
	c cache.Cache,
) *AnalyticsService {
	return &AnalyticsService{
		treatments: treatments,
		finance:    finance,
		marketing:  marketing,
		patients:   patients,
		cache:      c,
	}
}

// BreakEven computes the clinic's break-even point. Fixed costs combine the
// configured monthly fixed costs with straight-line asset depreciation; the
// variable ratio comes from the trailing 90 days of completed treatments,
// falling back to the default when there is no history.
func (s *AnalyticsService) BreakEven(ctx context.Context, clinicID uuid.UUID) (*BreakEvenReport, error) {
	key := cache.AnalyticsKey(clinicID.String(), "breakeven")
	if data, err := s.cache.Get(ctx, key); err == nil {
		var report BreakEvenReport
		if err := json.Unmarshal(data, &report); err == nil {
			return &report, nil
		}
	}

	now := time.Now().UTC()

	fixedCosts, err := s.finance.ListFixedCosts(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	var monthlyFixed int64
	for _, fc := range fixedCosts {
		monthlyFixed += fc.MonthlyAmountCents()
	}

	assets, err := s.finance.ListAssets(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	assetInputs := make([]calc.AssetInput, len(assets))
	for i, a := range assets {
		assetInputs[i] = calc.AssetInput{
			PurchasePriceCents: a.PurchasePriceCents,
			DepreciationMonths: a.DepreciationMonths,
		}
	}
	depreciation := calc.TotalMonthlyDepreciation(assetInputs)

	variablePct, source, err := s.variableRatio(ctx, clinicID, now)
	if err != nil {
		return nil, err
	}

	workDays, err := s.workDays(ctx, clinicID, now)
	if err != nil {
		return nil, err
	}

	result, err := calc.BreakEven(calc.BreakEvenInput{
		MonthlyFixedCostsCents: monthlyFixed + depreciation,
		VariableCostRatio:      variablePct / 100,
		WorkDays:               workDays,
	})
	if err != nil {
		return nil, err
	}

	report := &BreakEvenReport{
		BreakEvenResult:          result,
		MonthlyFixedCostsCents:   monthlyFixed,
		MonthlyDepreciationCents: depreciation,
		VariableCostPercent:      variablePct,
		VariableRatioSource:      source,
		WorkDays:                 workDays,
	}

	if data, err := json.Marshal(report); err == nil {
		if err := s.cache.Set(ctx, key, data, analyticsTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache break-even report")
		}
	}
	return report, nil
}

// variableRatio derives the observed variable-cost percentage, or the
// default when the trailing window holds no completed treatments.
func (s *AnalyticsService) variableRatio(ctx context.Context, clinicID uuid.UUID, now time.Time) (float64, string, error) {
	completed, err := s.treatments.CompletedInRange(ctx, clinicID, now.AddDate(0, 0, -variableCostWindowDays), now)
	if err != nil {
		return 0, "", err
	}
	if len(completed) == 0 {
		return defaultVariableRatio * 100, "default", nil
	}

	costs := make([]calc.TreatmentCost, len(completed))
	for i, t := range completed {
		costs[i] = calc.TreatmentCost{
			PriceCents:        t.PriceCents,
			VariableCostCents: t.VariableCostCents,
		}
	}
	pct := calc.VariableCostPercentage(costs)
	if pct == 0 {
		return defaultVariableRatio * 100, "default", nil
	}
	// A window where costs equal revenue leaves no margin to divide by.
	if pct >= 100 {
		pct = 99.9
	}
	return pct, "historical", nil
}

// workDays resolves the clinic's working days per month from its time
// settings and detected pattern.
func (s *AnalyticsService) workDays(ctx context.Context, clinicID uuid.UUID, now time.Time) (int, error) {
	settings, err := s.finance.GetTimeSettings(ctx, clinicID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.DefaultWorkDays, nil
		}
		return 0, err
	}

	if !settings.UseHistorical {
		if settings.WorkDays > 0 {
			return settings.WorkDays, nil
		}
		return models.DefaultWorkDays, nil
	}

	detected, err := s.detectPattern(ctx, clinicID, now)
	if err != nil {
		return 0, err
	}
	effective := calc.EffectiveWorkingSet(settings.WorkingSet(), detected, settings.UseHistorical)
	if days := calc.EstimateMonthlyWorkingDays(effective); days > 0 {
		return days, nil
	}
	if settings.WorkDays > 0 {
		return settings.WorkDays, nil
	}
	return models.DefaultWorkDays, nil
}

func (s *AnalyticsService) detectPattern(ctx context.Context, clinicID uuid.UUID, now time.Time) (*calc.DetectedPattern, error) {
	key := cache.WorkPatternKey(clinicID.String())
	if data, err := s.cache.Get(ctx, key); err == nil {
		var detected calc.DetectedPattern
		if err := json.Unmarshal(data, &detected); err == nil {
			return &detected, nil
		}
	}

	dates, err := s.treatments.TreatmentDates(ctx, clinicID, now.AddDate(0, 0, -workdayLookbackDays), now)
	if err != nil {
		return nil, err
	}
	detected := calc.DetectWorkingDays(dates, workdayLookbackDays, now)
	if detected != nil {
		if data, err := json.Marshal(detected); err == nil {
			if err := s.cache.Set(ctx, key, data, analyticsTTL); err != nil {
				log.Warn().Err(err).Msg("Failed to cache working-day pattern")
			}
		}
	}
	return detected, nil
}

// WorkingDays reports the clinic's effective working-day pattern.
func (s *AnalyticsService) WorkingDays(ctx context.Context, clinicID uuid.UUID) (*WorkingDaysReport, error) {
	now := time.Now().UTC()

	var settings *models.TimeSettings
	settings, err := s.finance.GetTimeSettings(ctx, clinicID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		settings = &models.TimeSettings{UseHistorical: true, WorkDays: models.DefaultWorkDays}
	}

	detected, err := s.detectPattern(ctx, clinicID, now)
	if err != nil {
		return nil, err
	}

	return buildWorkingDaysReport(settings, detected, now), nil
}

// buildWorkingDaysReport assembles the report from the resolved settings
// and detected pattern. Month counters cover the first of the month
// through now.
func buildWorkingDaysReport(settings *models.TimeSettings, detected *calc.DetectedPattern, now time.Time) *WorkingDaysReport {
	effective := calc.EffectiveWorkingSet(settings.WorkingSet(), detected, settings.UseHistorical)
	usingHistorical := settings.UseHistorical && detected != nil && detected.Confidence >= 60

	var names []string
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if effective[wd] {
			names = append(names, wd.String())
		}
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	elapsed, worked := calc.WorkingDaysInRange(monthStart, now, effective)

	return &WorkingDaysReport{
		Detected:         detected,
		UsingHistorical:  usingHistorical,
		WorkingDays:      names,
		MonthlyEstimate:  calc.EstimateMonthlyWorkingDays(effective),
		MonthDaysElapsed: elapsed,
		MonthWorkingDays: worked,
	}
}

// Predictions projects revenue from completed treatment history.
// Returns nil when the clinic has no completed treatments yet.
func (s *AnalyticsService) Predictions(ctx context.Context, clinicID uuid.UUID) (*calc.RevenuePrediction, error) {
	now := time.Now().UTC()
	completed, err := s.treatments.CompletedInRange(ctx, clinicID, now.AddDate(-2, 0, 0), now)
	if err != nil {
		return nil, err
	}

	points := make([]calc.RevenuePoint, len(completed))
	for i, t := range completed {
		points[i] = calc.RevenuePoint{Date: t.TreatmentDate, Cents: t.PriceCents}
	}
	return calc.PredictRevenue(points, now), nil
}

// CampaignROI computes acquisition metrics for one campaign.
func (s *AnalyticsService) CampaignROI(ctx context.Context, clinicID, campaignID uuid.UUID) (*models.CampaignROI, error) {
	campaign, err := s.marketing.GetByID(ctx, clinicID, campaignID)
	if err != nil {
		return nil, err
	}

	patients, err := s.marketing.CountPatients(ctx, clinicID, campaignID)
	if err != nil {
		return nil, err
	}
	revenue, err := s.treatments.RevenueByCampaign(ctx, clinicID, campaignID)
	if err != nil {
		return nil, err
	}

	return buildCampaignROI(campaign, int(patients), revenue, time.Now().UTC()), nil
}

// buildCampaignROI derives the acquisition metrics from a campaign's spend,
// manually tracked leads, attributed patients and their revenue. Payback
// spreads the average lifetime value over the months the campaign has run.
func buildCampaignROI(campaign *models.Campaign, patients int, revenueCents int64, now time.Time) *models.CampaignROI {
	cac := calc.CAC(campaign.SpentCents, patients)
	ltv := calc.LTV(revenueCents, patients)
	ratio, quality := calc.LTVCACRatio(ltv, cac)
	monthlyPerPatient := ltv / int64(campaignMonths(campaign.StartDate, campaign.EndDate, now))

	return &models.CampaignROI{
		CampaignID:     campaign.ID,
		Name:           campaign.Name,
		SpentCents:     campaign.SpentCents,
		RevenueCents:   revenueCents,
		Patients:       patients,
		CACCents:       cac,
		LTVCents:       ltv,
		LTVCACRatio:    ratio,
		RatioQuality:   quality,
		ROIPercent:     calc.ROI(revenueCents, campaign.SpentCents),
		ConversionRate: calc.ConversionRate(patients, campaign.LeadCount),
		PaybackMonths:  calc.PaybackPeriodMonths(cac, monthlyPerPatient),
	}
}

// campaignMonths counts whole months the campaign has been live, from its
// start date to its end date or now, whichever comes first. Minimum one.
func campaignMonths(start time.Time, end *time.Time, now time.Time) int {
	until := now
	if end != nil && end.Before(now) {
		until = *end
	}
	if until.Before(start) {
		return 1
	}
	months := (until.Year()-start.Year())*12 + int(until.Month()) - int(start.Month())
	if until.Day() < start.Day() {
		months--
	}
	if months < 1 {
		return 1
	}
	return months
}

// MarketingOverview computes ROI for every campaign of the clinic.
func (s *AnalyticsService) MarketingOverview(ctx context.Context, clinicID uuid.UUID) ([]models.CampaignROI, error) {
	campaigns, err := s.marketing.List(ctx, clinicID, false)
	if err != nil {
		return nil, err
	}

	overview := make([]models.CampaignROI, 0, len(campaigns))
	for _, c := range campaigns {
		roi, err := s.CampaignROI(ctx, clinicID, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to compute ROI for campaign %s: %w", c.ID, err)
		}
		overview = append(overview, *roi)
	}
	return overview, nil
}

// InvalidateClinic drops the cached analytics of a clinic after writes that
// change its financial picture.
func (s *AnalyticsService) InvalidateClinic(ctx context.Context, clinicID uuid.UUID) {
	if err := s.cache.Clear(ctx, cache.AnalyticsPattern(clinicID.String())); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate analytics cache")
	}
	if err := s.cache.Delete(ctx, cache.WorkPatternKey(clinicID.String())); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate working-day pattern cache")
	}
}

// MonthlySummary is the dashboard snapshot for the current month.
type MonthlySummary struct {
	Month                string  `json:"month"`
	RevenueCents         int64   `json:"revenue_cents"`
	PreviousRevenueCents int64   `json:"previous_revenue_cents"`
	RevenueGrowthPercent float64 `json:"revenue_growth_percent"`
	ExpensesCents        int64   `json:"expenses_cents"`
	NetCents             int64   `json:"net_cents"`
	NewPatients          int     `json:"new_patients"`
	CompletedTreatments  int     `json:"completed_treatments"`
}

// Summary aggregates the current month's revenue, expenses and patient
// intake, with growth against the previous month.
func (s *AnalyticsService) Summary(ctx context.Context, clinicID uuid.UUID) (*MonthlySummary, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevStart := monthStart.AddDate(0, -1, 0)

	completed, err := s.treatments.CompletedInRange(ctx, clinicID, monthStart, now)
	if err != nil {
		return nil, err
	}
	var revenue int64
	for _, t := range completed {
		revenue += t.PriceCents
	}

	previous, err := s.treatments.CompletedInRange(ctx, clinicID, prevStart, monthStart)
	if err != nil {
		return nil, err
	}
	var prevRevenue int64
	for _, t := range previous {
		prevRevenue += t.PriceCents
	}

	expenses, err := s.finance.SumExpensesInRange(ctx, clinicID, monthStart, now)
	if err != nil {
		return nil, err
	}
	newPatients, err := s.patients.CountNewInRange(ctx, clinicID, monthStart, now)
	if err != nil {
		return nil, err
	}

	return &MonthlySummary{
		Month:                monthStart.Format("2006-01"),
		RevenueCents:         revenue,
		PreviousRevenueCents: prevRevenue,
		RevenueGrowthPercent: calc.GrowthRate(revenue, prevRevenue),
		ExpensesCents:        expenses,
		NetCents:             revenue - expenses,
		NewPatients:          int(newPatients),
		CompletedTreatments:  len(completed),
	}, nil
}
