package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dentia/clinic-api/internal/calc"
	"github.com/dentia/clinic-api/internal/clinicctx"
	"github.com/dentia/clinic-api/internal/models"
	"github.com/dentia/clinic-api/internal/repository"
	"github.com/dentia/clinic-api/internal/services"
)

// FinanceHandler serves the expense, fixed cost, asset and time-settings
// endpoints. Writes invalidate the clinic's cached analytics.
type FinanceHandler struct {
	finance   *repository.FinanceRepository
	analytics *services.AnalyticsService
}

// NewFinanceHandler creates a new finance handler
func NewFinanceHandler(finance *repository.FinanceRepository, analytics *services.AnalyticsService) *FinanceHandler {
	return &FinanceHandler{finance: finance, analytics: analytics}
}

// ListExpenses returns expenses filtered by category, vendor, date range,
// amount range and recurrence.
func (h *FinanceHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	query := repository.ExpenseQuery{
		Vendor: r.URL.Query().Get("vendor"),
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}

	categoryID, err := parseOptionalUUID(r.URL.Query().Get("category_id"))
	if err != nil {
		writeBadRequest(w, "invalid category_id")
		return
	}
	query.CategoryID = categoryID

	if query.From, err = queryDate(r, "from"); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if query.To, err = queryDate(r, "to"); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if raw := r.URL.Query().Get("min_amount"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeBadRequest(w, "invalid min_amount")
			return
		}
		query.MinAmount = &v
	}
	if raw := r.URL.Query().Get("max_amount"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeBadRequest(w, "invalid max_amount")
			return
		}
		query.MaxAmount = &v
	}
	if raw := r.URL.Query().Get("is_recurring"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeBadRequest(w, "invalid is_recurring")
			return
		}
		query.IsRecurring = &v
	}

	expenses, err := h.finance.ListExpenses(r.Context(), membership.ClinicID, query)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeList(w, expenses, len(expenses))
}

// CreateExpense records an expense.
func (h *FinanceHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	var req models.ExpenseRequest
	if !decodeValid(w, r, &req) {
		return
	}

	expense := &models.Expense{ClinicID: membership.ClinicID}
	if err := applyExpenseRequest(expense, req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.finance.CreateExpense(r.Context(), expense); err != nil {
		writeErr(w, r, err)
		return
	}
	h.analytics.InvalidateClinic(r.Context(), membership.ClinicID)
	writeData(w, http.StatusCreated, expense)
}

// UpdateExpense edits an expense.
func (h *FinanceHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req models.ExpenseRequest
	if !decodeValid(w, r, &req) {
		return
	}

	expense, err := h.finance.GetExpense(r.Context(), membership.ClinicID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := applyExpenseRequest(expense, req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.finance.UpdateExpense(r.Context(), expense); err != nil {
		writeErr(w, r, err)
		return
	}
	h.analytics.InvalidateClinic(r.Context(), membership.ClinicID)
	writeData(w, http.StatusOK, expense)
}

// DeleteExpense soft-deletes an expense.
func (h *FinanceHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.finance.DeleteExpense(r.Context(), membership.ClinicID, id); err != nil {
		writeErr(w, r, err)
		return
	}
	h.analytics.InvalidateClinic(r.Context(), membership.ClinicID)
	w.WriteHeader(http.StatusNoContent)
}

// ListFixedCosts returns the clinic's fixed costs.
func (h *FinanceHandler) ListFixedCosts(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	costs, err := h.finance.ListFixedCosts(r.Context(), membership.ClinicID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeList(w, costs, len(costs))
}

// CreateFixedCost records a recurring cost.
func (h *FinanceHandler) CreateFixedCost(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	var req models.FixedCostRequest
	if !decodeValid(w, r, &req) {
		return
	}

	cost := &models.FixedCost{
		ClinicID:    membership.ClinicID,
		Name:        req.Name,
		AmountCents: req.AmountCents,
		Frequency:   req.Frequency,
	}
	if cost.Frequency == "" {
		cost.Frequency = "monthly"
	}

	if err := h.finance.CreateFixedCost(r.Context(), cost); err != nil {
		writeErr(w, r, err)
		return
	}
	h.analytics.InvalidateClinic(r.Context(), membership.ClinicID)
	writeData(w, http.StatusCreated, cost)
}

// UpdateFixedCost edits a fixed cost.
func (h *FinanceHandler) UpdateFixedCost(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req models.FixedCostRequest
	if !decodeValid(w, r, &req) {
		return
	}

	cost, err := h.finance.GetFixedCost(r.Context(), membership.ClinicID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	cost.Name = req.Name
	cost.AmountCents = req.AmountCents
	if req.Frequency != "" {
		cost.Frequency = req.Frequency
	}

	if err := h.finance.UpdateFixedCost(r.Context(), cost); err != nil {
		writeErr(w, r, err)
		return
	}
	h.analytics.InvalidateClinic(r.Context(), membership.ClinicID)
	writeData(w, http.StatusOK, cost)
}

// DeleteFixedCost soft-deletes a fixed cost.
func (h *FinanceHandler) DeleteFixedCost(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.finance.DeleteFixedCost(r.Context(), membership.ClinicID, id); err != nil {
		writeErr(w, r, err)
		return
	}
	h.analytics.InvalidateClinic(r.Context(), membership.ClinicID)
	w.WriteHeader(http.StatusNoContent)
}

// ListAssets returns the clinic's depreciating assets.
func (h *FinanceHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	assets, err := h.finance.ListAssets(r.Context(), membership.ClinicID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeList(w, assets, len(assets))
}

// CreateAsset records a depreciating purchase.
func (h *FinanceHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	var req models.AssetRequest
	if !decodeValid(w, r, &req) {
		return
	}

	asset := &models.Asset{ClinicID: membership.ClinicID}
	if err := applyAssetRequest(asset, req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.finance.CreateAsset(r.Context(), asset); err != nil {
		writeErr(w, r, err)
		return
	}
	h.analytics.InvalidateClinic(r.Context(), membership.ClinicID)
	writeData(w, http.StatusCreated, asset)
}

// UpdateAsset edits an asset.
func (h *FinanceHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req models.AssetRequest
	if !decodeValid(w, r, &req) {
		return
	}

	asset, err := h.finance.GetAsset(r.Context(), membership.ClinicID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := applyAssetRequest(asset, req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.finance.UpdateAsset(r.Context(), asset); err != nil {
		writeErr(w, r, err)
		return
	}
	h.analytics.InvalidateClinic(r.Context(), membership.ClinicID)
	writeData(w, http.StatusOK, asset)
}

// DeleteAsset soft-deletes an asset.
func (h *FinanceHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.finance.DeleteAsset(r.Context(), membership.ClinicID, id); err != nil {
		writeErr(w, r, err)
		return
	}
	h.analytics.InvalidateClinic(r.Context(), membership.ClinicID)
	w.WriteHeader(http.StatusNoContent)
}

type depreciationResponse struct {
	AssetID                  uuid.UUID `json:"asset_id"`
	MonthlyDepreciationCents int64     `json:"monthly_depreciation_cents"`
	ElapsedMonths            int       `json:"elapsed_months"`
	RemainingMonths          int       `json:"remaining_months"`
	AccumulatedCents         int64     `json:"accumulated_cents"`
	BookValueCents           int64     `json:"book_value_cents"`
}

// AssetDepreciation reports an asset's straight-line depreciation state.
func (h *FinanceHandler) AssetDepreciation(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	asset, err := h.finance.GetAsset(r.Context(), membership.ClinicID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	monthly, err := calc.MonthlyDepreciation(asset.PurchasePriceCents, asset.DepreciationMonths)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	elapsed := monthsSince(asset.PurchasedAt, time.Now().UTC())
	if elapsed > asset.DepreciationMonths {
		elapsed = asset.DepreciationMonths
	}
	accumulated, err := calc.AccumulatedDepreciation(monthly, elapsed)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	writeData(w, http.StatusOK, depreciationResponse{
		AssetID:                  asset.ID,
		MonthlyDepreciationCents: monthly,
		ElapsedMonths:            elapsed,
		RemainingMonths:          asset.DepreciationMonths - elapsed,
		AccumulatedCents:         accumulated,
		BookValueCents:           calc.BookValue(asset.PurchasePriceCents, accumulated),
	})
}

// monthsSince counts whole calendar months from purchase to now.
func monthsSince(from, now time.Time) int {
	if from.IsZero() || from.After(now) {
		return 0
	}
	months := (now.Year()-from.Year())*12 + int(now.Month()) - int(from.Month())
	if now.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// GetTimeSettings returns the clinic's working-day configuration, with
// defaults when nothing is stored yet.
func (h *FinanceHandler) GetTimeSettings(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	settings, err := h.finance.GetTimeSettings(r.Context(), membership.ClinicID)
	if err != nil {
		if !isNotFound(err) {
			writeErr(w, r, err)
			return
		}
		settings = &models.TimeSettings{
			ClinicID:      membership.ClinicID,
			WorkDays:      models.DefaultWorkDays,
			UseHistorical: true,
		}
	}
	writeData(w, http.StatusOK, settings)
}

type timeSettingsRequest struct {
	WorkDays      int             `json:"work_days" validate:"gte=0,lte=31"`
	WeekdayHours  map[string]bool `json:"weekday_pattern,omitempty"`
	UseHistorical bool            `json:"use_historical"`
}

// UpdateTimeSettings upserts the working-day configuration.
func (h *FinanceHandler) UpdateTimeSettings(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	var req timeSettingsRequest
	if !decodeValid(w, r, &req) {
		return
	}

	settings := &models.TimeSettings{
		ClinicID:      membership.ClinicID,
		WorkDays:      req.WorkDays,
		WeekdayHours:  req.WeekdayHours,
		UseHistorical: req.UseHistorical,
	}
	if settings.WorkDays == 0 {
		settings.WorkDays = models.DefaultWorkDays
	}

	if err := h.finance.UpsertTimeSettings(r.Context(), settings); err != nil {
		writeErr(w, r, err)
		return
	}
	h.analytics.InvalidateClinic(r.Context(), membership.ClinicID)
	writeData(w, http.StatusOK, settings)
}

func applyExpenseRequest(expense *models.Expense, req models.ExpenseRequest) error {
	expense.Description = req.Description
	expense.Vendor = req.Vendor
	expense.AmountCents = req.AmountCents
	expense.IsRecurring = req.IsRecurring

	date, err := parseDate(req.ExpenseDate)
	if err != nil {
		return err
	}
	expense.ExpenseDate = date

	categoryID, err := parseOptionalUUID(req.CategoryID)
	if err != nil {
		return err
	}
	expense.CategoryID = categoryID
	return nil
}

func applyAssetRequest(asset *models.Asset, req models.AssetRequest) error {
	asset.Name = req.Name
	asset.Category = req.Category
	asset.PurchasePriceCents = req.PurchasePriceCents
	asset.DepreciationMonths = req.DepreciationMonths

	if req.PurchasedAt != "" {
		purchased, err := parseDate(req.PurchasedAt)
		if err != nil {
			return err
		}
		asset.PurchasedAt = purchased
	}
	return nil
}
