package handlers

import (
	"net/http"

	"github.com/dentia/clinic-api/internal/clinicctx"
	"github.com/dentia/clinic-api/internal/services"
)

// AnalyticsHandler serves the financial report endpoints.
type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Summary returns the current month's dashboard snapshot.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	summary, err := h.analytics.Summary(r.Context(), membership.ClinicID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

// BreakEven returns the clinic's break-even analysis.
func (h *AnalyticsHandler) BreakEven(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	report, err := h.analytics.BreakEven(r.Context(), membership.ClinicID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

// WorkingDays returns the detected and effective working-day pattern.
func (h *AnalyticsHandler) WorkingDays(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	report, err := h.analytics.WorkingDays(r.Context(), membership.ClinicID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

// Predictions returns the revenue projection. A clinic with no completed
// treatments gets an empty prediction.
func (h *AnalyticsHandler) Predictions(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	prediction, err := h.analytics.Predictions(r.Context(), membership.ClinicID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if prediction == nil {
		writeData(w, http.StatusOK, map[string]any{"available": false})
		return
	}
	writeData(w, http.StatusOK, prediction)
}

// MarketingOverview returns ROI metrics for every campaign.
func (h *AnalyticsHandler) MarketingOverview(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	overview, err := h.analytics.MarketingOverview(r.Context(), membership.ClinicID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeList(w, overview, len(overview))
}

// CampaignROI returns acquisition metrics for one campaign.
func (h *AnalyticsHandler) CampaignROI(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	roi, err := h.analytics.CampaignROI(r.Context(), membership.ClinicID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, roi)
}
