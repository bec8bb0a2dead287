package handlers

import (
	"net/http"
	"strconv"

	"github.com/dentia/clinic-api/internal/clinicctx"
	"github.com/dentia/clinic-api/internal/models"
	"github.com/dentia/clinic-api/internal/repository"
)

// MarketingHandler serves the campaign CRUD endpoints.
type MarketingHandler struct {
	marketing *repository.MarketingRepository
	patients  *repository.PatientRepository
}

// NewMarketingHandler creates a new marketing handler
func NewMarketingHandler(marketing *repository.MarketingRepository, patients *repository.PatientRepository) *MarketingHandler {
	return &MarketingHandler{marketing: marketing, patients: patients}
}

// ListPatients returns the patients attributed to a campaign.
func (h *MarketingHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	patients, err := h.patients.ListByCampaign(r.Context(), membership.ClinicID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeList(w, patients, len(patients))
}

// List returns the clinic's campaigns. ?active=true narrows to running ones.
func (h *MarketingHandler) List(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))
	campaigns, err := h.marketing.List(r.Context(), membership.ClinicID, activeOnly)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeList(w, campaigns, len(campaigns))
}

// Get returns one campaign.
func (h *MarketingHandler) Get(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	campaign, err := h.marketing.GetByID(r.Context(), membership.ClinicID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, campaign)
}

// Create adds a campaign.
func (h *MarketingHandler) Create(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	var req models.CampaignRequest
	if !decodeValid(w, r, &req) {
		return
	}

	campaign := &models.Campaign{ClinicID: membership.ClinicID, IsActive: true}
	if err := applyCampaignRequest(campaign, req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.marketing.Create(r.Context(), campaign); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, campaign)
}

// Update edits a campaign.
func (h *MarketingHandler) Update(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req models.CampaignRequest
	if !decodeValid(w, r, &req) {
		return
	}

	campaign, err := h.marketing.GetByID(r.Context(), membership.ClinicID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := applyCampaignRequest(campaign, req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.marketing.Update(r.Context(), campaign); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, campaign)
}

// Delete soft-deletes a campaign. Attributed patients keep their
// campaign reference for historical reporting.
func (h *MarketingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.marketing.SoftDelete(r.Context(), membership.ClinicID, id); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func applyCampaignRequest(campaign *models.Campaign, req models.CampaignRequest) error {
	campaign.Name = req.Name
	campaign.Platform = req.Platform
	campaign.BudgetCents = req.BudgetCents
	campaign.SpentCents = req.SpentCents
	campaign.LeadCount = req.LeadCount

	start, err := parseDate(req.StartDate)
	if err != nil {
		return err
	}
	campaign.StartDate = start

	if req.EndDate != "" {
		end, err := parseDate(req.EndDate)
		if err != nil {
			return err
		}
		campaign.EndDate = &end
	} else {
		campaign.EndDate = nil
	}
	return nil
}
