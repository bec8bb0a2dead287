package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dentia/clinic-api/internal/clinicctx"
	"github.com/dentia/clinic-api/internal/models"
	"github.com/dentia/clinic-api/internal/repository"
	"github.com/dentia/clinic-api/internal/services"
)

// TreatmentHandler serves the treatment endpoints.
type TreatmentHandler struct {
	treatments *repository.TreatmentRepository
	catalog    *repository.CatalogRepository
	analytics  *services.AnalyticsService
}

// NewTreatmentHandler creates a new treatment handler
func NewTreatmentHandler(
	treatments *repository.TreatmentRepository,
	catalog *repository.CatalogRepository,
	analytics *services.AnalyticsService,
) *TreatmentHandler {
	return &TreatmentHandler{treatments: treatments, catalog: catalog, analytics: analytics}
}

// treatmentResponse overlays the coarse public status onto the record:
// scheduled and in_progress both read as pending.
type treatmentResponse struct {
	*models.Treatment
	Status string `json:"status"`
}

func toTreatmentResponse(t *models.Treatment) treatmentResponse {
	return treatmentResponse{Treatment: t, Status: t.PublicStatus()}
}

func toTreatmentResponses(ts []models.Treatment) []treatmentResponse {
	out := make([]treatmentResponse, len(ts))
	for i := range ts {
		out[i] = toTreatmentResponse(&ts[i])
	}
	return out
}

// List returns treatments filtered by patient, status and date range.
func (h *TreatmentHandler) List(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	filters := repository.TreatmentFilters{
		Status: r.URL.Query().Get("status"),
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}

	patientID, err := parseOptionalUUID(r.URL.Query().Get("patient_id"))
	if err != nil {
		writeBadRequest(w, "invalid patient_id")
		return
	}
	filters.PatientID = patientID

	if filters.From, err = queryDate(r, "from"); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if filters.To, err = queryDate(r, "to"); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	treatments, err := h.treatments.List(r.Context(), membership.ClinicID, filters)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeList(w, toTreatmentResponses(treatments), len(treatments))
}

// Get returns one treatment.
func (h *TreatmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	treatment, err := h.treatments.GetByID(r.Context(), membership.ClinicID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toTreatmentResponse(treatment))
}

// Create schedules a treatment. Price, variable cost and duration default
// to the service's catalog values so later price edits do not rewrite
// history.
func (h *TreatmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	var req models.TreatmentRequest
	if !decodeValid(w, r, &req) {
		return
	}

	patientID, _ := uuid.Parse(req.PatientID)
	serviceID, _ := uuid.Parse(req.ServiceID)

	service, err := h.catalog.GetService(r.Context(), membership.ClinicID, serviceID)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	date, err := parseDate(req.TreatmentDate)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	treatment := &models.Treatment{
		ClinicID:          membership.ClinicID,
		PatientID:         patientID,
		ServiceID:         service.ID,
		TreatmentDate:     date,
		Status:            models.TreatmentScheduled,
		PriceCents:        service.PriceCents,
		VariableCostCents: service.VariableCostCents,
		DurationMinutes:   service.DurationMinutes,
		Notes:             req.Notes,
	}
	if req.Status != "" {
		treatment.Status = models.TreatmentStatus(req.Status)
	}
	if req.PriceCents != nil {
		treatment.PriceCents = *req.PriceCents
	}
	if req.VariableCostCents != nil {
		treatment.VariableCostCents = *req.VariableCostCents
	}
	if req.DurationMinutes > 0 {
		treatment.DurationMinutes = req.DurationMinutes
	}

	if err := h.treatments.Create(r.Context(), treatment); err != nil {
		writeErr(w, r, err)
		return
	}
	h.analytics.InvalidateClinic(r.Context(), membership.ClinicID)
	writeData(w, http.StatusCreated, toTreatmentResponse(treatment))
}

// Update edits a treatment's date, status, pricing and notes.
func (h *TreatmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req models.TreatmentRequest
	if !decodeValid(w, r, &req) {
		return
	}

	treatment, err := h.treatments.GetByID(r.Context(), membership.ClinicID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	date, err := parseDate(req.TreatmentDate)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	treatment.TreatmentDate = date
	treatment.Notes = req.Notes
	if req.Status != "" {
		treatment.Status = models.TreatmentStatus(req.Status)
	}
	if req.PriceCents != nil {
		treatment.PriceCents = *req.PriceCents
	}
	if req.VariableCostCents != nil {
		treatment.VariableCostCents = *req.VariableCostCents
	}
	if req.DurationMinutes > 0 {
		treatment.DurationMinutes = req.DurationMinutes
	}

	if err := h.treatments.Update(r.Context(), treatment); err != nil {
		writeErr(w, r, err)
		return
	}
	h.analytics.InvalidateClinic(r.Context(), membership.ClinicID)
	writeData(w, http.StatusOK, toTreatmentResponse(treatment))
}

// MarkPaid flags a treatment as collected.
func (h *TreatmentHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.treatments.MarkPaid(r.Context(), membership.ClinicID, id, time.Now().UTC()); err != nil {
		writeErr(w, r, err)
		return
	}

	treatment, err := h.treatments.GetByID(r.Context(), membership.ClinicID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toTreatmentResponse(treatment))
}

// Delete soft-deletes a treatment.
func (h *TreatmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.treatments.SoftDelete(r.Context(), membership.ClinicID, id); err != nil {
		writeErr(w, r, err)
		return
	}
	h.analytics.InvalidateClinic(r.Context(), membership.ClinicID)
	w.WriteHeader(http.StatusNoContent)
}
