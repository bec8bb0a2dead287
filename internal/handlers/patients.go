package handlers

import (
	"net/http"

	"github.com/dentia/clinic-api/internal/clinicctx"
	"github.com/dentia/clinic-api/internal/models"
	"github.com/dentia/clinic-api/internal/repository"
)

// PatientHandler serves the patient CRUD endpoints.
type PatientHandler struct {
	patients *repository.PatientRepository
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(patients *repository.PatientRepository) *PatientHandler {
	return &PatientHandler{patients: patients}
}

// List returns the clinic's patients, optionally filtered by a search term.
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	search := r.URL.Query().Get("search")

	patients, err := h.patients.List(r.Context(), membership.ClinicID, search, limit, offset)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeList(w, patients, len(patients))
}

// Get returns one patient.
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	patient, err := h.patients.GetByID(r.Context(), membership.ClinicID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, patient)
}

// Create adds a patient to the clinic.
func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	var req models.PatientRequest
	if !decodeValid(w, r, &req) {
		return
	}

	patient := &models.Patient{ClinicID: membership.ClinicID}
	if err := applyPatientRequest(patient, req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.patients.Create(r.Context(), patient); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, patient)
}

// Update replaces a patient's editable fields.
func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req models.PatientRequest
	if !decodeValid(w, r, &req) {
		return
	}

	patient, err := h.patients.GetByID(r.Context(), membership.ClinicID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	if err := applyPatientRequest(patient, req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.patients.Update(r.Context(), patient); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, patient)
}

// Delete soft-deletes a patient.
func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.patients.SoftDelete(r.Context(), membership.ClinicID, id); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func applyPatientRequest(patient *models.Patient, req models.PatientRequest) error {
	patient.FirstName = req.FirstName
	patient.LastName = req.LastName
	patient.Email = req.Email
	patient.Phone = req.Phone
	patient.Notes = req.Notes

	if req.BirthDate != "" {
		birth, err := parseDate(req.BirthDate)
		if err != nil {
			return err
		}
		patient.BirthDate = &birth
	} else {
		patient.BirthDate = nil
	}

	sourceID, err := parseOptionalUUID(req.SourceID)
	if err != nil {
		return err
	}
	patient.SourceID = sourceID

	campaignID, err := parseOptionalUUID(req.CampaignID)
	if err != nil {
		return err
	}
	patient.CampaignID = campaignID
	return nil
}
