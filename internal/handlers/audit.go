package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dentia/clinic-api/internal/clinicctx"
	"github.com/dentia/clinic-api/internal/repository"
)

// AuditHandler serves the audit trail endpoints.
type AuditHandler struct {
	audit *repository.AuditRepository
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit *repository.AuditRepository) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List returns the clinic's audit trail, newest first. Passing both
// resource_type and resource_id narrows to one resource's history.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	resourceType := r.URL.Query().Get("resource_type")
	rawResourceID := r.URL.Query().Get("resource_id")

	if resourceType != "" && rawResourceID != "" {
		resourceID, err := uuid.Parse(rawResourceID)
		if err != nil {
			writeBadRequest(w, "invalid resource_id")
			return
		}
		logs, err := h.audit.ListByResource(r.Context(), membership.ClinicID, resourceType, resourceID)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		writeList(w, logs, len(logs))
		return
	}

	logs, err := h.audit.ListByClinic(
		r.Context(),
		membership.ClinicID,
		queryInt(r, "limit", 50),
		queryInt(r, "offset", 0),
	)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeList(w, logs, len(logs))
}
