package handlers

import (
	"net/http"

	"github.com/dentia/clinic-api/internal/clinicctx"
	"github.com/dentia/clinic-api/internal/middleware"
	"github.com/dentia/clinic-api/internal/models"
	"github.com/dentia/clinic-api/internal/services"
)

// NotificationHandler serves the push subscription endpoints.
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// Subscribe registers the caller's browser push endpoint.
func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())
	userID, _ := middleware.GetUserID(r.Context())

	var req models.SubscribeRequest
	if !decodeValid(w, r, &req) {
		return
	}

	sub, err := h.notifications.Subscribe(r.Context(), userID, membership.ClinicID, req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, sub)
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
}

// Unsubscribe deactivates the caller's subscription for an endpoint.
func (h *NotificationHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req unsubscribeRequest
	if !decodeValid(w, r, &req) {
		return
	}

	if err := h.notifications.Unsubscribe(r.Context(), userID, req.Endpoint); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History lists recent notification deliveries for the clinic.
func (h *NotificationHandler) History(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	notifications, err := h.notifications.History(
		r.Context(),
		membership.ClinicID,
		queryInt(r, "limit", 50),
		queryInt(r, "offset", 0),
	)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeList(w, notifications, len(notifications))
}
