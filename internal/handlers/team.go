package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dentia/clinic-api/internal/clinicctx"
	"github.com/dentia/clinic-api/internal/middleware"
	"github.com/dentia/clinic-api/internal/models"
	"github.com/dentia/clinic-api/internal/permissions"
	"github.com/dentia/clinic-api/internal/repository"
	"github.com/dentia/clinic-api/internal/services"
)

// TeamHandler serves the membership, invitation and role endpoints.
type TeamHandler struct {
	team  *services.TeamService
	audit *repository.AuditRepository
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(team *services.TeamService, audit *repository.AuditRepository) *TeamHandler {
	return &TeamHandler{team: team, audit: audit}
}

// ListMembers returns the clinic's active members.
func (h *TeamHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	members, err := h.team.ListMembers(r.Context(), membership.ClinicID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeList(w, members, len(members))
}

// UpdateMember changes a member's role or permission overrides.
func (h *TeamHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeBadRequest(w, "invalid user id")
		return
	}

	var req models.UpdateMemberRequest
	if !decodeValid(w, r, &req) {
		return
	}

	member, err := h.team.UpdateMemberRole(r.Context(), membership.ClinicID, userID, req)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	h.record(r, membership.ClinicID, "team.role_changed", userID.String())
	writeData(w, http.StatusOK, member)
}

// RemoveMember deactivates a clinic membership.
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeBadRequest(w, "invalid user id")
		return
	}

	if err := h.team.RemoveMember(r.Context(), membership.ClinicID, userID); err != nil {
		writeErr(w, r, err)
		return
	}

	h.record(r, membership.ClinicID, "team.member_removed", userID.String())
	w.WriteHeader(http.StatusNoContent)
}

// CreateInvitation invites an email address into the workspace.
func (h *TeamHandler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())
	userID, _ := middleware.GetUserID(r.Context())

	var req models.CreateInvitationRequest
	if !decodeValid(w, r, &req) {
		return
	}

	invitation, err := h.team.Invite(r.Context(), membership.WorkspaceID, userID, req)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	h.record(r, membership.ClinicID, "team.invited", invitation.ID.String())
	writeData(w, http.StatusCreated, invitation)
}

// invitationResponse augments the record with its derived status.
type invitationResponse struct {
	models.Invitation
	Status models.InvitationStatus `json:"status"`
}

// ListInvitations returns the workspace's invitations with derived status.
func (h *TeamHandler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	invitations, err := h.team.ListInvitations(r.Context(), membership.WorkspaceID)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	now := time.Now().UTC()
	out := make([]invitationResponse, len(invitations))
	for i, inv := range invitations {
		out[i] = invitationResponse{Invitation: inv, Status: inv.Status(now)}
	}
	writeList(w, out, len(out))
}

// ResendInvitation rotates a pending invitation's token and extends its
// expiry.
func (h *TeamHandler) ResendInvitation(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	invitation, err := h.team.Resend(r.Context(), membership.WorkspaceID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, invitation)
}

// AcceptInvitation accepts an invitation token on behalf of the
// authenticated user and creates the membership.
func (h *TeamHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	token := chi.URLParam(r, "token")
	if token == "" {
		writeBadRequest(w, "token is required")
		return
	}

	invitation, err := h.team.Accept(r.Context(), token, userID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, invitation)
}

// RejectInvitation declines an invitation token.
func (h *TeamHandler) RejectInvitation(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeBadRequest(w, "token is required")
		return
	}

	invitation, err := h.team.Reject(r.Context(), token)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, invitation)
}

// ListCustomRoles returns the workspace's custom role templates.
func (h *TeamHandler) ListCustomRoles(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	roles, err := h.team.ListCustomRoles(r.Context(), membership.WorkspaceID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeList(w, roles, len(roles))
}

// CreateCustomRole defines a new role template for the workspace.
func (h *TeamHandler) CreateCustomRole(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	var req models.CreateRoleRequest
	if !decodeValid(w, r, &req) {
		return
	}

	role, err := h.team.CreateCustomRole(r.Context(), membership.WorkspaceID, req)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	h.record(r, membership.ClinicID, "team.role_created", role.ID.String())
	writeData(w, http.StatusCreated, role)
}

// ListPermissions returns the full permission catalog for role editors.
func (h *TeamHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	all := permissions.All()
	writeList(w, all, len(all))
}

// record writes an audit entry; failures are logged, never surfaced.
func (h *TeamHandler) record(r *http.Request, clinicID uuid.UUID, action, resourceID string) {
	userID, _ := middleware.GetUserID(r.Context())
	entry := &models.AuditLog{
		ClinicID:     clinicID,
		UserID:       userID,
		Action:       action,
		ResourceType: "team",
		ResourceID:   resourceID,
		IPAddress:    r.RemoteAddr,
		Status:       "success",
	}
	if err := h.audit.Create(r.Context(), entry); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("Failed to write audit log")
	}
}
