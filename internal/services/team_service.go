package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentia/clinic-api/internal/models"
	"github.com/dentia/clinic-api/internal/permissions"
	"github.com/dentia/clinic-api/internal/repository"
)

const invitationTTL = 7 * 24 * time.Hour

// TeamService handles membership and invitation business logic.
type TeamService struct {
	members     *repository.MemberRepository
	invitations *repository.InvitationRepository
	memberCache *repository.CachedMembershipSource
}

// NewTeamService creates a new team service
func NewTeamService(
	members *repository.MemberRepository,
	invitations *repository.InvitationRepository,
	memberCache *repository.CachedMembershipSource,
) *TeamService {
	return &TeamService{
		members:     members,
		invitations: invitations,
		memberCache: memberCache,
	}
}

// ListMembers returns the active members of a clinic.
func (s *TeamService) ListMembers(ctx context.Context, clinicID uuid.UUID) ([]models.ClinicMember, error) {
	return s.members.ListClinicMembers(ctx, clinicID)
}

// UpdateMemberRole changes a member's role and custom permission overrides.
// Custom permission keys must exist in the catalog.
func (s *TeamService) UpdateMemberRole(ctx context.Context, clinicID, userID uuid.UUID, req models.UpdateMemberRequest) (*models.ClinicMember, error) {
	if err := validatePermissionKeys(req.CustomPermissions); err != nil {
		return nil, err
	}

	member, err := s.members.GetClinicMember(ctx, clinicID, userID)
	if err != nil {
		return nil, err
	}

	member.Role = req.Role
	member.CustomPermissions = req.CustomPermissions
	if err := s.members.UpdateClinicMember(ctx, member); err != nil {
		return nil, err
	}

	if err := s.memberCache.InvalidateClinic(ctx, clinicID); err != nil {
		return nil, fmt.Errorf("failed to invalidate membership cache: %w", err)
	}
	return member, nil
}

// RemoveMember deactivates a clinic membership.
func (s *TeamService) RemoveMember(ctx context.Context, clinicID, userID uuid.UUID) error {
	if err := s.members.RemoveClinicMember(ctx, clinicID, userID); err != nil {
		return err
	}
	return s.memberCache.InvalidateClinic(ctx, clinicID)
}

// Invite creates an invitation with a fresh token and expiry. An existing
// pending invitation for the same email is a conflict.
func (s *TeamService) Invite(ctx context.Context, workspaceID uuid.UUID, invitedBy uuid.UUID, req models.CreateInvitationRequest) (*models.Invitation, error) {
	if err := validatePermissionKeys(req.CustomPermissions); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if _, err := s.invitations.PendingByEmail(ctx, workspaceID, req.Email, now); err == nil {
		return nil, fmt.Errorf("%w: an invitation for %s is already pending", models.ErrConflict, req.Email)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	token, err := newInvitationToken()
	if err != nil {
		return nil, err
	}

	invitation := &models.Invitation{
		WorkspaceID:       workspaceID,
		Email:             req.Email,
		Role:              req.Role,
		Message:           req.Message,
		CustomPermissions: req.CustomPermissions,
		Token:             token,
		InvitedBy:         invitedBy,
		ExpiresAt:         now.Add(invitationTTL),
	}
	if req.ClinicID != "" {
		clinicID, err := uuid.Parse(req.ClinicID)
		if err != nil {
			return nil, fmt.Errorf("invalid clinic id: %w", err)
		}
		invitation.ClinicID = &clinicID
	}

	if err := s.invitations.Create(ctx, invitation); err != nil {
		return nil, err
	}
	return invitation, nil
}

// ListInvitations returns a workspace's invitations with derived status.
func (s *TeamService) ListInvitations(ctx context.Context, workspaceID uuid.UUID) ([]models.Invitation, error) {
	return s.invitations.ListByWorkspace(ctx, workspaceID)
}

// Resend extends a pending invitation's expiry and rotates its token.
// Accepted, rejected or expired invitations cannot be resent.
func (s *TeamService) Resend(ctx context.Context, workspaceID, invitationID uuid.UUID) (*models.Invitation, error) {
	invitation, err := s.invitations.GetByID(ctx, workspaceID, invitationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if status := invitation.Status(now); status != models.InvitationPending {
		return nil, fmt.Errorf("%w: invitation is %s", models.ErrConflict, status)
	}

	token, err := newInvitationToken()
	if err != nil {
		return nil, err
	}
	invitation.Token = token
	invitation.ExpiresAt = now.Add(invitationTTL)
	invitation.ResentCount++
	invitation.LastResentAt = &now

	if err := s.invitations.Update(ctx, invitation); err != nil {
		return nil, err
	}
	return invitation, nil
}

// Accept finalises an invitation for the accepting user and creates the
// membership. Terminal states (accepted, rejected, expired) are conflicts.
func (s *TeamService) Accept(ctx context.Context, token string, userID uuid.UUID) (*models.Invitation, error) {
	invitation, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if status := invitation.Status(now); status != models.InvitationPending {
		return nil, fmt.Errorf("%w: invitation is %s", models.ErrConflict, status)
	}

	if err := s.invitations.Accept(ctx, invitation, userID, now); err != nil {
		return nil, err
	}
	if invitation.ClinicID != nil {
		if err := s.memberCache.InvalidateClinic(ctx, *invitation.ClinicID); err != nil {
			return nil, fmt.Errorf("failed to invalidate membership cache: %w", err)
		}
	}
	return invitation, nil
}

// Reject marks an invitation rejected. Terminal states are conflicts.
func (s *TeamService) Reject(ctx context.Context, token string) (*models.Invitation, error) {
	invitation, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if status := invitation.Status(now); status != models.InvitationPending {
		return nil, fmt.Errorf("%w: invitation is %s", models.ErrConflict, status)
	}

	invitation.RejectedAt = &now
	if err := s.invitations.Update(ctx, invitation); err != nil {
		return nil, err
	}
	return invitation, nil
}

// ListCustomRoles returns the custom roles of a workspace.
func (s *TeamService) ListCustomRoles(ctx context.Context, workspaceID uuid.UUID) ([]models.CustomRole, error) {
	return s.members.ListCustomRoles(ctx, workspaceID)
}

// CreateCustomRole defines a new role template for the workspace. Every
// permission key must exist in the catalog.
func (s *TeamService) CreateCustomRole(ctx context.Context, workspaceID uuid.UUID, req models.CreateRoleRequest) (*models.CustomRole, error) {
	if err := validatePermissionKeys(req.Permissions); err != nil {
		return nil, err
	}

	role := &models.CustomRole{
		WorkspaceID: workspaceID,
		Name:        req.Name,
		Slug:        slugify(req.Name),
		Description: req.Description,
		Scope:       req.Scope,
		BaseRole:    req.BaseRole,
		Permissions: req.Permissions,
		IsActive:    true,
	}
	if err := s.members.CreateCustomRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(slug), "-")
}

func validatePermissionKeys(perms map[string]bool) error {
	for key := range perms {
		if !permissions.Valid(permissions.Permission(key)) {
			return fmt.Errorf("unknown permission: %s", key)
		}
	}
	return nil
}

func newInvitationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invitation token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
