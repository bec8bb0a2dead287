package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentia/clinic-api/internal/models"
)

// InvitationRepository handles invitation database operations
type InvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// Create creates a new invitation
func (r *InvitationRepository) Create(ctx context.Context, invitation *models.Invitation) error {
	if err := r.db.WithContext(ctx).Create(invitation).Error; err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

// GetByID retrieves an invitation scoped to a workspace
func (r *InvitationRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return &invitation, nil
}

// GetByToken retrieves an invitation by its opaque token
func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return &invitation, nil
}

// ListByWorkspace retrieves all invitations of a workspace, newest first
func (r *InvitationRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Invitation, error) {
	var invitations []models.Invitation
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

// PendingByEmail retrieves a pending, unexpired invitation for an email in
// a workspace, or ErrNotFound
func (r *InvitationRepository) PendingByEmail(ctx context.Context, workspaceID uuid.UUID, email string, now time.Time) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND email = ? AND accepted_at IS NULL AND rejected_at IS NULL AND expires_at > ?",
			workspaceID, email, now).
		First(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pending invitation: %w", err)
	}
	return &invitation, nil
}

// Update saves changes to an invitation
func (r *InvitationRepository) Update(ctx context.Context, invitation *models.Invitation) error {
	if err := r.db.WithContext(ctx).Save(invitation).Error; err != nil {
		return fmt.Errorf("failed to update invitation: %w", err)
	}
	return nil
}

// Accept marks the invitation accepted and creates the memberships in one
// transaction. The caller has already checked the invitation is pending.
func (r *InvitationRepository) Accept(ctx context.Context, invitation *models.Invitation, userID uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invitation.AcceptedAt = &now
		if err := tx.Save(invitation).Error; err != nil {
			return fmt.Errorf("failed to accept invitation: %w", err)
		}

		if invitation.ClinicID != nil {
			member := models.ClinicMember{
				ClinicID:          *invitation.ClinicID,
				UserID:            userID,
				Role:              invitation.Role,
				CustomPermissions: invitation.CustomPermissions,
				IsActive:          true,
			}
			if err := tx.Create(&member).Error; err != nil {
				return fmt.Errorf("failed to create clinic member: %w", err)
			}
			return nil
		}

		member := models.WorkspaceMember{
			WorkspaceID:       invitation.WorkspaceID,
			UserID:            userID,
			Role:              invitation.Role,
			CustomPermissions: invitation.CustomPermissions,
			IsActive:          true,
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("failed to create workspace member: %w", err)
		}
		return nil
	})
}
