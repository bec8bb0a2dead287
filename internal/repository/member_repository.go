package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dentia/clinic-api/internal/clinicctx"
	"github.com/dentia/clinic-api/internal/models"
	"github.com/dentia/clinic-api/internal/permissions"
)

// MemberRepository handles workspace and clinic membership database
// operations. It also implements clinicctx.Source.
type MemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Membership resolves the user's membership in one clinic, or nil when the
// user does not belong to it
func (r *MemberRepository) Membership(ctx context.Context, userID, clinicID uuid.UUID) (*clinicctx.Membership, error) {
	var clinic models.Clinic
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", clinicID, true).
		First(&clinic).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}

	membership := clinicctx.Membership{
		ClinicID:    clinic.ID,
		WorkspaceID: clinic.WorkspaceID,
	}

	var wm models.WorkspaceMember
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ? AND is_active = ?", clinic.WorkspaceID, userID, true).
		First(&wm).Error
	switch {
	case err == nil:
		membership.WorkspaceRole = wm.Role
		membership.WorkspaceOverrides = toPermissionMap(wm.CustomPermissions)
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Clinic-only member, workspace role stays empty.
	default:
		return nil, fmt.Errorf("failed to get workspace member: %w", err)
	}

	var cm models.ClinicMember
	err = r.db.WithContext(ctx).
		Where("clinic_id = ? AND user_id = ? AND is_active = ?", clinicID, userID, true).
		First(&cm).Error
	switch {
	case err == nil:
		membership.ClinicRole = cm.Role
		membership.ClinicOverrides = toPermissionMap(cm.CustomPermissions)
		membership.CanAccessAllPatients = cm.CanAccessAllPatients
	case errors.Is(err, gorm.ErrRecordNotFound):
		if membership.WorkspaceRole == "" {
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("failed to get clinic member: %w", err)
	}

	return &membership, nil
}

// Memberships resolves every active clinic membership of the user,
// including clinics reachable through a workspace role
func (r *MemberRepository) Memberships(ctx context.Context, userID uuid.UUID) ([]clinicctx.Membership, error) {
	clinicIDs := make(map[uuid.UUID]bool)

	var direct []models.ClinicMember
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&direct).Error; err != nil {
		return nil, fmt.Errorf("failed to list clinic members: %w", err)
	}
	for _, cm := range direct {
		clinicIDs[cm.ClinicID] = true
	}

	var workspaceIDs []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.WorkspaceMember{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Pluck("workspace_id", &workspaceIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to list workspace members: %w", err)
	}
	if len(workspaceIDs) > 0 {
		var viaWorkspace []uuid.UUID
		if err := r.db.WithContext(ctx).Model(&models.Clinic{}).
			Where("workspace_id IN ? AND is_active = ?", workspaceIDs, true).
			Pluck("id", &viaWorkspace).Error; err != nil {
			return nil, fmt.Errorf("failed to list workspace clinics: %w", err)
		}
		for _, id := range viaWorkspace {
			clinicIDs[id] = true
		}
	}

	memberships := make([]clinicctx.Membership, 0, len(clinicIDs))
	for clinicID := range clinicIDs {
		m, err := r.Membership(ctx, userID, clinicID)
		if err != nil {
			return nil, err
		}
		if m != nil {
			memberships = append(memberships, *m)
		}
	}
	return memberships, nil
}

// ListClinicMembers retrieves the active members of a clinic with their
// user records
func (r *MemberRepository) ListClinicMembers(ctx context.Context, clinicID uuid.UUID) ([]models.ClinicMember, error) {
	var members []models.ClinicMember
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("clinic_id = ? AND is_active = ?", clinicID, true).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to list clinic members: %w", err)
	}
	return members, nil
}

// GetClinicMember retrieves one clinic membership
func (r *MemberRepository) GetClinicMember(ctx context.Context, clinicID, userID uuid.UUID) (*models.ClinicMember, error) {
	var member models.ClinicMember
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND user_id = ? AND is_active = ?", clinicID, userID, true).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get clinic member: %w", err)
	}
	return &member, nil
}

// UpdateClinicMember saves role or permission changes on a membership
func (r *MemberRepository) UpdateClinicMember(ctx context.Context, member *models.ClinicMember) error {
	if err := r.db.WithContext(ctx).Save(member).Error; err != nil {
		return fmt.Errorf("failed to update clinic member: %w", err)
	}
	return nil
}

// RemoveClinicMember deactivates a clinic membership
func (r *MemberRepository) RemoveClinicMember(ctx context.Context, clinicID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.ClinicMember{}).
		Where("clinic_id = ? AND user_id = ? AND is_active = ?", clinicID, userID, true).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to remove clinic member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListCustomRoles retrieves the active custom roles of a workspace
func (r *MemberRepository) ListCustomRoles(ctx context.Context, workspaceID uuid.UUID) ([]models.CustomRole, error) {
	var roles []models.CustomRole
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND is_active = ?", workspaceID, true).
		Order("name ASC").
		Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to list custom roles: %w", err)
	}
	return roles, nil
}

// CreateCustomRole creates a custom role
func (r *MemberRepository) CreateCustomRole(ctx context.Context, role *models.CustomRole) error {
	if err := r.db.WithContext(ctx).Create(role).Error; err != nil {
		return fmt.Errorf("failed to create custom role: %w", err)
	}
	return nil
}

func toPermissionMap(raw map[string]bool) permissions.Map {
	if len(raw) == 0 {
		return nil
	}
	m := make(permissions.Map, len(raw))
	for k, v := range raw {
		m[permissions.Permission(k)] = v
	}
	return m
}
