package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkspaceMember grants a user a role across a workspace.
type WorkspaceMember struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	WorkspaceID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_workspace_user,unique" json:"workspace_id"`
	UserID            uuid.UUID      `gorm:"type:uuid;not null;index:idx_workspace_user,unique" json:"user_id"`
	Role              string         `gorm:"type:varchar(50);not null" json:"role"`
	CustomRoleID      *uuid.UUID     `gorm:"type:uuid" json:"custom_role_id,omitempty"`
	CustomPermissions map[string]bool `gorm:"serializer:json;type:jsonb" json:"custom_permissions,omitempty"`
	IsActive          bool           `gorm:"default:true" json:"is_active"`
	JoinedAt          time.Time      `json:"joined_at"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (WorkspaceMember) TableName() string {
	return "workspace_members"
}

func (m *WorkspaceMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	return nil
}

// ClinicMember grants a user a role within a single clinic.
type ClinicMember struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID            uuid.UUID      `gorm:"type:uuid;not null;index:idx_clinic_user,unique" json:"clinic_id"`
	UserID              uuid.UUID      `gorm:"type:uuid;not null;index:idx_clinic_user,unique" json:"user_id"`
	Role                string         `gorm:"type:varchar(50);not null" json:"role"`
	CustomRoleID        *uuid.UUID     `gorm:"type:uuid" json:"custom_role_id,omitempty"`
	CustomPermissions   map[string]bool `gorm:"serializer:json;type:jsonb" json:"custom_permissions,omitempty"`
	CanAccessAllPatients bool           `gorm:"column:can_access_all_patients;default:true" json:"can_access_all_patients"`
	IsActive            bool           `gorm:"default:true" json:"is_active"`
	JoinedAt            time.Time      `json:"joined_at"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ClinicMember) TableName() string {
	return "clinic_members"
}

func (m *ClinicMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	return nil
}

// CustomRole is a workspace-defined role template. Thin extension point over
// the built-in role templates: its permission map is merged over a base role.
type CustomRole struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	WorkspaceID uuid.UUID      `gorm:"type:uuid;not null;index" json:"workspace_id"`
	Name        string         `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string         `gorm:"type:varchar(100);not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Scope       string         `gorm:"type:varchar(20);not null" json:"scope"` // workspace or clinic
	BaseRole    string         `gorm:"type:varchar(50)" json:"base_role,omitempty"`
	Permissions map[string]bool `gorm:"serializer:json;type:jsonb" json:"permissions"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (CustomRole) TableName() string {
	return "custom_roles"
}

func (r *CustomRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// UpdateMemberRequest changes a member's role or custom permissions.
type UpdateMemberRequest struct {
	Role              string          `json:"role" validate:"required"`
	CustomPermissions map[string]bool `json:"custom_permissions,omitempty"`
}

// CreateRoleRequest defines a workspace custom role.
type CreateRoleRequest struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description,omitempty"`
	Scope       string          `json:"scope" validate:"required,oneof=workspace clinic"`
	BaseRole    string          `json:"base_role,omitempty" validate:"omitempty,max=50"`
	Permissions map[string]bool `json:"permissions" validate:"required"`
}
