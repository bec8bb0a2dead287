package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvitationStatus is derived from the terminal-state columns, never stored.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation invites an email address into a workspace/clinic with a role.
// Once accepted, rejected or expired it is terminal; no further transitions.
type Invitation struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	WorkspaceID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"workspace_id"`
	ClinicID          *uuid.UUID      `gorm:"type:uuid;index" json:"clinic_id,omitempty"`
	Email             string          `gorm:"type:varchar(255);not null;index" json:"email"`
	Role              string          `gorm:"type:varchar(50);not null" json:"role"`
	CustomPermissions map[string]bool `gorm:"serializer:json;type:jsonb" json:"custom_permissions,omitempty"`
	Token             string          `gorm:"type:varchar(128);not null;uniqueIndex" json:"-"`
	Message           string          `gorm:"type:text" json:"message,omitempty"`
	InvitedBy         uuid.UUID       `gorm:"type:uuid;not null" json:"invited_by"`
	ExpiresAt         time.Time       `gorm:"not null;index" json:"expires_at"`
	AcceptedAt        *time.Time      `json:"accepted_at,omitempty"`
	RejectedAt        *time.Time      `json:"rejected_at,omitempty"`
	ResentCount       int             `gorm:"default:0" json:"resent_count"`
	LastResentAt      *time.Time      `json:"last_resent_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (Invitation) TableName() string {
	return "invitations"
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Status derives the lifecycle state at the given instant.
func (i *Invitation) Status(now time.Time) InvitationStatus {
	switch {
	case i.AcceptedAt != nil:
		return InvitationAccepted
	case i.RejectedAt != nil:
		return InvitationRejected
	case now.After(i.ExpiresAt):
		return InvitationExpired
	default:
		return InvitationPending
	}
}

// CreateInvitationRequest is the payload for inviting a team member.
type CreateInvitationRequest struct {
	Email             string          `json:"email" validate:"required,email"`
	Role              string          `json:"role" validate:"required"`
	ClinicID          string          `json:"clinic_id,omitempty" validate:"omitempty,uuid"`
	Message           string          `json:"message,omitempty" validate:"omitempty,max=500"`
	CustomPermissions map[string]bool `json:"custom_permissions,omitempty"`
}
