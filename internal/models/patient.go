package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patient is a clinic's patient record.
type Patient struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"clinic_id"`
	FirstName    string     `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string     `gorm:"type:varchar(100);not null" json:"last_name"`
	Email        string     `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone        string     `gorm:"type:varchar(50)" json:"phone,omitempty"`
	BirthDate    *time.Time `gorm:"type:date" json:"birth_date,omitempty"`
	SourceID     *uuid.UUID `gorm:"type:uuid;index" json:"source_id,omitempty"`
	CampaignID   *uuid.UUID `gorm:"type:uuid;index" json:"campaign_id,omitempty"`
	Notes        string     `gorm:"type:text" json:"notes,omitempty"`
	FirstVisitAt *time.Time `gorm:"type:date" json:"first_visit_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Patient) TableName() string {
	return "patients"
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PatientRequest creates or updates a patient.
type PatientRequest struct {
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      string `json:"phone,omitempty" validate:"omitempty,max=50"`
	BirthDate  string `json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	SourceID   string `json:"source_id,omitempty" validate:"omitempty,uuid"`
	CampaignID string `json:"campaign_id,omitempty" validate:"omitempty,uuid"`
	Notes      string `json:"notes,omitempty"`
}
