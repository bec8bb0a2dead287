package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TreatmentStatus is the lifecycle of a scheduled treatment.
type TreatmentStatus string

const (
	TreatmentScheduled  TreatmentStatus = "scheduled"
	TreatmentInProgress TreatmentStatus = "in_progress"
	TreatmentCompleted  TreatmentStatus = "completed"
	TreatmentCancelled  TreatmentStatus = "cancelled"
)

// Treatment is a performed or scheduled service for a patient. Monetary
// columns are integer cents; the price and variable cost are copied from the
// service at creation time so later catalog edits do not rewrite history.
type Treatment struct {
	ID                       uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID                 uuid.UUID       `gorm:"type:uuid;not null;index" json:"clinic_id"`
	PatientID                uuid.UUID       `gorm:"type:uuid;not null;index" json:"patient_id"`
	ServiceID                uuid.UUID       `gorm:"type:uuid;not null;index" json:"service_id"`
	TreatmentDate            time.Time       `gorm:"type:date;not null;index" json:"treatment_date"`
	Status                   TreatmentStatus `gorm:"type:varchar(20);not null;default:scheduled;index" json:"status"`
	PriceCents               int64           `gorm:"not null" json:"price_cents"`
	VariableCostCents        int64           `gorm:"default:0" json:"variable_cost_cents"`
	FixedCostPerMinuteCents  int64           `gorm:"default:0" json:"fixed_cost_per_minute_cents"`
	DurationMinutes          int             `gorm:"default:0" json:"duration_minutes"`
	IsPaid                   bool            `gorm:"default:false;index" json:"is_paid"`
	PaidAt                   *time.Time      `json:"paid_at,omitempty"`
	Notes                    string          `gorm:"type:text" json:"notes,omitempty"`

	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Service *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Treatment) TableName() string {
	return "treatments"
}

func (t *Treatment) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// PublicStatus maps internal states onto the coarser status the UI expects:
// scheduled and in_progress both render as pending.
func (t *Treatment) PublicStatus() string {
	if t.Status == TreatmentScheduled || t.Status == TreatmentInProgress {
		return "pending"
	}
	return string(t.Status)
}

// TreatmentRequest creates or updates a treatment.
type TreatmentRequest struct {
	PatientID         string `json:"patient_id" validate:"required,uuid"`
	ServiceID         string `json:"service_id" validate:"required,uuid"`
	TreatmentDate     string `json:"treatment_date" validate:"required,datetime=2006-01-02"`
	Status            string `json:"status,omitempty" validate:"omitempty,oneof=scheduled in_progress completed cancelled"`
	PriceCents        *int64 `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
	VariableCostCents *int64 `json:"variable_cost_cents,omitempty" validate:"omitempty,gte=0"`
	DurationMinutes   int    `json:"duration_minutes,omitempty" validate:"gte=0"`
	Notes             string `json:"notes,omitempty"`
}
