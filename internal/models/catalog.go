package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is a billable treatment type offered by a clinic.
type Service struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"clinic_id"`
	CategoryID        *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Name              string     `gorm:"type:varchar(255);not null" json:"name"`
	Description       string     `gorm:"type:text" json:"description,omitempty"`
	PriceCents        int64      `gorm:"not null" json:"price_cents"`
	VariableCostCents int64      `gorm:"default:0" json:"variable_cost_cents"`
	DurationMinutes   int        `gorm:"default:30" json:"duration_minutes"`
	IsActive          bool       `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Service) TableName() string {
	return "services"
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Supply is a consumable tracked for variable-cost accounting.
type Supply struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID       uuid.UUID `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Category       string    `gorm:"type:varchar(100)" json:"category,omitempty"`
	UnitCostCents  int64     `gorm:"default:0" json:"unit_cost_cents"`
	StockQuantity  int       `gorm:"default:0" json:"stock_quantity"`
	ReorderPoint   int       `gorm:"default:0" json:"reorder_point"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Supply) TableName() string {
	return "supplies"
}

func (s *Supply) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Category groups services or expenses for reporting.
type Category struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID uuid.UUID `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Name     string    `gorm:"type:varchar(100);not null" json:"name"`
	Kind     string    `gorm:"type:varchar(20);not null;default:service" json:"kind"` // service or expense
	Color    string    `gorm:"type:varchar(20)" json:"color,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ServiceRequest creates or updates a service.
type ServiceRequest struct {
	Name              string `json:"name" validate:"required,max=255"`
	Description       string `json:"description,omitempty"`
	CategoryID        string `json:"category_id,omitempty" validate:"omitempty,uuid"`
	PriceCents        int64  `json:"price_cents" validate:"gte=0"`
	VariableCostCents int64  `json:"variable_cost_cents" validate:"gte=0"`
	DurationMinutes   int    `json:"duration_minutes" validate:"gte=0"`
}

// SupplyRequest creates or updates a supply.
type SupplyRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	Category      string `json:"category,omitempty" validate:"omitempty,max=100"`
	UnitCostCents int64  `json:"unit_cost_cents" validate:"gte=0"`
	StockQuantity int    `json:"stock_quantity" validate:"gte=0"`
	ReorderPoint  int    `json:"reorder_point" validate:"gte=0"`
}
