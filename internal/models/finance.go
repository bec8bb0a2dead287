package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Expense is a one-off or recurring clinic expense.
type Expense struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"clinic_id"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Description string     `gorm:"type:varchar(500);not null" json:"description"`
	Vendor      string     `gorm:"type:varchar(255)" json:"vendor,omitempty"`
	AmountCents int64      `gorm:"not null" json:"amount_cents"`
	ExpenseDate time.Time  `gorm:"type:date;not null;index" json:"expense_date"`
	IsRecurring bool       `gorm:"default:false" json:"is_recurring"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Expense) TableName() string {
	return "expenses"
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// FixedCost is a recurring monthly cost (rent, salaries, subscriptions).
type FixedCost struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID    uuid.UUID `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	AmountCents int64     `gorm:"not null" json:"amount_cents"`
	Frequency   string    `gorm:"type:varchar(20);default:monthly" json:"frequency"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FixedCost) TableName() string {
	return "fixed_costs"
}

// MonthlyAmountCents normalises the cost to a monthly figure.
func (f FixedCost) MonthlyAmountCents() int64 {
	if f.Frequency == "yearly" {
		return f.AmountCents / 12
	}
	return f.AmountCents
}

func (f *FixedCost) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// Asset is a depreciating purchase (equipment, furniture). Its monthly
// depreciation contributes to fixed costs while depreciation_months > 0.
type Asset struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID           uuid.UUID `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Name               string    `gorm:"type:varchar(255);not null" json:"name"`
	Category           string    `gorm:"type:varchar(100)" json:"category,omitempty"`
	PurchasePriceCents int64     `gorm:"not null" json:"purchase_price_cents"`
	DepreciationMonths int       `gorm:"not null" json:"depreciation_months"`
	PurchasedAt        time.Time `gorm:"type:date" json:"purchased_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Asset) TableName() string {
	return "assets"
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TimeSettings stores the clinic's working-day configuration. WorkDays is the
// manual estimate of working days per month; the weekday pattern holds the
// manual weekday toggles used by the working-day calculations.
type TimeSettings struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"clinic_id"`
	WorkDays      int             `gorm:"default:20" json:"work_days"`
	WeekdayHours  map[string]bool `gorm:"serializer:json;type:jsonb;column:weekday_pattern" json:"weekday_pattern,omitempty"`
	UseHistorical bool            `gorm:"default:true" json:"use_historical"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TimeSettings) TableName() string {
	return "settings_time"
}

// DefaultWorkDays is the fallback monthly working-day count.
const DefaultWorkDays = 20

// WorkingSet converts the stored weekday toggles into a weekday set,
// defaulting to Monday through Saturday when nothing is stored.
func (t TimeSettings) WorkingSet() map[time.Weekday]bool {
	if len(t.WeekdayHours) == 0 {
		return map[time.Weekday]bool{
			time.Monday:    true,
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Thursday:  true,
			time.Friday:    true,
			time.Saturday:  true,
		}
	}
	names := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
	set := make(map[time.Weekday]bool, 7)
	for name, on := range t.WeekdayHours {
		if wd, ok := names[name]; ok {
			set[wd] = on
		}
	}
	return set
}

func (t *TimeSettings) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ExpenseRequest creates or updates an expense.
type ExpenseRequest struct {
	Description string `json:"description" validate:"required,max=500"`
	Vendor      string `json:"vendor,omitempty" validate:"omitempty,max=255"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	ExpenseDate string `json:"expense_date" validate:"required,datetime=2006-01-02"`
	CategoryID  string `json:"category_id,omitempty" validate:"omitempty,uuid"`
	IsRecurring bool   `json:"is_recurring"`
}

// FixedCostRequest creates or updates a fixed cost.
type FixedCostRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Frequency   string `json:"frequency,omitempty" validate:"omitempty,oneof=monthly yearly"`
}

// AssetRequest creates or updates an asset.
type AssetRequest struct {
	Name               string `json:"name" validate:"required,max=255"`
	Category           string `json:"category,omitempty" validate:"omitempty,max=100"`
	PurchasePriceCents int64  `json:"purchase_price_cents" validate:"required,gt=0"`
	DepreciationMonths int    `json:"depreciation_months" validate:"required,gt=0"`
	PurchasedAt        string `json:"purchased_at,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ExpenseFilters are the supported query-string filters on expense listings.
type ExpenseFilters struct {
	CategoryID  string `json:"category_id,omitempty"`
	Vendor      string `json:"vendor,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	MinAmount   int64  `json:"min_amount,omitempty"`
	MaxAmount   int64  `json:"max_amount,omitempty"`
	IsRecurring *bool  `json:"is_recurring,omitempty"`
}
