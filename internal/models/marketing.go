package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Campaign is a marketing campaign whose spend and attributed patients feed
// the ROI analytics.
type Campaign struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Platform    string     `gorm:"type:varchar(100)" json:"platform,omitempty"`
	BudgetCents int64      `gorm:"default:0" json:"budget_cents"`
	SpentCents  int64      `gorm:"default:0" json:"spent_cents"`
	LeadCount   int        `gorm:"default:0" json:"lead_count"`
	StartDate   time.Time  `gorm:"type:date" json:"start_date"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date,omitempty"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CampaignRequest creates or updates a campaign.
type CampaignRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Platform    string `json:"platform,omitempty" validate:"omitempty,max=100"`
	BudgetCents int64  `json:"budget_cents" validate:"gte=0"`
	SpentCents  int64  `json:"spent_cents" validate:"gte=0"`
	LeadCount   int    `json:"lead_count" validate:"gte=0"`
	StartDate   string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// CampaignROI is the computed return for one campaign.
type CampaignROI struct {
	CampaignID     uuid.UUID `json:"campaign_id"`
	Name           string    `json:"name"`
	SpentCents     int64     `json:"spent_cents"`
	RevenueCents   int64     `json:"revenue_cents"`
	Patients       int       `json:"patients"`
	CACCents       int64     `json:"cac_cents"`
	LTVCents       int64     `json:"ltv_cents"`
	LTVCACRatio    float64   `json:"ltv_cac_ratio"`
	RatioQuality   string    `json:"ratio_quality"`
	ROIPercent     float64   `json:"roi_percent"`
	ConversionRate float64   `json:"conversion_rate"`
	PaybackMonths  float64   `json:"payback_months"`
}
