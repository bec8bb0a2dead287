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

// MarketingRepository handles campaign database operations
type MarketingRepository struct {
	db *gorm.DB
}

// NewMarketingRepository creates a new marketing repository
func NewMarketingRepository(db *gorm.DB) *MarketingRepository {
	return &MarketingRepository{db: db}
}

// Create creates a new campaign
func (r *MarketingRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	if err := r.db.WithContext(ctx).Create(campaign).Error; err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// GetByID retrieves a campaign scoped to a clinic
func (r *MarketingRepository) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ? AND deleted_at IS NULL", clinicID, id).
		First(&campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &campaign, nil
}

// List retrieves the campaigns of a clinic, newest first
func (r *MarketingRepository) List(ctx context.Context, clinicID uuid.UUID, activeOnly bool) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	query := r.db.WithContext(ctx).
		Where("clinic_id = ? AND deleted_at IS NULL", clinicID).
		Order("start_date DESC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

// Update saves changes to a campaign
func (r *MarketingRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	if err := r.db.WithContext(ctx).Save(campaign).Error; err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	return nil
}

// SoftDelete marks a campaign as deleted
func (r *MarketingRepository) SoftDelete(ctx context.Context, clinicID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("clinic_id = ? AND id = ? AND deleted_at IS NULL", clinicID, id).
		Update("deleted_at", time.Now().UTC())
	if result.Error != nil {
		return fmt.Errorf("failed to delete campaign: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CountPatients counts patients attributed to a campaign
func (r *MarketingRepository) CountPatients(ctx context.Context, clinicID, campaignID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Patient{}).
		Where("clinic_id = ? AND campaign_id = ? AND deleted_at IS NULL", clinicID, campaignID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count campaign patients: %w", err)
	}
	return count, nil
}
