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

// CatalogRepository handles service, supply and category database
// operations
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// CreateService creates a new service
func (r *CatalogRepository) CreateService(ctx context.Context, service *models.Service) error {
	if err := r.db.WithContext(ctx).Create(service).Error; err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

// GetService retrieves a service scoped to a clinic
func (r *CatalogRepository) GetService(ctx context.Context, clinicID, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ? AND deleted_at IS NULL", clinicID, id).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &service, nil
}

// ListServices retrieves the active services of a clinic
func (r *CatalogRepository) ListServices(ctx context.Context, clinicID uuid.UUID) ([]models.Service, error) {
	var services []models.Service
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND deleted_at IS NULL", clinicID).
		Order("name ASC").
		Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// UpdateService saves changes to a service
func (r *CatalogRepository) UpdateService(ctx context.Context, service *models.Service) error {
	if err := r.db.WithContext(ctx).Save(service).Error; err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	return nil
}

// DeleteService soft-deletes a service
func (r *CatalogRepository) DeleteService(ctx context.Context, clinicID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Service{}).
		Where("clinic_id = ? AND id = ? AND deleted_at IS NULL", clinicID, id).
		Update("deleted_at", time.Now().UTC())
	if result.Error != nil {
		return fmt.Errorf("failed to delete service: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CreateSupply creates a new supply
func (r *CatalogRepository) CreateSupply(ctx context.Context, supply *models.Supply) error {
	if err := r.db.WithContext(ctx).Create(supply).Error; err != nil {
		return fmt.Errorf("failed to create supply: %w", err)
	}
	return nil
}

// GetSupply retrieves a supply scoped to a clinic
func (r *CatalogRepository) GetSupply(ctx context.Context, clinicID, id uuid.UUID) (*models.Supply, error) {
	var supply models.Supply
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ? AND deleted_at IS NULL", clinicID, id).
		First(&supply).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get supply: %w", err)
	}
	return &supply, nil
}

// ListSupplies retrieves the supplies of a clinic
func (r *CatalogRepository) ListSupplies(ctx context.Context, clinicID uuid.UUID) ([]models.Supply, error) {
	var supplies []models.Supply
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND deleted_at IS NULL", clinicID).
		Order("name ASC").
		Find(&supplies).Error; err != nil {
		return nil, fmt.Errorf("failed to list supplies: %w", err)
	}
	return supplies, nil
}

// UpdateSupply saves changes to a supply
func (r *CatalogRepository) UpdateSupply(ctx context.Context, supply *models.Supply) error {
	if err := r.db.WithContext(ctx).Save(supply).Error; err != nil {
		return fmt.Errorf("failed to update supply: %w", err)
	}
	return nil
}

// DeleteSupply soft-deletes a supply
func (r *CatalogRepository) DeleteSupply(ctx context.Context, clinicID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Supply{}).
		Where("clinic_id = ? AND id = ? AND deleted_at IS NULL", clinicID, id).
		Update("deleted_at", time.Now().UTC())
	if result.Error != nil {
		return fmt.Errorf("failed to delete supply: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CreateCategory creates a new category
func (r *CatalogRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// ListCategories retrieves the categories of a clinic, optionally filtered
// by kind ("service" or "expense")
func (r *CatalogRepository) ListCategories(ctx context.Context, clinicID uuid.UUID, kind string) ([]models.Category, error) {
	var categories []models.Category
	query := r.db.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Order("name ASC")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if err := query.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory removes a category
func (r *CatalogRepository) DeleteCategory(ctx context.Context, clinicID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		Delete(&models.Category{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
