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

// ExpenseQuery narrows expense listings
type ExpenseQuery struct {
	CategoryID  *uuid.UUID
	Vendor      string
	From        *time.Time
	To          *time.Time
	MinAmount   *int64
	MaxAmount   *int64
	IsRecurring *bool
	Limit       int
	Offset      int
}

// FinanceRepository handles expense, fixed cost, asset and time settings
// database operations
type FinanceRepository struct {
	db *gorm.DB
}

// NewFinanceRepository creates a new finance repository
func NewFinanceRepository(db *gorm.DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

// CreateExpense creates a new expense
func (r *FinanceRepository) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if err := r.db.WithContext(ctx).Create(expense).Error; err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense scoped to a clinic
func (r *FinanceRepository) GetExpense(ctx context.Context, clinicID, id uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ? AND deleted_at IS NULL", clinicID, id).
		First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return &expense, nil
}

// ListExpenses retrieves expenses matching the filters, newest first
func (r *FinanceRepository) ListExpenses(ctx context.Context, clinicID uuid.UUID, filters ExpenseQuery) ([]models.Expense, error) {
	var expenses []models.Expense
	query := r.db.WithContext(ctx).
		Where("clinic_id = ? AND deleted_at IS NULL", clinicID).
		Order("expense_date DESC")

	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.Vendor != "" {
		query = query.Where("vendor ILIKE ?", "%"+filters.Vendor+"%")
	}
	if filters.From != nil {
		query = query.Where("expense_date >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("expense_date <= ?", *filters.To)
	}
	if filters.MinAmount != nil {
		query = query.Where("amount_cents >= ?", *filters.MinAmount)
	}
	if filters.MaxAmount != nil {
		query = query.Where("amount_cents <= ?", *filters.MaxAmount)
	}
	if filters.IsRecurring != nil {
		query = query.Where("is_recurring = ?", *filters.IsRecurring)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

// UpdateExpense saves changes to an expense
func (r *FinanceRepository) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	if err := r.db.WithContext(ctx).Save(expense).Error; err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return nil
}

// DeleteExpense soft-deletes an expense
func (r *FinanceRepository) DeleteExpense(ctx context.Context, clinicID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Expense{}).
		Where("clinic_id = ? AND id = ? AND deleted_at IS NULL", clinicID, id).
		Update("deleted_at", time.Now().UTC())
	if result.Error != nil {
		return fmt.Errorf("failed to delete expense: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SumExpensesInRange totals expenses in [from, to]
func (r *FinanceRepository) SumExpensesInRange(ctx context.Context, clinicID uuid.UUID, from, to time.Time) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Expense{}).
		Where("clinic_id = ? AND deleted_at IS NULL AND expense_date BETWEEN ? AND ?", clinicID, from, to).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return total, nil
}

// CreateFixedCost creates a new fixed cost
func (r *FinanceRepository) CreateFixedCost(ctx context.Context, cost *models.FixedCost) error {
	if err := r.db.WithContext(ctx).Create(cost).Error; err != nil {
		return fmt.Errorf("failed to create fixed cost: %w", err)
	}
	return nil
}

// ListFixedCosts retrieves the fixed costs of a clinic
func (r *FinanceRepository) ListFixedCosts(ctx context.Context, clinicID uuid.UUID) ([]models.FixedCost, error) {
	var costs []models.FixedCost
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Order("name ASC").
		Find(&costs).Error; err != nil {
		return nil, fmt.Errorf("failed to list fixed costs: %w", err)
	}
	return costs, nil
}

// UpdateFixedCost saves changes to a fixed cost
func (r *FinanceRepository) UpdateFixedCost(ctx context.Context, cost *models.FixedCost) error {
	if err := r.db.WithContext(ctx).Save(cost).Error; err != nil {
		return fmt.Errorf("failed to update fixed cost: %w", err)
	}
	return nil
}

// DeleteFixedCost removes a fixed cost
func (r *FinanceRepository) DeleteFixedCost(ctx context.Context, clinicID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		Delete(&models.FixedCost{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete fixed cost: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// GetFixedCost retrieves a fixed cost scoped to a clinic
func (r *FinanceRepository) GetFixedCost(ctx context.Context, clinicID, id uuid.UUID) (*models.FixedCost, error) {
	var cost models.FixedCost
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		First(&cost).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get fixed cost: %w", err)
	}
	return &cost, nil
}

// CreateAsset creates a new asset
func (r *FinanceRepository) CreateAsset(ctx context.Context, asset *models.Asset) error {
	if err := r.db.WithContext(ctx).Create(asset).Error; err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// GetAsset retrieves an asset scoped to a clinic
func (r *FinanceRepository) GetAsset(ctx context.Context, clinicID, id uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &asset, nil
}

// ListAssets retrieves the assets of a clinic
func (r *FinanceRepository) ListAssets(ctx context.Context, clinicID uuid.UUID) ([]models.Asset, error) {
	var assets []models.Asset
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Order("purchased_at DESC").
		Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

// UpdateAsset saves changes to an asset
func (r *FinanceRepository) UpdateAsset(ctx context.Context, asset *models.Asset) error {
	if err := r.db.WithContext(ctx).Save(asset).Error; err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	return nil
}

// DeleteAsset removes an asset
func (r *FinanceRepository) DeleteAsset(ctx context.Context, clinicID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		Delete(&models.Asset{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete asset: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// GetTimeSettings retrieves the time settings of a clinic, or ErrNotFound
// when none are stored yet
func (r *FinanceRepository) GetTimeSettings(ctx context.Context, clinicID uuid.UUID) (*models.TimeSettings, error) {
	var settings models.TimeSettings
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get time settings: %w", err)
	}
	return &settings, nil
}

// UpsertTimeSettings creates or updates the time settings of a clinic
func (r *FinanceRepository) UpsertTimeSettings(ctx context.Context, settings *models.TimeSettings) error {
	existing, err := r.GetTimeSettings(ctx, settings.ClinicID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			if err := r.db.WithContext(ctx).Create(settings).Error; err != nil {
				return fmt.Errorf("failed to create time settings: %w", err)
			}
			return nil
		}
		return err
	}

	settings.ID = existing.ID
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("failed to update time settings: %w", err)
	}
	return nil
}
