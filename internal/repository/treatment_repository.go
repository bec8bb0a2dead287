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

// TreatmentFilters narrows treatment listings
type TreatmentFilters struct {
	PatientID *uuid.UUID
	Status    string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// TreatmentRepository handles treatment database operations
type TreatmentRepository struct {
	db *gorm.DB
}

// NewTreatmentRepository creates a new treatment repository
func NewTreatmentRepository(db *gorm.DB) *TreatmentRepository {
	return &TreatmentRepository{db: db}
}

// Create creates a new treatment
func (r *TreatmentRepository) Create(ctx context.Context, treatment *models.Treatment) error {
	if err := r.db.WithContext(ctx).Create(treatment).Error; err != nil {
		return fmt.Errorf("failed to create treatment: %w", err)
	}
	return nil
}

// GetByID retrieves a treatment scoped to a clinic, with patient and
// service preloaded
func (r *TreatmentRepository) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*models.Treatment, error) {
	var treatment models.Treatment
	if err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Service").
		Where("clinic_id = ? AND id = ? AND deleted_at IS NULL", clinicID, id).
		First(&treatment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get treatment: %w", err)
	}
	return &treatment, nil
}

// List retrieves treatments for a clinic matching the filters
func (r *TreatmentRepository) List(ctx context.Context, clinicID uuid.UUID, filters TreatmentFilters) ([]models.Treatment, error) {
	var treatments []models.Treatment
	query := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Service").
		Where("clinic_id = ? AND deleted_at IS NULL", clinicID).
		Order("treatment_date DESC, created_at DESC")

	if filters.PatientID != nil {
		query = query.Where("patient_id = ?", *filters.PatientID)
	}
	if filters.Status != "" {
		// The API exposes scheduled and in_progress as a single
		// "pending" status.
		if filters.Status == "pending" {
			query = query.Where("status IN ?", []string{
				string(models.TreatmentScheduled),
				string(models.TreatmentInProgress),
			})
		} else {
			query = query.Where("status = ?", filters.Status)
		}
	}
	if filters.From != nil {
		query = query.Where("treatment_date >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("treatment_date <= ?", *filters.To)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&treatments).Error; err != nil {
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	return treatments, nil
}

// Update saves changes to an existing treatment
func (r *TreatmentRepository) Update(ctx context.Context, treatment *models.Treatment) error {
	if err := r.db.WithContext(ctx).Save(treatment).Error; err != nil {
		return fmt.Errorf("failed to update treatment: %w", err)
	}
	return nil
}

// SoftDelete marks a treatment as deleted
func (r *TreatmentRepository) SoftDelete(ctx context.Context, clinicID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Treatment{}).
		Where("clinic_id = ? AND id = ? AND deleted_at IS NULL", clinicID, id).
		Update("deleted_at", time.Now().UTC())
	if result.Error != nil {
		return fmt.Errorf("failed to delete treatment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// MarkPaid records payment on a treatment
func (r *TreatmentRepository) MarkPaid(ctx context.Context, clinicID, id uuid.UUID, paidAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Treatment{}).
		Where("clinic_id = ? AND id = ? AND deleted_at IS NULL", clinicID, id).
		Updates(map[string]interface{}{"is_paid": true, "paid_at": paidAt})
	if result.Error != nil {
		return fmt.Errorf("failed to mark treatment paid: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CompletedInRange retrieves completed treatments in [from, to] for
// analytics
func (r *TreatmentRepository) CompletedInRange(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]models.Treatment, error) {
	var treatments []models.Treatment
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND deleted_at IS NULL AND status = ? AND treatment_date BETWEEN ? AND ?",
			clinicID, models.TreatmentCompleted, from, to).
		Order("treatment_date ASC").
		Find(&treatments).Error; err != nil {
		return nil, fmt.Errorf("failed to list completed treatments: %w", err)
	}
	return treatments, nil
}

// TreatmentDates retrieves the dates of all treatments in [from, to],
// regardless of status, for working-day detection
func (r *TreatmentRepository) TreatmentDates(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	var dates []time.Time
	if err := r.db.WithContext(ctx).Model(&models.Treatment{}).
		Where("clinic_id = ? AND deleted_at IS NULL AND treatment_date BETWEEN ? AND ?", clinicID, from, to).
		Pluck("treatment_date", &dates).Error; err != nil {
		return nil, fmt.Errorf("failed to list treatment dates: %w", err)
	}
	return dates, nil
}

// RevenueByCampaign sums completed treatment revenue for patients
// attributed to a campaign
func (r *TreatmentRepository) RevenueByCampaign(ctx context.Context, clinicID, campaignID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Treatment{}).
		Joins("JOIN patients ON patients.id = treatments.patient_id").
		Where("treatments.clinic_id = ? AND treatments.deleted_at IS NULL AND treatments.status = ? AND patients.campaign_id = ?",
			clinicID, models.TreatmentCompleted, campaignID).
		Select("COALESCE(SUM(treatments.price_cents), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum campaign revenue: %w", err)
	}
	return total, nil
}
