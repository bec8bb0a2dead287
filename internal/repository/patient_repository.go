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

// PatientRepository handles patient database operations
type PatientRepository struct {
	db *gorm.DB
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// Create creates a new patient
func (r *PatientRepository) Create(ctx context.Context, patient *models.Patient) error {
	if err := r.db.WithContext(ctx).Create(patient).Error; err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

// GetByID retrieves a patient scoped to a clinic
func (r *PatientRepository) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*models.Patient, error) {
	var patient models.Patient
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ? AND deleted_at IS NULL", clinicID, id).
		First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

// List retrieves patients for a clinic, optionally filtered by a name or
// email search term
func (r *PatientRepository) List(ctx context.Context, clinicID uuid.UUID, search string, limit, offset int) ([]models.Patient, error) {
	var patients []models.Patient
	query := r.db.WithContext(ctx).
		Where("clinic_id = ? AND deleted_at IS NULL", clinicID).
		Order("last_name ASC, first_name ASC")

	if search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR phone ILIKE ?",
			like, like, like, like,
		)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// Update saves changes to an existing patient
func (r *PatientRepository) Update(ctx context.Context, patient *models.Patient) error {
	if err := r.db.WithContext(ctx).Save(patient).Error; err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

// SoftDelete marks a patient as deleted without removing the row
func (r *PatientRepository) SoftDelete(ctx context.Context, clinicID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Patient{}).
		Where("clinic_id = ? AND id = ? AND deleted_at IS NULL", clinicID, id).
		Update("deleted_at", time.Now().UTC())
	if result.Error != nil {
		return fmt.Errorf("failed to delete patient: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CountNewInRange counts patients whose first visit falls in [from, to]
func (r *PatientRepository) CountNewInRange(ctx context.Context, clinicID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Patient{}).
		Where("clinic_id = ? AND deleted_at IS NULL AND first_visit_at BETWEEN ? AND ?", clinicID, from, to).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return count, nil
}

// ListByCampaign retrieves patients attributed to a marketing campaign
func (r *PatientRepository) ListByCampaign(ctx context.Context, clinicID, campaignID uuid.UUID) ([]models.Patient, error) {
	var patients []models.Patient
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND campaign_id = ? AND deleted_at IS NULL", clinicID, campaignID).
		Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("failed to list campaign patients: %w", err)
	}
	return patients, nil
}
