package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dentia/clinic-api/internal/models"
)

// NotificationRepository handles push subscription and notification
// database operations
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// UpsertSubscription stores a push subscription, reactivating and updating
// keys when the endpoint is already known
func (r *NotificationRepository) UpsertSubscription(ctx context.Context, sub *models.PushSubscription) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"user_id", "clinic_id", "keys_p256dh", "keys_auth", "is_active",
			}),
		}).
		Create(sub).Error; err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// DeactivateSubscription disables a subscription by endpoint
func (r *NotificationRepository) DeactivateSubscription(ctx context.Context, userID uuid.UUID, endpoint string) error {
	result := r.db.WithContext(ctx).Model(&models.PushSubscription{}).
		Where("user_id = ? AND endpoint = ? AND is_active = ?", userID, endpoint, true).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ActiveSubscriptions retrieves the active subscriptions of a user
func (r *NotificationRepository) ActiveSubscriptions(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

// CreateNotification records a push notification attempt
func (r *NotificationRepository) CreateNotification(ctx context.Context, notification *models.PushNotification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// UpdateNotification saves delivery status changes
func (r *NotificationRepository) UpdateNotification(ctx context.Context, notification *models.PushNotification) error {
	if err := r.db.WithContext(ctx).Save(notification).Error; err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	return nil
}

// ListNotifications retrieves recent notifications for a clinic, newest
// first
func (r *NotificationRepository) ListNotifications(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]models.PushNotification, error) {
	var notifications []models.PushNotification
	query := r.db.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}
