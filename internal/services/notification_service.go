package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dentia/clinic-api/internal/models"
	"github.com/dentia/clinic-api/internal/notify"
	"github.com/dentia/clinic-api/internal/repository"
)

// NotificationService manages push subscriptions and delivers queued
// notifications. It implements notify.Sender.
type NotificationService struct {
	repo   *repository.NotificationRepository
	client *http.Client
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{
		repo:   repo,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Subscribe registers or reactivates a push subscription.
func (s *NotificationService) Subscribe(ctx context.Context, userID, clinicID uuid.UUID, req models.SubscribeRequest) (*models.PushSubscription, error) {
	sub := &models.PushSubscription{
		UserID:     userID,
		ClinicID:   clinicID,
		Endpoint:   req.Endpoint,
		KeysP256DH: req.KeysP256DH,
		KeysAuth:   req.KeysAuth,
		IsActive:   true,
	}
	if err := s.repo.UpsertSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Unsubscribe deactivates a push subscription by endpoint.
func (s *NotificationService) Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error {
	return s.repo.DeactivateSubscription(ctx, userID, endpoint)
}

// History lists recent notification records for a clinic.
func (s *NotificationService) History(ctx context.Context, clinicID uuid.UUID, limit, offset int) ([]models.PushNotification, error) {
	return s.repo.ListNotifications(ctx, clinicID, limit, offset)
}

// Send delivers one queued notification to every active subscription of
// the user, recording each attempt. Called from dispatcher workers.
func (s *NotificationService) Send(ctx context.Context, d notify.Delivery) error {
	subs, err := s.repo.ActiveSubscriptions(ctx, d.UserID)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return nil
	}

	payload, err := json.Marshal(d.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	var lastErr error
	for _, sub := range subs {
		record := &models.PushNotification{
			ClinicID:         d.ClinicID,
			SubscriptionID:   sub.ID,
			NotificationType: d.NotificationType,
			Title:            d.Payload.Title,
			Body:             d.Payload.Body,
			IconURL:          d.Payload.IconURL,
			ActionURL:        d.Payload.ActionURL,
			Status:           models.PushPending,
		}
		if err := s.repo.CreateNotification(ctx, record); err != nil {
			return err
		}

		if err := s.push(ctx, sub, payload); err != nil {
			record.Status = models.PushFailed
			record.ErrorMessage = err.Error()
			lastErr = err
		} else {
			now := time.Now().UTC()
			record.Status = models.PushSent
			record.SentAt = &now
		}
		if err := s.repo.UpdateNotification(ctx, record); err != nil {
			log.Error().Err(err).Msg("Failed to record notification status")
		}
	}
	return lastErr
}

// push posts the payload to the subscription endpoint. A 404 or 410 means
// the browser dropped the subscription, which is deactivated.
func (s *NotificationService) push(ctx context.Context, sub models.PushSubscription, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, "POST", sub.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("TTL", "86400")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		if err := s.repo.DeactivateSubscription(ctx, sub.UserID, sub.Endpoint); err != nil {
			log.Warn().Err(err).Msg("Failed to deactivate stale subscription")
		}
		return fmt.Errorf("subscription is gone: %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push endpoint returned %d", resp.StatusCode)
	}
	return nil
}
