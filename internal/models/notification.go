package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PushSubscription is a browser push endpoint registered by a user.
type PushSubscription struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ClinicID   uuid.UUID `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Endpoint   string    `gorm:"type:text;not null;uniqueIndex" json:"endpoint"`
	KeysP256DH string    `gorm:"type:text" json:"-"`
	KeysAuth   string    `gorm:"type:text" json:"-"`
	IsActive   bool      `gorm:"default:true;index" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PushSubscription) TableName() string {
	return "push_subscriptions"
}

func (s *PushSubscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// PushStatus is the delivery state of a logged notification.
type PushStatus string

const (
	PushPending PushStatus = "pending"
	PushSent    PushStatus = "sent"
	PushFailed  PushStatus = "failed"
)

// PushNotification is a delivery log entry for one subscription.
type PushNotification struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"clinic_id"`
	SubscriptionID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"subscription_id"`
	NotificationType string     `gorm:"type:varchar(50);not null;index" json:"notification_type"`
	Title            string     `gorm:"type:varchar(255);not null" json:"title"`
	Body             string     `gorm:"type:text" json:"body"`
	IconURL          string     `gorm:"type:text" json:"icon_url,omitempty"`
	ActionURL        string     `gorm:"type:text" json:"action_url,omitempty"`
	Status           PushStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	ErrorMessage     string     `gorm:"type:text" json:"error_message,omitempty"`
	SentAt           *time.Time `json:"sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (PushNotification) TableName() string {
	return "push_notifications"
}

func (n *PushNotification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// SubscribeRequest registers a push endpoint.
type SubscribeRequest struct {
	Endpoint   string `json:"endpoint" validate:"required,url"`
	KeysP256DH string `json:"keys_p256dh" validate:"required"`
	KeysAuth   string `json:"keys_auth" validate:"required"`
}

// PushPayload is the notification content handed to the dispatcher.
type PushPayload struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	IconURL   string `json:"icon,omitempty"`
	ActionURL string `json:"url,omitempty"`
}
