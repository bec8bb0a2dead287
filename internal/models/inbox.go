package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationStatus is the lifecycle of an inbox conversation.
type ConversationStatus string

const (
	ConversationOpen   ConversationStatus = "open"
	ConversationClosed ConversationStatus = "closed"
)

// Conversation is a messaging thread with a contact (usually a patient).
type Conversation struct {
	ID            uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ClinicID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"clinic_id"`
	PatientID     *uuid.UUID         `gorm:"type:uuid;index" json:"patient_id,omitempty"`
	ContactName   string             `gorm:"type:varchar(255)" json:"contact_name,omitempty"`
	ContactPhone  string             `gorm:"type:varchar(50);not null;index" json:"contact_phone"`
	Status        ConversationStatus `gorm:"type:varchar(20);not null;default:open;index" json:"status"`
	AssignedTo    *uuid.UUID         `gorm:"type:uuid;index" json:"assigned_to,omitempty"`
	LastMessageAt time.Time          `gorm:"index" json:"last_message_at"`
	ClosedAt      *time.Time         `json:"closed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// MessageDirection distinguishes inbound contact messages from clinic replies.
type MessageDirection string

const (
	MessageInbound  MessageDirection = "inbound"
	MessageOutbound MessageDirection = "outbound"
)

// Message is a single message inside a conversation. Assistant-generated
// replies are flagged so the UI can label them.
type Message struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ConversationID uuid.UUID        `gorm:"type:uuid;not null;index" json:"conversation_id"`
	Direction      MessageDirection `gorm:"type:varchar(10);not null" json:"direction"`
	Body           string           `gorm:"type:text;not null" json:"body"`
	SenderID       *uuid.UUID       `gorm:"type:uuid" json:"sender_id,omitempty"`
	FromAssistant  bool             `gorm:"default:false" json:"from_assistant"`
	SentAt         time.Time        `gorm:"index" json:"sent_at"`

	CreatedAt time.Time `json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
	return nil
}

// SendMessageRequest posts an outbound reply into a conversation.
type SendMessageRequest struct {
	Body string `json:"body" validate:"required"`
}

// AssistantReplyRequest asks the AI assistant to draft or send a reply.
type AssistantReplyRequest struct {
	Prompt    string `json:"prompt,omitempty"`
	AutoSend  bool   `json:"auto_send"`
	WithAudio bool   `json:"with_audio"`
}
