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

// InboxRepository handles conversation and message database operations
type InboxRepository struct {
	db *gorm.DB
}

// NewInboxRepository creates a new inbox repository
func NewInboxRepository(db *gorm.DB) *InboxRepository {
	return &InboxRepository{db: db}
}

// CreateConversation creates a new conversation
func (r *InboxRepository) CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// GetConversation retrieves a conversation scoped to a clinic
func (r *InboxRepository) GetConversation(ctx context.Context, clinicID, id uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.WithContext(ctx).
		Where("clinic_id = ? AND id = ?", clinicID, id).
		First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conversation, nil
}

// ListConversations retrieves conversations of a clinic, most recently
// active first, optionally filtered by status
func (r *InboxRepository) ListConversations(ctx context.Context, clinicID uuid.UUID, status string, limit, offset int) ([]models.Conversation, error) {
	var conversations []models.Conversation
	query := r.db.WithContext(ctx).
		Where("clinic_id = ?", clinicID).
		Order("last_message_at DESC NULLS LAST")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

// UpdateConversation saves changes to a conversation
func (r *InboxRepository) UpdateConversation(ctx context.Context, conversation *models.Conversation) error {
	if err := r.db.WithContext(ctx).Save(conversation).Error; err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	return nil
}

// AppendMessage stores a message and bumps the conversation's
// last_message_at in one transaction
func (r *InboxRepository) AppendMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		if err := tx.Model(&models.Conversation{}).
			Where("id = ?", message.ConversationID).
			Update("last_message_at", message.SentAt).Error; err != nil {
			return fmt.Errorf("failed to touch conversation: %w", err)
		}
		return nil
	})
}

// ListMessages retrieves the messages of a conversation, oldest first
func (r *InboxRepository) ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	query := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sent_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// CloseConversation marks a conversation closed
func (r *InboxRepository) CloseConversation(ctx context.Context, clinicID, id uuid.UUID, closedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("clinic_id = ? AND id = ? AND status = ?", clinicID, id, models.ConversationOpen).
		Updates(map[string]interface{}{
			"status":    models.ConversationClosed,
			"closed_at": closedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to close conversation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
