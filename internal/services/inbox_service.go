package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dentia/clinic-api/internal/models"
	"github.com/dentia/clinic-api/internal/notify"
	"github.com/dentia/clinic-api/internal/repository"
)

// InboxService handles conversation and message business logic.
type InboxService struct {
	inbox      *repository.InboxRepository
	dispatcher *notify.Dispatcher
}

// NewInboxService creates a new inbox service
func NewInboxService(inbox *repository.InboxRepository, dispatcher *notify.Dispatcher) *InboxService {
	return &InboxService{inbox: inbox, dispatcher: dispatcher}
}

// ListConversations returns conversations for a clinic.
func (s *InboxService) ListConversations(ctx context.Context, clinicID uuid.UUID, status string, limit, offset int) ([]models.Conversation, error) {
	return s.inbox.ListConversations(ctx, clinicID, status, limit, offset)
}

// GetConversation returns one conversation with its messages.
func (s *InboxService) GetConversation(ctx context.Context, clinicID, id uuid.UUID) (*models.Conversation, []models.Message, error) {
	conversation, err := s.inbox.GetConversation(ctx, clinicID, id)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.inbox.ListMessages(ctx, id, 0, 0)
	if err != nil {
		return nil, nil, err
	}
	return conversation, messages, nil
}

// SendMessage appends an outbound message from a team member. When the
// conversation is assigned to someone else, they get a push notification.
func (s *InboxService) SendMessage(ctx context.Context, clinicID, conversationID, senderID uuid.UUID, body string) (*models.Message, error) {
	conversation, err := s.inbox.GetConversation(ctx, clinicID, conversationID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		Direction:      models.MessageOutbound,
		Body:           body,
		SenderID:       &senderID,
	}
	if err := s.inbox.AppendMessage(ctx, message); err != nil {
		return nil, err
	}

	s.notifyAssignee(conversation, senderID, body)
	return message, nil
}

// ReceiveMessage appends an inbound message from the contact and notifies
// the assignee.
func (s *InboxService) ReceiveMessage(ctx context.Context, clinicID, conversationID uuid.UUID, body string) (*models.Message, error) {
	conversation, err := s.inbox.GetConversation(ctx, clinicID, conversationID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		Direction:      models.MessageInbound,
		Body:           body,
	}
	if err := s.inbox.AppendMessage(ctx, message); err != nil {
		return nil, err
	}

	s.notifyAssignee(conversation, uuid.Nil, body)
	return message, nil
}

// Assign sets the conversation's assignee.
func (s *InboxService) Assign(ctx context.Context, clinicID, conversationID, assigneeID uuid.UUID) (*models.Conversation, error) {
	conversation, err := s.inbox.GetConversation(ctx, clinicID, conversationID)
	if err != nil {
		return nil, err
	}
	conversation.AssignedTo = &assigneeID
	if err := s.inbox.UpdateConversation(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// Close marks a conversation closed.
func (s *InboxService) Close(ctx context.Context, clinicID, conversationID uuid.UUID) error {
	return s.inbox.CloseConversation(ctx, clinicID, conversationID, time.Now().UTC())
}

// CreateConversation opens a new conversation for a contact.
func (s *InboxService) CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	conversation.Status = models.ConversationOpen
	return s.inbox.CreateConversation(ctx, conversation)
}

func (s *InboxService) notifyAssignee(conversation *models.Conversation, exclude uuid.UUID, body string) {
	if s.dispatcher == nil || conversation.AssignedTo == nil || *conversation.AssignedTo == exclude {
		return
	}
	preview := body
	if len(preview) > 120 {
		preview = preview[:120]
	}
	s.dispatcher.Enqueue(notify.Delivery{
		ClinicID:         conversation.ClinicID,
		UserID:           *conversation.AssignedTo,
		NotificationType: "inbox_message",
		Payload: models.PushPayload{
			Title:     "New message from " + conversation.ContactName,
			Body:      preview,
			ActionURL: "/inbox/" + conversation.ID.String(),
		},
	})
}
