package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dentia/clinic-api/internal/ai"
	"github.com/dentia/clinic-api/internal/metrics"
	"github.com/dentia/clinic-api/internal/models"
	"github.com/dentia/clinic-api/internal/repository"
)

const assistantSystemPrompt = "You are the virtual assistant of a dental clinic. " +
	"Answer patient questions briefly and warmly, in the patient's language. " +
	"Never give medical diagnoses; suggest booking an appointment for clinical questions."

const assistantHistoryLimit = 20

// AssistantReply is the assistant's response to a conversation.
type AssistantReply struct {
	Text       string          `json:"text"`
	Audio      []byte          `json:"audio,omitempty"`
	AudioType  string          `json:"audio_type,omitempty"`
	Message    *models.Message `json:"message,omitempty"`
	Transcript string          `json:"transcript,omitempty"`
}

// AssistantService runs the transcribe, complete, speak pipeline over
// inbox conversations.
type AssistantService struct {
	providers *ai.Providers
	inbox     *repository.InboxRepository
}

// NewAssistantService creates a new assistant service
func NewAssistantService(providers *ai.Providers, inbox *repository.InboxRepository) *AssistantService {
	return &AssistantService{providers: providers, inbox: inbox}
}

// Reply generates an assistant response for a conversation. When audio is
// supplied it is transcribed first and the transcript becomes the prompt.
// With autoSend the reply is stored as an outbound assistant message; with
// withAudio the reply is also synthesised to speech.
func (s *AssistantService) Reply(ctx context.Context, clinicID, conversationID uuid.UUID, prompt string, audio []byte, mimeType string, autoSend, withAudio bool) (*AssistantReply, error) {
	conversation, err := s.inbox.GetConversation(ctx, clinicID, conversationID)
	if err != nil {
		return nil, err
	}

	reply := &AssistantReply{}

	if len(audio) > 0 {
		start := time.Now()
		transcript, err := s.providers.Transcriber.Transcribe(ctx, audio, mimeType)
		metrics.AIRequestDuration.WithLabelValues("stt", "transcribe").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.AIRequestsTotal.WithLabelValues("stt", "transcribe", "error").Inc()
			return nil, err
		}
		metrics.AIRequestsTotal.WithLabelValues("stt", "transcribe", "ok").Inc()
		reply.Transcript = transcript
		prompt = transcript
	}
	if prompt == "" {
		return nil, fmt.Errorf("empty assistant prompt")
	}

	messages, err := s.history(ctx, conversation.ID)
	if err != nil {
		return nil, err
	}
	messages = append(messages, ai.Message{Role: "user", Content: prompt})

	start := time.Now()
	text, err := s.providers.Completer.Complete(ctx, messages)
	metrics.AIRequestDuration.WithLabelValues("llm", "complete").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AIRequestsTotal.WithLabelValues("llm", "complete", "error").Inc()
		return nil, err
	}
	metrics.AIRequestsTotal.WithLabelValues("llm", "complete", "ok").Inc()
	reply.Text = text

	if withAudio {
		start := time.Now()
		audioBytes, contentType, err := s.providers.Speaker.Speak(ctx, text)
		metrics.AIRequestDuration.WithLabelValues("tts", "speak").Observe(time.Since(start).Seconds())
		if err != nil {
			// The text reply is still useful without audio.
			metrics.AIRequestsTotal.WithLabelValues("tts", "speak", "error").Inc()
			log.Warn().Err(err).Msg("Speech synthesis failed")
		} else {
			metrics.AIRequestsTotal.WithLabelValues("tts", "speak", "ok").Inc()
			reply.Audio = audioBytes
			reply.AudioType = contentType
		}
	}

	if autoSend {
		message := &models.Message{
			ConversationID: conversation.ID,
			Direction:      models.MessageOutbound,
			Body:           text,
			FromAssistant:  true,
		}
		if err := s.inbox.AppendMessage(ctx, message); err != nil {
			return nil, err
		}
		reply.Message = message
	}

	return reply, nil
}

// history converts recent conversation messages into LLM turns, oldest
// first, prefixed with the system prompt.
func (s *AssistantService) history(ctx context.Context, conversationID uuid.UUID) ([]ai.Message, error) {
	stored, err := s.inbox.ListMessages(ctx, conversationID, 0, 0)
	if err != nil {
		return nil, err
	}
	if len(stored) > assistantHistoryLimit {
		stored = stored[len(stored)-assistantHistoryLimit:]
	}

	messages := make([]ai.Message, 0, len(stored)+1)
	messages = append(messages, ai.Message{Role: "system", Content: assistantSystemPrompt})
	for _, m := range stored {
		role := "user"
		if m.Direction == models.MessageOutbound {
			role = "assistant"
		}
		messages = append(messages, ai.Message{Role: role, Content: m.Body})
	}
	return messages, nil
}
