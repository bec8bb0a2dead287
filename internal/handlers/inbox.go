package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dentia/clinic-api/internal/clinicctx"
	"github.com/dentia/clinic-api/internal/middleware"
	"github.com/dentia/clinic-api/internal/models"
	"github.com/dentia/clinic-api/internal/services"
)

// maxAudioBytes caps uploaded voice notes at 20 MiB.
const maxAudioBytes = 20 << 20

// InboxHandler serves the conversation, message and assistant endpoints.
type InboxHandler struct {
	inbox     *services.InboxService
	assistant *services.AssistantService
}

// NewInboxHandler creates a new inbox handler
func NewInboxHandler(inbox *services.InboxService, assistant *services.AssistantService) *InboxHandler {
	return &InboxHandler{inbox: inbox, assistant: assistant}
}

// ListConversations returns conversations, newest activity first.
func (h *InboxHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	conversations, err := h.inbox.ListConversations(
		r.Context(),
		membership.ClinicID,
		r.URL.Query().Get("status"),
		queryInt(r, "limit", 50),
		queryInt(r, "offset", 0),
	)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeList(w, conversations, len(conversations))
}

// GetConversation returns one conversation with its messages.
func (h *InboxHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	conversation, messages, err := h.inbox.GetConversation(r.Context(), membership.ClinicID, id)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"conversation": conversation,
		"messages":     messages,
	})
}

type createConversationRequest struct {
	PatientID    string `json:"patient_id,omitempty" validate:"omitempty,uuid"`
	ContactName  string `json:"contact_name,omitempty" validate:"omitempty,max=255"`
	ContactPhone string `json:"contact_phone" validate:"required,max=50"`
}

// CreateConversation opens a thread for a contact.
func (h *InboxHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	var req createConversationRequest
	if !decodeValid(w, r, &req) {
		return
	}

	conversation := &models.Conversation{
		ClinicID:     membership.ClinicID,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
	}
	patientID, err := parseOptionalUUID(req.PatientID)
	if err != nil {
		writeBadRequest(w, "invalid patient_id")
		return
	}
	conversation.PatientID = patientID

	if err := h.inbox.CreateConversation(r.Context(), conversation); err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, conversation)
}

// SendMessage posts an outbound reply from the authenticated member.
func (h *InboxHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())
	userID, _ := middleware.GetUserID(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req models.SendMessageRequest
	if !decodeValid(w, r, &req) {
		return
	}

	message, err := h.inbox.SendMessage(r.Context(), membership.ClinicID, id, userID, req.Body)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, message)
}

// ReceiveInbound records an inbound message from the contact, for manual
// entry or webhook bridges. The assignee gets a push notification.
func (h *InboxHandler) ReceiveInbound(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req models.SendMessageRequest
	if !decodeValid(w, r, &req) {
		return
	}

	message, err := h.inbox.ReceiveMessage(r.Context(), membership.ClinicID, id, req.Body)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, message)
}

type assignRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// Assign hands the conversation to a team member.
func (h *InboxHandler) Assign(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req assignRequest
	if !decodeValid(w, r, &req) {
		return
	}
	assigneeID, _ := uuid.Parse(req.UserID)

	conversation, err := h.inbox.Assign(r.Context(), membership.ClinicID, id, assigneeID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, conversation)
}

// Close marks the conversation closed.
func (h *InboxHandler) Close(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.inbox.Close(r.Context(), membership.ClinicID, id); err != nil {
		writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssistantReply runs the AI assistant over the conversation. The request
// is either JSON with a text prompt, or multipart/form-data carrying a
// voice note in the "audio" part that gets transcribed first.
func (h *InboxHandler) AssistantReply(w http.ResponseWriter, r *http.Request) {
	membership, _ := clinicctx.FromContext(r.Context())

	id, err := urlID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var (
		req      models.AssistantReplyRequest
		audio    []byte
		mimeType string
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
			writeBadRequest(w, "invalid multipart body")
			return
		}
		file, header, err := r.FormFile("audio")
		if err != nil {
			writeBadRequest(w, "audio part is required")
			return
		}
		defer file.Close()

		audio, err = io.ReadAll(io.LimitReader(file, maxAudioBytes))
		if err != nil {
			writeErr(w, r, err)
			return
		}
		mimeType = header.Header.Get("Content-Type")
		req.AutoSend, _ = strconv.ParseBool(r.FormValue("auto_send"))
		req.WithAudio, _ = strconv.ParseBool(r.FormValue("with_audio"))
		req.Prompt = r.FormValue("prompt")
	} else {
		if !decodeValid(w, r, &req) {
			return
		}
		if req.Prompt == "" {
			writeBadRequest(w, "prompt is required")
			return
		}
	}

	reply, err := h.assistant.Reply(
		r.Context(),
		membership.ClinicID,
		id,
		req.Prompt,
		audio,
		mimeType,
		req.AutoSend,
		req.WithAudio,
	)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, reply)
}
