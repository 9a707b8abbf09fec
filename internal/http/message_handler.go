package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/support-hours/internal/application"
)

type messageService interface {
	SubmitMessage(ctx context.Context, input application.ContactMessageInput) (application.ContactMessage, error)
	ListMessages(ctx context.Context, principal application.Principal) ([]application.ContactMessage, error)
	DeleteMessage(ctx context.Context, principal application.Principal, messageID string) error
}

type MessageHandler struct {
	service   messageService
	responder responder
	logger    *slog.Logger
}

func NewMessageHandler(service messageService, logger *slog.Logger) *MessageHandler {
	base := defaultLogger(logger)
	return &MessageHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *MessageHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "MessageHandler", operation, attrs...)
}

// Submit accepts a visitor's contact request. It is mounted outside the
// session middleware.
func (h *MessageHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req contactMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Submit", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode message request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Submit")

	message, err := h.service.SubmitMessage(r.Context(), application.ContactMessageInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "message submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("message_id", message.ID).InfoContext(r.Context(), "contact message submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, contactMessageResponse{Message: toContactMessageDTO(message)})
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	messages, err := h.service.ListMessages(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "message list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(messages)).InfoContext(r.Context(), "messages listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listContactMessagesResponse{Messages: toContactMessageDTOs(messages)})
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	messageID, ok := MessageIDFromContext(r.Context())
	if !ok || strings.TrimSpace(messageID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing message id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMessageID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "message_id", messageID)
	if err := h.service.DeleteMessage(r.Context(), principal, messageID); err != nil {
		logger.ErrorContext(r.Context(), "message delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "message deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type contactMessageRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type contactMessageResponse struct {
	Message contactMessageDTO `json:"message"`
}

type listContactMessagesResponse struct {
	Messages []contactMessageDTO `json:"messages"`
}

type contactMessageDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

func toContactMessageDTO(message application.ContactMessage) contactMessageDTO {
	return contactMessageDTO{
		ID:        message.ID,
		Name:      message.Name,
		Email:     message.Email,
		Subject:   message.Subject,
		Body:      message.Body,
		CreatedAt: message.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toContactMessageDTOs(messages []application.ContactMessage) []contactMessageDTO {
	if len(messages) == 0 {
		return nil
	}
	out := make([]contactMessageDTO, 0, len(messages))
	for _, message := range messages {
		out = append(out, toContactMessageDTO(message))
	}
	return out
}
