package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/support-hours/internal/application"
)

type availabilityService interface {
	Status(ctx context.Context) (application.AvailabilityStatus, error)
}

// StatusHandler exposes the public availability check consumed by the chat
// widget before it connects a visitor.
type StatusHandler struct {
	service   availabilityService
	responder responder
	logger    *slog.Logger
}

func NewStatusHandler(service availabilityService, logger *slog.Logger) *StatusHandler {
	base := defaultLogger(logger)
	return &StatusHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *StatusHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "StatusHandler", operation, attrs...)
}

func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Get")

	status, err := h.service.Status(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "availability check failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, statusResponse{
		Open:              status.Open,
		Message:           status.Message,
		AllowNewChats:     status.AllowNewChats,
		ShowCloseWarning:  status.ShowCloseWarning,
		MinutesUntilClose: status.MinutesUntilClose,
	})
}

type statusResponse struct {
	Open              bool   `json:"open"`
	Message           string `json:"message,omitempty"`
	AllowNewChats     bool   `json:"allow_new_chats"`
	ShowCloseWarning  bool   `json:"show_close_warning"`
	MinutesUntilClose int    `json:"minutes_until_close"`
}
