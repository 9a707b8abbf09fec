package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/support-hours/internal/persistence"
)

const (
	maxMessageNameLength    = 120
	maxMessageSubjectLength = 200
	maxMessageBodyLength    = 4000
)

// ContactMessageRepository captures the persistence operations needed by the service.
type ContactMessageRepository interface {
	CreateMessage(ctx context.Context, message ContactMessage) (ContactMessage, error)
	ListMessages(ctx context.Context) ([]ContactMessage, error)
	DeleteMessage(ctx context.Context, id string) error
}

// MessageService accepts outside-hours contact requests from visitors and
// exposes them to administrators.
type MessageService struct {
	messages    ContactMessageRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewMessageService constructs a message service with the provided dependencies.
func NewMessageService(messages ContactMessageRepository, idGenerator func() string, now func() time.Time) *MessageService {
	return NewMessageServiceWithLogger(messages, idGenerator, now, nil)
}

// NewMessageServiceWithLogger constructs a message service with a specified logger.
func NewMessageServiceWithLogger(messages ContactMessageRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *MessageService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &MessageService{
		messages:    messages,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *MessageService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MessageService", operation, attrs...)
}

// SubmitMessage validates and stores a visitor's contact request. It is the
// only service operation callable without a session.
func (s *MessageService) SubmitMessage(ctx context.Context, input ContactMessageInput) (message ContactMessage, err error) {
	if s == nil {
		err = fmt.Errorf("MessageService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SubmitMessage")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to submit contact message", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("message_id", message.ID).InfoContext(ctx, "contact message submitted")
	}()

	if vErr := validateMessageInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	candidate := ContactMessage{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Subject:   strings.TrimSpace(input.Subject),
		Body:      strings.TrimSpace(input.Body),
		CreatedAt: s.now(),
	}

	if s.messages == nil {
		message = candidate
		return
	}

	message, err = s.messages.CreateMessage(ctx, candidate)
	return
}

// ListMessages returns all stored contact messages, newest first, for administrators.
func (s *MessageService) ListMessages(ctx context.Context, principal Principal) (messages []ContactMessage, err error) {
	if s == nil {
		err = fmt.Errorf("MessageService is nil")
		return
	}
	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.messages == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListMessages",
		"principal_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list contact messages", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(messages)).InfoContext(ctx, "contact messages listed")
	}()

	messages, err = s.messages.ListMessages(ctx)
	return
}

// DeleteMessage removes a stored contact message for administrators.
func (s *MessageService) DeleteMessage(ctx context.Context, principal Principal, messageID string) error {
	if s == nil {
		return fmt.Errorf("MessageService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.messages == nil {
		return ErrNotFound
	}

	logger := s.loggerWith(ctx, "DeleteMessage",
		"principal_id", principal.UserID,
		"message_id", messageID,
	)

	if err := s.messages.DeleteMessage(ctx, messageID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrNotFound
		}
		logger.ErrorContext(ctx, "failed to delete contact message", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "contact message deleted")
	return nil
}

func validateMessageInput(input ContactMessageInput) *ValidationError {
	vErr := &ValidationError{}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		vErr.add("name", "name is required")
	} else if utf8.RuneCountInString(name) > maxMessageNameLength {
		vErr.add("name", fmt.Sprintf("name must be at most %d characters", maxMessageNameLength))
	}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, parseErr := mail.ParseAddress(email); parseErr != nil {
		vErr.add("email", "email must be a valid address")
	}

	if utf8.RuneCountInString(strings.TrimSpace(input.Subject)) > maxMessageSubjectLength {
		vErr.add("subject", fmt.Sprintf("subject must be at most %d characters", maxMessageSubjectLength))
	}

	body := strings.TrimSpace(input.Body)
	if body == "" {
		vErr.add("body", "message body is required")
	} else if utf8.RuneCountInString(body) > maxMessageBodyLength {
		vErr.add("body", fmt.Sprintf("message body must be at most %d characters", maxMessageBodyLength))
	}

	return vErr
}
