package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/support-hours/internal/persistence"
)

type messageRepoStub struct {
	created   ContactMessage
	err       error
	deleteErr error
	list      []ContactMessage
}

func (s *messageRepoStub) CreateMessage(ctx context.Context, message ContactMessage) (ContactMessage, error) {
	if s.err != nil {
		return ContactMessage{}, s.err
	}
	s.created = message
	return message, nil
}

func (s *messageRepoStub) ListMessages(ctx context.Context) ([]ContactMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]ContactMessage, len(s.list))
	copy(out, s.list)
	return out, nil
}

func (s *messageRepoStub) DeleteMessage(ctx context.Context, id string) error {
	return s.deleteErr
}

func TestMessageService_SubmitMessage_ValidatesInput(t *testing.T) {
	t.Parallel()

	svc := NewMessageService(&messageRepoStub{}, nil, fixedNow)

	_, err := svc.SubmitMessage(context.Background(), ContactMessageInput{
		Name:  "   ",
		Email: "not-an-address",
		Body:  "",
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"name", "email", "body"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestMessageService_SubmitMessage_RejectsOversizedBody(t *testing.T) {
	t.Parallel()

	svc := NewMessageService(&messageRepoStub{}, nil, fixedNow)

	_, err := svc.SubmitMessage(context.Background(), ContactMessageInput{
		Name:  "Visitor",
		Email: "visitor@example.com",
		Body:  strings.Repeat("a", maxMessageBodyLength+1),
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["body"]; !ok {
		t.Fatalf("expected body validation error, got %v", vErr.FieldErrors)
	}
}

func TestMessageService_SubmitMessage_PersistsNormalizedFields(t *testing.T) {
	t.Parallel()

	repo := &messageRepoStub{}
	svc := NewMessageService(repo, func() string { return "message-1" }, fixedNow)

	message, err := svc.SubmitMessage(context.Background(), ContactMessageInput{
		Name:    "  Visitor  ",
		Email:   " Visitor@Example.COM ",
		Subject: " Need help ",
		Body:    " Please call me back. ",
	})
	if err != nil {
		t.Fatalf("SubmitMessage returned error: %v", err)
	}

	if message.ID != "message-1" {
		t.Fatalf("expected generated ID, got %q", message.ID)
	}
	if repo.created.Email != "visitor@example.com" {
		t.Fatalf("expected lowercased email, got %q", repo.created.Email)
	}
	if repo.created.Name != "Visitor" || repo.created.Subject != "Need help" {
		t.Fatalf("expected trimmed fields, got %+v", repo.created)
	}
	if !repo.created.CreatedAt.Equal(fixedNow()) {
		t.Fatalf("expected fixed timestamp, got %v", repo.created.CreatedAt)
	}
}

func TestMessageService_ListMessages_RequiresAdmin(t *testing.T) {
	t.Parallel()

	svc := NewMessageService(&messageRepoStub{}, nil, fixedNow)

	_, err := svc.ListMessages(context.Background(), Principal{UserID: "user-1"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestMessageService_DeleteMessage_MapsNotFound(t *testing.T) {
	t.Parallel()

	svc := NewMessageService(&messageRepoStub{deleteErr: persistence.ErrNotFound}, nil, fixedNow)

	err := svc.DeleteMessage(context.Background(), Principal{UserID: "admin-1", IsAdmin: true}, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
