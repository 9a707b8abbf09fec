package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/support-hours/internal/persistence"
)

// MessageRepository implements persistence.ContactMessageRepository on SQLite.
type MessageRepository struct {
	pool *ConnectionPool
}

// NewMessageRepository creates a contact-message repository backed by pool.
func NewMessageRepository(pool *ConnectionPool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// CreateMessage inserts a contact message.
func (r *MessageRepository) CreateMessage(ctx context.Context, message persistence.ContactMessage) error {
	if message.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO contact_messages (id, name, email, subject, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		message.ID,
		message.Name,
		normalizeEmail(message.Email),
		message.Subject,
		message.Body,
		message.CreatedAt.UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// GetMessage retrieves a message by ID.
func (r *MessageRepository) GetMessage(ctx context.Context, id string) (persistence.ContactMessage, error) {
	if id == "" {
		return persistence.ContactMessage{}, persistence.ErrNotFound
	}

	var message persistence.ContactMessage
	var createdAt string
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, name, email, subject, body, created_at
		FROM contact_messages
		WHERE id = ?`, id).Scan(
		&message.ID,
		&message.Name,
		&message.Email,
		&message.Subject,
		&message.Body,
		&createdAt,
	)
	if err != nil {
		return persistence.ContactMessage{}, mapError(err)
	}
	if message.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.ContactMessage{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return message, nil
}

// ListMessages returns all messages, newest first.
func (r *MessageRepository) ListMessages(ctx context.Context) ([]persistence.ContactMessage, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, name, email, subject, body, created_at
		FROM contact_messages
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var messages []persistence.ContactMessage
	for rows.Next() {
		var message persistence.ContactMessage
		var createdAt string
		if err := rows.Scan(&message.ID, &message.Name, &message.Email, &message.Subject, &message.Body, &createdAt); err != nil {
			return nil, mapError(err)
		}
		if message.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		messages = append(messages, message)
	}
	return messages, mapError(rows.Err())
}

// DeleteMessage removes a message by ID.
func (r *MessageRepository) DeleteMessage(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
