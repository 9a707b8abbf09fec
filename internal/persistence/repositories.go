package persistence

import (
	"context"
	"time"
)

// BusinessHoursRepository stores business-hours configurations together with
// their holiday and special-hours child rows.
type BusinessHoursRepository interface {
	CreateConfig(ctx context.Context, config BusinessHoursConfig) error
	UpdateConfig(ctx context.Context, config BusinessHoursConfig) error
	GetConfig(ctx context.Context, id string) (BusinessHoursConfig, error)
	// GetActiveConfig returns the single active configuration, or
	// ErrNotFound when none has been activated yet.
	GetActiveConfig(ctx context.Context) (BusinessHoursConfig, error)
	ListConfigs(ctx context.Context) ([]BusinessHoursConfig, error)
	DeleteConfig(ctx context.Context, id string) error
	// Activate marks the config active and clears the flag on every other
	// config in the same transaction.
	Activate(ctx context.Context, id string, now time.Time) error
	// PruneExpired deletes non-recurring holidays and special-hours rows
	// dated strictly before the given calendar date.
	PruneExpired(ctx context.Context, before time.Time) error
}

// UserRepository exposes CRUD operations for administrator accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	SetPassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// ContactMessageRepository stores outside-hours contact requests.
type ContactMessageRepository interface {
	CreateMessage(ctx context.Context, message ContactMessage) error
	GetMessage(ctx context.Context, id string) (ContactMessage, error)
	ListMessages(ctx context.Context) ([]ContactMessage, error)
	DeleteMessage(ctx context.Context, id string) error
}
