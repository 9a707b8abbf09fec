package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

type credentialStoreStub struct {
	creds UserCredentials
	user  User
	err   error
}

func (s *credentialStoreStub) GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error) {
	if s.err != nil {
		return UserCredentials{}, s.err
	}
	if s.creds.User.ID == "" {
		return UserCredentials{}, ErrNotFound
	}
	return s.creds, nil
}

func (s *credentialStoreStub) GetUser(ctx context.Context, id string) (User, error) {
	if s.err != nil {
		return User{}, s.err
	}
	if s.user.ID == "" {
		return User{}, ErrNotFound
	}
	return s.user, nil
}

type sessionRepoStub struct {
	session    Session
	created    Session
	revoked    string
	err        error
	getErr     error
	revokeErr  error
	pruneCalls int
}

func (s *sessionRepoStub) CreateSession(ctx context.Context, session Session) (Session, error) {
	if s.err != nil {
		return Session{}, s.err
	}
	s.created = session
	return session, nil
}

func (s *sessionRepoStub) GetSession(ctx context.Context, token string) (Session, error) {
	if s.getErr != nil {
		return Session{}, s.getErr
	}
	if s.session.Token == "" {
		return Session{}, ErrNotFound
	}
	return s.session, nil
}

func (s *sessionRepoStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error) {
	if s.revokeErr != nil {
		return Session{}, s.revokeErr
	}
	s.revoked = token
	session := s.session
	session.RevokedAt = &revokedAt
	return session, nil
}

func (s *sessionRepoStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	s.pruneCalls++
	return nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := CreatePasswordHash(password, DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return hash
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	admin := User{ID: "user-1", Email: "admin@example.com", DisplayName: "Admin", IsAdmin: true}

	t.Run("issues a session for valid credentials", func(t *testing.T) {
		t.Parallel()

		creds := &credentialStoreStub{creds: UserCredentials{
			User:         admin,
			PasswordHash: mustHash(t, "opensesame"),
		}}
		sessions := &sessionRepoStub{}
		svc := NewAuthService(creds, sessions, nil, func() string { return "token-1" }, fixedNow, time.Hour)

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "Admin@Example.com",
			Password: "opensesame",
		})
		if err != nil {
			t.Fatalf("Authenticate returned error: %v", err)
		}

		if result.User.ID != "user-1" {
			t.Fatalf("expected authenticated user, got %+v", result.User)
		}
		if result.Session.Token != "token-1" {
			t.Fatalf("expected issued token, got %q", result.Session.Token)
		}
		if !result.Session.ExpiresAt.Equal(fixedNow().Add(time.Hour)) {
			t.Fatalf("expected TTL applied, got %v", result.Session.ExpiresAt)
		}
		if sessions.pruneCalls != 1 {
			t.Fatalf("expected expired sessions pruned, got %d calls", sessions.pruneCalls)
		}
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		t.Parallel()

		creds := &credentialStoreStub{creds: UserCredentials{
			User:         admin,
			PasswordHash: mustHash(t, "opensesame"),
		}}
		svc := NewAuthService(creds, &sessionRepoStub{}, nil, nil, fixedNow, time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "admin@example.com",
			Password: "wrong",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("hides unknown accounts behind the same error", func(t *testing.T) {
		t.Parallel()

		svc := NewAuthService(&credentialStoreStub{}, &sessionRepoStub{}, nil, nil, fixedNow, time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "ghost@example.com",
			Password: "anything",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects empty credentials", func(t *testing.T) {
		t.Parallel()

		svc := NewAuthService(&credentialStoreStub{}, &sessionRepoStub{}, nil, nil, fixedNow, time.Hour)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()

	admin := User{ID: "user-1", Email: "admin@example.com", IsAdmin: true}

	newSession := func(expiresAt time.Time, revokedAt *time.Time) Session {
		return Session{
			ID:        "session-1",
			UserID:    "user-1",
			Token:     "token-1",
			ExpiresAt: expiresAt,
			RevokedAt: revokedAt,
		}
	}

	t.Run("returns the principal for an active session", func(t *testing.T) {
		t.Parallel()

		sessions := &sessionRepoStub{session: newSession(fixedNow().Add(time.Hour), nil)}
		svc := NewAuthService(&credentialStoreStub{user: admin}, sessions, nil, nil, fixedNow, time.Hour)

		principal, err := svc.ValidateSession(context.Background(), "token-1")
		if err != nil {
			t.Fatalf("ValidateSession returned error: %v", err)
		}
		if principal.UserID != "user-1" || !principal.IsAdmin {
			t.Fatalf("unexpected principal %+v", principal)
		}
	})

	t.Run("rejects an expired session", func(t *testing.T) {
		t.Parallel()

		sessions := &sessionRepoStub{session: newSession(fixedNow().Add(-time.Minute), nil)}
		svc := NewAuthService(&credentialStoreStub{user: admin}, sessions, nil, nil, fixedNow, time.Hour)

		_, err := svc.ValidateSession(context.Background(), "token-1")
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects a revoked session", func(t *testing.T) {
		t.Parallel()

		revokedAt := fixedNow().Add(-time.Minute)
		sessions := &sessionRepoStub{session: newSession(fixedNow().Add(time.Hour), &revokedAt)}
		svc := NewAuthService(&credentialStoreStub{user: admin}, sessions, nil, nil, fixedNow, time.Hour)

		_, err := svc.ValidateSession(context.Background(), "token-1")
		if !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		t.Parallel()

		svc := NewAuthService(&credentialStoreStub{user: admin}, &sessionRepoStub{}, nil, nil, fixedNow, time.Hour)

		_, err := svc.ValidateSession(context.Background(), "missing")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestAuthService_RevokeSession(t *testing.T) {
	t.Parallel()

	t.Run("revokes and prunes", func(t *testing.T) {
		t.Parallel()

		sessions := &sessionRepoStub{session: Session{ID: "session-1", Token: "token-1"}}
		svc := NewAuthService(&credentialStoreStub{}, sessions, nil, nil, fixedNow, time.Hour)

		if err := svc.RevokeSession(context.Background(), "token-1"); err != nil {
			t.Fatalf("RevokeSession returned error: %v", err)
		}
		if sessions.revoked != "token-1" {
			t.Fatalf("expected token revoked, got %q", sessions.revoked)
		}
		if sessions.pruneCalls != 1 {
			t.Fatalf("expected expired sessions pruned, got %d calls", sessions.pruneCalls)
		}
	})

	t.Run("maps an unknown token to invalid credentials", func(t *testing.T) {
		t.Parallel()

		sessions := &sessionRepoStub{revokeErr: ErrNotFound}
		svc := NewAuthService(&credentialStoreStub{}, sessions, nil, nil, fixedNow, time.Hour)

		err := svc.RevokeSession(context.Background(), "missing")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}
