package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/support-hours/internal/persistence"
)

type userRepoStub struct {
	user         User
	created      User
	createdHash  string
	updated      User
	passwordID   string
	passwordHash string
	err          error
	deleteErr    error
	list         []User
	count        int
	countErr     error
}

func (s *userRepoStub) CreateUser(ctx context.Context, user User, passwordHash string) (User, error) {
	if s.err != nil {
		return User{}, s.err
	}
	s.created = user
	s.createdHash = passwordHash
	return user, nil
}

func (s *userRepoStub) GetUser(ctx context.Context, id string) (User, error) {
	if s.err != nil {
		return User{}, s.err
	}
	if s.user.ID == "" {
		return User{}, persistence.ErrNotFound
	}
	return s.user, nil
}

func (s *userRepoStub) UpdateUser(ctx context.Context, user User) (User, error) {
	if s.err != nil {
		return User{}, s.err
	}
	s.updated = user
	return user, nil
}

func (s *userRepoStub) SetPassword(ctx context.Context, id, passwordHash string) error {
	s.passwordID = id
	s.passwordHash = passwordHash
	return nil
}

func (s *userRepoStub) DeleteUser(ctx context.Context, id string) error {
	return s.deleteErr
}

func (s *userRepoStub) ListUsers(ctx context.Context) ([]User, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]User, len(s.list))
	copy(out, s.list)
	return out, nil
}

func (s *userRepoStub) CountUsers(ctx context.Context) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.count, nil
}

func TestUserService_CreateUser_RequiresAdmin(t *testing.T) {
	t.Parallel()

	svc := NewUserService(&userRepoStub{}, nil, fixedNow)

	_, err := svc.CreateUser(context.Background(), CreateUserParams{
		Principal: Principal{UserID: "user-1"},
		Input: UserInput{
			Email:       "new@example.com",
			DisplayName: "New User",
			Password:    "correct horse",
		},
	})

	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUserService_CreateUser_ValidatesInput(t *testing.T) {
	t.Parallel()

	svc := NewUserService(&userRepoStub{}, nil, fixedNow)

	_, err := svc.CreateUser(context.Background(), CreateUserParams{
		Principal: Principal{UserID: "admin-1", IsAdmin: true},
		Input: UserInput{
			Email:       "broken",
			DisplayName: " ",
			Password:    "short",
		},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"email", "display_name", "password"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestUserService_CreateUser_HashesPassword(t *testing.T) {
	t.Parallel()

	repo := &userRepoStub{}
	svc := NewUserService(repo, func() string { return "user-1" }, fixedNow)

	user, err := svc.CreateUser(context.Background(), CreateUserParams{
		Principal: Principal{UserID: "admin-1", IsAdmin: true},
		Input: UserInput{
			Email:       "  New@Example.COM ",
			DisplayName: "New User",
			Password:    "correct horse battery",
			IsAdmin:     true,
		},
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if user.Email != "new@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if !strings.HasPrefix(repo.createdHash, "$argon2id$") {
		t.Fatalf("expected argon2id hash, got %q", repo.createdHash)
	}
	if err := VerifyPassword(repo.createdHash, "correct horse battery"); err != nil {
		t.Fatalf("expected stored hash to verify: %v", err)
	}
}

func TestUserService_CreateUser_MapsDuplicateEmails(t *testing.T) {
	t.Parallel()

	svc := NewUserService(&userRepoStub{err: persistence.ErrDuplicate}, nil, fixedNow)

	_, err := svc.CreateUser(context.Background(), CreateUserParams{
		Principal: Principal{UserID: "admin-1", IsAdmin: true},
		Input: UserInput{
			Email:       "dup@example.com",
			DisplayName: "Duplicate",
			Password:    "correct horse",
		},
	})

	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUserService_UpdateUser_KeepsPasswordWhenBlank(t *testing.T) {
	t.Parallel()

	repo := &userRepoStub{user: User{ID: "user-1", Email: "old@example.com", DisplayName: "Old"}}
	svc := NewUserService(repo, nil, fixedNow)

	_, err := svc.UpdateUser(context.Background(), UpdateUserParams{
		Principal: Principal{UserID: "admin-1", IsAdmin: true},
		UserID:    "user-1",
		Input: UserInput{
			Email:       "renamed@example.com",
			DisplayName: "Renamed",
		},
	})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}

	if repo.passwordID != "" {
		t.Fatalf("expected no password change, got SetPassword(%q)", repo.passwordID)
	}
	if repo.updated.Email != "renamed@example.com" {
		t.Fatalf("expected attributes updated, got %+v", repo.updated)
	}
}

func TestUserService_UpdateUser_ReplacesPasswordWhenProvided(t *testing.T) {
	t.Parallel()

	repo := &userRepoStub{user: User{ID: "user-1", Email: "old@example.com", DisplayName: "Old"}}
	svc := NewUserService(repo, nil, fixedNow)

	_, err := svc.UpdateUser(context.Background(), UpdateUserParams{
		Principal: Principal{UserID: "admin-1", IsAdmin: true},
		UserID:    "user-1",
		Input: UserInput{
			Email:       "old@example.com",
			DisplayName: "Old",
			Password:    "brand new secret",
		},
	})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}

	if repo.passwordID != "user-1" {
		t.Fatalf("expected password update for user-1, got %q", repo.passwordID)
	}
	if err := VerifyPassword(repo.passwordHash, "brand new secret"); err != nil {
		t.Fatalf("expected new hash to verify: %v", err)
	}
}

func TestUserService_DeleteUser_RejectsSelfDeletion(t *testing.T) {
	t.Parallel()

	svc := NewUserService(&userRepoStub{}, nil, fixedNow)

	err := svc.DeleteUser(context.Background(), Principal{UserID: "admin-1", IsAdmin: true}, "admin-1")

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUserService_ListUsers_SortsByEmail(t *testing.T) {
	t.Parallel()

	repo := &userRepoStub{list: []User{
		{ID: "user-2", Email: "zoe@example.com"},
		{ID: "user-1", Email: "amy@example.com"},
	}}
	svc := NewUserService(repo, nil, fixedNow)

	users, err := svc.ListUsers(context.Background(), Principal{UserID: "admin-1", IsAdmin: true})
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}

	if len(users) != 2 || users[0].Email != "amy@example.com" {
		t.Fatalf("expected users sorted by email, got %+v", users)
	}
}

func TestUserService_EnsureBootstrapAdmin(t *testing.T) {
	t.Parallel()

	t.Run("creates admin when table is empty", func(t *testing.T) {
		t.Parallel()

		repo := &userRepoStub{}
		svc := NewUserService(repo, func() string { return "admin-1" }, fixedNow)

		if err := svc.EnsureBootstrapAdmin(context.Background(), "root@example.com", "initial secret"); err != nil {
			t.Fatalf("EnsureBootstrapAdmin returned error: %v", err)
		}

		if repo.created.Email != "root@example.com" || !repo.created.IsAdmin {
			t.Fatalf("expected bootstrap admin created, got %+v", repo.created)
		}
	})

	t.Run("is a no-op once users exist", func(t *testing.T) {
		t.Parallel()

		repo := &userRepoStub{count: 3}
		svc := NewUserService(repo, nil, fixedNow)

		if err := svc.EnsureBootstrapAdmin(context.Background(), "root@example.com", "initial secret"); err != nil {
			t.Fatalf("EnsureBootstrapAdmin returned error: %v", err)
		}
		if repo.created.ID != "" || repo.created.Email != "" {
			t.Fatalf("expected no user created, got %+v", repo.created)
		}
	})
}
