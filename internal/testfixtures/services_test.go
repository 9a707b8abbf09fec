package testfixtures

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/example/support-hours/internal/application"
)

type capturingUserRepo struct {
	created application.User
	hash    string
}

func (c *capturingUserRepo) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	c.created = user
	c.hash = passwordHash
	return user, nil
}

func (c *capturingUserRepo) GetUser(ctx context.Context, id string) (application.User, error) {
	return application.User{}, application.ErrNotFound
}

func (c *capturingUserRepo) UpdateUser(ctx context.Context, user application.User) (application.User, error) {
	return user, nil
}

func (c *capturingUserRepo) SetPassword(ctx context.Context, id, passwordHash string) error {
	return nil
}

func (c *capturingUserRepo) DeleteUser(ctx context.Context, id string) error {
	return nil
}

func (c *capturingUserRepo) ListUsers(ctx context.Context) ([]application.User, error) {
	return nil, nil
}

func (c *capturingUserRepo) CountUsers(ctx context.Context) (int, error) {
	return 0, nil
}

func TestServiceFactoryNewUserService(t *testing.T) {
	factory := NewServiceFactory()
	repo := &capturingUserRepo{}

	svc := factory.NewUserService(UserServiceDeps{Users: repo})
	fixture := NewUserFixture(WithUserPassword("correct horse battery"))

	user, err := svc.CreateUser(context.Background(), application.CreateUserParams{
		Principal: application.Principal{UserID: "admin", IsAdmin: true},
		Input:     fixture.Input(),
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if user.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", user.ID)
	}
	if repo.created.ID != user.ID {
		t.Fatalf("repository received unexpected ID: %q", repo.created.ID)
	}
	if !strings.HasPrefix(repo.hash, "$argon2id$") {
		t.Fatalf("repository received unhashed credential: %q", repo.hash)
	}
	if !user.CreatedAt.Equal(factory.Clock.Current()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Current(), user.CreatedAt)
	}
}

func TestServiceFactoryNewAvailabilityService(t *testing.T) {
	// 16:00 UTC on the reference Monday is noon in America/New_York,
	// squarely inside the fixture's 09:00-18:00 window.
	factory := NewServiceFactory(WithClock(NewClock(ReferenceTime().Add(4 * time.Hour))))
	config := NewHoursConfigFixture(WithConfigActive(true)).Application()

	svc := factory.NewAvailabilityService(AvailabilityServiceDeps{
		Configs: staticConfigSource{config: config},
	})

	status, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if !status.Open {
		t.Fatalf("expected desk open at reference time, got %+v", status)
	}
	if status.ConfigID != config.ID {
		t.Fatalf("expected config ID %q, got %q", config.ID, status.ConfigID)
	}
}

type staticConfigSource struct {
	config application.HoursConfig
}

func (s staticConfigSource) GetActiveConfig(ctx context.Context) (application.HoursConfig, error) {
	return s.config, nil
}
