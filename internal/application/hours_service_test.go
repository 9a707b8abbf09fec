package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/support-hours/internal/persistence"
)

type hoursRepoStub struct {
	config     HoursConfig
	created    HoursConfig
	updated    HoursConfig
	active     HoursConfig
	activeErr  error
	err        error
	deleteErr  error
	list       []HoursConfig
	listErr    error
	activated  string
	prunedAt   time.Time
	pruneCalls int
}

func (s *hoursRepoStub) CreateConfig(ctx context.Context, config HoursConfig) (HoursConfig, error) {
	if s.err != nil {
		return HoursConfig{}, s.err
	}
	s.created = config
	return config, nil
}

func (s *hoursRepoStub) GetConfig(ctx context.Context, id string) (HoursConfig, error) {
	if s.err != nil {
		return HoursConfig{}, s.err
	}
	if s.config.ID == "" {
		return HoursConfig{}, persistence.ErrNotFound
	}
	return s.config, nil
}

func (s *hoursRepoStub) UpdateConfig(ctx context.Context, config HoursConfig) (HoursConfig, error) {
	if s.err != nil {
		return HoursConfig{}, s.err
	}
	s.updated = config
	return config, nil
}

func (s *hoursRepoStub) DeleteConfig(ctx context.Context, id string) error {
	return s.deleteErr
}

func (s *hoursRepoStub) ListConfigs(ctx context.Context) ([]HoursConfig, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]HoursConfig, len(s.list))
	copy(out, s.list)
	return out, nil
}

func (s *hoursRepoStub) GetActiveConfig(ctx context.Context) (HoursConfig, error) {
	if s.activeErr != nil {
		return HoursConfig{}, s.activeErr
	}
	return s.active, nil
}

func (s *hoursRepoStub) Activate(ctx context.Context, id string, now time.Time) error {
	if s.err != nil {
		return s.err
	}
	s.activated = id
	return nil
}

func (s *hoursRepoStub) PruneExpired(ctx context.Context, before time.Time) error {
	s.pruneCalls++
	s.prunedAt = before
	return nil
}

func validHoursInput() HoursConfigInput {
	return HoursConfigInput{
		Name:                "Weekday support",
		Timezone:            "America/New_York",
		OpensAt:             "09:00",
		ClosesAt:            "18:00",
		WorkingDays:         []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		OutsideHoursMessage: "We are currently closed.",
		WeekendMessage:      "We are closed on weekends.",
		HolidayMessage:      "We are closed for the holiday.",
		WarningMinutes:      30,
		CutoffMinutes:       15,
	}
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
}

func TestHoursService_CreateConfig_RequiresAdmin(t *testing.T) {
	t.Parallel()

	svc := NewHoursService(&hoursRepoStub{}, nil, fixedNow, nil)

	_, err := svc.CreateConfig(context.Background(), CreateHoursConfigParams{
		Principal: Principal{UserID: "user-1"},
		Input:     validHoursInput(),
	})

	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestHoursService_CreateConfig_ValidatesSchedule(t *testing.T) {
	t.Parallel()

	svc := NewHoursService(&hoursRepoStub{}, nil, fixedNow, nil)

	input := validHoursInput()
	input.Name = "   "
	input.Timezone = "Mars/Olympus"
	input.OpensAt = "18:00"
	input.ClosesAt = "09:00"

	_, err := svc.CreateConfig(context.Background(), CreateHoursConfigParams{
		Principal: Principal{UserID: "admin-1", IsAdmin: true},
		Input:     input,
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"name", "timezone", "working_hours"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestHoursService_CreateConfig_PersistsAndInvalidates(t *testing.T) {
	t.Parallel()

	repo := &hoursRepoStub{}
	invalidated := 0
	ids := []string{"config-1", "holiday-1"}
	next := 0
	svc := NewHoursService(repo, func() string {
		id := ids[next%len(ids)]
		next++
		return id
	}, fixedNow, func() { invalidated++ })

	input := validHoursInput()
	input.Holidays = []HolidayInput{{
		Date:      time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC),
		Name:      "Independence Day",
		Recurring: true,
	}}

	config, err := svc.CreateConfig(context.Background(), CreateHoursConfigParams{
		Principal: Principal{UserID: "admin-1", IsAdmin: true},
		Input:     input,
	})
	if err != nil {
		t.Fatalf("CreateConfig returned error: %v", err)
	}

	if config.ID != "config-1" {
		t.Fatalf("expected generated config ID, got %q", config.ID)
	}
	if repo.created.Name != "Weekday support" {
		t.Fatalf("expected config persisted, got %+v", repo.created)
	}
	if len(repo.created.Holidays) != 1 || !repo.created.Holidays[0].Recurring {
		t.Fatalf("expected recurring holiday persisted, got %+v", repo.created.Holidays)
	}
	if invalidated != 1 {
		t.Fatalf("expected one cache invalidation, got %d", invalidated)
	}
}

func TestHoursService_UpdateConfig_PropagatesNotFound(t *testing.T) {
	t.Parallel()

	svc := NewHoursService(&hoursRepoStub{}, nil, fixedNow, nil)

	_, err := svc.UpdateConfig(context.Background(), UpdateHoursConfigParams{
		Principal: Principal{UserID: "admin-1", IsAdmin: true},
		ConfigID:  "missing",
		Input:     validHoursInput(),
	})

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHoursService_UpdateConfig_KeepsIdentityAndActiveFlag(t *testing.T) {
	t.Parallel()

	created := fixedNow().Add(-48 * time.Hour)
	repo := &hoursRepoStub{config: HoursConfig{
		ID:        "config-1",
		Name:      "Old name",
		IsActive:  true,
		CreatedAt: created,
	}}
	svc := NewHoursService(repo, func() string { return "fresh-id" }, fixedNow, nil)

	updated, err := svc.UpdateConfig(context.Background(), UpdateHoursConfigParams{
		Principal: Principal{UserID: "admin-1", IsAdmin: true},
		ConfigID:  "config-1",
		Input:     validHoursInput(),
	})
	if err != nil {
		t.Fatalf("UpdateConfig returned error: %v", err)
	}

	if updated.ID != "config-1" {
		t.Fatalf("expected original ID preserved, got %q", updated.ID)
	}
	if !updated.IsActive {
		t.Fatal("expected active flag preserved")
	}
	if !updated.CreatedAt.Equal(created) {
		t.Fatalf("expected creation timestamp preserved, got %v", updated.CreatedAt)
	}
	if !updated.UpdatedAt.Equal(fixedNow()) {
		t.Fatalf("expected update timestamp refreshed, got %v", updated.UpdatedAt)
	}
}

func TestHoursService_ActivateConfig_PrunesBeforeActivating(t *testing.T) {
	t.Parallel()

	repo := &hoursRepoStub{}
	invalidated := 0
	svc := NewHoursService(repo, nil, fixedNow, func() { invalidated++ })

	if err := svc.ActivateConfig(context.Background(), Principal{UserID: "admin-1", IsAdmin: true}, "config-1"); err != nil {
		t.Fatalf("ActivateConfig returned error: %v", err)
	}

	if repo.pruneCalls != 1 {
		t.Fatalf("expected one prune call, got %d", repo.pruneCalls)
	}
	if !repo.prunedAt.Equal(fixedNow()) {
		t.Fatalf("expected prune at current instant, got %v", repo.prunedAt)
	}
	if repo.activated != "config-1" {
		t.Fatalf("expected config-1 activated, got %q", repo.activated)
	}
	if invalidated != 1 {
		t.Fatalf("expected one cache invalidation, got %d", invalidated)
	}
}

func TestHoursService_ActivateConfig_RequiresAdmin(t *testing.T) {
	t.Parallel()

	svc := NewHoursService(&hoursRepoStub{}, nil, fixedNow, nil)

	err := svc.ActivateConfig(context.Background(), Principal{UserID: "user-1"}, "config-1")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestHoursService_CreateConfig_MapsDuplicateSpecialDates(t *testing.T) {
	t.Parallel()

	repo := &hoursRepoStub{err: persistence.ErrDuplicate}
	svc := NewHoursService(repo, nil, fixedNow, nil)

	_, err := svc.CreateConfig(context.Background(), CreateHoursConfigParams{
		Principal: Principal{UserID: "admin-1", IsAdmin: true},
		Input:     validHoursInput(),
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["special_hours"]; !ok {
		t.Fatalf("expected special_hours validation error, got %v", vErr.FieldErrors)
	}
}
