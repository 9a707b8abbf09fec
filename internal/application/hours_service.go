package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/support-hours/internal/hours"
	"github.com/example/support-hours/internal/persistence"
)

// HoursRepository captures the persistence operations needed by the service.
type HoursRepository interface {
	CreateConfig(ctx context.Context, config HoursConfig) (HoursConfig, error)
	GetConfig(ctx context.Context, id string) (HoursConfig, error)
	UpdateConfig(ctx context.Context, config HoursConfig) (HoursConfig, error)
	DeleteConfig(ctx context.Context, id string) error
	ListConfigs(ctx context.Context) ([]HoursConfig, error)
	GetActiveConfig(ctx context.Context) (HoursConfig, error)
	Activate(ctx context.Context, id string, now time.Time) error
	PruneExpired(ctx context.Context, before time.Time) error
}

// HoursService orchestrates validation, authorization, and persistence for
// business-hours configurations.
type HoursService struct {
	configs     HoursRepository
	idGenerator func() string
	now         func() time.Time
	// invalidate is called after every successful mutation so cached
	// availability snapshots are refreshed on the next evaluation.
	invalidate func()
	logger     *slog.Logger
}

// NewHoursService constructs an hours service with the provided dependencies.
func NewHoursService(configs HoursRepository, idGenerator func() string, now func() time.Time, invalidate func()) *HoursService {
	return NewHoursServiceWithLogger(configs, idGenerator, now, invalidate, nil)
}

// NewHoursServiceWithLogger constructs an hours service with a specified logger.
func NewHoursServiceWithLogger(configs HoursRepository, idGenerator func() string, now func() time.Time, invalidate func(), logger *slog.Logger) *HoursService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if invalidate == nil {
		invalidate = func() {}
	}
	return &HoursService{
		configs:     configs,
		idGenerator: idGenerator,
		now:         now,
		invalidate:  invalidate,
		logger:      defaultLogger(logger),
	}
}

func (s *HoursService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "HoursService", operation, attrs...)
}

// CreateConfig validates input and persists a new configuration for administrators.
func (s *HoursService) CreateConfig(ctx context.Context, params CreateHoursConfigParams) (config HoursConfig, err error) {
	if s == nil {
		err = fmt.Errorf("HoursService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateConfig",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create business-hours config", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("config_id", config.ID).InfoContext(ctx, "business-hours config created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	candidate := s.buildConfig(params.Input)
	if vErr := validateHoursInput(params.Input, candidate); vErr.HasErrors() {
		err = vErr
		return
	}

	if s.configs == nil {
		config = candidate
		return
	}

	var persisted HoursConfig
	persisted, err = s.configs.CreateConfig(ctx, candidate)
	if err != nil {
		err = mapHoursRepoError(err)
		return
	}

	s.invalidate()
	config = persisted
	return
}

// UpdateConfig validates input and replaces an existing configuration.
func (s *HoursService) UpdateConfig(ctx context.Context, params UpdateHoursConfigParams) (config HoursConfig, err error) {
	if s == nil {
		err = fmt.Errorf("HoursService is nil")
		return
	}
	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.configs == nil {
		err = fmt.Errorf("hours repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateConfig",
		"principal_id", params.Principal.UserID,
		"config_id", params.ConfigID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update business-hours config", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "business-hours config updated")
	}()

	var existing HoursConfig
	existing, err = s.configs.GetConfig(ctx, params.ConfigID)
	if err != nil {
		err = mapHoursRepoError(err)
		return
	}

	updated := s.buildConfig(params.Input)
	if vErr := validateHoursInput(params.Input, updated); vErr.HasErrors() {
		err = vErr
		return
	}
	updated.ID = existing.ID
	updated.IsActive = existing.IsActive
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now()

	config, err = s.configs.UpdateConfig(ctx, updated)
	if err != nil {
		err = mapHoursRepoError(err)
		return
	}

	s.invalidate()
	return
}

// DeleteConfig removes a configuration when requested by an administrator.
func (s *HoursService) DeleteConfig(ctx context.Context, principal Principal, configID string) error {
	if s == nil {
		return fmt.Errorf("HoursService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.configs == nil {
		return fmt.Errorf("hours repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteConfig",
		"principal_id", principal.UserID,
		"config_id", configID,
	)

	if err := s.configs.DeleteConfig(ctx, configID); err != nil {
		err = mapHoursRepoError(err)
		logger.ErrorContext(ctx, "failed to delete business-hours config", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	s.invalidate()
	logger.InfoContext(ctx, "business-hours config deleted")
	return nil
}

// GetConfig returns a single configuration for any authenticated user.
func (s *HoursService) GetConfig(ctx context.Context, principal Principal, configID string) (HoursConfig, error) {
	if s == nil {
		return HoursConfig{}, fmt.Errorf("HoursService is nil")
	}
	if s.configs == nil {
		return HoursConfig{}, ErrNotFound
	}

	config, err := s.configs.GetConfig(ctx, configID)
	if err != nil {
		err = mapHoursRepoError(err)
		s.loggerWith(ctx, "GetConfig", "principal_id", principal.UserID, "config_id", configID).
			ErrorContext(ctx, "failed to load business-hours config", "error", err, "error_kind", ErrorKind(err))
		return HoursConfig{}, err
	}
	return config, nil
}

// ListConfigs returns every stored configuration for any authenticated user.
func (s *HoursService) ListConfigs(ctx context.Context, principal Principal) (configs []HoursConfig, err error) {
	if s == nil {
		err = fmt.Errorf("HoursService is nil")
		return
	}
	if s.configs == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListConfigs",
		"principal_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list business-hours configs", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(configs)).InfoContext(ctx, "business-hours configs listed")
	}()

	configs, err = s.configs.ListConfigs(ctx)
	if err != nil {
		err = mapHoursRepoError(err)
		return
	}
	return
}

// ActivateConfig marks the configuration active for administrators. Expired
// holiday and special-hours rows are pruned first so the evaluator never
// sees stale entries.
func (s *HoursService) ActivateConfig(ctx context.Context, principal Principal, configID string) error {
	if s == nil {
		return fmt.Errorf("HoursService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.configs == nil {
		return fmt.Errorf("hours repository not configured")
	}

	logger := s.loggerWith(ctx, "ActivateConfig",
		"principal_id", principal.UserID,
		"config_id", configID,
	)

	now := s.now()
	if err := s.configs.PruneExpired(ctx, now); err != nil {
		err = mapHoursRepoError(err)
		logger.ErrorContext(ctx, "failed to prune expired entries", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if err := s.configs.Activate(ctx, configID, now); err != nil {
		err = mapHoursRepoError(err)
		logger.ErrorContext(ctx, "failed to activate business-hours config", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	s.invalidate()
	logger.InfoContext(ctx, "business-hours config activated")
	return nil
}

func (s *HoursService) buildConfig(input HoursConfigInput) HoursConfig {
	now := s.now()

	days := make([]string, 0, len(input.WorkingDays))
	for _, day := range input.WorkingDays {
		days = append(days, strings.ToLower(strings.TrimSpace(day)))
	}

	holidays := make([]Holiday, 0, len(input.Holidays))
	for _, holiday := range input.Holidays {
		holidays = append(holidays, Holiday{
			ID:          s.idGenerator(),
			Date:        holiday.Date,
			Name:        strings.TrimSpace(holiday.Name),
			Description: strings.TrimSpace(holiday.Description),
			Recurring:   holiday.Recurring,
		})
	}

	special := make([]SpecialHoursEntry, 0, len(input.SpecialHours))
	for _, entry := range input.SpecialHours {
		special = append(special, SpecialHoursEntry{
			ID:       s.idGenerator(),
			Date:     entry.Date,
			OpensAt:  entry.OpensAt,
			ClosesAt: entry.ClosesAt,
			Closed:   entry.Closed,
			Reason:   strings.TrimSpace(entry.Reason),
		})
	}

	return HoursConfig{
		ID:                  s.idGenerator(),
		Name:                strings.TrimSpace(input.Name),
		Timezone:            strings.TrimSpace(input.Timezone),
		OpensAt:             strings.TrimSpace(input.OpensAt),
		ClosesAt:            strings.TrimSpace(input.ClosesAt),
		WorkingDays:         days,
		Holidays:            holidays,
		SpecialHours:        special,
		OutsideHoursMessage: strings.TrimSpace(input.OutsideHoursMessage),
		WeekendMessage:      strings.TrimSpace(input.WeekendMessage),
		HolidayMessage:      strings.TrimSpace(input.HolidayMessage),
		WarningMinutes:      input.WarningMinutes,
		CutoffMinutes:       input.CutoffMinutes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// validateHoursInput checks service level requirements, then defers the
// schedule invariants to the evaluator package so a stored config is always
// evaluable.
func validateHoursInput(input HoursConfigInput, candidate HoursConfig) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}

	if err := hours.Validate(candidate.EvaluatorConfig()); err != nil {
		var hoursErr *hours.ValidationError
		if errors.As(err, &hoursErr) {
			for field, msg := range hoursErr.FieldErrors {
				vErr.add(field, msg)
			}
		} else {
			vErr.add("config", err.Error())
		}
	}

	return vErr
}

func mapHoursRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		vErr := &ValidationError{}
		vErr.add("special_hours", "at most one special-hours entry may apply per date")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("config", "configuration violates a storage constraint")
		return vErr
	}
	return err
}
