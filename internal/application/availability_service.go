package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/support-hours/internal/hours"
	"github.com/example/support-hours/internal/persistence"
)

// ActiveConfigSource loads the currently active business-hours configuration.
type ActiveConfigSource interface {
	GetActiveConfig(ctx context.Context) (HoursConfig, error)
}

// AvailabilityService answers whether the support desk is accepting chats
// right now. It caches the active configuration and its compiled evaluator
// for a short interval so the public status endpoint stays cheap.
type AvailabilityService struct {
	configs ActiveConfigSource
	now     func() time.Time
	cache   *snapshotCache
	logger  *slog.Logger
}

// NewAvailabilityService constructs an availability service with the provided dependencies.
func NewAvailabilityService(configs ActiveConfigSource, now func() time.Time, cacheTTL time.Duration) *AvailabilityService {
	return NewAvailabilityServiceWithLogger(configs, now, cacheTTL, nil)
}

// NewAvailabilityServiceWithLogger constructs an availability service with a specified logger.
func NewAvailabilityServiceWithLogger(configs ActiveConfigSource, now func() time.Time, cacheTTL time.Duration, logger *slog.Logger) *AvailabilityService {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityService{
		configs: configs,
		now:     now,
		cache:   newSnapshotCache(cacheTTL, now),
		logger:  defaultLogger(logger),
	}
}

// InvalidateCache drops the cached snapshot so the next status check reloads
// the active configuration from the store.
func (s *AvailabilityService) InvalidateCache() {
	if s == nil {
		return
	}
	s.cache.Invalidate()
}

// Status evaluates the desk's availability at the current instant.
// Without an active configuration the desk is reported closed.
func (s *AvailabilityService) Status(ctx context.Context) (status AvailabilityStatus, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}

	logger := serviceLogger(ctx, s.logger, "AvailabilityService", "Status")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to evaluate availability", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("open", status.Open, "config_id", status.ConfigID).DebugContext(ctx, "availability evaluated")
	}()

	entry, ok := s.cache.Get()
	if !ok {
		entry, err = s.loadSnapshot(ctx)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// No active configuration: the desk is closed and callers
				// have no message to display.
				err = nil
				status = AvailabilityStatus{}
				return
			}
			return
		}
	}

	now := s.now()
	resolved := entry.evaluator.Resolve(now)
	status = AvailabilityStatus{
		Open:              resolved.Open,
		Message:           resolved.Message,
		AllowNewChats:     entry.evaluator.ShouldAllowNewChats(now),
		ShowCloseWarning:  entry.evaluator.ShouldShowCloseWarning(now),
		MinutesUntilClose: resolved.MinutesUntilClose,
		ConfigID:          entry.configID,
	}
	return
}

func (s *AvailabilityService) loadSnapshot(ctx context.Context) (*snapshotEntry, error) {
	if s.configs == nil {
		return nil, ErrNotFound
	}

	config, err := s.configs.GetActiveConfig(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	evaluator, err := hours.NewEvaluator(config.EvaluatorConfig())
	if err != nil {
		return nil, fmt.Errorf("build evaluator for config %s: %w", config.ID, err)
	}

	s.cache.Store(config, evaluator)
	return &snapshotEntry{
		configID:  config.ID,
		evaluator: evaluator,
		config:    config,
	}, nil
}
