package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/support-hours/internal/application"
	"github.com/example/support-hours/internal/config"
	httptransport "github.com/example/support-hours/internal/http"
	"github.com/example/support-hours/internal/persistence"
	"github.com/example/support-hours/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	hoursRepo := newHoursRepositoryAdapter(sqlite.NewHoursRepository(pool))
	userRepo := newUserRepositoryAdapter(sqlite.NewUserRepository(pool), now)
	credentialStore := newCredentialStoreAdapter(sqlite.NewUserRepository(pool))
	sessionRepo := newSessionRepositoryAdapter(sqlite.NewSessionRepository(pool))
	messageRepo := newMessageRepositoryAdapter(sqlite.NewMessageRepository(pool))

	availabilityService := application.NewAvailabilityServiceWithLogger(hoursRepo, now, cfg.StatusCacheTTL, logger)
	hoursService := application.NewHoursServiceWithLogger(hoursRepo, idGenerator, now, availabilityService.InvalidateCache, logger)
	messageService := application.NewMessageServiceWithLogger(messageRepo, idGenerator, now, logger)
	userService := application.NewUserServiceWithLogger(userRepo, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(credentialStore, sessionRepo, nil, tokenGenerator, now, cfg.SessionTTL, logger)

	if err := userService.EnsureBootstrapAdmin(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminSecret); err != nil {
		logger.Error("failed to bootstrap administrator", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:           httptransport.NewAuthHandler(authService, logger),
		Status:         httptransport.NewStatusHandler(availabilityService, logger),
		Messages:       httptransport.NewMessageHandler(messageService, logger),
		Hours:          httptransport.NewHoursHandler(hoursService, logger),
		Users:          httptransport.NewUserHandler(userService, logger),
		RequireSession: httptransport.RequireSession(authService, logger),
		Middleware:     []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("chatdesk API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

type hoursRepositoryAdapter struct {
	repo persistence.BusinessHoursRepository
}

func newHoursRepositoryAdapter(repo persistence.BusinessHoursRepository) *hoursRepositoryAdapter {
	return &hoursRepositoryAdapter{repo: repo}
}

func (a *hoursRepositoryAdapter) CreateConfig(ctx context.Context, config application.HoursConfig) (application.HoursConfig, error) {
	if err := a.repo.CreateConfig(ctx, toPersistenceConfig(config)); err != nil {
		return application.HoursConfig{}, err
	}
	return config, nil
}

func (a *hoursRepositoryAdapter) GetConfig(ctx context.Context, id string) (application.HoursConfig, error) {
	stored, err := a.repo.GetConfig(ctx, id)
	if err != nil {
		return application.HoursConfig{}, err
	}
	return toApplicationConfig(stored), nil
}

func (a *hoursRepositoryAdapter) UpdateConfig(ctx context.Context, config application.HoursConfig) (application.HoursConfig, error) {
	if err := a.repo.UpdateConfig(ctx, toPersistenceConfig(config)); err != nil {
		return application.HoursConfig{}, err
	}
	return config, nil
}

func (a *hoursRepositoryAdapter) DeleteConfig(ctx context.Context, id string) error {
	return a.repo.DeleteConfig(ctx, id)
}

func (a *hoursRepositoryAdapter) ListConfigs(ctx context.Context) ([]application.HoursConfig, error) {
	models, err := a.repo.ListConfigs(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	configs := make([]application.HoursConfig, 0, len(models))
	for _, model := range models {
		configs = append(configs, toApplicationConfig(model))
	}
	return configs, nil
}

func (a *hoursRepositoryAdapter) GetActiveConfig(ctx context.Context) (application.HoursConfig, error) {
	stored, err := a.repo.GetActiveConfig(ctx)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return application.HoursConfig{}, application.ErrNotFound
		}
		return application.HoursConfig{}, err
	}
	return toApplicationConfig(stored), nil
}

func (a *hoursRepositoryAdapter) Activate(ctx context.Context, id string, now time.Time) error {
	return a.repo.Activate(ctx, id, now)
}

func (a *hoursRepositoryAdapter) PruneExpired(ctx context.Context, before time.Time) error {
	return a.repo.PruneExpired(ctx, before)
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
	now  func() time.Time
}

func newUserRepositoryAdapter(repo persistence.UserRepository, now func() time.Time) *userRepositoryAdapter {
	if now == nil {
		now = time.Now
	}
	return &userRepositoryAdapter{repo: repo, now: now}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(user, passwordHash)); err != nil {
		return application.User{}, err
	}
	return user, nil
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) UpdateUser(ctx context.Context, user application.User) (application.User, error) {
	current, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(user, current.PasswordHash)); err != nil {
		return application.User{}, err
	}
	return user, nil
}

func (a *userRepositoryAdapter) SetPassword(ctx context.Context, id, passwordHash string) error {
	return a.repo.SetPassword(ctx, id, passwordHash, a.now().UTC())
}

func (a *userRepositoryAdapter) DeleteUser(ctx context.Context, id string) error {
	return a.repo.DeleteUser(ctx, id)
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

func (a *userRepositoryAdapter) CountUsers(ctx context.Context) (int, error) {
	return a.repo.CountUsers(ctx)
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *credentialStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

type messageRepositoryAdapter struct {
	repo persistence.ContactMessageRepository
}

func newMessageRepositoryAdapter(repo persistence.ContactMessageRepository) *messageRepositoryAdapter {
	return &messageRepositoryAdapter{repo: repo}
}

func (a *messageRepositoryAdapter) CreateMessage(ctx context.Context, message application.ContactMessage) (application.ContactMessage, error) {
	if err := a.repo.CreateMessage(ctx, toPersistenceMessage(message)); err != nil {
		return application.ContactMessage{}, err
	}
	return message, nil
}

func (a *messageRepositoryAdapter) ListMessages(ctx context.Context) ([]application.ContactMessage, error) {
	models, err := a.repo.ListMessages(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	messages := make([]application.ContactMessage, 0, len(models))
	for _, model := range models {
		messages = append(messages, toApplicationMessage(model))
	}
	return messages, nil
}

func (a *messageRepositoryAdapter) DeleteMessage(ctx context.Context, id string) error {
	return a.repo.DeleteMessage(ctx, id)
}

func toPersistenceConfig(config application.HoursConfig) persistence.BusinessHoursConfig {
	holidays := make([]persistence.Holiday, 0, len(config.Holidays))
	for _, holiday := range config.Holidays {
		holidays = append(holidays, persistence.Holiday{
			ID:          holiday.ID,
			ConfigID:    config.ID,
			Date:        holiday.Date,
			Name:        holiday.Name,
			Description: holiday.Description,
			Recurring:   holiday.Recurring,
		})
	}
	special := make([]persistence.SpecialHours, 0, len(config.SpecialHours))
	for position, entry := range config.SpecialHours {
		special = append(special, persistence.SpecialHours{
			ID:       entry.ID,
			ConfigID: config.ID,
			Date:     entry.Date,
			OpensAt:  cloneString(entry.OpensAt),
			ClosesAt: cloneString(entry.ClosesAt),
			Closed:   entry.Closed,
			Reason:   entry.Reason,
			Position: position,
		})
	}
	return persistence.BusinessHoursConfig{
		ID:                  config.ID,
		Name:                config.Name,
		Timezone:            config.Timezone,
		OpensAt:             config.OpensAt,
		ClosesAt:            config.ClosesAt,
		WorkingDays:         append([]string(nil), config.WorkingDays...),
		Holidays:            holidays,
		SpecialHours:        special,
		OutsideHoursMessage: config.OutsideHoursMessage,
		WeekendMessage:      config.WeekendMessage,
		HolidayMessage:      config.HolidayMessage,
		WarningMinutes:      config.WarningMinutes,
		CutoffMinutes:       config.CutoffMinutes,
		IsActive:            config.IsActive,
		CreatedAt:           config.CreatedAt,
		UpdatedAt:           config.UpdatedAt,
	}
}

func toApplicationConfig(model persistence.BusinessHoursConfig) application.HoursConfig {
	holidays := make([]application.Holiday, 0, len(model.Holidays))
	for _, holiday := range model.Holidays {
		holidays = append(holidays, application.Holiday{
			ID:          holiday.ID,
			Date:        holiday.Date,
			Name:        holiday.Name,
			Description: holiday.Description,
			Recurring:   holiday.Recurring,
		})
	}
	special := make([]application.SpecialHoursEntry, 0, len(model.SpecialHours))
	for _, entry := range model.SpecialHours {
		special = append(special, application.SpecialHoursEntry{
			ID:       entry.ID,
			Date:     entry.Date,
			OpensAt:  cloneString(entry.OpensAt),
			ClosesAt: cloneString(entry.ClosesAt),
			Closed:   entry.Closed,
			Reason:   entry.Reason,
		})
	}
	return application.HoursConfig{
		ID:                  model.ID,
		Name:                model.Name,
		Timezone:            model.Timezone,
		OpensAt:             model.OpensAt,
		ClosesAt:            model.ClosesAt,
		WorkingDays:         append([]string(nil), model.WorkingDays...),
		Holidays:            holidays,
		SpecialHours:        special,
		OutsideHoursMessage: model.OutsideHoursMessage,
		WeekendMessage:      model.WeekendMessage,
		HolidayMessage:      model.HolidayMessage,
		WarningMinutes:      model.WarningMinutes,
		CutoffMinutes:       model.CutoffMinutes,
		IsActive:            model.IsActive,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:          model.ID,
		Email:       model.Email,
		DisplayName: model.DisplayName,
		IsAdmin:     model.IsAdmin,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceUser(user application.User, passwordHash string) persistence.User {
	return persistence.User{
		ID:           user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		PasswordHash: passwordHash,
		IsAdmin:      user.IsAdmin,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:          model.ID,
		UserID:      model.UserID,
		Token:       model.Token,
		Fingerprint: model.Fingerprint,
		ExpiresAt:   model.ExpiresAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		RevokedAt:   cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:          session.ID,
		UserID:      session.UserID,
		Token:       session.Token,
		Fingerprint: session.Fingerprint,
		ExpiresAt:   session.ExpiresAt,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
		RevokedAt:   cloneTime(session.RevokedAt),
	}
}

func toApplicationMessage(model persistence.ContactMessage) application.ContactMessage {
	return application.ContactMessage{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Subject:   model.Subject,
		Body:      model.Body,
		CreatedAt: model.CreatedAt,
	}
}

func toPersistenceMessage(message application.ContactMessage) persistence.ContactMessage {
	return persistence.ContactMessage{
		ID:        message.ID,
		Name:      message.Name,
		Email:     message.Email,
		Subject:   message.Subject,
		Body:      message.Body,
		CreatedAt: message.CreatedAt,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
