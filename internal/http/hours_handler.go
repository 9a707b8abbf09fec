package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/support-hours/internal/application"
)

const dateLayout = "2006-01-02"

type hoursService interface {
	CreateConfig(ctx context.Context, params application.CreateHoursConfigParams) (application.HoursConfig, error)
	UpdateConfig(ctx context.Context, params application.UpdateHoursConfigParams) (application.HoursConfig, error)
	DeleteConfig(ctx context.Context, principal application.Principal, configID string) error
	GetConfig(ctx context.Context, principal application.Principal, configID string) (application.HoursConfig, error)
	ListConfigs(ctx context.Context, principal application.Principal) ([]application.HoursConfig, error)
	ActivateConfig(ctx context.Context, principal application.Principal, configID string) error
}

type HoursHandler struct {
	service   hoursService
	responder responder
	logger    *slog.Logger
}

func NewHoursHandler(service hoursService, logger *slog.Logger) *HoursHandler {
	base := defaultLogger(logger)
	return &HoursHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *HoursHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "HoursHandler", operation, attrs...)
}

func (h *HoursHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req hoursConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode config request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, vErr := req.toInput()
	if vErr.HasErrors() {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	config, err := h.service.CreateConfig(r.Context(), application.CreateHoursConfigParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "config creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("config_id", config.ID).InfoContext(r.Context(), "config created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, hoursConfigResponse{Config: toHoursConfigDTO(config)})
}

func (h *HoursHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	configID, ok := ConfigIDFromContext(r.Context())
	if !ok || strings.TrimSpace(configID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing config id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidConfigID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req hoursConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "config_id", configID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode config update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, vErr := req.toInput()
	if vErr.HasErrors() {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "config_id", configID)

	config, err := h.service.UpdateConfig(r.Context(), application.UpdateHoursConfigParams{
		Principal: principal,
		ConfigID:  configID,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "config update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "config updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, hoursConfigResponse{Config: toHoursConfigDTO(config)})
}

func (h *HoursHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	configID, ok := ConfigIDFromContext(r.Context())
	if !ok || strings.TrimSpace(configID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing config id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidConfigID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "config_id", configID)
	if err := h.service.DeleteConfig(r.Context(), principal, configID); err != nil {
		logger.ErrorContext(r.Context(), "config delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "config deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *HoursHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	configID, ok := ConfigIDFromContext(r.Context())
	if !ok || strings.TrimSpace(configID) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing config id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidConfigID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "config_id", configID)

	config, err := h.service.GetConfig(r.Context(), principal, configID)
	if err != nil {
		logger.ErrorContext(r.Context(), "config fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, hoursConfigResponse{Config: toHoursConfigDTO(config)})
}

func (h *HoursHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	configs, err := h.service.ListConfigs(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "config list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(configs)).InfoContext(r.Context(), "configs listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listHoursConfigsResponse{Configs: toHoursConfigDTOs(configs)})
}

func (h *HoursHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	configID, ok := ConfigIDFromContext(r.Context())
	if !ok || strings.TrimSpace(configID) == "" {
		h.log(r.Context(), "Activate", "error_kind", "bad_request").ErrorContext(r.Context(), "missing config id for activation")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidConfigID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Activate", "principal_id", principal.UserID, "config_id", configID)

	if err := h.service.ActivateConfig(r.Context(), principal, configID); err != nil {
		logger.ErrorContext(r.Context(), "config activation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "config activated")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type holidayRequest struct {
	Date        string `json:"date"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Recurring   bool   `json:"recurring"`
}

type specialHoursRequest struct {
	Date     string  `json:"date"`
	OpensAt  *string `json:"opens_at"`
	ClosesAt *string `json:"closes_at"`
	Closed   bool    `json:"closed"`
	Reason   string  `json:"reason"`
}

type hoursConfigRequest struct {
	Name                string                `json:"name"`
	Timezone            string                `json:"timezone"`
	OpensAt             string                `json:"opens_at"`
	ClosesAt            string                `json:"closes_at"`
	WorkingDays         []string              `json:"working_days"`
	Holidays            []holidayRequest      `json:"holidays"`
	SpecialHours        []specialHoursRequest `json:"special_hours"`
	OutsideHoursMessage string                `json:"outside_hours_message"`
	WeekendMessage      string                `json:"weekend_message"`
	HolidayMessage      string                `json:"holiday_message"`
	WarningMinutes      int                   `json:"warning_minutes_before_close"`
	CutoffMinutes       int                   `json:"allow_new_chats_minutes_before_close"`
}

// toInput converts the wire representation, reporting unparseable dates as
// field errors so callers get a 422 rather than a bare 400.
func (r hoursConfigRequest) toInput() (application.HoursConfigInput, *application.ValidationError) {
	vErr := &application.ValidationError{}

	holidays := make([]application.HolidayInput, 0, len(r.Holidays))
	for i, holiday := range r.Holidays {
		date, err := time.Parse(dateLayout, strings.TrimSpace(holiday.Date))
		if err != nil {
			vErr.AddFieldError(holidayField(i), "date must use the YYYY-MM-DD format")
			continue
		}
		holidays = append(holidays, application.HolidayInput{
			Date:        date,
			Name:        holiday.Name,
			Description: holiday.Description,
			Recurring:   holiday.Recurring,
		})
	}

	special := make([]application.SpecialHoursInput, 0, len(r.SpecialHours))
	for i, entry := range r.SpecialHours {
		date, err := time.Parse(dateLayout, strings.TrimSpace(entry.Date))
		if err != nil {
			vErr.AddFieldError(specialHoursField(i), "date must use the YYYY-MM-DD format")
			continue
		}
		special = append(special, application.SpecialHoursInput{
			Date:     date,
			OpensAt:  entry.OpensAt,
			ClosesAt: entry.ClosesAt,
			Closed:   entry.Closed,
			Reason:   entry.Reason,
		})
	}

	return application.HoursConfigInput{
		Name:                r.Name,
		Timezone:            r.Timezone,
		OpensAt:             r.OpensAt,
		ClosesAt:            r.ClosesAt,
		WorkingDays:         r.WorkingDays,
		Holidays:            holidays,
		SpecialHours:        special,
		OutsideHoursMessage: r.OutsideHoursMessage,
		WeekendMessage:      r.WeekendMessage,
		HolidayMessage:      r.HolidayMessage,
		WarningMinutes:      r.WarningMinutes,
		CutoffMinutes:       r.CutoffMinutes,
	}, vErr
}

func holidayField(index int) string {
	return fmt.Sprintf("holidays[%d].date", index)
}

func specialHoursField(index int) string {
	return fmt.Sprintf("special_hours[%d].date", index)
}

type hoursConfigResponse struct {
	Config hoursConfigDTO `json:"config"`
}

type listHoursConfigsResponse struct {
	Configs []hoursConfigDTO `json:"configs"`
}

type holidayDTO struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Recurring   bool   `json:"recurring"`
}

type specialHoursDTO struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	OpensAt  *string `json:"opens_at,omitempty"`
	ClosesAt *string `json:"closes_at,omitempty"`
	Closed   bool    `json:"closed"`
	Reason   string  `json:"reason,omitempty"`
}

type hoursConfigDTO struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	Timezone            string            `json:"timezone"`
	OpensAt             string            `json:"opens_at"`
	ClosesAt            string            `json:"closes_at"`
	WorkingDays         []string          `json:"working_days"`
	Holidays            []holidayDTO      `json:"holidays"`
	SpecialHours        []specialHoursDTO `json:"special_hours"`
	OutsideHoursMessage string            `json:"outside_hours_message"`
	WeekendMessage      string            `json:"weekend_message"`
	HolidayMessage      string            `json:"holiday_message"`
	WarningMinutes      int               `json:"warning_minutes_before_close"`
	CutoffMinutes       int               `json:"allow_new_chats_minutes_before_close"`
	IsActive            bool              `json:"is_active"`
	CreatedAt           string            `json:"created_at"`
	UpdatedAt           string            `json:"updated_at"`
}

func toHoursConfigDTO(config application.HoursConfig) hoursConfigDTO {
	holidays := make([]holidayDTO, 0, len(config.Holidays))
	for _, holiday := range config.Holidays {
		holidays = append(holidays, holidayDTO{
			ID:          holiday.ID,
			Date:        holiday.Date.Format(dateLayout),
			Name:        holiday.Name,
			Description: holiday.Description,
			Recurring:   holiday.Recurring,
		})
	}

	special := make([]specialHoursDTO, 0, len(config.SpecialHours))
	for _, entry := range config.SpecialHours {
		special = append(special, specialHoursDTO{
			ID:       entry.ID,
			Date:     entry.Date.Format(dateLayout),
			OpensAt:  entry.OpensAt,
			ClosesAt: entry.ClosesAt,
			Closed:   entry.Closed,
			Reason:   entry.Reason,
		})
	}

	return hoursConfigDTO{
		ID:                  config.ID,
		Name:                config.Name,
		Timezone:            config.Timezone,
		OpensAt:             config.OpensAt,
		ClosesAt:            config.ClosesAt,
		WorkingDays:         config.WorkingDays,
		Holidays:            holidays,
		SpecialHours:        special,
		OutsideHoursMessage: config.OutsideHoursMessage,
		WeekendMessage:      config.WeekendMessage,
		HolidayMessage:      config.HolidayMessage,
		WarningMinutes:      config.WarningMinutes,
		CutoffMinutes:       config.CutoffMinutes,
		IsActive:            config.IsActive,
		CreatedAt:           config.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:           config.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toHoursConfigDTOs(configs []application.HoursConfig) []hoursConfigDTO {
	if len(configs) == 0 {
		return nil
	}
	out := make([]hoursConfigDTO, 0, len(configs))
	for _, config := range configs {
		out = append(out, toHoursConfigDTO(config))
	}
	return out
}
