package application

import (
	"time"

	"github.com/example/support-hours/internal/hours"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// HolidayInput captures caller provided holiday fields.
type HolidayInput struct {
	Date        time.Time
	Name        string
	Description string
	Recurring   bool
}

// SpecialHoursInput captures caller provided special-hours fields.
type SpecialHoursInput struct {
	Date     time.Time
	OpensAt  *string
	ClosesAt *string
	Closed   bool
	Reason   string
}

// HoursConfigInput captures caller provided business-hours configuration fields.
type HoursConfigInput struct {
	Name                string
	Timezone            string
	OpensAt             string
	ClosesAt            string
	WorkingDays         []string
	Holidays            []HolidayInput
	SpecialHours        []SpecialHoursInput
	OutsideHoursMessage string
	WeekendMessage      string
	HolidayMessage      string
	WarningMinutes      int
	CutoffMinutes       int
}

// Holiday represents a stored holiday entry.
type Holiday struct {
	ID          string
	Date        time.Time
	Name        string
	Description string
	Recurring   bool
}

// SpecialHoursEntry represents a stored per-date schedule override.
type SpecialHoursEntry struct {
	ID       string
	Date     time.Time
	OpensAt  *string
	ClosesAt *string
	Closed   bool
	Reason   string
}

// HoursConfig represents a persisted business-hours configuration.
type HoursConfig struct {
	ID                  string
	Name                string
	Timezone            string
	OpensAt             string
	ClosesAt            string
	WorkingDays         []string
	Holidays            []Holiday
	SpecialHours        []SpecialHoursEntry
	OutsideHoursMessage string
	WeekendMessage      string
	HolidayMessage      string
	WarningMinutes      int
	CutoffMinutes       int
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// EvaluatorConfig converts the stored configuration into the evaluator's
// value type. Special-hours entries keep their list order so first-match
// semantics carry through.
func (c HoursConfig) EvaluatorConfig() hours.Config {
	holidays := make([]hours.Holiday, 0, len(c.Holidays))
	for _, holiday := range c.Holidays {
		holidays = append(holidays, hours.Holiday{
			Date:        holiday.Date,
			Name:        holiday.Name,
			Description: holiday.Description,
			Recurring:   holiday.Recurring,
		})
	}

	special := make([]hours.SpecialHours, 0, len(c.SpecialHours))
	for _, entry := range c.SpecialHours {
		var window *hours.Window
		if entry.OpensAt != nil && entry.ClosesAt != nil {
			window = &hours.Window{Start: *entry.OpensAt, End: *entry.ClosesAt}
		}
		special = append(special, hours.SpecialHours{
			Date:   entry.Date,
			Hours:  window,
			Closed: entry.Closed,
			Reason: entry.Reason,
		})
	}

	return hours.Config{
		Timezone:            c.Timezone,
		WorkingHours:        hours.Window{Start: c.OpensAt, End: c.ClosesAt},
		WorkingDays:         append([]string(nil), c.WorkingDays...),
		Holidays:            holidays,
		SpecialHours:        special,
		OutsideHoursMessage: c.OutsideHoursMessage,
		Settings: hours.Settings{
			WeekendMessage:                  c.WeekendMessage,
			HolidayMessage:                  c.HolidayMessage,
			WarningMinutesBeforeClose:       c.WarningMinutes,
			AllowNewChatsMinutesBeforeClose: c.CutoffMinutes,
		},
	}
}

// CreateHoursConfigParams wraps the data required to create a configuration.
type CreateHoursConfigParams struct {
	Principal Principal
	Input     HoursConfigInput
}

// UpdateHoursConfigParams wraps the data required to update a configuration.
type UpdateHoursConfigParams struct {
	Principal Principal
	ConfigID  string
	Input     HoursConfigInput
}

// AvailabilityStatus is the chat-intake verdict for one instant.
type AvailabilityStatus struct {
	Open              bool
	Message           string
	AllowNewChats     bool
	ShowCloseWarning  bool
	MinutesUntilClose int
	ConfigID          string
}

// ContactMessageInput captures a visitor's outside-hours request.
type ContactMessageInput struct {
	Name    string
	Email   string
	Subject string
	Body    string
}

// ContactMessage represents a stored outside-hours request.
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Body      string
	CreatedAt time.Time
}

// UserInput captures caller provided administrator attributes.
type UserInput struct {
	Email       string
	DisplayName string
	Password    string
	IsAdmin     bool
}

// User represents an administrator account exposed by the application services.
type User struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// UpdateUserParams wraps the data required to update a user.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID          string
	UserID      string
	Token       string
	Fingerprint string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RevokedAt   *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email       string
	Password    string
	Fingerprint string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}
