package persistence

import "time"

// BusinessHoursConfig is a stored business-hours configuration. Holidays and
// special hours are child rows owned by the config; at most one config is
// active at a time, enforced by the repository's Activate operation.
type BusinessHoursConfig struct {
	ID                  string
	Name                string
	Timezone            string
	OpensAt             string
	ClosesAt            string
	WorkingDays         []string
	Holidays            []Holiday
	SpecialHours        []SpecialHours
	OutsideHoursMessage string
	WeekendMessage      string
	HolidayMessage      string
	WarningMinutes      int
	CutoffMinutes       int
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Holiday is a calendar date that closes the desk, optionally every year.
type Holiday struct {
	ID          string
	ConfigID    string
	Date        time.Time
	Name        string
	Description string
	Recurring   bool
}

// SpecialHours is a per-date override of the weekly schedule. Position
// preserves list order so first-match semantics survive the round trip.
type SpecialHours struct {
	ID       string
	ConfigID string
	Date     time.Time
	OpensAt  *string
	ClosesAt *string
	Closed   bool
	Reason   string
	Position int
}

// User represents an administrator account.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an authentication session persisted for a user.
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

// ContactMessage is an outside-hours request left by a visitor.
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Body      string
	CreatedAt time.Time
}
