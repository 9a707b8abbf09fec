package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/support-hours/internal/application"
	"github.com/example/support-hours/internal/persistence"
)

var (
	userCounter    uint64
	configCounter  uint64
	holidayCounter uint64
	specialCounter uint64
	sessionCounter uint64
	messageCounter uint64
)

var referenceTime = time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures. It
// falls on a Monday so weekday-dependent tests behave predictably.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic administrator record that can be
// materialised for application or persistence tests.
type UserFixture struct {
	ID           string
	Email        string
	DisplayName  string
	Password     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("User %03d", idx),
		Password:     fmt.Sprintf("password-%03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		IsAdmin:      false,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserDisplayName overrides the generated display name.
func WithUserDisplayName(name string) UserOption {
	return func(f *UserFixture) {
		f.DisplayName = name
	}
}

// WithUserPassword overrides the generated plain-text password.
func WithUserPassword(password string) UserOption {
	return func(f *UserFixture) {
		f.Password = password
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserAdmin sets the admin flag on the generated fixture.
func WithUserAdmin(isAdmin bool) UserOption {
	return func(f *UserFixture) {
		f.IsAdmin = isAdmin
	}
}

// WithUserTimestamps sets both created and updated timestamps on the fixture.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		IsAdmin:     f.IsAdmin,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Credentials returns the fixture as an application.UserCredentials value.
func (f UserFixture) Credentials() application.UserCredentials {
	return application.UserCredentials{
		User:         f.Application(),
		PasswordHash: f.PasswordHash,
	}
}

// Principal returns the fixture as an application.Principal value.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, IsAdmin: f.IsAdmin}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		PasswordHash: f.PasswordHash,
		IsAdmin:      f.IsAdmin,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the fixture as an application.UserInput value.
func (f UserFixture) Input() application.UserInput {
	return application.UserInput{
		Email:       f.Email,
		DisplayName: f.DisplayName,
		Password:    f.Password,
		IsAdmin:     f.IsAdmin,
	}
}

// ----------------------- Business-hours fixtures --------------------------

// HolidayFixture represents a deterministic holiday entry.
type HolidayFixture struct {
	ID          string
	ConfigID    string
	Date        time.Time
	Name        string
	Description string
	Recurring   bool
}

// HolidayOption configures the generated holiday fixture.
type HolidayOption func(*HolidayFixture)

// NewHolidayFixture returns a deterministic holiday fixture with optional
// overrides. Dates advance one day per fixture starting from the reference
// date so consecutive fixtures never collide.
func NewHolidayFixture(opts ...HolidayOption) HolidayFixture {
	idx := atomic.AddUint64(&holidayCounter, 1)
	fixture := HolidayFixture{
		ID:        fmt.Sprintf("holiday-%03d", idx),
		Date:      time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(idx)-1),
		Name:      fmt.Sprintf("Holiday %03d", idx),
		Recurring: false,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithHolidayDate overrides the generated holiday date.
func WithHolidayDate(date time.Time) HolidayOption {
	return func(f *HolidayFixture) {
		f.Date = date
	}
}

// WithHolidayName overrides the generated holiday name.
func WithHolidayName(name string) HolidayOption {
	return func(f *HolidayFixture) {
		f.Name = name
	}
}

// WithHolidayRecurring marks the holiday as repeating every year.
func WithHolidayRecurring(recurring bool) HolidayOption {
	return func(f *HolidayFixture) {
		f.Recurring = recurring
	}
}

// Application returns the fixture as an application.Holiday value.
func (f HolidayFixture) Application() application.Holiday {
	return application.Holiday{
		ID:          f.ID,
		Date:        f.Date,
		Name:        f.Name,
		Description: f.Description,
		Recurring:   f.Recurring,
	}
}

// Persistence returns the fixture as a persistence.Holiday value.
func (f HolidayFixture) Persistence() persistence.Holiday {
	return persistence.Holiday{
		ID:          f.ID,
		ConfigID:    f.ConfigID,
		Date:        f.Date,
		Name:        f.Name,
		Description: f.Description,
		Recurring:   f.Recurring,
	}
}

// Input returns the fixture as an application.HolidayInput value.
func (f HolidayFixture) Input() application.HolidayInput {
	return application.HolidayInput{
		Date:        f.Date,
		Name:        f.Name,
		Description: f.Description,
		Recurring:   f.Recurring,
	}
}

// SpecialHoursFixture represents a deterministic per-date schedule override.
type SpecialHoursFixture struct {
	ID       string
	ConfigID string
	Date     time.Time
	OpensAt  *string
	ClosesAt *string
	Closed   bool
	Reason   string
	Position int
}

// SpecialHoursOption configures the generated special-hours fixture.
type SpecialHoursOption func(*SpecialHoursFixture)

// NewSpecialHoursFixture returns a deterministic special-hours fixture. The
// default entry shortens the day rather than closing it.
func NewSpecialHoursFixture(opts ...SpecialHoursOption) SpecialHoursFixture {
	idx := atomic.AddUint64(&specialCounter, 1)
	opens := "10:00"
	closes := "14:00"
	fixture := SpecialHoursFixture{
		ID:       fmt.Sprintf("special-%03d", idx),
		Date:     time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(idx)-1),
		OpensAt:  &opens,
		ClosesAt: &closes,
		Reason:   fmt.Sprintf("Override %03d", idx),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSpecialHoursDate overrides the generated override date.
func WithSpecialHoursDate(date time.Time) SpecialHoursOption {
	return func(f *SpecialHoursFixture) {
		f.Date = date
	}
}

// WithSpecialHoursWindow replaces the override window.
func WithSpecialHoursWindow(opensAt, closesAt string) SpecialHoursOption {
	return func(f *SpecialHoursFixture) {
		f.OpensAt = &opensAt
		f.ClosesAt = &closesAt
	}
}

// WithSpecialHoursClosed marks the date fully closed and clears the window.
func WithSpecialHoursClosed(reason string) SpecialHoursOption {
	return func(f *SpecialHoursFixture) {
		f.Closed = true
		f.OpensAt = nil
		f.ClosesAt = nil
		f.Reason = reason
	}
}

// Application returns the fixture as an application.SpecialHoursEntry value.
func (f SpecialHoursFixture) Application() application.SpecialHoursEntry {
	return application.SpecialHoursEntry{
		ID:       f.ID,
		Date:     f.Date,
		OpensAt:  f.OpensAt,
		ClosesAt: f.ClosesAt,
		Closed:   f.Closed,
		Reason:   f.Reason,
	}
}

// Persistence returns the fixture as a persistence.SpecialHours value.
func (f SpecialHoursFixture) Persistence() persistence.SpecialHours {
	return persistence.SpecialHours{
		ID:       f.ID,
		ConfigID: f.ConfigID,
		Date:     f.Date,
		OpensAt:  f.OpensAt,
		ClosesAt: f.ClosesAt,
		Closed:   f.Closed,
		Reason:   f.Reason,
		Position: f.Position,
	}
}

// Input returns the fixture as an application.SpecialHoursInput value.
func (f SpecialHoursFixture) Input() application.SpecialHoursInput {
	return application.SpecialHoursInput{
		Date:     f.Date,
		OpensAt:  f.OpensAt,
		ClosesAt: f.ClosesAt,
		Closed:   f.Closed,
		Reason:   f.Reason,
	}
}

// HoursConfigFixture represents a deterministic business-hours configuration.
// The defaults describe a weekday desk in America/New_York open 09:00-18:00.
type HoursConfigFixture struct {
	ID                  string
	Name                string
	Timezone            string
	OpensAt             string
	ClosesAt            string
	WorkingDays         []string
	Holidays            []HolidayFixture
	SpecialHours        []SpecialHoursFixture
	OutsideHoursMessage string
	WeekendMessage      string
	HolidayMessage      string
	WarningMinutes      int
	CutoffMinutes       int
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HoursConfigOption configures the generated configuration fixture.
type HoursConfigOption func(*HoursConfigFixture)

// NewHoursConfigFixture returns a deterministic configuration fixture with
// optional overrides.
func NewHoursConfigFixture(opts ...HoursConfigOption) HoursConfigFixture {
	idx := atomic.AddUint64(&configCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := HoursConfigFixture{
		ID:                  fmt.Sprintf("config-%03d", idx),
		Name:                fmt.Sprintf("Config %03d", idx),
		Timezone:            "America/New_York",
		OpensAt:             "09:00",
		ClosesAt:            "18:00",
		WorkingDays:         []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		OutsideHoursMessage: "Support is currently closed.",
		WeekendMessage:      "Support is closed for the weekend.",
		HolidayMessage:      "Support is closed for the holiday.",
		WarningMinutes:      30,
		CutoffMinutes:       15,
		CreatedAt:           created,
		UpdatedAt:           created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithConfigID overrides the generated configuration ID.
func WithConfigID(id string) HoursConfigOption {
	return func(f *HoursConfigFixture) {
		f.ID = id
	}
}

// WithConfigName overrides the generated configuration name.
func WithConfigName(name string) HoursConfigOption {
	return func(f *HoursConfigFixture) {
		f.Name = name
	}
}

// WithConfigTimezone overrides the IANA timezone.
func WithConfigTimezone(tz string) HoursConfigOption {
	return func(f *HoursConfigFixture) {
		f.Timezone = tz
	}
}

// WithConfigWindow replaces the weekly opening window.
func WithConfigWindow(opensAt, closesAt string) HoursConfigOption {
	return func(f *HoursConfigFixture) {
		f.OpensAt = opensAt
		f.ClosesAt = closesAt
	}
}

// WithConfigWorkingDays replaces the working-day set.
func WithConfigWorkingDays(days ...string) HoursConfigOption {
	return func(f *HoursConfigFixture) {
		f.WorkingDays = days
	}
}

// WithConfigHolidays attaches holiday fixtures to the configuration.
func WithConfigHolidays(holidays ...HolidayFixture) HoursConfigOption {
	return func(f *HoursConfigFixture) {
		f.Holidays = holidays
	}
}

// WithConfigSpecialHours attaches special-hours fixtures to the configuration.
func WithConfigSpecialHours(entries ...SpecialHoursFixture) HoursConfigOption {
	return func(f *HoursConfigFixture) {
		f.SpecialHours = entries
	}
}

// WithConfigThresholds overrides the warning and cutoff thresholds.
func WithConfigThresholds(warningMinutes, cutoffMinutes int) HoursConfigOption {
	return func(f *HoursConfigFixture) {
		f.WarningMinutes = warningMinutes
		f.CutoffMinutes = cutoffMinutes
	}
}

// WithConfigActive sets the active flag on the fixture.
func WithConfigActive(active bool) HoursConfigOption {
	return func(f *HoursConfigFixture) {
		f.IsActive = active
	}
}

// WithConfigTimestamps sets both created and updated timestamps.
func WithConfigTimestamps(created, updated time.Time) HoursConfigOption {
	return func(f *HoursConfigFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.HoursConfig value.
func (f HoursConfigFixture) Application() application.HoursConfig {
	holidays := make([]application.Holiday, 0, len(f.Holidays))
	for _, holiday := range f.Holidays {
		holidays = append(holidays, holiday.Application())
	}
	special := make([]application.SpecialHoursEntry, 0, len(f.SpecialHours))
	for _, entry := range f.SpecialHours {
		special = append(special, entry.Application())
	}
	return application.HoursConfig{
		ID:                  f.ID,
		Name:                f.Name,
		Timezone:            f.Timezone,
		OpensAt:             f.OpensAt,
		ClosesAt:            f.ClosesAt,
		WorkingDays:         append([]string(nil), f.WorkingDays...),
		Holidays:            holidays,
		SpecialHours:        special,
		OutsideHoursMessage: f.OutsideHoursMessage,
		WeekendMessage:      f.WeekendMessage,
		HolidayMessage:      f.HolidayMessage,
		WarningMinutes:      f.WarningMinutes,
		CutoffMinutes:       f.CutoffMinutes,
		IsActive:            f.IsActive,
		CreatedAt:           f.CreatedAt,
		UpdatedAt:           f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.BusinessHoursConfig value.
// Child rows inherit the configuration ID and their list position.
func (f HoursConfigFixture) Persistence() persistence.BusinessHoursConfig {
	holidays := make([]persistence.Holiday, 0, len(f.Holidays))
	for _, holiday := range f.Holidays {
		record := holiday.Persistence()
		record.ConfigID = f.ID
		holidays = append(holidays, record)
	}
	special := make([]persistence.SpecialHours, 0, len(f.SpecialHours))
	for position, entry := range f.SpecialHours {
		record := entry.Persistence()
		record.ConfigID = f.ID
		record.Position = position
		special = append(special, record)
	}
	return persistence.BusinessHoursConfig{
		ID:                  f.ID,
		Name:                f.Name,
		Timezone:            f.Timezone,
		OpensAt:             f.OpensAt,
		ClosesAt:            f.ClosesAt,
		WorkingDays:         append([]string(nil), f.WorkingDays...),
		Holidays:            holidays,
		SpecialHours:        special,
		OutsideHoursMessage: f.OutsideHoursMessage,
		WeekendMessage:      f.WeekendMessage,
		HolidayMessage:      f.HolidayMessage,
		WarningMinutes:      f.WarningMinutes,
		CutoffMinutes:       f.CutoffMinutes,
		IsActive:            f.IsActive,
		CreatedAt:           f.CreatedAt,
		UpdatedAt:           f.UpdatedAt,
	}
}

// Input returns the fixture as an application.HoursConfigInput value.
func (f HoursConfigFixture) Input() application.HoursConfigInput {
	holidays := make([]application.HolidayInput, 0, len(f.Holidays))
	for _, holiday := range f.Holidays {
		holidays = append(holidays, holiday.Input())
	}
	special := make([]application.SpecialHoursInput, 0, len(f.SpecialHours))
	for _, entry := range f.SpecialHours {
		special = append(special, entry.Input())
	}
	return application.HoursConfigInput{
		Name:                f.Name,
		Timezone:            f.Timezone,
		OpensAt:             f.OpensAt,
		ClosesAt:            f.ClosesAt,
		WorkingDays:         append([]string(nil), f.WorkingDays...),
		Holidays:            holidays,
		SpecialHours:        special,
		OutsideHoursMessage: f.OutsideHoursMessage,
		WeekendMessage:      f.WeekendMessage,
		HolidayMessage:      f.HolidayMessage,
		WarningMinutes:      f.WarningMinutes,
		CutoffMinutes:       f.CutoffMinutes,
	}
}

// --------------------------- Session fixtures -----------------------------

// SessionFixture represents a deterministic authentication session.
type SessionFixture struct {
	ID          string
	UserID      string
	Token       string
	Fingerprint string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RevokedAt   *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture valid for 24
// hours from the reference time.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Second)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		UserID:    fmt.Sprintf("user-%03d", idx),
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: created.Add(24 * time.Hour),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionUserID overrides the owning user ID.
func WithSessionUserID(userID string) SessionOption {
	return func(f *SessionFixture) {
		f.UserID = userID
	}
}

// WithSessionToken overrides the generated token.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionFingerprint sets the client fingerprint on the fixture.
func WithSessionFingerprint(fingerprint string) SessionOption {
	return func(f *SessionFixture) {
		f.Fingerprint = fingerprint
	}
}

// WithSessionExpiresAt overrides the expiry timestamp.
func WithSessionExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = t
	}
}

// WithSessionRevokedAt marks the session revoked at the supplied time.
func WithSessionRevokedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.RevokedAt = &t
	}
}

// Application returns the fixture as an application.Session value.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:          f.ID,
		UserID:      f.UserID,
		Token:       f.Token,
		Fingerprint: f.Fingerprint,
		ExpiresAt:   f.ExpiresAt,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
		RevokedAt:   f.RevokedAt,
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:          f.ID,
		UserID:      f.UserID,
		Token:       f.Token,
		Fingerprint: f.Fingerprint,
		ExpiresAt:   f.ExpiresAt,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
		RevokedAt:   f.RevokedAt,
	}
}

// ------------------------ Contact message fixtures ------------------------

// ContactMessageFixture represents a deterministic outside-hours request.
type ContactMessageFixture struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Body      string
	CreatedAt time.Time
}

// ContactMessageOption configures the generated contact-message fixture.
type ContactMessageOption func(*ContactMessageFixture)

// NewContactMessageFixture returns a deterministic contact-message fixture
// with optional overrides.
func NewContactMessageFixture(opts ...ContactMessageOption) ContactMessageFixture {
	idx := atomic.AddUint64(&messageCounter, 1)
	fixture := ContactMessageFixture{
		ID:        fmt.Sprintf("message-%03d", idx),
		Name:      fmt.Sprintf("Visitor %03d", idx),
		Email:     fmt.Sprintf("visitor-%03d@example.com", idx),
		Subject:   fmt.Sprintf("Question %03d", idx),
		Body:      fmt.Sprintf("Message body %03d", idx),
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithMessageEmail overrides the generated sender email.
func WithMessageEmail(email string) ContactMessageOption {
	return func(f *ContactMessageFixture) {
		f.Email = email
	}
}

// WithMessageSubject overrides the generated subject line.
func WithMessageSubject(subject string) ContactMessageOption {
	return func(f *ContactMessageFixture) {
		f.Subject = subject
	}
}

// WithMessageBody overrides the generated message body.
func WithMessageBody(body string) ContactMessageOption {
	return func(f *ContactMessageFixture) {
		f.Body = body
	}
}

// WithMessageCreatedAt sets the created timestamp on the fixture.
func WithMessageCreatedAt(t time.Time) ContactMessageOption {
	return func(f *ContactMessageFixture) {
		f.CreatedAt = t
	}
}

// Application returns the fixture as an application.ContactMessage value.
func (f ContactMessageFixture) Application() application.ContactMessage {
	return application.ContactMessage{
		ID:        f.ID,
		Name:      f.Name,
		Email:     f.Email,
		Subject:   f.Subject,
		Body:      f.Body,
		CreatedAt: f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.ContactMessage value.
func (f ContactMessageFixture) Persistence() persistence.ContactMessage {
	return persistence.ContactMessage{
		ID:        f.ID,
		Name:      f.Name,
		Email:     f.Email,
		Subject:   f.Subject,
		Body:      f.Body,
		CreatedAt: f.CreatedAt,
	}
}

// Input returns the fixture as an application.ContactMessageInput value.
func (f ContactMessageFixture) Input() application.ContactMessageInput {
	return application.ContactMessageInput{
		Name:    f.Name,
		Email:   f.Email,
		Subject: f.Subject,
		Body:    f.Body,
	}
}
