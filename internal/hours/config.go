package hours

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Window is a same-day open interval expressed as zero-padded 24-hour "HH:MM"
// strings. Both boundaries are inclusive; Start must sort before End, which
// makes plain string comparison a valid time comparison.
type Window struct {
	Start string
	End   string
}

// Holiday closes the desk for a full calendar date. A recurring holiday
// repeats every year on the same month and day; a non-recurring holiday
// matches its exact date only.
type Holiday struct {
	Date        time.Time
	Name        string
	Description string
	Recurring   bool
}

// SpecialHours overrides the weekly schedule for a single calendar date,
// either closing the desk outright or substituting a different window.
type SpecialHours struct {
	Date   time.Time
	Hours  *Window
	Closed bool
	Reason string
}

// Settings carries the closed-state messages and the trailing-window
// thresholds, in minutes, for the closing-soon warning and the new-chat
// cutoff.
type Settings struct {
	WeekendMessage                  string
	HolidayMessage                  string
	WarningMinutesBeforeClose       int
	AllowNewChatsMinutesBeforeClose int
}

// Config is the full business-hours configuration the evaluator consumes.
// It is treated as an immutable value for the duration of an evaluation;
// ownership concerns such as the single-active flag and pruning of expired
// entries belong to the store, not to this package.
type Config struct {
	Timezone            string
	WorkingHours        Window
	WorkingDays         []string
	Holidays            []Holiday
	SpecialHours        []SpecialHours
	OutsideHoursMessage string
	Settings            Settings
}

var weekdayNames = map[string]struct{}{
	"sunday":    {},
	"monday":    {},
	"tuesday":   {},
	"wednesday": {},
	"thursday":  {},
	"friday":    {},
	"saturday":  {},
}

// ValidationError reports the field level problems found in a Config.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "hours: invalid configuration"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("hours: invalid configuration (%s)", strings.Join(fields, ", "))
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// Validate checks every invariant a Config must satisfy before evaluation.
// A nil return guarantees the evaluator never fails for any instant.
func Validate(cfg Config) error {
	vErr := &ValidationError{}

	if strings.TrimSpace(cfg.Timezone) == "" {
		vErr.add("timezone", "timezone is required")
	} else if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		vErr.add("timezone", "timezone must be a valid IANA zone identifier")
	}

	validateWindow(vErr, "working_hours", cfg.WorkingHours)

	if len(cfg.WorkingDays) == 0 {
		vErr.add("working_days", "at least one working day is required")
	}
	for _, day := range cfg.WorkingDays {
		if _, ok := weekdayNames[day]; !ok {
			vErr.add("working_days", fmt.Sprintf("unknown weekday %q", day))
			break
		}
	}

	for i, holiday := range cfg.Holidays {
		if holiday.Date.IsZero() {
			vErr.add(fmt.Sprintf("holidays[%d].date", i), "date is required")
		}
	}

	for i, special := range cfg.SpecialHours {
		if special.Date.IsZero() {
			vErr.add(fmt.Sprintf("special_hours[%d].date", i), "date is required")
		}
		if special.Closed {
			continue
		}
		if special.Hours == nil {
			// An open override without a window cannot be evaluated.
			vErr.add(fmt.Sprintf("special_hours[%d].hours", i), "hours are required unless the entry is closed")
			continue
		}
		validateWindow(vErr, fmt.Sprintf("special_hours[%d].hours", i), *special.Hours)
	}

	if cfg.Settings.WarningMinutesBeforeClose < 0 {
		vErr.add("settings.warning_minutes_before_close", "must not be negative")
	}
	if cfg.Settings.AllowNewChatsMinutesBeforeClose < 0 {
		vErr.add("settings.allow_new_chats_minutes_before_close", "must not be negative")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func validateWindow(vErr *ValidationError, field string, window Window) {
	startOK := isClockTime(window.Start)
	endOK := isClockTime(window.End)
	if !startOK {
		vErr.add(field+".start", "must be a 24-hour HH:MM time")
	}
	if !endOK {
		vErr.add(field+".end", "must be a 24-hour HH:MM time")
	}
	if startOK && endOK && window.Start >= window.End {
		vErr.add(field, "start must be before end")
	}
}

// isClockTime reports whether value is a zero-padded 24-hour "HH:MM" string.
func isClockTime(value string) bool {
	if len(value) != 5 || value[2] != ':' {
		return false
	}
	for _, i := range [4]int{0, 1, 3, 4} {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	hour := int(value[0]-'0')*10 + int(value[1]-'0')
	minute := int(value[3]-'0')*10 + int(value[4]-'0')
	return hour <= 23 && minute <= 59
}
