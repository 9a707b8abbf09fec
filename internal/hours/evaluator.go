package hours

import (
	"strings"
	"time"
)

// CloseReason identifies which rule closed the desk.
type CloseReason string

const (
	// ReasonNone indicates the desk is open.
	ReasonNone CloseReason = ""
	// ReasonHoliday indicates a holiday entry matched the current date.
	ReasonHoliday CloseReason = "holiday"
	// ReasonSpecialClosed indicates a special-hours entry closed the date.
	ReasonSpecialClosed CloseReason = "special_closed"
	// ReasonNonWorkingDay indicates the weekday is not a working day.
	ReasonNonWorkingDay CloseReason = "non_working_day"
	// ReasonOutsideHours indicates the time falls outside the open window.
	ReasonOutsideHours CloseReason = "outside_hours"
)

// Status is the full availability verdict for one instant.
type Status struct {
	Open    bool
	Reason  CloseReason
	Message string
	// MinutesUntilClose is the whole-minute distance to the end of the
	// window that opened the desk. Zero unless Open.
	MinutesUntilClose int
}

// Evaluator answers availability questions for a validated configuration.
// It performs no I/O and holds no mutable state, so a single instance may be
// shared by any number of goroutines.
type Evaluator struct {
	cfg      Config
	location *time.Location
	days     map[string]struct{}
}

// NewEvaluator validates cfg and returns an evaluator bound to it. A config
// rejected by Validate never reaches evaluation.
func NewEvaluator(cfg Config) (*Evaluator, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	days := make(map[string]struct{}, len(cfg.WorkingDays))
	for _, day := range cfg.WorkingDays {
		days[day] = struct{}{}
	}
	return &Evaluator{cfg: cfg, location: loc, days: days}, nil
}

// IsOpen reports whether the desk is open at the given instant.
func (e *Evaluator) IsOpen(now time.Time) bool {
	return e.resolveStatus(now).Open
}

// StatusMessage returns the closed-state message for the given instant, or
// the empty string and false when the desk is open.
func (e *Evaluator) StatusMessage(now time.Time) (string, bool) {
	status := e.resolveStatus(now)
	if status.Open {
		return "", false
	}
	return status.Message, true
}

// ShouldAllowNewChats reports whether new chat sessions may still start.
// Closed desks never admit new chats; open desks stop admitting them during
// the final AllowNewChatsMinutesBeforeClose minutes of the window.
func (e *Evaluator) ShouldAllowNewChats(now time.Time) bool {
	status := e.resolveStatus(now)
	if !status.Open {
		return false
	}
	return status.MinutesUntilClose > e.cfg.Settings.AllowNewChatsMinutesBeforeClose
}

// ShouldShowCloseWarning reports whether the closing-soon warning applies:
// open, with strictly fewer than or exactly WarningMinutesBeforeClose
// minutes remaining, but not already at the boundary itself.
func (e *Evaluator) ShouldShowCloseWarning(now time.Time) bool {
	status := e.resolveStatus(now)
	if !status.Open {
		return false
	}
	return status.MinutesUntilClose > 0 && status.MinutesUntilClose <= e.cfg.Settings.WarningMinutesBeforeClose
}

// Resolve returns the full verdict in one pass so callers needing more than
// one of the boolean answers avoid re-evaluating the rule chain.
func (e *Evaluator) Resolve(now time.Time) Status {
	return e.resolveStatus(now)
}

// resolveStatus walks the precedence chain once: holiday, then special
// hours, then the weekly schedule. Both the open verdict and the closure
// message derive from the same walk.
func (e *Evaluator) resolveStatus(now time.Time) Status {
	local := now.In(e.location)
	year, month, day := local.Date()
	currentTime := local.Format("15:04")
	dayName := strings.ToLower(local.Weekday().String())

	for _, holiday := range e.cfg.Holidays {
		if holidayMatches(holiday, year, month, day) {
			return Status{Reason: ReasonHoliday, Message: e.cfg.Settings.HolidayMessage}
		}
	}

	// First entry in list order wins when duplicates exist.
	for _, special := range e.cfg.SpecialHours {
		if !dateMatches(special.Date, year, month, day) {
			continue
		}
		if special.Closed {
			message := special.Reason
			if strings.TrimSpace(message) == "" {
				message = e.cfg.OutsideHoursMessage
			}
			return Status{Reason: ReasonSpecialClosed, Message: message}
		}
		if within(*special.Hours, currentTime) {
			return Status{Open: true, MinutesUntilClose: minutesUntil(special.Hours.End, currentTime)}
		}
		return Status{Reason: ReasonOutsideHours, Message: e.cfg.OutsideHoursMessage}
	}

	if _, ok := e.days[dayName]; !ok {
		return Status{Reason: ReasonNonWorkingDay, Message: e.cfg.Settings.WeekendMessage}
	}

	if within(e.cfg.WorkingHours, currentTime) {
		return Status{Open: true, MinutesUntilClose: minutesUntil(e.cfg.WorkingHours.End, currentTime)}
	}
	return Status{Reason: ReasonOutsideHours, Message: e.cfg.OutsideHoursMessage}
}

func holidayMatches(holiday Holiday, year int, month time.Month, day int) bool {
	if holiday.Recurring {
		return holiday.Date.Month() == month && holiday.Date.Day() == day
	}
	return dateMatches(holiday.Date, year, month, day)
}

func dateMatches(date time.Time, year int, month time.Month, day int) bool {
	y, m, d := date.Date()
	return y == year && m == month && d == day
}

// within relies on the fixed-width zero-padded format: lexicographic order
// equals chronological order. Both boundaries are inclusive.
func within(window Window, currentTime string) bool {
	return currentTime >= window.Start && currentTime <= window.End
}

func minutesUntil(end, currentTime string) int {
	return minutesSinceMidnight(end) - minutesSinceMidnight(currentTime)
}

func minutesSinceMidnight(value string) int {
	hour := int(value[0]-'0')*10 + int(value[1]-'0')
	minute := int(value[3]-'0')*10 + int(value[4]-'0')
	return hour*60 + minute
}
