package hours

import (
	"errors"
	"testing"
	"time"
)

func baseConfig() Config {
	return Config{
		Timezone:     "America/New_York",
		WorkingHours: Window{Start: "09:00", End: "18:00"},
		WorkingDays:  []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		Holidays: []Holiday{
			{Date: time.Date(2020, time.July, 4, 0, 0, 0, 0, time.UTC), Name: "Independence Day", Recurring: true},
			{Date: time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC), Name: "Labor Day"},
		},
		OutsideHoursMessage: "We are currently closed. Leave us a message.",
		Settings: Settings{
			WeekendMessage:                  "We are closed on weekends.",
			HolidayMessage:                  "We are closed for the holiday.",
			WarningMinutesBeforeClose:       30,
			AllowNewChatsMinutesBeforeClose: 15,
		},
	}
}

func mustEvaluator(t *testing.T, cfg Config) *Evaluator {
	t.Helper()
	eval, err := NewEvaluator(cfg)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	return eval
}

// newYork builds an instant from wall-clock fields in America/New_York.
func newYork(t *testing.T, year int, month time.Month, day, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func TestEvaluator_IsOpen(t *testing.T) {
	eval := mustEvaluator(t, baseConfig())

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"midweek afternoon", newYork(t, 2026, time.September, 2, 14, 30), true},
		{"saturday morning", newYork(t, 2026, time.September, 5, 11, 0), false},
		{"weekday evening", newYork(t, 2026, time.September, 2, 20, 0), false},
		{"weekday before opening", newYork(t, 2026, time.September, 2, 8, 59), false},
		{"exactly at opening", newYork(t, 2026, time.September, 2, 9, 0), true},
		{"exactly at close", newYork(t, 2026, time.September, 2, 18, 0), true},
		{"one minute after close", newYork(t, 2026, time.September, 2, 18, 1), false},
		{"recurring holiday at midday", newYork(t, 2026, time.July, 4, 12, 0), false},
		{"recurring holiday in a later year", newYork(t, 2031, time.July, 4, 12, 0), false},
		{"non-recurring holiday", newYork(t, 2026, time.September, 7, 10, 0), false},
		{"day before non-recurring holiday", newYork(t, 2026, time.September, 4, 10, 0), true},
		{"day after non-recurring holiday", newYork(t, 2026, time.September, 8, 10, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eval.IsOpen(tt.now); got != tt.want {
				t.Fatalf("IsOpen(%s) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestEvaluator_IsOpenIsPure(t *testing.T) {
	eval := mustEvaluator(t, baseConfig())
	now := newYork(t, 2026, time.September, 2, 14, 30)

	first := eval.IsOpen(now)
	second := eval.IsOpen(now)
	if first != second {
		t.Fatalf("IsOpen returned %v then %v for the same instant", first, second)
	}
}

func TestEvaluator_TimezoneIndependence(t *testing.T) {
	eval := mustEvaluator(t, baseConfig())

	// Wednesday 14:30 in New York expressed as a UTC instant must evaluate
	// against New York wall-clock fields, not the instant's own zone.
	utcInstant := newYork(t, 2026, time.September, 2, 14, 30).UTC()
	if !eval.IsOpen(utcInstant) {
		t.Fatal("expected open for a UTC instant inside the New York window")
	}

	// 02:00 UTC on Thursday is 22:00 Wednesday in New York: closed.
	closed := time.Date(2026, time.September, 3, 2, 0, 0, 0, time.UTC)
	if eval.IsOpen(closed) {
		t.Fatal("expected closed for late-evening New York wall-clock time")
	}
}

func TestEvaluator_SpecialHours(t *testing.T) {
	t.Run("closed override beats the weekly schedule", func(t *testing.T) {
		cfg := baseConfig()
		cfg.SpecialHours = []SpecialHours{{
			Date:   time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC),
			Closed: true,
			Reason: "Office move",
		}}
		eval := mustEvaluator(t, cfg)

		now := newYork(t, 2026, time.September, 14, 10, 0)
		if eval.IsOpen(now) {
			t.Fatal("expected closed during special-hours closure")
		}
		message, closed := eval.StatusMessage(now)
		if !closed || message != "Office move" {
			t.Fatalf("StatusMessage = %q, %v; want the override reason", message, closed)
		}
	})

	t.Run("closed override without a reason falls back to the outside-hours message", func(t *testing.T) {
		cfg := baseConfig()
		cfg.SpecialHours = []SpecialHours{{
			Date:   time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC),
			Closed: true,
		}}
		eval := mustEvaluator(t, cfg)

		message, closed := eval.StatusMessage(newYork(t, 2026, time.September, 14, 10, 0))
		if !closed || message != cfg.OutsideHoursMessage {
			t.Fatalf("StatusMessage = %q, %v; want outside-hours fallback", message, closed)
		}
	})

	t.Run("substituted window replaces the weekly window", func(t *testing.T) {
		cfg := baseConfig()
		cfg.SpecialHours = []SpecialHours{{
			Date:  time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC),
			Hours: &Window{Start: "12:00", End: "15:00"},
		}}
		eval := mustEvaluator(t, cfg)

		if !eval.IsOpen(newYork(t, 2026, time.September, 14, 12, 0)) {
			t.Fatal("expected open at the substituted window start")
		}
		if !eval.IsOpen(newYork(t, 2026, time.September, 14, 15, 0)) {
			t.Fatal("expected open at the substituted window end")
		}
		// 10:00 is inside the weekly window but outside the substituted one.
		now := newYork(t, 2026, time.September, 14, 10, 0)
		if eval.IsOpen(now) {
			t.Fatal("expected closed outside the substituted window")
		}
		message, closed := eval.StatusMessage(now)
		if !closed || message != cfg.OutsideHoursMessage {
			t.Fatalf("StatusMessage = %q, %v; want outside-hours message", message, closed)
		}
	})

	t.Run("holiday wins over a special-hours entry on the same date", func(t *testing.T) {
		cfg := baseConfig()
		cfg.Holidays = append(cfg.Holidays, Holiday{
			Date: time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC),
			Name: "Founders Day",
		})
		cfg.SpecialHours = []SpecialHours{{
			Date:  time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC),
			Hours: &Window{Start: "00:00", End: "23:59"},
		}}
		eval := mustEvaluator(t, cfg)

		now := newYork(t, 2026, time.September, 14, 12, 0)
		if eval.IsOpen(now) {
			t.Fatal("expected the holiday to close the desk")
		}
		message, _ := eval.StatusMessage(now)
		if message != cfg.Settings.HolidayMessage {
			t.Fatalf("StatusMessage = %q, want holiday message", message)
		}
	})

	t.Run("first entry wins when two share a date", func(t *testing.T) {
		cfg := baseConfig()
		date := time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC)
		cfg.SpecialHours = []SpecialHours{
			{Date: date, Closed: true, Reason: "Inventory"},
			{Date: date, Hours: &Window{Start: "00:00", End: "23:59"}},
		}
		eval := mustEvaluator(t, cfg)

		message, closed := eval.StatusMessage(newYork(t, 2026, time.September, 14, 12, 0))
		if !closed || message != "Inventory" {
			t.Fatalf("StatusMessage = %q, %v; want the first entry's reason", message, closed)
		}
	})
}

func TestEvaluator_StatusMessage(t *testing.T) {
	cfg := baseConfig()
	eval := mustEvaluator(t, cfg)

	tests := []struct {
		name        string
		now         time.Time
		wantClosed  bool
		wantMessage string
	}{
		{"open returns no message", newYork(t, 2026, time.September, 2, 14, 30), false, ""},
		{"weekend", newYork(t, 2026, time.September, 5, 11, 0), true, cfg.Settings.WeekendMessage},
		{"after hours on a working day", newYork(t, 2026, time.September, 2, 20, 0), true, cfg.OutsideHoursMessage},
		{"recurring holiday", newYork(t, 2026, time.July, 4, 12, 0), true, cfg.Settings.HolidayMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message, closed := eval.StatusMessage(tt.now)
			if closed != tt.wantClosed || message != tt.wantMessage {
				t.Fatalf("StatusMessage = %q, %v; want %q, %v", message, closed, tt.wantMessage, tt.wantClosed)
			}
		})
	}
}

func TestEvaluator_ClosingThresholds(t *testing.T) {
	eval := mustEvaluator(t, baseConfig())

	tests := []struct {
		name         string
		now          time.Time
		wantNewChats bool
		wantWarning  bool
	}{
		{"midafternoon", newYork(t, 2026, time.September, 2, 14, 30), true, false},
		{"thirty-one minutes before close", newYork(t, 2026, time.September, 2, 17, 29), true, false},
		{"thirty minutes before close", newYork(t, 2026, time.September, 2, 17, 30), true, true},
		{"sixteen minutes before close", newYork(t, 2026, time.September, 2, 17, 44), true, true},
		{"fifteen minutes before close", newYork(t, 2026, time.September, 2, 17, 45), false, true},
		{"ten minutes before close", newYork(t, 2026, time.September, 2, 17, 50), false, true},
		{"at close", newYork(t, 2026, time.September, 2, 18, 0), false, false},
		{"after close", newYork(t, 2026, time.September, 2, 18, 1), false, false},
		{"weekend", newYork(t, 2026, time.September, 5, 11, 0), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eval.ShouldAllowNewChats(tt.now); got != tt.wantNewChats {
				t.Fatalf("ShouldAllowNewChats = %v, want %v", got, tt.wantNewChats)
			}
			if got := eval.ShouldShowCloseWarning(tt.now); got != tt.wantWarning {
				t.Fatalf("ShouldShowCloseWarning = %v, want %v", got, tt.wantWarning)
			}
		})
	}
}

func TestEvaluator_ThresholdsFollowSpecialWindow(t *testing.T) {
	cfg := baseConfig()
	cfg.SpecialHours = []SpecialHours{{
		Date:  time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC),
		Hours: &Window{Start: "10:00", End: "14:00"},
	}}
	eval := mustEvaluator(t, cfg)

	// Ten minutes before the substituted close, not the weekly one.
	now := newYork(t, 2026, time.September, 14, 13, 50)
	if !eval.ShouldShowCloseWarning(now) {
		t.Fatal("expected close warning relative to the substituted window")
	}
	if eval.ShouldAllowNewChats(now) {
		t.Fatal("expected new chats cut off relative to the substituted window")
	}
}

func TestEvaluator_Resolve(t *testing.T) {
	eval := mustEvaluator(t, baseConfig())

	status := eval.Resolve(newYork(t, 2026, time.September, 2, 17, 50))
	if !status.Open || status.Reason != ReasonNone {
		t.Fatalf("Resolve = %+v, want open with no reason", status)
	}
	if status.MinutesUntilClose != 10 {
		t.Fatalf("MinutesUntilClose = %d, want 10", status.MinutesUntilClose)
	}

	status = eval.Resolve(newYork(t, 2026, time.September, 5, 11, 0))
	if status.Open || status.Reason != ReasonNonWorkingDay {
		t.Fatalf("Resolve = %+v, want non-working-day closure", status)
	}
}

func TestValidate(t *testing.T) {
	t.Run("accepts the baseline config", func(t *testing.T) {
		if err := Validate(baseConfig()); err != nil {
			t.Fatalf("Validate: %v", err)
		}
	})

	invalid := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing timezone", func(c *Config) { c.Timezone = "" }, "timezone"},
		{"unknown timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
		{"malformed start time", func(c *Config) { c.WorkingHours.Start = "9:00" }, "working_hours.start"},
		{"out-of-range end time", func(c *Config) { c.WorkingHours.End = "24:00" }, "working_hours.end"},
		{"inverted window", func(c *Config) { c.WorkingHours = Window{Start: "18:00", End: "09:00"} }, "working_hours"},
		{"equal start and end", func(c *Config) { c.WorkingHours = Window{Start: "09:00", End: "09:00"} }, "working_hours"},
		{"no working days", func(c *Config) { c.WorkingDays = nil }, "working_days"},
		{"unknown weekday", func(c *Config) { c.WorkingDays = []string{"funday"} }, "working_days"},
		{
			"open special entry without hours",
			func(c *Config) {
				c.SpecialHours = []SpecialHours{{Date: time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC)}}
			},
			"special_hours[0].hours",
		},
		{
			"inverted special window",
			func(c *Config) {
				c.SpecialHours = []SpecialHours{{
					Date:  time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC),
					Hours: &Window{Start: "15:00", End: "12:00"},
				}}
			},
			"special_hours[0].hours",
		},
		{"negative warning threshold", func(c *Config) { c.Settings.WarningMinutesBeforeClose = -1 }, "settings.warning_minutes_before_close"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(&cfg)

			err := Validate(cfg)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tt.field]; !ok {
				t.Fatalf("expected an error on %q, got %v", tt.field, vErr.FieldErrors)
			}
		})
	}

	t.Run("closed special entry needs no hours", func(t *testing.T) {
		cfg := baseConfig()
		cfg.SpecialHours = []SpecialHours{{
			Date:   time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC),
			Closed: true,
		}}
		if err := Validate(cfg); err != nil {
			t.Fatalf("Validate: %v", err)
		}
	})
}

func TestNewEvaluator_RejectsInvalidConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.WorkingHours = Window{Start: "18:00", End: "09:00"}

	if _, err := NewEvaluator(cfg); err == nil {
		t.Fatal("expected an error for an inverted window")
	}
}
