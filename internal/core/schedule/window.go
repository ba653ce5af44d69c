package schedule

import (
	"fmt"
	"time"
)

// Default window used when a configured time string cannot be parsed.
var (
	DefaultStart = TimeOfDay{Hour: 16}
	DefaultEnd   = TimeOfDay{Hour: 22}
)

// TimeOfDay is a wall-clock time within a day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Minutes returns the offset from midnight in minutes.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// String formats the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(value, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", value, err)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", value)
	}
	return t, nil
}

// ParseTimeOfDayOr parses an "HH:MM" string, falling back to the given
// default when the string is malformed.
func ParseTimeOfDayOr(value string, fallback TimeOfDay) TimeOfDay {
	t, err := ParseTimeOfDay(value)
	if err != nil {
		return fallback
	}
	return t
}

// Config defines the weekly auto-start window. Days are indexed Monday
// through Sunday.
type Config struct {
	Enabled    bool
	ActiveDays [7]bool
	Start      TimeOfDay
	End        TimeOfDay
}

// IsInWindow reports whether now falls inside the configured window. A
// window whose end is before its start wraps past midnight.
func IsInWindow(now time.Time, config Config) bool {
	if !config.ActiveDays[dayIndex(now.Weekday())] {
		return false
	}

	minute := now.Hour()*60 + now.Minute()
	start := config.Start.Minutes()
	end := config.End.Minutes()

	if end >= start {
		return minute >= start && minute < end
	}
	return minute >= start || minute < end
}

// dayIndex converts a time.Weekday (Sunday=0) to a Monday-first index.
func dayIndex(weekday time.Weekday) int {
	return (int(weekday) + 6) % 7
}
