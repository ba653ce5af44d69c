package preferences

import (
	"driftglow/internal/core/engine"
	"driftglow/internal/core/schedule"
)

// Settings defines editable user preferences.
type Settings struct {
	OverlayOpacity float64
	Fullscreen     bool

	ScheduleEnabled bool
	ScheduleDays    [7]bool // Monday..Sunday
	ScheduleStart   string  // "HH:MM"
	ScheduleEnd     string

	RampEnabled         bool
	RampMultiplier      float64
	RampDurationMinutes int
	RampEndsSession     bool
	RampParameters      []string

	DefaultTimeline string
	Autostart       bool
}

// DefaultSettings returns default settings for DriftGlow.
func DefaultSettings() Settings {
	return Settings{
		OverlayOpacity: 0.85,
		Fullscreen:     true,

		ScheduleEnabled: false,
		ScheduleDays:    [7]bool{true, true, true, true, true, false, false},
		ScheduleStart:   "16:00",
		ScheduleEnd:     "22:00",

		RampEnabled:         false,
		RampMultiplier:      2,
		RampDurationMinutes: 30,
		RampEndsSession:     true,
		RampParameters:      []string{"flash_rate", "phrase_rate", "bubble_density"},
	}
}

// ScheduleConfig converts settings to the scheduler's window config.
// Malformed time strings fall back to the 16:00-22:00 defaults.
func (settings Settings) ScheduleConfig() schedule.Config {
	return schedule.Config{
		Enabled:    settings.ScheduleEnabled,
		ActiveDays: settings.ScheduleDays,
		Start:      schedule.ParseTimeOfDayOr(settings.ScheduleStart, schedule.DefaultStart),
		End:        schedule.ParseTimeOfDayOr(settings.ScheduleEnd, schedule.DefaultEnd),
	}
}

// RampPlan converts settings to the controller's ramp plan.
func (settings Settings) RampPlan() engine.RampPlan {
	return engine.RampPlan{
		Enabled:         settings.RampEnabled,
		Parameters:      append([]string(nil), settings.RampParameters...),
		DurationMinutes: settings.RampDurationMinutes,
		Multiplier:      settings.RampMultiplier,
		EndsSession:     settings.RampEndsSession,
	}
}
