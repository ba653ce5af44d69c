package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftglow/internal/ui/preferences"
)

func TestLoadSettingsMissingFileReturnsDefaults(t *testing.T) {
	settings, err := LoadSettings(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestSettingsRoundTrip(t *testing.T) {
	configDir := t.TempDir()

	settings := preferences.DefaultSettings()
	settings.OverlayOpacity = 0.5
	settings.Fullscreen = false
	settings.ScheduleEnabled = true
	settings.ScheduleDays = [7]bool{false, true, false, true, false, true, false}
	settings.ScheduleStart = "09:15"
	settings.ScheduleEnd = "11:45"
	settings.RampEnabled = true
	settings.RampMultiplier = 2.5
	settings.RampDurationMinutes = 15
	settings.RampEndsSession = true
	settings.DefaultTimeline = "Evening Drift"

	require.NoError(t, SaveSettings(configDir, settings))

	loaded, err := LoadSettings(configDir)
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestLoadSettingsClampsInvalidValues(t *testing.T) {
	configDir := t.TempDir()

	raw := `overlay_opacity: 7.5
ramp_multiplier: 0.2
ramp_duration_minutes: -5
schedule_days: [true, true]
schedule_start: ""
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, settingsFileName), []byte(raw), 0o644))

	loaded, err := LoadSettings(configDir)
	require.NoError(t, err)

	defaults := preferences.DefaultSettings()
	assert.Equal(t, defaults.OverlayOpacity, loaded.OverlayOpacity)
	assert.Equal(t, defaults.RampMultiplier, loaded.RampMultiplier)
	assert.Equal(t, defaults.RampDurationMinutes, loaded.RampDurationMinutes)
	assert.Equal(t, defaults.ScheduleDays, loaded.ScheduleDays)
	assert.Equal(t, defaults.ScheduleStart, loaded.ScheduleStart)
}

func TestLoadSettingsCorruptFile(t *testing.T) {
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, settingsFileName), []byte("{not yaml"), 0o644))

	_, err := LoadSettings(configDir)
	assert.Error(t, err)
}
