package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"driftglow/internal/ui/preferences"
	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	OverlayOpacity float64 `yaml:"overlay_opacity"`
	Fullscreen     bool    `yaml:"fullscreen"`

	ScheduleEnabled bool    `yaml:"schedule_enabled"`
	ScheduleDays    []bool  `yaml:"schedule_days"`
	ScheduleStart   string  `yaml:"schedule_start"`
	ScheduleEnd     string  `yaml:"schedule_end"`

	RampEnabled         bool     `yaml:"ramp_enabled"`
	RampMultiplier      float64  `yaml:"ramp_multiplier"`
	RampDurationMinutes int      `yaml:"ramp_duration_minutes"`
	RampEndsSession     bool     `yaml:"ramp_ends_session"`
	RampParameters      []string `yaml:"ramp_parameters"`

	DefaultTimeline string `yaml:"default_timeline"`
	Autostart       bool   `yaml:"autostart"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(configDir string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()
	configPath := filepath.Join(configDir, settingsFileName)

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(configDir string, settings preferences.Settings) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		OverlayOpacity:      settings.OverlayOpacity,
		Fullscreen:          settings.Fullscreen,
		ScheduleEnabled:     settings.ScheduleEnabled,
		ScheduleDays:        settings.ScheduleDays[:],
		ScheduleStart:       settings.ScheduleStart,
		ScheduleEnd:         settings.ScheduleEnd,
		RampEnabled:         settings.RampEnabled,
		RampMultiplier:      settings.RampMultiplier,
		RampDurationMinutes: settings.RampDurationMinutes,
		RampEndsSession:     settings.RampEndsSession,
		RampParameters:      settings.RampParameters,
		DefaultTimeline:     settings.DefaultTimeline,
		Autostart:           settings.Autostart,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(filepath.Join(configDir, settingsFileName), serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.OverlayOpacity >= 0.1 && fileData.OverlayOpacity <= 1 {
		settings.OverlayOpacity = fileData.OverlayOpacity
	}
	settings.Fullscreen = fileData.Fullscreen

	settings.ScheduleEnabled = fileData.ScheduleEnabled
	if len(fileData.ScheduleDays) == 7 {
		copy(settings.ScheduleDays[:], fileData.ScheduleDays)
	}
	if fileData.ScheduleStart != "" {
		settings.ScheduleStart = fileData.ScheduleStart
	}
	if fileData.ScheduleEnd != "" {
		settings.ScheduleEnd = fileData.ScheduleEnd
	}

	settings.RampEnabled = fileData.RampEnabled
	if fileData.RampMultiplier >= 1 {
		settings.RampMultiplier = fileData.RampMultiplier
	}
	if fileData.RampDurationMinutes > 0 {
		settings.RampDurationMinutes = fileData.RampDurationMinutes
	}
	settings.RampEndsSession = fileData.RampEndsSession
	if len(fileData.RampParameters) > 0 {
		settings.RampParameters = fileData.RampParameters
	}

	settings.DefaultTimeline = fileData.DefaultTimeline
	settings.Autostart = fileData.Autostart
}
