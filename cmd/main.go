package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"driftglow/internal/config"
	"driftglow/internal/core/engine"
	"driftglow/internal/core/model"
	"driftglow/internal/core/ramp"
	"driftglow/internal/core/schedule"
	"driftglow/internal/core/session"
	"driftglow/internal/logging"
	"driftglow/internal/platform"
	"driftglow/internal/storage"
	"driftglow/internal/ui/effects"
	"driftglow/internal/ui/overlay"
	"driftglow/internal/ui/preferences"
	"driftglow/internal/ui/tray"
	"driftglow/resources"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const appName = "DriftGlow"

func main() {
	envConfig, err := config.ParseEnv()
	if err != nil {
		log.Printf("environment: %v", err)
		return
	}
	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(envConfig.LogLevel),
		JSON:    envConfig.LogJSON,
		Service: "driftglow",
	})

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		logger.Error("single instance", "error", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	configDir := envConfig.ConfigDir
	if configDir == "" {
		baseDir, err := platform.NewService().GetConfigDir()
		if err != nil {
			logger.Error("resolve config dir", "error", err)
			return
		}
		configDir = filepath.Join(baseDir, appName)
	}

	settings, err := storage.LoadSettings(configDir)
	if err != nil {
		logger.Warn("load settings", "error", err)
	}

	var settingsMu sync.RWMutex
	currentSettings := func() preferences.Settings {
		settingsMu.RLock()
		defer settingsMu.RUnlock()
		return settings
	}
	replaceSettings := func(updated preferences.Settings) {
		settingsMu.Lock()
		settings = updated
		settingsMu.Unlock()
		if err := storage.SaveSettings(configDir, updated); err != nil {
			logger.Warn("save settings", "error", err)
		}
	}

	fyneApp := app.NewWithID("com.driftglow.app")
	fyneApp.SetIcon(resources.MustLogo("active"))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		logger.Error("system tray unsupported on this platform")
		return
	}

	trayWindow := fyneApp.NewWindow(appName)
	trayWindow.SetContent(widget.NewLabel("DriftGlow is running in the system tray."))
	trayWindow.SetCloseIntercept(trayWindow.Hide)
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)

	store := effects.NewStore()
	surface := overlay.New(fyneApp, overlay.Config{
		Opacity:    opacityToAlpha(settings.OverlayOpacity),
		Fullscreen: settings.Fullscreen,
	})
	registry := effects.NewRegistry(surface, store, logger)

	sessionEngine := session.New(registry, session.Config{TickInterval: envConfig.SessionTick}, logger)
	intensityRamp := ramp.New(store, ramp.Config{TickInterval: envConfig.RampTick}, logger)

	seedLibrary(configDir, logger)
	timelineFn := func() *model.Timeline {
		return resolveTimeline(configDir, currentSettings().DefaultTimeline, logger)
	}
	controller := engine.New(sessionEngine, intensityRamp, registry, timelineFn, func() engine.RampPlan {
		return currentSettings().RampPlan()
	}, logger)
	intensityRamp.SetControl(controller)

	scheduler := schedule.New(controller, func() schedule.Config {
		return currentSettings().ScheduleConfig()
	}, schedule.Options{TickInterval: envConfig.ScheduleTick}, logger)

	activeIcon := resources.MustLogo("active")
	pausedIcon := resources.MustLogo("paused")

	var trayManager *tray.Manager
	var prefsWindow *preferences.Window
	trayManager = tray.New(desktopApp, tray.Callbacks{
		OnStartStop: func() {
			if controller.IsRunning() {
				scheduler.NoteManualStop()
				controller.RequestStop()
				return
			}
			scheduler.NoteManualStart()
			controller.RequestStart()
		},
		OnPlayTimeline: func(name string) {
			timeline, err := storage.LoadTimeline(configDir, name)
			if err != nil {
				logger.Warn("load timeline", "name", name, "error", err)
				return
			}
			scheduler.NoteManualStart()
			if err := controller.StartTimeline(timeline); err != nil {
				logger.Warn("start timeline", "name", name, "error", err)
			}
		},
		OnToggleRamp: func() {
			if controller.RampRunning() {
				controller.StopRamp()
			} else if err := controller.StartRamp(); err != nil {
				logger.Warn("start ramp", "error", err)
			}
			trayManager.SetRampRunning(controller.RampRunning())
		},
		OnToggleSchedule: func() {
			updated := currentSettings()
			updated.ScheduleEnabled = !updated.ScheduleEnabled
			replaceSettings(updated)
			trayManager.SetScheduled(updated.ScheduleEnabled)
			prefsWindow.UpdateSettings(updated)
		},
		OnPreferences: func() {
			prefsWindow.Show()
		},
		OnQuit: func() {
			scheduler.Stop()
			controller.Shutdown()
			fyneApp.Quit()
		},
	})

	prefsWindow = preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		previous := currentSettings()
		replaceSettings(updated)
		surface.UpdateConfig(overlay.Config{
			Opacity:    opacityToAlpha(updated.OverlayOpacity),
			Fullscreen: updated.Fullscreen,
		})
		trayManager.SetScheduled(updated.ScheduleEnabled)
		if updated.Autostart != previous.Autostart {
			applyAutostart(updated.Autostart, logger)
		}
	})

	desktopApp.SetSystemTrayIcon(pausedIcon)
	trayManager.SetScheduled(settings.ScheduleEnabled)
	if names, err := storage.ListTimelines(configDir); err == nil {
		trayManager.SetTimelines(names)
	}

	events := sessionEngine.Subscribe(8)
	go func() {
		for event := range events {
			switch event.Type {
			case session.EventProgress:
				trayManager.SetStatus(fmt.Sprintf("%s remaining", formatRemaining(event.Remaining)))
			case session.EventPhaseChange:
				logger.Debug("phase change", "feature", string(event.Feature), "kind", string(event.Kind))
			case session.EventCompleted:
				trayManager.SetRunning(false)
				trayManager.SetRampRunning(controller.RampRunning())
				desktopApp.SetSystemTrayIcon(pausedIcon)
				if event.Completed {
					trayManager.SetStatus(fmt.Sprintf("idle, last session +%d xp", event.XP))
				} else {
					trayManager.SetStatus("idle")
				}
			}
		}
	}()

	// Mirror running state onto the tray whenever a session begins, whether
	// the user or the scheduler started it.
	stateEvents := sessionEngine.Subscribe(8)
	go func() {
		for event := range stateEvents {
			if event.Type == session.EventProgress && event.Elapsed == 0 {
				trayManager.SetRunning(true)
				desktopApp.SetSystemTrayIcon(activeIcon)
			}
		}
	}()

	scheduler.Start()
	fyneApp.Run()
}

// resolveTimeline loads the configured default timeline, falling back to the
// first library entry, then to the built-in starter.
func resolveTimeline(configDir, name string, logger *slog.Logger) *model.Timeline {
	if name != "" {
		if timeline, err := storage.LoadTimeline(configDir, name); err == nil {
			return timeline
		}
		logger.Warn("default timeline missing", "name", name)
	}

	names, err := storage.ListTimelines(configDir)
	if err == nil && len(names) > 0 {
		if timeline, err := storage.LoadTimeline(configDir, names[0]); err == nil {
			return timeline
		}
	}
	return starterTimeline()
}

// seedLibrary writes the starter timeline on first run so the tray menu is
// never empty.
func seedLibrary(configDir string, logger *slog.Logger) {
	names, err := storage.ListTimelines(configDir)
	if err != nil || len(names) > 0 {
		return
	}
	if err := storage.SaveTimeline(configDir, starterTimeline()); err != nil {
		logger.Warn("seed timeline library", "error", err)
	}
}

func starterTimeline() *model.Timeline {
	timeline := model.NewTimeline("First Drift", 20)
	timeline.Description = "A gentle introduction: tint throughout, effects layering in."

	timeline.AddStart("tint", 0)

	flash := timeline.AddStart("flash", 2)
	_, _ = timeline.AddStop(flash.ID, 12)

	bubbles := timeline.AddStart("bubbles", 5)
	_, _ = timeline.AddStop(bubbles.ID, 15)

	timeline.AddStart("subliminal", 8)

	corner := timeline.AddStart("corner_gif", 10)
	_, _ = timeline.AddStop(corner.ID, 18)

	timeline.PhrasePools["calm"] = []string{"breathe", "drift", "let go", "sink", "glow"}
	return timeline
}

// applyAutostart registers or removes the login entry for this binary.
func applyAutostart(enabled bool, logger *slog.Logger) {
	service := platform.NewService()
	if !enabled {
		if err := service.DisableAutostart(appName); err != nil {
			logger.Warn("disable autostart", "error", err)
		}
		return
	}

	execPath, err := os.Executable()
	if err != nil {
		logger.Warn("resolve executable for autostart", "error", err)
		return
	}
	if err := service.EnableAutostart(appName, execPath); err != nil {
		logger.Warn("enable autostart", "error", err)
	}
}

func formatRemaining(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	seconds := int(remaining.Seconds())
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func opacityToAlpha(opacity float64) uint8 {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return uint8(opacity * 255)
}
