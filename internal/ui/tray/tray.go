package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnStartStop      func()
	OnPlayTimeline   func(name string)
	OnToggleRamp     func()
	OnToggleSchedule func()
	OnPreferences    func()
	OnQuit           func()
}

// Manager handles system tray state.
type Manager struct {
	app          desktop.App
	callbacks    Callbacks
	statusItem   *fyne.MenuItem
	startStop    *fyne.MenuItem
	timelineItem *fyne.MenuItem
	rampItem     *fyne.MenuItem
	scheduleItem *fyne.MenuItem
	timelines    []string
	running      bool
	rampRunning  bool
	scheduled    bool
	statusLabel  string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Status: idle", nil)
	manager.statusItem.Disabled = true

	manager.startStop = fyne.NewMenuItem("Start session", func() {
		if manager.callbacks.OnStartStop != nil {
			manager.callbacks.OnStartStop()
		}
	})

	manager.timelineItem = fyne.NewMenuItem("Play timeline", nil)
	manager.timelineItem.ChildMenu = fyne.NewMenu("")
	manager.timelineItem.Disabled = true

	manager.rampItem = fyne.NewMenuItem("Start intensity ramp", func() {
		if manager.callbacks.OnToggleRamp != nil {
			manager.callbacks.OnToggleRamp()
		}
	})

	manager.scheduleItem = fyne.NewMenuItem("Enable schedule", func() {
		if manager.callbacks.OnToggleSchedule != nil {
			manager.callbacks.OnToggleSchedule()
		}
	})

	manager.refreshMenu()
	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

// SetRunning updates the start/stop entry.
func (manager *Manager) SetRunning(running bool) {
	manager.running = running
	if running {
		manager.startStop.Label = "Stop session"
	} else {
		manager.startStop.Label = "Start session"
	}
	manager.timelineItem.Disabled = running || len(manager.timelines) == 0
	manager.refreshMenu()
}

// SetRampRunning updates the ramp entry.
func (manager *Manager) SetRampRunning(running bool) {
	manager.rampRunning = running
	if running {
		manager.rampItem.Label = "Stop intensity ramp"
	} else {
		manager.rampItem.Label = "Start intensity ramp"
	}
	manager.refreshMenu()
}

// SetScheduled updates the schedule entry.
func (manager *Manager) SetScheduled(enabled bool) {
	manager.scheduled = enabled
	if enabled {
		manager.scheduleItem.Label = "Disable schedule"
	} else {
		manager.scheduleItem.Label = "Enable schedule"
	}
	manager.refreshMenu()
}

// SetTimelines replaces the timeline submenu entries.
func (manager *Manager) SetTimelines(names []string) {
	manager.timelines = append([]string(nil), names...)

	items := make([]*fyne.MenuItem, 0, len(names))
	for _, name := range names {
		timelineName := name
		items = append(items, fyne.NewMenuItem(timelineName, func() {
			if manager.callbacks.OnPlayTimeline != nil {
				manager.callbacks.OnPlayTimeline(timelineName)
			}
		}))
	}
	manager.timelineItem.ChildMenu = fyne.NewMenu("", items...)
	manager.timelineItem.Disabled = manager.running || len(names) == 0
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("DriftGlow",
		manager.statusItem,
		manager.startStop,
		manager.timelineItem,
		manager.rampItem,
		manager.scheduleItem,
		fyne.NewMenuItem("Preferences", func() {
			if manager.callbacks.OnPreferences != nil {
				manager.callbacks.OnPreferences()
			}
		}),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	))
}
