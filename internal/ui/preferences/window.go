package preferences

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"driftglow/internal/core/schedule"
)

var dayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Window handles the preferences UI.
type Window struct {
	window   fyne.Window
	settings Settings
	onSave   func(Settings)
	onCancel func()

	scheduleEnabled *widget.Check
	days            [7]*widget.Check
	startEntry      *widget.Entry
	endEntry        *widget.Entry

	rampEnabled  *widget.Check
	rampMult     *widget.Entry
	rampDuration *widget.Entry
	rampEnds     *widget.Check

	opacity    *widget.Slider
	fullscreen *widget.Check
	autostart  *widget.Check
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("DriftGlow Settings")

	prefs := &Window{
		window:   window,
		settings: settings,
		onSave:   onSave,
	}

	prefs.scheduleEnabled = widget.NewCheck("Start sessions automatically", nil)
	for i := range prefs.days {
		prefs.days[i] = widget.NewCheck(dayLabels[i], nil)
	}
	prefs.startEntry = widget.NewEntry()
	prefs.endEntry = widget.NewEntry()

	prefs.rampEnabled = widget.NewCheck("Ramp intensity during sessions", nil)
	prefs.rampMult = widget.NewEntry()
	prefs.rampDuration = widget.NewEntry()
	prefs.rampEnds = widget.NewCheck("End session when ramp completes", nil)

	prefs.opacity = widget.NewSlider(0.1, 1)
	prefs.opacity.Step = 0.01
	prefs.fullscreen = widget.NewCheck("Fullscreen overlay", nil)
	prefs.autostart = widget.NewCheck("Launch DriftGlow at login", nil)

	dayRow := container.NewHBox()
	for _, check := range prefs.days {
		dayRow.Add(check)
	}

	form := container.NewVBox(
		widget.NewLabelWithStyle("Schedule", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.scheduleEnabled,
		dayRow,
		container.NewHBox(widget.NewLabel("From"), prefs.startEntry, widget.NewLabel("until"), prefs.endEntry),
		widget.NewLabelWithStyle("Intensity ramp", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.rampEnabled,
		container.NewHBox(widget.NewLabel("Multiplier"), prefs.rampMult, widget.NewLabel("over"), prefs.rampDuration, widget.NewLabel("min")),
		prefs.rampEnds,
		widget.NewLabelWithStyle("Overlay", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Opacity"),
		prefs.opacity,
		prefs.fullscreen,
		widget.NewLabelWithStyle("Startup", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.autostart,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", func() {
		window.Hide()
		if prefs.onCancel != nil {
			prefs.onCancel()
		}
	})
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(460, 480))
	window.SetCloseIntercept(window.Hide)

	prefs.UpdateSettings(settings)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings

	prefs.scheduleEnabled.SetChecked(settings.ScheduleEnabled)
	for i := range prefs.days {
		prefs.days[i].SetChecked(settings.ScheduleDays[i])
	}
	prefs.startEntry.SetText(settings.ScheduleStart)
	prefs.endEntry.SetText(settings.ScheduleEnd)

	prefs.rampEnabled.SetChecked(settings.RampEnabled)
	prefs.rampMult.SetText(fmt.Sprintf("%.1f", settings.RampMultiplier))
	prefs.rampDuration.SetText(strconv.Itoa(settings.RampDurationMinutes))
	prefs.rampEnds.SetChecked(settings.RampEndsSession)

	prefs.opacity.Value = settings.OverlayOpacity
	prefs.opacity.Refresh()
	prefs.fullscreen.SetChecked(settings.Fullscreen)
	prefs.autostart.SetChecked(settings.Autostart)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	settings.ScheduleEnabled = prefs.scheduleEnabled.Checked
	for i := range prefs.days {
		settings.ScheduleDays[i] = prefs.days[i].Checked
	}
	if _, err := schedule.ParseTimeOfDay(prefs.startEntry.Text); err == nil {
		settings.ScheduleStart = prefs.startEntry.Text
	}
	if _, err := schedule.ParseTimeOfDay(prefs.endEntry.Text); err == nil {
		settings.ScheduleEnd = prefs.endEntry.Text
	}

	settings.RampEnabled = prefs.rampEnabled.Checked
	if multiplier, err := strconv.ParseFloat(prefs.rampMult.Text, 64); err == nil && multiplier >= 1 {
		settings.RampMultiplier = multiplier
	}
	if minutes, ok := parsePositiveInt(prefs.rampDuration.Text); ok {
		settings.RampDurationMinutes = minutes
	}
	settings.RampEndsSession = prefs.rampEnds.Checked

	settings.OverlayOpacity = prefs.opacity.Value
	settings.Fullscreen = prefs.fullscreen.Checked
	settings.Autostart = prefs.autostart.Checked

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
