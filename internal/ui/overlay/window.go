package overlay

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

// Config defines overlay visuals.
type Config struct {
	Opacity    uint8
	Fullscreen bool
}

const (
	overlayWidthFraction  = float32(0.6)
	overlayHeightFraction = float32(0.6)
	defaultScreenWidth    = float32(1920)
	defaultScreenHeight   = float32(1080)
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// Window is the borderless surface effect renderers draw on. It shows itself
// while at least one effect layer is attached and hides when the last one
// detaches.
type Window struct {
	mu          sync.Mutex
	app         fyne.App
	window      fyne.Window
	config      Config
	background  *canvas.Rectangle
	effectLayer *fyne.Container
	attached    int
	visible     bool
}

// New creates the effect surface.
func New(app fyne.App, config Config) *Window {
	window := app.NewWindow("DriftGlow")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{A: config.Opacity})
	effectLayer := container.NewWithoutLayout()
	window.SetContent(container.NewStack(background, effectLayer))

	surface := &Window{
		app:         app,
		window:      window,
		config:      config,
		background:  background,
		effectLayer: effectLayer,
	}
	surface.applyWindowMode()
	surface.applyNativeOpacity(config.Opacity)
	return surface
}

// Attach adds an effect layer and shows the surface if it was hidden.
func (surface *Window) Attach(object fyne.CanvasObject) {
	surface.mu.Lock()
	surface.attached++
	show := !surface.visible
	surface.visible = true
	surface.mu.Unlock()

	fyne.Do(func() {
		surface.effectLayer.Add(object)
		surface.effectLayer.Refresh()
		if show {
			surface.applyWindowMode()
			surface.window.Show()
		}
	})
}

// Detach removes an effect layer, hiding the surface when none remain.
func (surface *Window) Detach(object fyne.CanvasObject) {
	surface.mu.Lock()
	if surface.attached > 0 {
		surface.attached--
	}
	hide := surface.attached == 0 && surface.visible
	if hide {
		surface.visible = false
	}
	surface.mu.Unlock()

	fyne.Do(func() {
		surface.effectLayer.Remove(object)
		surface.effectLayer.Refresh()
		if hide {
			if surface.config.Fullscreen {
				surface.window.SetFullScreen(false)
			}
			surface.window.Hide()
		}
	})
}

// Size returns the drawable surface size for renderer placement.
func (surface *Window) Size() fyne.Size {
	size := surface.window.Canvas().Size()
	if size.Width < 1 || size.Height < 1 {
		return fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	}
	return size
}

// UpdateConfig updates overlay visuals.
func (surface *Window) UpdateConfig(config Config) {
	surface.mu.Lock()
	surface.config = config
	visible := surface.visible
	surface.mu.Unlock()

	fyne.Do(func() {
		surface.background.FillColor = color.NRGBA{A: config.Opacity}
		canvas.Refresh(surface.background)
		surface.applyNativeOpacity(config.Opacity)
		if visible {
			surface.applyWindowMode()
		}
	})
}

func (surface *Window) applyWindowMode() {
	if surface.config.Fullscreen {
		surface.window.SetFullScreen(true)
		return
	}
	surface.window.SetFullScreen(false)
	surface.resizeToScreenFraction()
}

func (surface *Window) resizeToScreenFraction() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := surface.window.Canvas().Size()
	// Canvas size can be reused as a proxy for monitor size when it is clearly screen-like.
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}

	surface.window.Resize(fyne.NewSize(
		screenSize.Width*overlayWidthFraction,
		screenSize.Height*overlayHeightFraction,
	))
	surface.window.CenterOnScreen()
}
