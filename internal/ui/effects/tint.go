package effects

import (
	"context"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"driftglow/internal/ui/overlay"
)

// tint washes the surface in a colored layer whose strength follows the
// tint_opacity parameter.
type tint struct {
	surface *overlay.Window
	store   *Store
	rect    *canvas.Rectangle
}

func newTint(surface *overlay.Window, store *Store) *tint {
	return &tint{
		surface: surface,
		store:   store,
		rect:    canvas.NewRectangle(color.NRGBA{}),
	}
}

func (effect *tint) Start(ctx context.Context) {
	effect.surface.Attach(effect.rect)
	go effect.run(ctx)
}

func (effect *tint) Stop() {
	effect.surface.Detach(effect.rect)
}

func (effect *tint) run(ctx context.Context) {
	for {
		effect.apply()
		if !sleepWithContext(ctx, time.Second) {
			return
		}
	}
}

func (effect *tint) apply() {
	fyne.Do(func() {
		opacity := effect.store.Get("tint_opacity")
		if opacity < 0 {
			opacity = 0
		}
		if opacity > 1 {
			opacity = 1
		}
		effect.rect.FillColor = color.NRGBA{R: 150, G: 60, B: 200, A: uint8(opacity * 255)}
		effect.rect.Resize(effect.surface.Size())
		effect.rect.Move(fyne.NewPos(0, 0))
		effect.rect.Refresh()
	})
}
