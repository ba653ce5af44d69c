package effects

import (
	"context"
	"image/color"
	"math/rand"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"driftglow/internal/ui/overlay"
)

const flashPulseDuration = 140 * time.Millisecond

// flash covers the surface with a brief white pulse at the rate set by the
// flash_rate parameter (pulses per minute, re-read every cycle so the ramp
// takes effect mid-run).
type flash struct {
	surface *overlay.Window
	store   *Store
	rng     *rand.Rand
	rect    *canvas.Rectangle
}

func newFlash(surface *overlay.Window, store *Store, rng *rand.Rand) *flash {
	rect := canvas.NewRectangle(color.NRGBA{R: 255, G: 255, B: 255, A: 0})
	return &flash{surface: surface, store: store, rng: rng, rect: rect}
}

func (effect *flash) Start(ctx context.Context) {
	effect.surface.Attach(effect.rect)
	go effect.run(ctx)
}

func (effect *flash) Stop() {
	effect.surface.Detach(effect.rect)
}

func (effect *flash) run(ctx context.Context) {
	for {
		rate := effect.store.Get("flash_rate")
		if rate < 1 {
			rate = 1
		}
		interval := time.Duration(float64(time.Minute) / rate)
		jitter := Range{Min: interval * 8 / 10, Max: interval * 12 / 10}

		if !sleepWithContext(ctx, jitter.Random(effect.rng)) {
			return
		}
		effect.setAlpha(200)
		if !sleepWithContext(ctx, flashPulseDuration) {
			effect.setAlpha(0)
			return
		}
		effect.setAlpha(0)
	}
}

func (effect *flash) setAlpha(alpha uint8) {
	fyne.Do(func() {
		size := effect.surface.Size()
		effect.rect.Resize(size)
		effect.rect.Move(fyne.NewPos(0, 0))
		effect.rect.FillColor = color.NRGBA{R: 255, G: 255, B: 255, A: alpha}
		effect.rect.Refresh()
	})
}
