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

const phraseHoldDuration = 350 * time.Millisecond

// subliminal flashes short phrases at random positions. The phrase list comes
// from the running timeline's pools; phrase_rate (per minute) paces it.
type subliminal struct {
	surface *overlay.Window
	store   *Store
	rng     *rand.Rand
	phrase  func() string
	text    *canvas.Text
}

func newSubliminal(surface *overlay.Window, store *Store, rng *rand.Rand, phrase func() string) *subliminal {
	text := canvas.NewText("", color.NRGBA{R: 235, G: 235, B: 245, A: 230})
	text.TextStyle = fyne.TextStyle{Bold: true}
	text.TextSize = 28
	return &subliminal{surface: surface, store: store, rng: rng, phrase: phrase, text: text}
}

func (effect *subliminal) Start(ctx context.Context) {
	effect.surface.Attach(effect.text)
	go effect.run(ctx)
}

func (effect *subliminal) Stop() {
	effect.surface.Detach(effect.text)
}

func (effect *subliminal) run(ctx context.Context) {
	for {
		rate := effect.store.Get("phrase_rate")
		if rate < 1 {
			rate = 1
		}
		interval := time.Duration(float64(time.Minute) / rate)

		if !sleepWithContext(ctx, interval) {
			return
		}

		phrase := effect.phrase()
		if phrase == "" {
			continue
		}

		effect.show(phrase)
		if !sleepWithContext(ctx, phraseHoldDuration) {
			effect.hide()
			return
		}
		effect.hide()
	}
}

func (effect *subliminal) show(phrase string) {
	// Sample on the animation goroutine; the closure below runs on the UI
	// thread and must not touch the rng.
	fracX := float32(effect.rng.Float64())
	fracY := float32(effect.rng.Float64())
	fyne.Do(func() {
		size := effect.surface.Size()
		effect.text.Text = phrase
		maxX := size.Width - effect.text.MinSize().Width
		if maxX < 0 {
			maxX = 0
		}
		maxY := size.Height - effect.text.MinSize().Height
		if maxY < 0 {
			maxY = 0
		}
		effect.text.Move(fyne.NewPos(fracX*maxX, fracY*maxY))
		effect.text.Refresh()
	})
}

func (effect *subliminal) hide() {
	fyne.Do(func() {
		effect.text.Text = ""
		effect.text.Refresh()
	})
}
