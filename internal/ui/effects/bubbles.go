package effects

import (
	"context"
	"image/color"
	"math/rand"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"

	"driftglow/internal/ui/overlay"
)

const bubbleFrameInterval = 40 * time.Millisecond

// bubbles drifts translucent circles up the surface. The bubble_density
// parameter sets how many are alive at once.
type bubbles struct {
	surface *overlay.Window
	store   *Store
	rng     *rand.Rand
	layer   *fyne.Container
	circles []*bubble
}

type bubble struct {
	circle *canvas.Circle
	x, y   float32
	speed  float32
	size   float32
}

func newBubbles(surface *overlay.Window, store *Store, rng *rand.Rand) *bubbles {
	return &bubbles{
		surface: surface,
		store:   store,
		rng:     rng,
		layer:   container.NewWithoutLayout(),
	}
}

func (effect *bubbles) Start(ctx context.Context) {
	effect.surface.Attach(effect.layer)
	go effect.run(ctx)
}

func (effect *bubbles) Stop() {
	effect.surface.Detach(effect.layer)
}

func (effect *bubbles) run(ctx context.Context) {
	for {
		if !sleepWithContext(ctx, bubbleFrameInterval) {
			return
		}
		effect.step()
	}
}

func (effect *bubbles) step() {
	fyne.Do(func() {
		size := effect.surface.Size()
		target := int(effect.store.Get("bubble_density"))

		for len(effect.circles) < target {
			effect.circles = append(effect.circles, effect.spawn(size))
		}
		for len(effect.circles) > target {
			last := effect.circles[len(effect.circles)-1]
			effect.layer.Remove(last.circle)
			effect.circles = effect.circles[:len(effect.circles)-1]
		}

		for _, b := range effect.circles {
			b.y -= b.speed
			if b.y+b.size < 0 {
				b.x = float32(effect.rng.Float64()) * size.Width
				b.y = size.Height + b.size
			}
			b.circle.Move(fyne.NewPos(b.x, b.y))
			b.circle.Resize(fyne.NewSize(b.size, b.size))
		}
		effect.layer.Refresh()
	})
}

func (effect *bubbles) spawn(size fyne.Size) *bubble {
	diameter := 12 + float32(effect.rng.Float64())*36
	circle := canvas.NewCircle(color.NRGBA{R: 140, G: 180, B: 255, A: 70})
	circle.StrokeColor = color.NRGBA{R: 200, G: 220, B: 255, A: 110}
	circle.StrokeWidth = 1

	b := &bubble{
		circle: circle,
		x:      float32(effect.rng.Float64()) * size.Width,
		y:      size.Height * float32(effect.rng.Float64()),
		speed:  0.5 + float32(effect.rng.Float64())*1.5,
		size:   diameter,
	}
	effect.layer.Add(circle)
	return b
}
