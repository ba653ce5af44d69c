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

const cornerSpriteSize = float32(96)

var cornerFrames = []color.NRGBA{
	{R: 255, G: 120, B: 200, A: 180},
	{R: 180, G: 120, B: 255, A: 180},
	{R: 120, G: 200, B: 255, A: 180},
	{R: 120, G: 255, B: 190, A: 180},
}

// cornerSprite loops a small animated sprite in a randomly chosen corner,
// standing in for the looping corner image of the original effect set.
type cornerSprite struct {
	surface *overlay.Window
	rng     *rand.Rand
	rect    *canvas.Rectangle
	corner  int
}

func newCornerSprite(surface *overlay.Window, rng *rand.Rand) *cornerSprite {
	rect := canvas.NewRectangle(cornerFrames[0])
	rect.CornerRadius = 16
	return &cornerSprite{surface: surface, rng: rng, rect: rect, corner: rng.Intn(4)}
}

func (effect *cornerSprite) Start(ctx context.Context) {
	effect.surface.Attach(effect.rect)
	go effect.run(ctx)
}

func (effect *cornerSprite) Stop() {
	effect.surface.Detach(effect.rect)
}

func (effect *cornerSprite) run(ctx context.Context) {
	frame := 0
	for {
		effect.draw(frame)
		if !sleepWithContext(ctx, 250*time.Millisecond) {
			return
		}
		frame++
	}
}

func (effect *cornerSprite) draw(frame int) {
	fyne.Do(func() {
		size := effect.surface.Size()
		margin := float32(24)

		x := margin
		if effect.corner == 1 || effect.corner == 3 {
			x = size.Width - cornerSpriteSize - margin
		}
		y := margin
		if effect.corner >= 2 {
			y = size.Height - cornerSpriteSize - margin
		}

		effect.rect.FillColor = cornerFrames[frame%len(cornerFrames)]
		effect.rect.Move(fyne.NewPos(x, y))
		effect.rect.Resize(fyne.NewSize(cornerSpriteSize, cornerSpriteSize))
		effect.rect.Refresh()
	})
}
