package resources

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"fyne.io/fyne/v2"
)

const iconSide = 64

type palette struct {
	top    color.NRGBA
	bottom color.NRGBA
}

var palettes = map[string]palette{
	"active": {
		top:    color.NRGBA{R: 186, G: 104, B: 255, A: 255},
		bottom: color.NRGBA{R: 64, G: 156, B: 255, A: 255},
	},
	"paused": {
		top:    color.NRGBA{R: 120, G: 120, B: 132, A: 255},
		bottom: color.NRGBA{R: 70, G: 70, B: 84, A: 255},
	},
}

var logoCache sync.Map

// Logo returns the tray icon for the given state ("active" or "paused").
// Icons are rendered once and cached.
func Logo(name string) (fyne.Resource, error) {
	if cached, ok := logoCache.Load(name); ok {
		return cached.(fyne.Resource), nil
	}

	colors, ok := palettes[name]
	if !ok {
		return nil, fmt.Errorf("unknown logo %q", name)
	}

	data, err := renderLogo(colors)
	if err != nil {
		return nil, fmt.Errorf("render logo %s: %w", name, err)
	}

	resource := fyne.NewStaticResource(name+".png", data)
	logoCache.Store(name, resource)
	return resource, nil
}

// MustLogo returns a logo resource or panics on error.
func MustLogo(name string) fyne.Resource {
	resource, err := Logo(name)
	if err != nil {
		panic(err)
	}
	return resource
}

// renderLogo draws a vertically shaded disc, the app's glow mark.
func renderLogo(colors palette) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, iconSide, iconSide))
	center := float64(iconSide-1) / 2
	radius := center - 2

	for y := 0; y < iconSide; y++ {
		blend := float64(y) / float64(iconSide-1)
		shade := lerpColor(colors.top, colors.bottom, blend)
		for x := 0; x < iconSide; x++ {
			dx := float64(x) - center
			dy := float64(y) - center
			if dx*dx+dy*dy <= radius*radius {
				img.SetNRGBA(x, y, shade)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func lerpColor(from, to color.NRGBA, blend float64) color.NRGBA {
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*blend)
	}
	return color.NRGBA{
		R: lerp(from.R, to.R),
		G: lerp(from.G, to.G),
		B: lerp(from.B, to.B),
		A: 255,
	}
}
