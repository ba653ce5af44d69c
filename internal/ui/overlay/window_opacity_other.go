//go:build !windows

package overlay

// applyNativeOpacity is a no-op outside Windows; the translucent background
// rectangle provides the dimming instead.
func (surface *Window) applyNativeOpacity(alpha uint8) {}
