package ws281x

import "github.com/micro-nova/ws281x-go/internal/hardware"

// View is a read-only window onto a channel's color buffer.
type View struct {
	leds []hardware.RawColor
}

// Len returns the number of LEDs in the view.
func (v View) Len() int { return len(v.leds) }

// At returns the color of LED i. It panics if i is out of range.
func (v View) At(i int) hardware.RawColor { return v.leds[i] }

// CopyTo copies the colors into dst and returns the number copied.
func (v View) CopyTo(dst []hardware.RawColor) int { return copy(dst, v.leds) }

// Slice returns a copy of the colors.
func (v View) Slice() []hardware.RawColor {
	out := make([]hardware.RawColor, len(v.leds))
	copy(out, v.leds)
	return out
}
