// Package hardware provides the hardware abstraction layer for ws281x LED
// strips. It defines the Driver interface, the hardware configuration record
// shared with the driver, and the mock and real drivers.
package hardware

import (
	"context"
	"fmt"
	"strings"
)

// RpiPwmChannels is the number of output channels in a configuration record.
// It matches the two PWM channels of the Raspberry Pi.
const RpiPwmChannels = 2

const (
	// DefaultFreq is the WS2812 bit rate in Hz.
	DefaultFreq = 800000
	// DefaultDMA is the DMA channel least likely to collide with the kernel.
	DefaultDMA = 10
	// DefaultBrightness is a safe brightness for bench testing (0-255).
	DefaultBrightness = 64
)

// RawColor is one LED's color as the driver stores it in memory: a packed
// 0xWWRRGGBB word. No channel order is implied; drivers reorder on output.
type RawColor uint32

// RGB packs a color without a white component.
func RGB(r, g, b uint8) RawColor {
	return RawColor(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// RGBW packs a color with a white component.
func RGBW(r, g, b, w uint8) RawColor {
	return RawColor(uint32(w)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

func (c RawColor) R() uint8 { return uint8(c >> 16) }
func (c RawColor) G() uint8 { return uint8(c >> 8) }
func (c RawColor) B() uint8 { return uint8(c) }
func (c RawColor) W() uint8 { return uint8(c >> 24) }

func (c RawColor) String() string { return fmt.Sprintf("#%08x", uint32(c)) }

// StripType is the order in which a strip expects color bytes on the wire.
type StripType int

const (
	StripGRB StripType = iota // WS2812B default
	StripRGB
	StripRBG
	StripGBR
	StripBRG
	StripBGR
	StripGRBW // SK6812 RGBW
	StripRGBW
)

var stripOrders = map[StripType]string{
	StripGRB:  "GRB",
	StripRGB:  "RGB",
	StripRBG:  "RBG",
	StripGBR:  "GBR",
	StripBRG:  "BRG",
	StripBGR:  "BGR",
	StripGRBW: "GRBW",
	StripRGBW: "RGBW",
}

// Order returns the wire order, e.g. "GRB".
func (s StripType) Order() string {
	if o, ok := stripOrders[s]; ok {
		return o
	}
	return "GRB"
}

// Colors returns the number of bytes each LED takes on the wire.
func (s StripType) Colors() int { return len(s.Order()) }

func (s StripType) String() string { return s.Order() }

// ParseStripType parses a wire order such as "grb" or "RGBW".
func ParseStripType(s string) (StripType, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for t, o := range stripOrders {
		if o == up {
			return t, nil
		}
	}
	return StripGRB, fmt.Errorf("unknown strip type %q", s)
}

func (s StripType) MarshalText() ([]byte, error) { return []byte(s.Order()), nil }

func (s *StripType) UnmarshalText(b []byte) error {
	t, err := ParseStripType(string(b))
	if err != nil {
		return err
	}
	*s = t
	return nil
}

// ChannelConfig is the per-channel part of the configuration record.
type ChannelConfig struct {
	GPIONum    int       // BCM pin driving this channel
	Invert     bool      // inverted data line; drivers that cannot invert the waveform reject it
	Count      int       // number of LEDs, 0 if the channel is unused
	StripType  StripType // wire color order
	Brightness uint8     // 0-255, applied by the driver at render time

	// Leds is the color buffer. The driver sets it in Init and owns the
	// memory behind it; its address and length stay fixed until Fini.
	Leds []RawColor
}

// Config is the hardware configuration record shared with the driver.
type Config struct {
	Freq     uint32 // bit rate in Hz
	DMANum   int
	Channels [RpiPwmChannels]ChannelConfig
}

// Driver is the interface implemented by LED strip output drivers.
//
// The caller guarantees that calls on one Config never overlap and that Fini
// is called exactly once, after every Render and Wait has returned.
type Driver interface {
	// Init programs the hardware and allocates each active channel's Leds.
	Init(ctx context.Context, cfg *Config) error

	// Render starts transmitting the current buffers. It returns once the
	// frame is submitted, not once it has been sent.
	Render(cfg *Config) error

	// Wait blocks until the last submitted frame has been sent. With no
	// frame outstanding it returns nil immediately.
	Wait(cfg *Config) error

	// Fini releases the hardware and the channel buffers.
	Fini(cfg *Config)

	// Name identifies the driver in logs and state, e.g. "mock" or "spi".
	Name() string
}
