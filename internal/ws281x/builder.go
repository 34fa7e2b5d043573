package ws281x

import (
	"context"
	"fmt"
	"slices"

	"github.com/micro-nova/ws281x-go/internal/hardware"
)

const (
	// MaxLEDsPerChannel bounds a channel's count.
	MaxLEDsPerChannel = 4096
	minFreq           = 400000
	maxFreq           = 800000
	maxDMA            = 14
)

// BCM pins able to drive a strip, per peripheral.
var (
	pwm0Pins = []int{12, 18, 40, 52}
	pwm1Pins = []int{13, 19, 41, 45, 53}
	pcmPins  = []int{21, 31}
	spiPins  = []int{10, 38}
)

// Builder validates a configuration and initializes the driver for it.
type Builder struct {
	cfg hardware.Config
}

// NewBuilder returns a builder with the default frequency and DMA channel
// and both channels unused.
func NewBuilder() *Builder {
	return &Builder{cfg: hardware.Config{
		Freq:   hardware.DefaultFreq,
		DMANum: hardware.DefaultDMA,
	}}
}

// Freq sets the output bit rate in Hz.
func (b *Builder) Freq(hz uint32) *Builder {
	b.cfg.Freq = hz
	return b
}

// DMA sets the DMA channel.
func (b *Builder) DMA(n int) *Builder {
	b.cfg.DMANum = n
	return b
}

// Channel sets the configuration of channel i. Any Leds in ch are ignored;
// the driver allocates them.
func (b *Builder) Channel(i int, ch hardware.ChannelConfig) *Builder {
	if i < 0 || i >= hardware.RpiPwmChannels {
		panic(fmt.Sprintf("ws281x: channel %d out of range [0,%d)", i, hardware.RpiPwmChannels))
	}
	ch.Leds = nil
	b.cfg.Channels[i] = ch
	return b
}

// Config returns a copy of the configuration built so far.
func (b *Builder) Config() hardware.Config { return b.cfg }

// Validate checks the configuration without touching the driver.
func (b *Builder) Validate() error {
	cfg := &b.cfg
	if cfg.Freq < minFreq || cfg.Freq > maxFreq {
		return hardware.ErrDriver("build", hardware.StatusGeneric,
			fmt.Errorf("frequency %d Hz outside [%d,%d]", cfg.Freq, minFreq, maxFreq))
	}
	// DMA 5 is used by the SD card controller on most kernels.
	if cfg.DMANum < 0 || cfg.DMANum > maxDMA || cfg.DMANum == 5 {
		return hardware.ErrDriver("build", hardware.StatusDMA, fmt.Errorf("dma channel %d not allowed", cfg.DMANum))
	}

	active := 0
	for i := range cfg.Channels {
		ch := &cfg.Channels[i]
		if ch.Count < 0 || ch.Count > MaxLEDsPerChannel {
			return hardware.ErrDriver("build", hardware.StatusInvalidStringLength,
				fmt.Errorf("channel %d: count %d outside [0,%d]", i, ch.Count, MaxLEDsPerChannel))
		}
		if ch.Count > 0 {
			active++
		}
	}
	if active == 0 {
		return hardware.ErrDriver("build", hardware.StatusInvalidStringLength, fmt.Errorf("no channel has any leds"))
	}

	ch0, ch1 := &cfg.Channels[0], &cfg.Channels[1]
	if ch0.Count > 0 {
		ok := slices.Contains(pwm0Pins, ch0.GPIONum) || slices.Contains(pcmPins, ch0.GPIONum) || slices.Contains(spiPins, ch0.GPIONum)
		if !ok {
			return hardware.ErrDriver("build", hardware.StatusIllegalGPIO, fmt.Errorf("channel 0: GPIO%d cannot drive a strip", ch0.GPIONum))
		}
	}
	if ch1.Count > 0 {
		if !slices.Contains(pwm1Pins, ch1.GPIONum) {
			return hardware.ErrDriver("build", hardware.StatusIllegalGPIO, fmt.Errorf("channel 1: GPIO%d is not a PWM1 pin", ch1.GPIONum))
		}
		// PCM and SPI outputs have a single data line.
		if ch0.Count > 0 && !slices.Contains(pwm0Pins, ch0.GPIONum) {
			return hardware.ErrDriver("build", hardware.StatusIllegalGPIO, fmt.Errorf("channel 1 requires channel 0 on PWM0, got GPIO%d", ch0.GPIONum))
		}
	}
	return nil
}

// Build validates the configuration, initializes drv and returns a
// Controller owning the result.
func (b *Builder) Build(ctx context.Context, drv hardware.Driver) (*Controller, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	cfg := b.cfg
	if err := drv.Init(ctx, &cfg); err != nil {
		return nil, err
	}
	for i := range cfg.Channels {
		if len(cfg.Channels[i].Leds) < cfg.Channels[i].Count {
			drv.Fini(&cfg)
			return nil, hardware.ErrDriver("build", hardware.StatusOutOfMemory,
				fmt.Errorf("%s: channel %d buffer holds %d of %d leds", drv.Name(), i, len(cfg.Channels[i].Leds), cfg.Channels[i].Count))
		}
	}
	return New(drv, &cfg), nil
}
