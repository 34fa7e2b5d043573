package controller

import (
	"context"
	"fmt"

	"github.com/micro-nova/ws281x-go/internal/hardware"
	"github.com/micro-nova/ws281x-go/internal/models"
	"github.com/micro-nova/ws281x-go/internal/ws281x"
)

// NewDriver returns the driver named by cfg.Driver. mock forces the
// in-memory driver regardless of the config.
func NewDriver(cfg models.StripConfig, mock bool) (hardware.Driver, error) {
	if mock {
		return hardware.NewMock(), nil
	}
	switch cfg.Driver {
	case models.DriverMock:
		return hardware.NewMock(), nil
	case models.DriverSPI:
		return hardware.NewSPI(cfg.Device, cfg.MaxFPS), nil
	case models.DriverSerial:
		return hardware.NewSerial(cfg.Device, cfg.Baud, cfg.MaxFPS), nil
	}
	return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
}

// HardwareConfig translates the persisted config into the driver record.
func HardwareConfig(cfg models.StripConfig) *ws281x.Builder {
	b := ws281x.NewBuilder().Freq(cfg.Freq).DMA(cfg.DMA)
	for i, ch := range cfg.Channels {
		if i >= hardware.RpiPwmChannels {
			break
		}
		b.Channel(i, hardware.ChannelConfig{
			GPIONum:    ch.GPIO,
			Invert:     ch.Invert,
			Count:      ch.Count,
			StripType:  ch.StripType,
			Brightness: ch.Brightness,
		})
	}
	return b
}

// BuildStrip validates cfg and initializes drv for it.
func BuildStrip(ctx context.Context, cfg models.StripConfig, drv hardware.Driver) (*ws281x.Controller, error) {
	strip, err := HardwareConfig(cfg).Build(ctx, drv)
	if err != nil {
		return nil, fmt.Errorf("build %s strip: %w", drv.Name(), err)
	}
	return strip, nil
}
