//go:build !linux

package hardware

import (
	"context"
	"fmt"
)

// SPIDriver is unavailable outside Linux; Init always fails.
type SPIDriver struct{}

func NewSPI(devName string, maxFPS int) *SPIDriver { return &SPIDriver{} }

func (d *SPIDriver) Name() string { return "spi" }

func (d *SPIDriver) Init(ctx context.Context, cfg *Config) error {
	return ErrDriver("init", StatusHardwareFault, fmt.Errorf("spi driver not supported on this platform"))
}

func (d *SPIDriver) Render(cfg *Config) error { return ErrDriver("render", StatusGeneric, nil) }

func (d *SPIDriver) Wait(cfg *Config) error { return nil }

func (d *SPIDriver) Fini(cfg *Config) {}

var _ Driver = (*SPIDriver)(nil)
