package config

import (
	"log/slog"

	"github.com/micro-nova/ws281x-go/internal/hardware"
	"github.com/micro-nova/ws281x-go/internal/models"
)

// migrateConfig fills in default values for fields that may be missing
// in older or hand-written config files.
func migrateConfig(cfg *models.StripConfig) {
	def := models.DefaultStripConfig()

	switch cfg.Driver {
	case models.DriverMock, models.DriverSPI, models.DriverSerial:
	case "":
		cfg.Driver = def.Driver
	default:
		slog.Warn("config: unknown driver, using default", "driver", cfg.Driver, "default", def.Driver)
		cfg.Driver = def.Driver
	}

	if cfg.Device == "" {
		switch cfg.Driver {
		case models.DriverSPI:
			cfg.Device = def.Device
		case models.DriverSerial:
			cfg.Device = "/dev/ttyACM0"
		}
	}
	if cfg.Driver == models.DriverSerial && cfg.Baud == 0 {
		cfg.Baud = hardware.DefaultBaud
	}
	if cfg.Freq == 0 {
		cfg.Freq = def.Freq
	}

	// The record always has exactly RpiPwmChannels channels.
	if len(cfg.Channels) > hardware.RpiPwmChannels {
		slog.Warn("config: too many channels, ignoring extras", "channels", len(cfg.Channels), "max", hardware.RpiPwmChannels)
		cfg.Channels = cfg.Channels[:hardware.RpiPwmChannels]
	}
	for len(cfg.Channels) < hardware.RpiPwmChannels {
		cfg.Channels = append(cfg.Channels, models.ChannelSettings{
			GPIO:       def.Channels[len(cfg.Channels)].GPIO,
			Brightness: hardware.DefaultBrightness,
		})
	}
}
