package models

import "github.com/micro-nova/ws281x-go/internal/hardware"

// Driver names accepted in StripConfig.Driver.
const (
	DriverMock   = "mock"
	DriverSPI    = "spi"
	DriverSerial = "serial"
)

// ChannelSettings is the persisted configuration of one channel.
type ChannelSettings struct {
	GPIO       int                `json:"gpio"`
	Count      int                `json:"count"`
	Brightness uint8              `json:"brightness"`
	StripType  hardware.StripType `json:"strip_type"`
	Invert     bool               `json:"invert,omitempty"`
}

// StripConfig is the persisted strip configuration (strip.json).
type StripConfig struct {
	Driver   string            `json:"driver"`           // "mock" | "spi" | "serial"
	Device   string            `json:"device,omitempty"` // spidev path or serial port
	Baud     int               `json:"baud,omitempty"`   // serial only
	MaxFPS   int               `json:"max_fps,omitempty"`
	Freq     uint32            `json:"freq"`
	DMA      int               `json:"dma"`
	Channels []ChannelSettings `json:"channels"`
}

// DeepCopy returns a copy that shares no slices with c.
func (c StripConfig) DeepCopy() StripConfig {
	cp := c
	cp.Channels = make([]ChannelSettings, len(c.Channels))
	copy(cp.Channels, c.Channels)
	return cp
}

// DefaultStripConfig is used when no config file exists: one 60-LED GRB
// strip on the SPI MOSI pin.
func DefaultStripConfig() StripConfig {
	return StripConfig{
		Driver: DriverSPI,
		Device: "/dev/spidev0.0",
		MaxFPS: 60,
		Freq:   hardware.DefaultFreq,
		DMA:    hardware.DefaultDMA,
		Channels: []ChannelSettings{
			{GPIO: 10, Count: 60, Brightness: hardware.DefaultBrightness, StripType: hardware.StripGRB},
			{GPIO: 13, Count: 0, Brightness: hardware.DefaultBrightness, StripType: hardware.StripGRB},
		},
	}
}
