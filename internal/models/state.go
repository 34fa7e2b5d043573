// Package models defines the data structures shared by the daemon's
// controller, config store and HTTP API.
package models

import "github.com/micro-nova/ws281x-go/internal/hardware"

// Channel is the runtime view of one output channel.
type Channel struct {
	Index      int                `json:"index"`
	GPIO       int                `json:"gpio"`
	Count      int                `json:"count"`
	Brightness uint8              `json:"brightness"`
	StripType  hardware.StripType `json:"strip_type"`
	Invert     bool               `json:"invert,omitempty"`
}

// State is a snapshot of the strip as seen by API clients.
type State struct {
	Driver    string    `json:"driver"`
	Freq      uint32    `json:"freq"`
	DMA       int       `json:"dma"`
	Channels  []Channel `json:"channels"`
	Frames    uint64    `json:"frames"`               // frames rendered since start
	LastError string    `json:"last_error,omitempty"` // last render/wait failure
	FPS       int       `json:"fps"`                  // render loop rate, 0 if manual
}

// DeepCopy returns a copy that shares no slices with s.
func (s State) DeepCopy() State {
	cp := s
	cp.Channels = make([]Channel, len(s.Channels))
	copy(cp.Channels, s.Channels)
	return cp
}

// Leds is the color content of one channel.
type Leds struct {
	Channel int      `json:"channel"`
	Colors  []string `json:"colors"` // "#wwrrggbb"
}
