// Package controller implements the daemon state machine: the single owner
// of the running strip configuration, frame counters and the LED handle
// shared with the render loop.
package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/micro-nova/ws281x-go/internal/config"
	"github.com/micro-nova/ws281x-go/internal/events"
	"github.com/micro-nova/ws281x-go/internal/hardware"
	"github.com/micro-nova/ws281x-go/internal/models"
	"github.com/micro-nova/ws281x-go/internal/ws281x"
)

// Controller is the central state machine for the daemon.
// State mutations go through apply(), which persists and publishes them.
type Controller struct {
	mu      sync.RWMutex
	cfg     models.StripConfig
	frames  uint64
	lastErr string
	fps     int

	strip *ws281x.Controller
	store config.Store
	bus   *events.Bus

	dirty atomic.Bool
}

// New creates a Controller driving strip, which was built from cfg.
// The Controller holds its own handle on strip; the caller keeps (and must
// Close) the one it passed in.
func New(strip *ws281x.Controller, cfg models.StripConfig, store config.Store, bus *events.Bus) *Controller {
	return &Controller{
		cfg:   cfg.DeepCopy(),
		strip: strip.Clone(),
		store: store,
		bus:   bus,
	}
}

// Close releases the Controller's handle on the strip. The hardware is
// finalized once every other handle is closed too.
func (c *Controller) Close() error {
	return c.strip.Close()
}

// State returns a snapshot of the current strip state.
func (c *Controller) State() models.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot()
}

// Config returns a copy of the running configuration.
func (c *Controller) Config() models.StripConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.DeepCopy()
}

// snapshot builds the State from c.cfg; c.mu must be held.
func (c *Controller) snapshot() models.State {
	st := models.State{
		Driver:    c.strip.Driver(),
		Freq:      c.cfg.Freq,
		DMA:       c.cfg.DMA,
		Channels:  make([]models.Channel, 0, len(c.cfg.Channels)),
		Frames:    c.frames,
		LastError: c.lastErr,
		FPS:       c.fps,
	}
	for i, ch := range c.cfg.Channels {
		st.Channels = append(st.Channels, models.Channel{
			Index:      i,
			GPIO:       ch.GPIO,
			Count:      ch.Count,
			Brightness: ch.Brightness,
			StripType:  ch.StripType,
			Invert:     ch.Invert,
		})
	}
	return st
}

// apply is the core mutation primitive. fn edits a copy of the config; on
// success the copy replaces the running config, a save is scheduled and a
// state event is published.
func (c *Controller) apply(fn func(*models.StripConfig) error) (models.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.cfg.DeepCopy()
	if err := fn(&next); err != nil {
		return models.State{}, err
	}

	c.cfg = next
	if err := c.store.Save(&c.cfg); err != nil {
		slog.Warn("controller: failed to save config", "err", err)
	}
	st := c.snapshot()
	c.bus.Publish(events.KindState, st)
	return st, nil
}

// GetChannel returns one channel by index.
func (c *Controller) GetChannel(ch int) (models.Channel, *models.AppError) {
	if err := checkChannel(ch); err != nil {
		return models.Channel{}, err
	}
	st := c.State()
	return st.Channels[ch], nil
}

// SetBrightness sets a channel's brightness. It takes effect on the next
// frame, which is scheduled for the render loop.
func (c *Controller) SetBrightness(ch, value int) (models.State, *models.AppError) {
	if err := checkChannel(ch); err != nil {
		return models.State{}, err
	}
	if value < 0 || value > 255 {
		return models.State{}, models.ErrBadRequest(fmt.Sprintf("brightness must be 0-255, got %d", value))
	}
	st, err := c.apply(func(cfg *models.StripConfig) error {
		cfg.Channels[ch].Brightness = uint8(value)
		c.strip.SetBrightness(ch, uint8(value))
		return nil
	})
	if err != nil {
		return models.State{}, toAppError(err)
	}
	c.dirty.Store(true)
	return st, nil
}

func checkChannel(ch int) *models.AppError {
	if ch < 0 || ch >= hardware.RpiPwmChannels {
		return models.ErrNotFound(fmt.Sprintf("channel %d not found", ch))
	}
	return nil
}

// toAppError maps driver and lifecycle errors to API errors.
func toAppError(err error) *models.AppError {
	var appErr *models.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, ws281x.ErrClosed):
		return models.ErrUnavailable(err.Error())
	case errors.Is(err, hardware.ErrInvalidStringLength), errors.Is(err, hardware.ErrIllegalGPIO):
		return models.ErrBadRequest(err.Error())
	}
	var drvErr *hardware.DriverError
	if errors.As(err, &drvErr) {
		return models.ErrHardware(err.Error())
	}
	return models.ErrInternal(err.Error())
}
