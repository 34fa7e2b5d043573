// Package ws281x provides Controller, a shareable handle to one LED strip
// configuration record and the driver that owns its hardware.
//
// Every handle made by Clone refers to the same record and the same lock.
// Render, Wait, Brightness, SetBrightness and Channels are serialized across
// all handles. The driver is finalized exactly once, when the last handle is
// closed. A handle dropped without Close is reported by a cleanup but keeps
// its reference, so the record and its buffers are leaked rather than freed
// under a view that may still be in use.
//
// Buffer views returned by Leds and LedsMut alias driver-owned memory and
// are not covered by the lock once returned. Callers that write through
// LedsMut must not do so while a Render on the same record is running, and
// must not use a view after the last handle is closed. Update runs a write
// under the lock instead.
package ws281x

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/micro-nova/ws281x-go/internal/hardware"
)

// ErrClosed is returned by Render and Wait on a closed handle or a record
// that has already been finalized.
var ErrClosed = errors.New("ws281x: controller closed")

// record is the state shared by all handles of one configuration.
type record struct {
	mu        sync.Mutex
	cfg       *hardware.Config
	drv       hardware.Driver
	finalized bool

	refs atomic.Int64
}

// release drops one reference and finalizes the driver on the last one.
func (r *record) release() {
	n := r.refs.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		panic("ws281x: record released more times than referenced")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return
	}
	r.drv.Fini(r.cfg)
	r.finalized = true
	slog.Debug("ws281x: driver finalized", "driver", r.drv.Name())
}

// Controller is one handle to a shared configuration record.
type Controller struct {
	rec     *record
	closed  atomic.Bool
	cleanup runtime.Cleanup
}

// New wraps an initialized configuration record in a handle with a
// reference count of one. The record is not validated; see Builder.
func New(drv hardware.Driver, cfg *hardware.Config) *Controller {
	rec := &record{cfg: cfg, drv: drv}
	rec.refs.Store(1)
	return newHandle(rec)
}

func newHandle(rec *record) *Controller {
	c := &Controller{rec: rec}
	c.cleanup = runtime.AddCleanup(c, func(r *record) {
		slog.Warn("ws281x: controller handle dropped without Close, leaking its record", "driver", r.drv.Name())
	}, rec)
	return c
}

// Clone returns a new handle to the same record. Each handle must be closed
// separately.
func (c *Controller) Clone() *Controller {
	c.checkOpen()
	c.rec.refs.Add(1)
	return newHandle(c.rec)
}

// Close releases this handle. Closing the last handle of a record
// finalizes the driver. Closing a handle twice is a no-op.
func (c *Controller) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.cleanup.Stop()
	c.rec.release()
	return nil
}

// Refs returns the number of open handles on the record.
func (c *Controller) Refs() int { return int(c.rec.refs.Load()) }

// Driver returns the name of the driver behind the record.
func (c *Controller) Driver() string { return c.rec.drv.Name() }

func (c *Controller) checkOpen() {
	if c.closed.Load() {
		panic("ws281x: use of closed Controller")
	}
}

func (c *Controller) checkChannel(channel int) {
	if channel < 0 || channel >= hardware.RpiPwmChannels {
		panic(fmt.Sprintf("ws281x: channel %d out of range [0,%d)", channel, hardware.RpiPwmChannels))
	}
}

// lock acquires the record lock for an accessor; it panics on a closed
// handle or a finalized record.
func (c *Controller) lock() *hardware.Config {
	c.checkOpen()
	c.rec.mu.Lock()
	if c.rec.finalized {
		c.rec.mu.Unlock()
		panic("ws281x: use of finalized record")
	}
	return c.rec.cfg
}

func (c *Controller) unlock() { c.rec.mu.Unlock() }

// Render submits the current buffers and brightness to the driver. It
// returns once the frame is submitted; use Wait to block until it is sent.
// Driver failures are returned as they are, without retry.
func (c *Controller) Render() error {
	return c.call((hardware.Driver).Render)
}

// Wait blocks until the last rendered frame has been sent. There is no
// timeout; a caller needing one must race Wait against its own deadline.
func (c *Controller) Wait() error {
	return c.call((hardware.Driver).Wait)
}

func (c *Controller) call(op func(hardware.Driver, *hardware.Config) error) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.rec.mu.Lock()
	defer c.rec.mu.Unlock()
	if c.rec.finalized {
		return ErrClosed
	}
	return op(c.rec.drv, c.rec.cfg)
}

// Show renders and waits for the frame to be sent.
func (c *Controller) Show() error {
	if err := c.Render(); err != nil {
		return err
	}
	return c.Wait()
}

// Channels returns, in ascending order, the indices of channels with at
// least one LED.
func (c *Controller) Channels() []int {
	cfg := c.lock()
	defer c.unlock()
	var active []int
	for i := range cfg.Channels {
		if cfg.Channels[i].Count > 0 {
			active = append(active, i)
		}
	}
	return active
}

// NumChannels returns the number of channels in the record, used or not.
func (c *Controller) NumChannels() int { return hardware.RpiPwmChannels }

// Count returns the number of LEDs on channel.
func (c *Controller) Count(channel int) int {
	c.checkChannel(channel)
	cfg := c.lock()
	defer c.unlock()
	return cfg.Channels[channel].Count
}

// Brightness returns the brightness of channel.
func (c *Controller) Brightness(channel int) uint8 {
	c.checkChannel(channel)
	cfg := c.lock()
	defer c.unlock()
	return cfg.Channels[channel].Brightness
}

// SetBrightness sets the brightness of channel. The driver applies it on
// the next Render.
func (c *Controller) SetBrightness(channel int, value uint8) {
	c.checkChannel(channel)
	cfg := c.lock()
	defer c.unlock()
	cfg.Channels[channel].Brightness = value
}

// buffer returns channel's buffer, cut to its count.
func (c *Controller) buffer(channel int) []hardware.RawColor {
	c.checkChannel(channel)
	cfg := c.lock()
	defer c.unlock()
	ch := &cfg.Channels[channel]
	return ch.Leds[:ch.Count:ch.Count]
}

// Leds returns a read-only view of channel's color buffer. The view reads
// driver memory directly and sees later writes from any handle.
func (c *Controller) Leds(channel int) View {
	return View{leds: c.buffer(channel)}
}

// LedsMut returns channel's color buffer for in-place writes. The slice
// aliases driver memory: it must not be written while a Render is running
// and must not be used after the last handle is closed.
func (c *Controller) LedsMut(channel int) []hardware.RawColor {
	return c.buffer(channel)
}

// Update calls fn with channel's color buffer while holding the record
// lock, so the writes cannot interleave with Render or Wait on any handle.
// fn must not retain the slice or call back into the Controller.
func (c *Controller) Update(channel int, fn func(leds []hardware.RawColor)) {
	c.checkChannel(channel)
	cfg := c.lock()
	defer c.unlock()
	ch := &cfg.Channels[channel]
	fn(ch.Leds[:ch.Count:ch.Count])
}
