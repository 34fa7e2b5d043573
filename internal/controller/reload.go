package controller

import (
	"log/slog"

	"github.com/micro-nova/ws281x-go/internal/events"
	"github.com/micro-nova/ws281x-go/internal/models"
)

// ApplyConfig adopts a configuration reloaded from disk. Brightness is
// applied live; changes to the driver, timing or channel layout need the
// strip rebuilt and are only logged.
func (c *Controller) ApplyConfig(next *models.StripConfig) {
	c.mu.Lock()
	cur := &c.cfg

	if next.Driver != cur.Driver || next.Device != cur.Device || next.Baud != cur.Baud ||
		next.Freq != cur.Freq || next.DMA != cur.DMA || next.MaxFPS != cur.MaxFPS {
		slog.Warn("controller: driver settings changed, restart to apply",
			"driver", next.Driver, "device", next.Device, "freq", next.Freq, "dma", next.DMA)
	}

	changed := false
	for i := range cur.Channels {
		if i >= len(next.Channels) {
			break
		}
		want := next.Channels[i]
		have := &cur.Channels[i]
		if want.Count != have.Count || want.GPIO != have.GPIO || want.StripType != have.StripType || want.Invert != have.Invert {
			slog.Warn("controller: channel layout changed, restart to apply",
				"channel", i, "gpio", want.GPIO, "count", want.Count, "strip_type", want.StripType)
		}
		if want.Brightness != have.Brightness {
			slog.Info("controller: brightness reloaded", "channel", i, "from", have.Brightness, "to", want.Brightness)
			have.Brightness = want.Brightness
			c.strip.SetBrightness(i, want.Brightness)
			changed = true
		}
	}
	st := c.snapshot()
	c.mu.Unlock()

	if changed {
		c.dirty.Store(true)
		c.bus.Publish(events.KindConfig, st)
	}
}
