package controller

import (
	"context"
	"fmt"

	"github.com/micro-nova/ws281x-go/internal/hardware"
	"github.com/micro-nova/ws281x-go/internal/models"
)

// GetLeds returns the colors currently in a channel's buffer.
func (c *Controller) GetLeds(ch int) (models.Leds, *models.AppError) {
	if err := checkChannel(ch); err != nil {
		return models.Leds{}, err
	}
	view := c.strip.Leds(ch)
	out := models.Leds{Channel: ch, Colors: make([]string, view.Len())}
	for i := range out.Colors {
		out.Colors[i] = models.FormatColor(view.At(i))
	}
	return out, nil
}

// SetLeds writes colors into a channel starting at upd.Offset. Colors are
// all parsed before any LED is touched.
func (c *Controller) SetLeds(ctx context.Context, ch int, upd models.LedsUpdate) (models.State, *models.AppError) {
	if err := checkChannel(ch); err != nil {
		return models.State{}, err
	}
	colors, appErr := parseColors(upd.Colors)
	if appErr != nil {
		return models.State{}, appErr
	}
	count := c.strip.Count(ch)
	if upd.Offset < 0 || upd.Offset > count || len(colors) > count-upd.Offset {
		return models.State{}, models.ErrBadRequest(
			fmt.Sprintf("offset %d with %d colors does not fit channel %d (%d leds)", upd.Offset, len(colors), ch, count))
	}

	c.strip.Update(ch, func(leds []hardware.RawColor) {
		copy(leds[upd.Offset:], colors)
	})
	return c.afterWrite(ctx, upd.Render)
}

// Fill sets every LED of a channel to one color.
func (c *Controller) Fill(ctx context.Context, ch int, req models.FillRequest) (models.State, *models.AppError) {
	if err := checkChannel(ch); err != nil {
		return models.State{}, err
	}
	color, err := models.ParseColor(req.Color)
	if err != nil {
		return models.State{}, models.ErrBadRequest(err.Error())
	}
	c.strip.Update(ch, func(leds []hardware.RawColor) {
		for i := range leds {
			leds[i] = color
		}
	})
	return c.afterWrite(ctx, req.Render)
}

// Clear blanks every active channel and renders the dark frame.
func (c *Controller) Clear(ctx context.Context) (models.State, *models.AppError) {
	for _, ch := range c.strip.Channels() {
		c.strip.Update(ch, func(leds []hardware.RawColor) {
			clear(leds)
		})
	}
	return c.afterWrite(ctx, true)
}

// afterWrite renders immediately when asked to, otherwise leaves the frame
// to the render loop.
func (c *Controller) afterWrite(ctx context.Context, render bool) (models.State, *models.AppError) {
	if render {
		return c.Render(ctx)
	}
	c.dirty.Store(true)
	return c.State(), nil
}

func parseColors(in []string) ([]hardware.RawColor, *models.AppError) {
	out := make([]hardware.RawColor, len(in))
	for i, s := range in {
		col, err := models.ParseColor(s)
		if err != nil {
			return nil, &models.AppError{
				Code:    "BAD_REQUEST",
				Message: err.Error(),
				Field:   fmt.Sprintf("colors[%d]", i),
				Status:  400,
			}
		}
		out[i] = col
	}
	return out, nil
}
