package controller

import (
	"context"
	"log/slog"
	"time"

	"github.com/micro-nova/ws281x-go/internal/events"
	"github.com/micro-nova/ws281x-go/internal/models"
)

// Render sends the current buffers to the strip and waits for the frame to
// go out. The driver wait has no timeout of its own, so ctx bounds how long
// the caller blocks. A frame abandoned on ctx still completes in the
// background and its outcome is recorded and published like any other.
func (c *Controller) Render(ctx context.Context) (models.State, *models.AppError) {
	c.dirty.Store(false)

	type result struct {
		st  models.State
		err error
	}
	done := make(chan result, 1)
	go func() {
		err := c.strip.Show()
		done <- result{st: c.recordFrame(err), err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return models.State{}, toAppError(res.err)
		}
		return res.st, nil
	case <-ctx.Done():
		c.dirty.Store(true)
		return models.State{}, models.ErrUnavailable("render: " + ctx.Err().Error())
	}
}

// recordFrame updates the frame counters for one Show outcome and
// publishes it.
func (c *Controller) recordFrame(err error) models.State {
	c.mu.Lock()
	kind := events.KindFrame
	if err != nil {
		c.lastErr = err.Error()
		kind = events.KindError
	} else {
		c.frames++
	}
	st := c.snapshot()
	c.mu.Unlock()

	c.bus.Publish(kind, st)
	if err != nil {
		slog.Warn("controller: render failed", "driver", st.Driver, "err", err)
	}
	return st
}

// RunRenderLoop renders at most fps frames per second, and only when a
// write or brightness change has left the frame dirty. It returns when ctx
// is cancelled.
func (c *Controller) RunRenderLoop(ctx context.Context, fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	c.fps = fps
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.fps = 0
		c.mu.Unlock()
	}()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	slog.Info("controller: render loop started", "fps", fps)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.dirty.Load() {
				continue
			}
			// Errors are recorded in State and published; keep going.
			_, _ = c.Render(ctx)
		}
	}
}

// Dirty reports whether buffered changes have not been rendered yet.
func (c *Controller) Dirty() bool { return c.dirty.Load() }
