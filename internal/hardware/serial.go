package hardware

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.bug.st/serial"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaud is the usual Adalight firmware speed.
	DefaultBaud = 115200
	// maxAdalightLEDs is the largest count the 16-bit header can describe.
	maxAdalightLEDs = 1 << 16
)

// SerialDriver drives channel 0 through a microcontroller running Adalight
// firmware on a serial port. The microcontroller does the strip timing; the
// host only sends RGB frames.
type SerialDriver struct {
	mu       sync.Mutex
	portName string
	baud     int
	w        io.WriteCloser
	limiter  *rate.Limiter
	bufs     []*ledBuffer
	frame    []byte
	done     chan error
}

// NewSerial creates a driver for the named serial port (e.g. "/dev/ttyACM0").
// maxFPS caps the frame rate; 0 means unlimited.
func NewSerial(portName string, baud, maxFPS int) *SerialDriver {
	if baud <= 0 {
		baud = DefaultBaud
	}
	return &SerialDriver{portName: portName, baud: baud, limiter: newFrameLimiter(maxFPS)}
}

// NewSerialWithWriter creates a driver writing frames to w instead of
// opening a port.
func NewSerialWithWriter(w io.WriteCloser, maxFPS int) *SerialDriver {
	return &SerialDriver{w: w, limiter: newFrameLimiter(maxFPS)}
}

func newFrameLimiter(maxFPS int) *rate.Limiter {
	if maxFPS <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(maxFPS), 1)
}

func (d *SerialDriver) Name() string { return "serial" }

func (d *SerialDriver) Init(ctx context.Context, cfg *Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cfg.Channels[1].Count > 0 {
		return ErrDriver("init", StatusIllegalGPIO, fmt.Errorf("serial: only channel 0 is available"))
	}
	ch := &cfg.Channels[0]
	if ch.Count > maxAdalightLEDs {
		return ErrDriver("init", StatusInvalidStringLength, fmt.Errorf("serial: %d leds exceeds %d", ch.Count, maxAdalightLEDs))
	}
	if ch.StripType.Colors() != 3 {
		return ErrDriver("init", StatusGeneric, fmt.Errorf("serial: adalight carries RGB only, got %s", ch.StripType))
	}
	if ch.Invert {
		return ErrDriver("init", StatusGeneric, fmt.Errorf("serial: inverted output is not supported"))
	}

	if d.w == nil {
		port, err := serial.Open(d.portName, &serial.Mode{
			BaudRate: d.baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		})
		if err != nil {
			return ErrDriver("init", StatusHardwareFault, fmt.Errorf("serial: open %s: %w", d.portName, err))
		}
		d.w = port
	}

	bufs, err := allocChannels(cfg)
	if err != nil {
		d.closePort()
		return err
	}
	d.bufs = bufs
	d.frame = make([]byte, 0, 6+ch.Count*3)
	slog.Info("serial: driver initialized", "port", d.portName, "baud", d.baud, "leds", ch.Count)
	return nil
}

// adalightHeader returns the 6-byte frame header for count LEDs.
func adalightHeader(count int) []byte {
	n := count - 1
	if n < 0 {
		n = 0
	}
	hi, lo := byte(n>>8), byte(n)
	return []byte{'A', 'd', 'a', hi, lo, hi ^ lo ^ 0x55}
}

func (d *SerialDriver) Render(cfg *Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.w == nil {
		return ErrDriver("render", StatusGeneric, fmt.Errorf("serial: driver not initialized"))
	}
	if err := d.waitLocked(); err != nil {
		return ErrDriver("render", StatusHardwareFault, err)
	}

	ch := &cfg.Channels[0]
	if ch.Count == 0 {
		return nil
	}
	// The firmware applies the strip's own order, so always send RGB.
	d.frame = append(d.frame[:0], adalightHeader(ch.Count)...)
	d.frame = Encode(d.frame, ch.Leds[:ch.Count], StripRGB, ch.Brightness)

	done := make(chan error, 1)
	d.done = done
	w, frame, limiter := d.w, d.frame, d.limiter
	go func() {
		if err := limiter.Wait(context.Background()); err != nil {
			done <- err
			return
		}
		_, err := w.Write(frame)
		done <- err
	}()
	return nil
}

func (d *SerialDriver) Wait(cfg *Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.waitLocked(); err != nil {
		return ErrDriver("wait", StatusHardwareFault, err)
	}
	return nil
}

func (d *SerialDriver) waitLocked() error {
	if d.done == nil {
		return nil
	}
	err := <-d.done
	d.done = nil
	return err
}

func (d *SerialDriver) Fini(cfg *Config) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.waitLocked(); err != nil {
		slog.Warn("serial: last frame failed", "err", err)
	}
	d.closePort()
	freeChannels(cfg, d.bufs)
	d.bufs = nil
	slog.Info("serial: driver finalized")
}

func (d *SerialDriver) closePort() {
	if d.w != nil {
		if err := d.w.Close(); err != nil {
			slog.Warn("serial: close failed", "err", err)
		}
		d.w = nil
	}
}

var _ Driver = (*SerialDriver)(nil)
