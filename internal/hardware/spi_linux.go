//go:build linux

package hardware

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

const (
	spiMOSIPin = 10 // BCM pin of SPI0 MOSI
	// nrzled sends each data bit as four SPI bits and only accepts this rate.
	spiClock = 2500 * physic.KiloHertz
)

// SPIDriver drives channel 0 through the SPI MOSI pin, NRZ-encoding frames
// with periph's nrzled device.
type SPIDriver struct {
	mu      sync.Mutex
	devName string   // spireg name, "" for the first port
	port    spi.Port // injected port, nil to open devName
	closer  spi.PortCloser
	dev     *nrzled.Dev
	limiter *rate.Limiter
	bufs    []*ledBuffer
	frame   []byte
	done    chan error // set while a frame is in flight
}

// NewSPI creates a driver for the named SPI port (e.g. "/dev/spidev0.0").
// maxFPS caps the frame rate; 0 means unlimited.
func NewSPI(devName string, maxFPS int) *SPIDriver {
	return &SPIDriver{devName: devName, limiter: newFrameLimiter(maxFPS)}
}

// NewSPIWithPort creates a driver writing to an already opened port. Pin
// and host checks are skipped; used with periph's spitest.
func NewSPIWithPort(p spi.Port, maxFPS int) *SPIDriver {
	return &SPIDriver{port: p, limiter: newFrameLimiter(maxFPS)}
}

func (d *SPIDriver) Name() string { return "spi" }

func (d *SPIDriver) Init(ctx context.Context, cfg *Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cfg.Channels[1].Count > 0 {
		return ErrDriver("init", StatusIllegalGPIO, fmt.Errorf("spi: only channel 0 is available"))
	}
	if cfg.Freq != DefaultFreq {
		return ErrDriver("init", StatusGeneric, fmt.Errorf("spi: only %d Hz is supported, got %d Hz", DefaultFreq, cfg.Freq))
	}
	ch := &cfg.Channels[0]
	if ch.StripType != StripGRB {
		// nrzled's SPI path emits GRB and drops any white byte.
		return ErrDriver("init", StatusGeneric, fmt.Errorf("spi: strip type %s not supported", ch.StripType))
	}
	if ch.Invert {
		return ErrDriver("init", StatusGeneric, fmt.Errorf("spi: inverted output is not supported"))
	}

	port := d.port
	if port == nil {
		if ch.GPIONum != spiMOSIPin {
			return ErrDriver("init", StatusIllegalGPIO, fmt.Errorf("spi: data must be on GPIO%d, got GPIO%d", spiMOSIPin, ch.GPIONum))
		}
		if strings.HasPrefix(d.devName, "/dev/") {
			if err := unix.Access(d.devName, unix.R_OK|unix.W_OK); err != nil {
				return ErrDriver("init", StatusGPIOInit, fmt.Errorf("spi: %s: %w", d.devName, err))
			}
		}
		if _, err := host.Init(); err != nil {
			return ErrDriver("init", StatusGPIOInit, fmt.Errorf("spi: host init: %w", err))
		}
		if gpioreg.ByName(fmt.Sprintf("GPIO%d", ch.GPIONum)) == nil {
			return ErrDriver("init", StatusIllegalGPIO, fmt.Errorf("spi: GPIO%d not found", ch.GPIONum))
		}
		pc, err := spireg.Open(d.devName)
		if err != nil {
			return ErrDriver("init", StatusHardwareFault, fmt.Errorf("spi: open %q: %w", d.devName, err))
		}
		d.closer = pc
		port = pc
	}

	dev, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: ch.Count,
		Channels:  ch.StripType.Colors(),
		Freq:      spiClock,
	})
	if err != nil {
		d.closePort()
		return ErrDriver("init", StatusHardwareFault, fmt.Errorf("spi: nrzled: %w", err))
	}
	bufs, err := allocChannels(cfg)
	if err != nil {
		d.closePort()
		return err
	}
	d.dev = dev
	d.bufs = bufs
	d.frame = make([]byte, 0, ch.Count*ch.StripType.Colors())
	slog.Info("spi: driver initialized", "port", dev.String(), "leds", ch.Count, "freq", cfg.Freq)
	return nil
}

// Render waits for any frame still in flight, encodes the buffer and hands
// it to a goroutine for transmission.
func (d *SPIDriver) Render(cfg *Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return ErrDriver("render", StatusGeneric, fmt.Errorf("spi: driver not initialized"))
	}
	if err := d.waitLocked(); err != nil {
		return ErrDriver("render", StatusHardwareFault, err)
	}

	ch := &cfg.Channels[0]
	// nrzled takes RGB and reorders to GRB itself.
	d.frame = Encode(d.frame[:0], ch.Leds[:ch.Count], StripRGB, ch.Brightness)

	done := make(chan error, 1)
	d.done = done
	dev, frame, limiter := d.dev, d.frame, d.limiter
	go func() {
		if err := limiter.Wait(context.Background()); err != nil {
			done <- err
			return
		}
		_, err := dev.Write(frame)
		done <- err
	}()
	return nil
}

func (d *SPIDriver) Wait(cfg *Config) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.waitLocked(); err != nil {
		return ErrDriver("wait", StatusHardwareFault, err)
	}
	return nil
}

func (d *SPIDriver) waitLocked() error {
	if d.done == nil {
		return nil
	}
	err := <-d.done
	d.done = nil
	return err
}

func (d *SPIDriver) Fini(cfg *Config) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.waitLocked(); err != nil {
		slog.Warn("spi: last frame failed", "err", err)
	}
	if d.dev != nil {
		if err := d.dev.Halt(); err != nil {
			slog.Warn("spi: halt failed", "err", err)
		}
		d.dev = nil
	}
	d.closePort()
	freeChannels(cfg, d.bufs)
	d.bufs = nil
	slog.Info("spi: driver finalized")
}

func (d *SPIDriver) closePort() {
	if d.closer != nil {
		if err := d.closer.Close(); err != nil {
			slog.Warn("spi: close failed", "err", err)
		}
		d.closer = nil
	}
}

var _ Driver = (*SPIDriver)(nil)
