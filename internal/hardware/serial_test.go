package hardware_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/micro-nova/ws281x-go/internal/hardware"
)

// recorder is an io.WriteCloser capturing every write.
type recorder struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
	fail   error
}

func (r *recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return 0, r.fail
	}
	return r.buf.Write(p)
}

func (r *recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recorder) bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.buf.Bytes()...)
}

func TestSerialAdalightFrame(t *testing.T) {
	rec := &recorder{}
	d := hardware.NewSerialWithWriter(rec, 0)
	cfg := &hardware.Config{Freq: hardware.DefaultFreq}
	cfg.Channels[0] = hardware.ChannelConfig{Count: 2, StripType: hardware.StripGRB, Brightness: 255}
	if err := d.Init(context.Background(), cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	cfg.Channels[0].Leds[0] = hardware.RGB(10, 20, 30)
	cfg.Channels[0].Leds[1] = hardware.RGB(40, 50, 60)

	if err := d.Render(cfg); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := d.Wait(cfg); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	want := []byte{'A', 'd', 'a', 0x00, 0x01, 0x54, 10, 20, 30, 40, 50, 60}
	if got := rec.bytes(); !bytes.Equal(got, want) {
		t.Errorf("frame = %v, want %v", got, want)
	}

	d.Fini(cfg)
	if !rec.closed {
		t.Error("Fini did not close the port")
	}
	if cfg.Channels[0].Leds != nil {
		t.Error("Fini left the buffer installed")
	}
}

func TestSerialWriteFailureSurfacesOnWait(t *testing.T) {
	rec := &recorder{fail: errors.New("unplugged")}
	d := hardware.NewSerialWithWriter(rec, 0)
	cfg := &hardware.Config{}
	cfg.Channels[0] = hardware.ChannelConfig{Count: 1, Brightness: 255}
	if err := d.Init(context.Background(), cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer d.Fini(cfg)

	if err := d.Render(cfg); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := d.Wait(cfg); !errors.Is(err, hardware.ErrHardwareFault) {
		t.Errorf("Wait = %v, want ErrHardwareFault", err)
	}
	if err := d.Wait(cfg); err != nil {
		t.Errorf("second Wait = %v, want nil", err)
	}
}

func TestSerialRejectsUnsupportedConfigs(t *testing.T) {
	cfg := &hardware.Config{}
	cfg.Channels[1] = hardware.ChannelConfig{Count: 1}
	if err := hardware.NewSerialWithWriter(&recorder{}, 0).Init(context.Background(), cfg); !errors.Is(err, hardware.ErrIllegalGPIO) {
		t.Errorf("Init with channel 1 = %v, want ErrIllegalGPIO", err)
	}

	cfg = &hardware.Config{}
	cfg.Channels[0] = hardware.ChannelConfig{Count: 1, StripType: hardware.StripGRBW}
	if err := hardware.NewSerialWithWriter(&recorder{}, 0).Init(context.Background(), cfg); !errors.Is(err, hardware.ErrGeneric) {
		t.Errorf("Init with RGBW strip = %v, want ErrGeneric", err)
	}
	cfg = &hardware.Config{}
	cfg.Channels[0] = hardware.ChannelConfig{Count: 1, StripType: hardware.StripRGB, Invert: true}
	if err := hardware.NewSerialWithWriter(&recorder{}, 0).Init(context.Background(), cfg); !errors.Is(err, hardware.ErrGeneric) {
		t.Errorf("Init with inverted output = %v, want ErrGeneric", err)
	}
	if cfg.Channels[0].Leds != nil {
		t.Error("rejected Init installed a buffer")
	}
}
