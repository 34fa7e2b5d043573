package hardware_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/micro-nova/ws281x-go/internal/hardware"
)

func newMockConfig(t *testing.T, m *hardware.Mock) *hardware.Config {
	t.Helper()
	cfg := &hardware.Config{Freq: hardware.DefaultFreq, DMANum: hardware.DefaultDMA}
	cfg.Channels[0] = hardware.ChannelConfig{GPIONum: 18, Count: 4, Brightness: 255}
	if err := m.Init(context.Background(), cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return cfg
}

func TestMockInitAllocates(t *testing.T) {
	m := hardware.NewMock()
	cfg := newMockConfig(t, m)
	if len(cfg.Channels[0].Leds) != 4 {
		t.Errorf("channel 0 buffer = %d leds, want 4", len(cfg.Channels[0].Leds))
	}
	if len(cfg.Channels[1].Leds) != 0 {
		t.Errorf("channel 1 buffer = %d leds, want 0", len(cfg.Channels[1].Leds))
	}
	m.Fini(cfg)
	if cfg.Channels[0].Leds != nil {
		t.Error("Fini left the buffer installed")
	}
}

func TestMockLastFrameAppliesBrightness(t *testing.T) {
	m := hardware.NewMock()
	cfg := newMockConfig(t, m)
	cfg.Channels[0].Leds[1] = hardware.RGBW(255, 255, 0, 255)
	cfg.Channels[0].Brightness = 127

	if err := m.Render(cfg); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got, want := m.LastFrame(0)[1], hardware.RGBW(127, 127, 0, 127); got != want {
		t.Errorf("LastFrame(0)[1] = %v, want %v", got, want)
	}
}

func TestMockFailures(t *testing.T) {
	m := hardware.NewMock()
	m.SetFailInit(hardware.StatusGPIOInit)
	if err := m.Init(context.Background(), &hardware.Config{}); !errors.Is(err, hardware.ErrGPIOInit) {
		t.Errorf("Init = %v, want ErrGPIOInit", err)
	}
	m.SetFailInit(hardware.StatusSuccess)
	cfg := newMockConfig(t, m)

	m.SetFailRender(hardware.StatusHardwareFault)
	if err := m.Render(cfg); !errors.Is(err, hardware.ErrHardwareFault) {
		t.Errorf("Render = %v, want ErrHardwareFault", err)
	}
	m.SetFailRender(hardware.StatusSuccess)
	if err := m.Render(cfg); err != nil {
		t.Errorf("Render after clearing failure = %v", err)
	}
	if m.Renders() != 2 {
		t.Errorf("Renders() = %d, want 2", m.Renders())
	}
}

func TestMockDetectsOverlap(t *testing.T) {
	m := hardware.NewMockWithDelay(20 * time.Millisecond)
	cfg := newMockConfig(t, m)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Render(cfg)
		}()
	}
	wg.Wait()
	if m.Overlaps() == 0 {
		t.Error("unserialized renders were not reported as overlapping")
	}
}
