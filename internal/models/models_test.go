package models_test

import (
	"testing"

	"github.com/micro-nova/ws281x-go/internal/hardware"
	"github.com/micro-nova/ws281x-go/internal/models"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want hardware.RawColor
	}{
		{"#ff8000", hardware.RGB(0xff, 0x80, 0x00)},
		{"00ff00", hardware.RGB(0, 0xff, 0)},
		{"#80ff0000", hardware.RGBW(0xff, 0, 0, 0x80)},
		{"red", hardware.RGB(0xff, 0, 0)},
		{" Orange ", hardware.RGB(0xff, 0xa5, 0x00)},
		{"black", 0},
	}
	for _, tt := range tests {
		got, err := models.ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseColorInvalid(t *testing.T) {
	for _, in := range []string{"", "#12345", "#gggggg", "notacolor", "#1234567890"} {
		if _, err := models.ParseColor(in); err == nil {
			t.Errorf("ParseColor(%q) succeeded", in)
		}
	}
}

func TestFormatColorRoundTrip(t *testing.T) {
	c := hardware.RGBW(1, 2, 3, 4)
	got, err := models.ParseColor(models.FormatColor(c))
	if err != nil || got != c {
		t.Errorf("round trip of %v = %v, %v", c, got, err)
	}
}

func TestStateDeepCopy(t *testing.T) {
	s := models.State{Channels: []models.Channel{{Index: 0, Brightness: 10}}}
	cp := s.DeepCopy()
	cp.Channels[0].Brightness = 99
	if s.Channels[0].Brightness != 10 {
		t.Error("DeepCopy shares the channel slice")
	}
}

func TestDefaultStripConfig(t *testing.T) {
	cfg := models.DefaultStripConfig()
	if len(cfg.Channels) != hardware.RpiPwmChannels {
		t.Fatalf("channels = %d, want %d", len(cfg.Channels), hardware.RpiPwmChannels)
	}
	if cfg.Channels[0].Count == 0 {
		t.Error("default channel 0 has no leds")
	}
	cp := cfg.DeepCopy()
	cp.Channels[0].Count = 1
	if cfg.Channels[0].Count == 1 {
		t.Error("DeepCopy shares the channel slice")
	}
}
