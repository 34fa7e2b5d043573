package hardware_test

import (
	"bytes"
	"testing"

	"github.com/micro-nova/ws281x-go/internal/hardware"
)

func TestScale(t *testing.T) {
	tests := []struct {
		v, b, want uint8
	}{
		{255, 255, 255},
		{128, 255, 128},
		{255, 0, 0},
		{0, 255, 0},
		{255, 127, 127},
		{200, 63, 50},
	}
	for _, tt := range tests {
		if got := hardware.Scale(tt.v, tt.b); got != tt.want {
			t.Errorf("Scale(%d, %d) = %d, want %d", tt.v, tt.b, got, tt.want)
		}
	}
}

func TestRawColorComponents(t *testing.T) {
	c := hardware.RGBW(0x11, 0x22, 0x33, 0x44)
	if uint32(c) != 0x44112233 {
		t.Fatalf("RGBW packed = %#08x, want 0x44112233", uint32(c))
	}
	if c.R() != 0x11 || c.G() != 0x22 || c.B() != 0x33 || c.W() != 0x44 {
		t.Errorf("components = %02x %02x %02x %02x", c.R(), c.G(), c.B(), c.W())
	}
	if s := c.String(); s != "#44112233" {
		t.Errorf("String() = %q", s)
	}
}

func TestEncodeOrders(t *testing.T) {
	leds := []hardware.RawColor{hardware.RGBW(1, 2, 3, 4)}
	tests := []struct {
		order hardware.StripType
		want  []byte
	}{
		{hardware.StripRGB, []byte{1, 2, 3}},
		{hardware.StripGRB, []byte{2, 1, 3}},
		{hardware.StripBGR, []byte{3, 2, 1}},
		{hardware.StripBRG, []byte{3, 1, 2}},
		{hardware.StripGRBW, []byte{2, 1, 3, 4}},
		{hardware.StripRGBW, []byte{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		got := hardware.Encode(nil, leds, tt.order, 255)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("Encode(%s) = %v, want %v", tt.order, got, tt.want)
		}
	}
}

func TestEncodeBrightness(t *testing.T) {
	leds := []hardware.RawColor{hardware.RGB(255, 128, 0)}
	got := hardware.Encode(nil, leds, hardware.StripRGB, 127)
	if want := []byte{127, 64, 0}; !bytes.Equal(got, want) {
		t.Errorf("Encode at 127 = %v, want %v", got, want)
	}
}

func TestEncodeChannelIgnoresInvert(t *testing.T) {
	ch := hardware.ChannelConfig{
		Count:      1,
		StripType:  hardware.StripRGB,
		Brightness: 255,
		Invert:     true,
		Leds:       []hardware.RawColor{hardware.RGB(255, 128, 0)},
	}
	if got, want := hardware.EncodeChannel(nil, &ch), []byte{255, 128, 0}; !bytes.Equal(got, want) {
		t.Errorf("EncodeChannel with Invert = %v, want %v", got, want)
	}
}

func TestEncodeChannelUsesCount(t *testing.T) {
	ch := hardware.ChannelConfig{
		Count:      2,
		StripType:  hardware.StripGRB,
		Brightness: 255,
		Leds:       []hardware.RawColor{hardware.RGB(1, 2, 3), hardware.RGB(4, 5, 6), hardware.RGB(7, 8, 9)},
	}
	got := hardware.EncodeChannel([]byte{0xAA}, &ch)
	if want := []byte{0xAA, 2, 1, 3, 5, 4, 6}; !bytes.Equal(got, want) {
		t.Errorf("EncodeChannel = %v, want %v", got, want)
	}
	ch.Count = 0
	if got := hardware.EncodeChannel(nil, &ch); len(got) != 0 {
		t.Errorf("EncodeChannel on unused channel = %v", got)
	}
}

func TestParseStripType(t *testing.T) {
	for _, s := range []string{"grb", "RGB", " bgr ", "GRBW"} {
		st, err := hardware.ParseStripType(s)
		if err != nil {
			t.Errorf("ParseStripType(%q): %v", s, err)
			continue
		}
		var back hardware.StripType
		text, _ := st.MarshalText()
		if err := back.UnmarshalText(text); err != nil || back != st {
			t.Errorf("text round trip of %q = %v, %v", s, back, err)
		}
	}
	if _, err := hardware.ParseStripType("XYZ"); err == nil {
		t.Error("ParseStripType(XYZ) succeeded")
	}
	if n := hardware.StripGRBW.Colors(); n != 4 {
		t.Errorf("StripGRBW.Colors() = %d, want 4", n)
	}
}
