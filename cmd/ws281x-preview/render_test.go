package main

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/micro-nova/ws281x-go/internal/hardware"
	"github.com/micro-nova/ws281x-go/internal/models"
)

func TestNewRowScalesBrightness(t *testing.T) {
	ch := models.Channel{Index: 0, GPIO: 18, Count: 2, Brightness: 127, StripType: hardware.StripGRB}
	row, err := NewRow(ch, []string{"#00ff0000", "#000000ff"}, true)
	if err != nil {
		t.Fatalf("NewRow: %v", err)
	}
	// 255*128>>8 = 127
	if want := (color.RGBA{R: 127, A: 0xFF}); row.Leds[0] != want {
		t.Errorf("led 0 = %v, want %v", row.Leds[0], want)
	}
	if want := (color.RGBA{B: 127, A: 0xFF}); row.Leds[1] != want {
		t.Errorf("led 1 = %v, want %v", row.Leds[1], want)
	}

	raw, _ := NewRow(ch, []string{"#00ff0000"}, false)
	if want := (color.RGBA{R: 0xFF, A: 0xFF}); raw.Leds[0] != want {
		t.Errorf("raw led = %v, want %v", raw.Leds[0], want)
	}
}

func TestNewRowAddsWhite(t *testing.T) {
	ch := models.Channel{Brightness: 255}
	row, err := NewRow(ch, []string{"#80f00000"}, true)
	if err != nil {
		t.Fatalf("NewRow: %v", err)
	}
	if want := (color.RGBA{R: 0xFF, G: 0x80, B: 0x80, A: 0xFF}); row.Leds[0] != want {
		t.Errorf("led = %v, want %v", row.Leds[0], want)
	}
}

func TestNewRowBadColor(t *testing.T) {
	if _, err := NewRow(models.Channel{}, []string{"nope"}, true); err == nil {
		t.Error("NewRow accepted an invalid color")
	}
}

func TestRenderDrawsLeds(t *testing.T) {
	rows := []Row{{Label: "ch0", Leds: []color.RGBA{{R: 0xFF, A: 0xFF}, {G: 0xFF, A: 0xFF}}}}
	img := Render(models.State{Driver: "mock"}, rows)

	// First LED sits below the header and row label.
	x := margin + ledSize/2
	y := margin + 2*labelH + ledSize/2
	if got := img.RGBAAt(x, y); got != rows[0].Leds[0] {
		t.Errorf("pixel at led 0 = %v, want %v", got, rows[0].Leds[0])
	}
	x += ledSize + ledGap
	if got := img.RGBAAt(x, y); got != rows[0].Leds[1] {
		t.Errorf("pixel at led 1 = %v, want %v", got, rows[0].Leds[1])
	}
}

func TestRenderWrapsLongChannels(t *testing.T) {
	short := Render(models.State{}, []Row{{Leds: make([]color.RGBA, ledsPerRow)}})
	long := Render(models.State{}, []Row{{Leds: make([]color.RGBA, ledsPerRow+1)}})
	if got, want := long.Bounds().Dy()-short.Bounds().Dy(), ledSize+ledGap; got != want {
		t.Errorf("extra height for a wrapped row = %d, want %d", got, want)
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strip.png")
	img := Render(models.State{Driver: "mock"}, nil)
	if err := writePNG(path, img); err != nil {
		t.Fatalf("writePNG: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
}
