package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/micro-nova/ws281x-go/internal/hardware"
	"github.com/micro-nova/ws281x-go/internal/models"
)

// Layout in pixels.
const (
	ledSize    = 12
	ledGap     = 2
	ledsPerRow = 60
	margin     = 8
	labelH     = 16 // basicfont.Face7x13 plus spacing
	minWidth   = 320
)

var (
	background = color.RGBA{0x10, 0x10, 0x10, 0xFF}
	labelColor = color.RGBA{0xDD, 0xDD, 0xDD, 0xFF}
)

// Row is one channel ready to draw.
type Row struct {
	Label string
	Leds  []color.RGBA
}

// NewRow converts a channel's "#wwrrggbb" colors for display. With scale
// set, colors are dimmed by the channel brightness the way the driver does.
// The white component is added onto RGB.
func NewRow(ch models.Channel, colors []string, scale bool) (Row, error) {
	row := Row{
		Label: fmt.Sprintf("ch%d GPIO%d %s %d leds brightness %d", ch.Index, ch.GPIO, ch.StripType, ch.Count, ch.Brightness),
		Leds:  make([]color.RGBA, len(colors)),
	}
	for i, s := range colors {
		c, err := models.ParseColor(s)
		if err != nil {
			return Row{}, fmt.Errorf("channel %d led %d: %w", ch.Index, i, err)
		}
		r, g, b, w := c.R(), c.G(), c.B(), c.W()
		if scale {
			r, g, b, w = hardware.Scale(r, ch.Brightness), hardware.Scale(g, ch.Brightness),
				hardware.Scale(b, ch.Brightness), hardware.Scale(w, ch.Brightness)
		}
		row.Leds[i] = color.RGBA{R: addSat(r, w), G: addSat(g, w), B: addSat(b, w), A: 0xFF}
	}
	return row, nil
}

func addSat(a, b uint8) uint8 {
	if s := int(a) + int(b); s < 0xFF {
		return uint8(s)
	}
	return 0xFF
}

// rowLines returns how many lines of LEDs a row wraps onto.
func rowLines(n int) int {
	if n == 0 {
		return 1
	}
	return (n + ledsPerRow - 1) / ledsPerRow
}

// Render draws a header line followed by every row.
func Render(state models.State, rows []Row) *image.RGBA {
	width := max(2*margin+ledsPerRow*(ledSize+ledGap), minWidth)
	height := margin + labelH
	for _, r := range rows {
		height += labelH + rowLines(len(r.Leds))*(ledSize+ledGap) + margin
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	y := margin + labelH
	header := fmt.Sprintf("%s  frames %d", state.Driver, state.Frames)
	if state.LastError != "" {
		header += "  error: " + state.LastError
	}
	drawText(img, margin, y-4, header, labelColor)

	for _, r := range rows {
		y += labelH
		drawText(img, margin, y-4, r.Label, labelColor)
		for i, c := range r.Leds {
			x0 := margin + (i%ledsPerRow)*(ledSize+ledGap)
			y0 := y + (i/ledsPerRow)*(ledSize+ledGap)
			draw.Draw(img, image.Rect(x0, y0, x0+ledSize, y0+ledSize), &image.Uniform{c}, image.Point{}, draw.Src)
		}
		y += rowLines(len(r.Leds))*(ledSize+ledGap) + margin
	}
	return img
}

// drawText draws text with its baseline at (x, y).
func drawText(img draw.Image, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// writePNG writes the image to a temp file and renames it over path, so a
// viewer never sees a partial file.
func writePNG(path string, img image.Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".preview-*.png")
	if err != nil {
		return err
	}
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
