package models

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/micro-nova/ws281x-go/internal/hardware"
)

// ChannelUpdate is the body of PATCH /api/channels/{ch}.
type ChannelUpdate struct {
	Brightness *int `json:"brightness,omitempty"` // 0-255
}

// LedsUpdate is the body of PUT /api/channels/{ch}/leds. Colors are written
// starting at Offset; LEDs outside the range keep their color.
type LedsUpdate struct {
	Offset int      `json:"offset"`
	Colors []string `json:"colors"`
	Render bool     `json:"render,omitempty"` // render right after writing
}

// FillRequest is the body of POST /api/channels/{ch}/fill.
type FillRequest struct {
	Color  string `json:"color"`
	Render bool   `json:"render,omitempty"`
}

// ParseColor accepts "#rrggbb", "#wwrrggbb" (with or without '#') or an
// SVG color name such as "orange".
func ParseColor(s string) (hardware.RawColor, error) {
	s = strings.TrimSpace(s)
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return hardware.RGB(c.R, c.G, c.B), nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	return hardware.RawColor(v), nil
}

// FormatColor renders c as "#wwrrggbb".
func FormatColor(c hardware.RawColor) string { return c.String() }
