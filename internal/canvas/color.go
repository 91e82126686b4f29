// Package canvas holds the persistent drawing buffer and composites it with
// live video frames.
package canvas

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is a BGR color as stored in OpenCV buffers.
type Color struct {
	B uint8
	G uint8
	R uint8
}

// Palette colors.
var (
	Black  = Color{0, 0, 0}
	White  = Color{255, 255, 255}
	Red    = Color{0, 0, 255}
	Green  = Color{0, 255, 0}
	Blue   = Color{255, 0, 0}
	Yellow = Color{0, 255, 255}
)

var palette = map[string]Color{
	"black":  Black,
	"white":  White,
	"red":    Red,
	"green":  Green,
	"blue":   Blue,
	"yellow": Yellow,
}

// PaletteNames lists the named colors in menu order.
var PaletteNames = []string{"red", "green", "blue", "yellow", "black", "white"}

// ParseColor accepts a palette name or a #rrggbb hex string.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := palette[s]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 || hex == s {
		return Color{}, fmt.Errorf("unknown color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// String returns the palette name or the #rrggbb form.
func (c Color) String() string {
	for _, name := range PaletteNames {
		if palette[name] == c {
			return name
		}
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBA converts c for gocv drawing calls.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0}
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
