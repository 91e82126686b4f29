package canvas

import "fmt"

// Mode selects how the canvas is presented.
type Mode string

const (
	// ModeOverlay draws over the mirrored camera feed.
	ModeOverlay Mode = "overlay"
	// ModeWhiteboard draws on a plain white board; the camera is only used for tracking.
	ModeWhiteboard Mode = "whiteboard"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeOverlay, ModeWhiteboard:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want %s or %s)", s, ModeOverlay, ModeWhiteboard)
}

// Background is the color of an empty canvas in this mode. Erasing paints it.
func (m Mode) Background() Color {
	if m == ModeWhiteboard {
		return White
	}
	return Black
}

// Default stroke widths in pixels.
const (
	OverlayThickness    = 15
	WhiteboardThickness = 5
	EraserThickness     = 50
)

// Brush is the current drawing mode.
type Brush struct {
	Color           Color `json:"color"`
	Eraser          bool  `json:"eraser"`
	Thickness       int   `json:"thickness"`
	EraserThickness int   `json:"eraser_thickness"`
}

// DefaultBrush returns the starting brush for a mode: red 15 px over the
// camera, black 5 px on the whiteboard.
func DefaultBrush(m Mode) Brush {
	if m == ModeWhiteboard {
		return Brush{Color: Black, Thickness: WhiteboardThickness, EraserThickness: EraserThickness}
	}
	return Brush{Color: Red, Thickness: OverlayThickness, EraserThickness: EraserThickness}
}

// WithColor selects c and turns the eraser off.
func (b Brush) WithColor(c Color) Brush {
	b.Color = c
	b.Eraser = false
	return b
}

// Toggled flips the eraser.
func (b Brush) Toggled() Brush {
	b.Eraser = !b.Eraser
	return b
}

// Stroke returns the color and width to draw with against background bg.
func (b Brush) Stroke(bg Color) (Color, int) {
	if b.Eraser {
		return bg, b.EraserThickness
	}
	return b.Color, b.Thickness
}
