package canvas

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ayusman/lukis/internal/stroke"
)

// Canvas is the persistent buffer that accumulates strokes across frames.
// It is not safe for concurrent use; the painter serialises access.
type Canvas struct {
	buf        gocv.Mat
	size       stroke.Size
	background Color
}

// New allocates a canvas of the given size filled with background.
func New(size stroke.Size, background Color) *Canvas {
	c := &Canvas{
		buf:        gocv.NewMatWithSize(size.Height, size.Width, gocv.MatTypeCV8UC3),
		size:       size,
		background: background,
	}
	c.Clear()
	return c
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() stroke.Size {
	return c.size
}

// Background returns the color of an empty canvas.
func (c *Canvas) Background() Color {
	return c.background
}

// Draw renders seg with the brush. Eraser strokes paint the background.
func (c *Canvas) Draw(seg stroke.Segment, b Brush) {
	col, width := b.Stroke(c.background)
	if width <= 0 {
		return
	}
	gocv.Line(&c.buf,
		image.Pt(seg.From.X, seg.From.Y),
		image.Pt(seg.To.X, seg.To.Y),
		col.RGBA(), width)
}

// Clear wipes every stroke.
func (c *Canvas) Clear() {
	bg := c.background
	c.buf.SetTo(gocv.NewScalar(float64(bg.B), float64(bg.G), float64(bg.R), 0))
}

// At returns the color at pixel (x, y).
func (c *Canvas) At(x, y int) Color {
	v := c.buf.GetVecbAt(y, x)
	return Color{B: v[0], G: v[1], R: v[2]}
}

// Mat exposes the underlying buffer for compositing. Callers must not close it.
func (c *Canvas) Mat() gocv.Mat {
	return c.buf
}

// PNG encodes the canvas.
func (c *Canvas) PNG() ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.PNGFileExt, c.buf)
	if err != nil {
		return nil, fmt.Errorf("encode canvas: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases native memory released by Close.
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// Close releases the buffer.
func (c *Canvas) Close() error {
	return c.buf.Close()
}
