package canvas

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ayusman/lukis/internal/stroke"
)

// HeaderHeight is the height of the header strip stacked above the output.
const HeaderHeight = 100

// Compositor turns a live frame and the canvas into the displayed image.
type Compositor struct {
	Mode    Mode
	Header  *Header
	Display stroke.Size // zero keeps the canvas size
}

// Render writes the composite of frame and c into dst.
//
// In overlay mode the frame (scaled to the canvas if needed) and the canvas
// are summed with saturation, so strokes show over the video and black
// canvas pixels are transparent. In whiteboard mode only the canvas is shown.
// The header, if any, is stacked on top and the result is fitted to Display.
func (p *Compositor) Render(frame gocv.Mat, c *Canvas, dst *gocv.Mat) error {
	return p.RenderWith(frame, c, dst, nil)
}

// RenderWith is Render with a decorate step that draws on the composite in
// canvas coordinates, before the header is stacked and the result fitted.
func (p *Compositor) RenderWith(frame gocv.Mat, c *Canvas, dst *gocv.Mat, decorate func(img *gocv.Mat)) error {
	composed := gocv.NewMat()
	defer composed.Close()

	switch p.Mode {
	case ModeWhiteboard:
		src := c.Mat()
		src.CopyTo(&composed)
	default:
		if err := overlay(frame, c, &composed); err != nil {
			return err
		}
	}

	if decorate != nil {
		decorate(&composed)
	}

	if p.Header != nil {
		stacked := gocv.NewMat()
		defer stacked.Close()
		p.Header.Stack(composed, &stacked)
		stacked.CopyTo(&composed)
	}

	Fit(composed, dst, p.Display)
	return nil
}

func overlay(frame gocv.Mat, c *Canvas, dst *gocv.Mat) error {
	if frame.Empty() {
		return fmt.Errorf("compose: empty frame")
	}

	size := c.Size()
	if frame.Cols() == size.Width && frame.Rows() == size.Height {
		gocv.Add(frame, c.Mat(), dst)
		return nil
	}

	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(frame, &scaled, image.Pt(size.Width, size.Height), 0, 0, gocv.InterpolationLinear)
	gocv.Add(scaled, c.Mat(), dst)
	return nil
}

// Fit resizes src into dst. A zero size, or one equal to src, copies.
func Fit(src gocv.Mat, dst *gocv.Mat, size stroke.Size) {
	if size.Width <= 0 || size.Height <= 0 || (src.Cols() == size.Width && src.Rows() == size.Height) {
		src.CopyTo(dst)
		return
	}
	gocv.Resize(src, dst, image.Pt(size.Width, size.Height), 0, 0, gocv.InterpolationLinear)
}

// Mirror flips frame horizontally in place so the user sees a mirror image.
func Mirror(frame *gocv.Mat) {
	gocv.Flip(*frame, frame, 1)
}
