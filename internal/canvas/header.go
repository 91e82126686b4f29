package canvas

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"
)

// Header is a banner image shown above the drawing.
type Header struct {
	src    gocv.Mat
	scaled gocv.Mat
	width  int
}

// LoadHeader reads an image file for use as a header.
func LoadHeader(path string) (*Header, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("header image: %w", err)
	}

	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return nil, fmt.Errorf("header image %s: cannot decode", path)
	}

	return &Header{src: img, scaled: gocv.NewMat()}, nil
}

// NewHeader wraps an existing image. The header takes a copy of img.
func NewHeader(img gocv.Mat) *Header {
	return &Header{src: img.Clone(), scaled: gocv.NewMat()}
}

// Stack writes the header, resized to body's width and HeaderHeight tall,
// followed by body into dst.
func (h *Header) Stack(body gocv.Mat, dst *gocv.Mat) {
	if h.width != body.Cols() || h.scaled.Empty() {
		gocv.Resize(h.src, &h.scaled, image.Pt(body.Cols(), HeaderHeight), 0, 0, gocv.InterpolationArea)
		h.width = body.Cols()
	}
	gocv.Vconcat(h.scaled, body, dst)
}

// Close releases the header images.
func (h *Header) Close() error {
	h.scaled.Close()
	return h.src.Close()
}
