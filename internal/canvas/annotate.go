package canvas

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/lukis/internal/detector"
	"github.com/ayusman/lukis/internal/stroke"
)

var (
	jointColor = color.RGBA{R: 255, G: 0, B: 255}
	boneColor  = color.RGBA{R: 255, G: 255, B: 255}
	fpsColor   = color.RGBA{R: 255, G: 0, B: 255}
)

// DrawHand draws the landmark skeleton onto img.
func DrawHand(img *gocv.Mat, lms []detector.Landmark) {
	if len(lms) < detector.NumLandmarks {
		return
	}
	for _, c := range detector.HandConnections {
		a, b := lms[c[0]], lms[c[1]]
		gocv.Line(img, image.Pt(a.X, a.Y), image.Pt(b.X, b.Y), boneColor, 2)
	}
	for _, lm := range lms {
		gocv.Circle(img, image.Pt(lm.X, lm.Y), 4, jointColor, -1)
	}
}

// DrawCursor marks the brush position with a ring in the brush color.
func DrawCursor(img *gocv.Mat, p stroke.Point, b Brush, bg Color) {
	col, width := b.Stroke(bg)
	radius := max(width/2, 4)
	if b.Eraser {
		// Erasing paints the background, so outline in the contrasting palette color.
		col = White
		if bg == White {
			col = Black
		}
	}
	gocv.Circle(img, image.Pt(p.X, p.Y), radius, col.RGBA(), 2)
}

// DrawFPS writes the frame rate in the top-left corner.
func DrawFPS(img *gocv.Mat, fps float64) {
	gocv.PutText(img, fmt.Sprintf("%d", int(fps)), image.Pt(10, 70), gocv.FontHersheyPlain, 3, fpsColor, 3)
}
