package canvas

import (
	"bytes"
	"image"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/lukis/internal/detector"
	"github.com/ayusman/lukis/internal/stroke"
)

var vga = stroke.Size{Width: 640, Height: 480}

func TestCanvas_Draw(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := New(vga, ModeOverlay.Background())
	defer c.Close()

	if got := c.At(100, 100); got != Black {
		t.Fatalf("new canvas pixel = %v, want black", got)
	}

	seg := stroke.Segment{From: stroke.Point{X: 50, Y: 100}, To: stroke.Point{X: 150, Y: 100}}
	c.Draw(seg, DefaultBrush(ModeOverlay))

	if got := c.At(100, 100); got != Red {
		t.Errorf("stroke pixel = %v, want red", got)
	}
	if got := c.At(100, 300); got != Black {
		t.Errorf("pixel away from stroke = %v, want black", got)
	}

	t.Run("eraser restores background", func(t *testing.T) {
		c.Draw(seg, DefaultBrush(ModeOverlay).Toggled())

		if got := c.At(100, 100); got != Black {
			t.Errorf("erased pixel = %v, want black", got)
		}
	})
}

func TestCanvas_Clear(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := New(vga, ModeWhiteboard.Background())
	defer c.Close()

	if got := c.At(10, 10); got != White {
		t.Fatalf("whiteboard pixel = %v, want white", got)
	}

	c.Draw(stroke.Segment{From: stroke.Point{X: 0, Y: 10}, To: stroke.Point{X: 40, Y: 10}}, DefaultBrush(ModeWhiteboard))
	if got := c.At(10, 10); got != Black {
		t.Fatalf("stroke pixel = %v, want black", got)
	}

	c.Clear()

	if got := c.At(10, 10); got != White {
		t.Errorf("pixel after Clear = %v, want white", got)
	}
}

func TestCanvas_PNG(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := New(stroke.Size{Width: 32, Height: 16}, White)
	defer c.Close()

	data, err := c.PNG()
	if err != nil {
		t.Fatalf("PNG() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("PNG() did not return PNG data")
	}

	decoded, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		t.Fatalf("IMDecode() error = %v", err)
	}
	defer decoded.Close()
	if decoded.Cols() != 32 || decoded.Rows() != 16 {
		t.Errorf("decoded size = %dx%d, want 32x16", decoded.Cols(), decoded.Rows())
	}
}

func TestCompositor_Render(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.SetTo(gocv.NewScalar(40, 40, 40, 0))

	seg := stroke.Segment{From: stroke.Point{X: 100, Y: 200}, To: stroke.Point{X: 300, Y: 200}}

	t.Run("overlay adds strokes onto the frame", func(t *testing.T) {
		c := New(vga, ModeOverlay.Background())
		defer c.Close()
		c.Draw(seg, DefaultBrush(ModeOverlay).WithColor(Blue))

		out := gocv.NewMat()
		defer out.Close()

		p := &Compositor{Mode: ModeOverlay}
		if err := p.Render(frame, c, &out); err != nil {
			t.Fatalf("Render() error = %v", err)
		}

		stroked := out.GetVecbAt(200, 200)
		if stroked[0] != 255 || stroked[1] != 40 || stroked[2] != 40 {
			t.Errorf("stroke pixel = %v, want saturated blue over gray", stroked)
		}
		plain := out.GetVecbAt(400, 400)
		if plain[0] != 40 || plain[1] != 40 || plain[2] != 40 {
			t.Errorf("untouched pixel = %v, want frame gray", plain)
		}
	})

	t.Run("overlay scales a mismatched frame", func(t *testing.T) {
		c := New(stroke.Size{Width: 320, Height: 240}, Black)
		defer c.Close()

		out := gocv.NewMat()
		defer out.Close()

		p := &Compositor{Mode: ModeOverlay}
		if err := p.Render(frame, c, &out); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if out.Cols() != 320 || out.Rows() != 240 {
			t.Errorf("output = %dx%d, want 320x240", out.Cols(), out.Rows())
		}
	})

	t.Run("whiteboard hides the camera", func(t *testing.T) {
		c := New(vga, ModeWhiteboard.Background())
		defer c.Close()
		c.Draw(seg, DefaultBrush(ModeWhiteboard))

		out := gocv.NewMat()
		defer out.Close()

		p := &Compositor{Mode: ModeWhiteboard}
		if err := p.Render(frame, c, &out); err != nil {
			t.Fatalf("Render() error = %v", err)
		}

		bg := out.GetVecbAt(400, 400)
		if bg[0] != 255 || bg[1] != 255 || bg[2] != 255 {
			t.Errorf("background pixel = %v, want white", bg)
		}
		ink := out.GetVecbAt(200, 200)
		if ink[0] != 0 || ink[1] != 0 || ink[2] != 0 {
			t.Errorf("stroke pixel = %v, want black", ink)
		}
	})

	t.Run("header and display size", func(t *testing.T) {
		c := New(vga, Black)
		defer c.Close()

		banner := gocv.NewMatWithSize(50, 200, gocv.MatTypeCV8UC3)
		defer banner.Close()
		header := NewHeader(banner)
		defer header.Close()

		out := gocv.NewMat()
		defer out.Close()

		p := &Compositor{Mode: ModeOverlay, Header: header}
		if err := p.Render(frame, c, &out); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if out.Cols() != 640 || out.Rows() != 480+HeaderHeight {
			t.Errorf("output = %dx%d, want 640x%d", out.Cols(), out.Rows(), 480+HeaderHeight)
		}

		p.Display = stroke.Size{Width: 1280, Height: 1160}
		if err := p.Render(frame, c, &out); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if out.Cols() != 1280 || out.Rows() != 1160 {
			t.Errorf("output = %dx%d, want 1280x1160", out.Cols(), out.Rows())
		}
	})
}

func TestLoadHeader_Missing(t *testing.T) {
	if _, err := LoadHeader(t.TempDir() + "/missing.jpg"); err == nil {
		t.Error("expected error for missing header image")
	}
}

func TestMirror(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := gocv.NewMatWithSize(10, 20, gocv.MatTypeCV8UC3)
	defer frame.Close()
	gocv.Circle(&frame, image.Pt(0, 0), 1, White.RGBA(), -1)

	Mirror(&frame)

	left := frame.GetVecbAt(0, 0)
	right := frame.GetVecbAt(0, 19)
	if left[0] != 0 || right[0] != 255 {
		t.Errorf("after Mirror left=%v right=%v, want the white dot on the right", left, right)
	}
}

func TestDrawHand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	img := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()

	hand := detector.PointingAt(0.5, 0.2)
	DrawHand(&img, hand.Pixels(640, 480))

	tip := img.GetVecbAt(96, 320)
	if tip[0] == 0 && tip[1] == 0 && tip[2] == 0 {
		t.Error("expected a joint marker at the index fingertip")
	}

	// Too few landmarks is a no-op.
	DrawHand(&img, nil)
}

func TestCompositor_RenderWith(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	c := New(vga, ModeWhiteboard.Background())
	defer c.Close()

	out := gocv.NewMat()
	defer out.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	p := &Compositor{Mode: ModeWhiteboard}
	err := p.RenderWith(frame, c, &out, func(img *gocv.Mat) {
		DrawCursor(img, stroke.Point{X: 200, Y: 200}, DefaultBrush(ModeWhiteboard).WithColor(Red), White)
	})
	if err != nil {
		t.Fatalf("RenderWith() error = %v", err)
	}

	// Ring of radius 4 around (200, 200).
	ring := out.GetVecbAt(200, 204)
	if ring[2] != 255 || ring[1] != 0 {
		t.Errorf("cursor pixel = %v, want red", ring)
	}
	if got := c.At(204, 200); got != White {
		t.Errorf("decorating must not touch the canvas, got %v", got)
	}
}
