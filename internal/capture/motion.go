package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Motion gate constants.
const (
	// probeWidth is the width frames are shrunk to before differencing.
	probeWidth = 160
	// probeBlur is the Gaussian kernel applied to the shrunk frame.
	probeBlur = 5
	// diffThreshold is the per-pixel difference that counts as change.
	diffThreshold = 25
)

// MotionGate decides whether the scene in front of the camera is still.
//
// Each observed frame is shrunk, blurred and compared with the previous
// one. The gate stays open while the changed share of pixels exceeds the
// threshold and for idleAfter after the last such frame; once closed the
// painter can skip hand detection and tick at its idle rate.
type MotionGate struct {
	threshold float64
	idleAfter time.Duration

	mu         sync.Mutex
	prev       gocv.Mat
	hasPrev    bool
	lastMotion time.Time
	change     float64
	closed     bool
}

// NewMotionGate creates a gate. threshold is the percentage of pixels that
// must change between frames (1.0 means 1%). An idleAfter of zero keeps the
// gate open permanently.
func NewMotionGate(threshold float64, idleAfter time.Duration) *MotionGate {
	if threshold <= 0 {
		threshold = 1.0
	}
	return &MotionGate{
		threshold: threshold,
		idleAfter: idleAfter,
		prev:      gocv.NewMat(),
	}
}

// Observe records frame taken at now and reports whether the gate is open.
func (g *MotionGate) Observe(frame *gocv.Mat, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idleAfter <= 0 || g.closed {
		return true
	}
	if frame == nil || frame.Empty() {
		return g.openLocked(now)
	}

	probe := shrink(frame)
	defer probe.Close()

	if !g.hasPrev {
		probe.CopyTo(&g.prev)
		g.hasPrev = true
		g.lastMotion = now
		g.change = 0
		return true
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(probe, g.prev, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, diffThreshold, 255, gocv.ThresholdBinary)

	total := mask.Rows() * mask.Cols()
	if total > 0 {
		g.change = float64(gocv.CountNonZero(mask)) / float64(total) * 100.0
	}

	probe.CopyTo(&g.prev)

	if g.change > g.threshold {
		g.lastMotion = now
	}
	return g.openLocked(now)
}

func (g *MotionGate) openLocked(now time.Time) bool {
	if !g.hasPrev {
		return true
	}
	return now.Sub(g.lastMotion) <= g.idleAfter
}

// Change returns the percentage of pixels that changed in the last observed frame.
func (g *MotionGate) Change() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.change
}

// Reset drops the baseline frame; the next frame opens the gate.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked()
}

// Close releases the baseline frame. A closed gate stays open. Close is
// idempotent.
func (g *MotionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return
	}
	g.closed = true
	g.prev.Close()
	g.hasPrev = false
	g.change = 0
}

func (g *MotionGate) resetLocked() {
	if g.closed {
		return
	}
	g.prev.Close()
	g.prev = gocv.NewMat()
	g.hasPrev = false
	g.change = 0
}

// shrink converts frame to a small blurred grayscale probe image.
func shrink(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	small := gocv.NewMat()
	defer small.Close()
	height := gray.Rows() * probeWidth / max(gray.Cols(), 1)
	gocv.Resize(gray, &small, image.Pt(probeWidth, max(height, 1)), 0, 0, gocv.InterpolationArea)

	out := gocv.NewMat()
	gocv.GaussianBlur(small, &out, image.Pt(probeBlur, probeBlur), 0, 0, gocv.BorderDefault)
	return out
}
