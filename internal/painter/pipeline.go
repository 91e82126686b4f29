package painter

import (
	"errors"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/lukis/internal/canvas"
	"github.com/ayusman/lukis/internal/detector"
	"github.com/ayusman/lukis/internal/display"
	"github.com/ayusman/lukis/internal/stroke"
)

// fpsSmoothing is the weight of the previous frame rate in the displayed average.
const fpsSmoothing = 0.9

// loop is the per-frame pipeline:
//
//  1. Read a frame; a failed read halts the loop
//  2. Mirror it and feed the motion gate
//  3. While active or tracking a hand, detect it and extend the stroke
//  4. Composite frame and canvas, then hand the result to the sinks
//  5. Sleep FrameDelay, or IdleDelay while the scene is still
func (p *Painter) loop(stopCh <-chan struct{}, done chan struct{}) error {
	defer p.finish(done)

	wait := time.NewTimer(p.config.FrameDelay)
	defer wait.Stop()

	for {
		select {
		case <-stopCh:
			return nil
		default:
		}

		active, err := p.tick()
		if err != nil {
			if errors.Is(err, display.ErrQuit) {
				p.logger.Info("display closed")
				return nil
			}
			return err
		}

		delay := p.config.FrameDelay
		if !active {
			delay = p.config.IdleDelay
		}
		wait.Reset(delay)

		select {
		case <-stopCh:
			return nil
		case <-wait.C:
		}
	}
}

// tick runs one pass of the pipeline and reports whether the scene was active.
func (p *Painter) tick() (bool, error) {
	frame, err := p.camera.ReadFrame()
	if err != nil {
		return false, fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	now := time.Now()
	if p.config.Mirror {
		canvas.Mirror(frame)
	}

	// A hand seen on the last tick keeps detection running even when the
	// fingertip alone moves too little to wake the gate.
	active := p.gate.Observe(frame, now) || p.handSeen

	var hand *detector.HandLandmarks
	if active {
		hand = p.detect(frame)
		if hand != nil && p.config.DrawLandmarks {
			canvas.DrawHand(frame, hand.Pixels(frame.Cols(), frame.Rows()))
		}
	}
	p.handSeen = hand != nil

	p.mu.Lock()
	ev := Event{Idle: !active, Timestamp: now.UnixMilli()}
	if active {
		ev = p.trace(hand, frame.Cols(), frame.Rows(), ev)
	}
	p.measure(now, active)

	brush := p.brush
	fps := p.fps
	err = p.comp.RenderWith(*frame, p.canvas, &p.out, func(img *gocv.Mat) {
		if ev.Hand && p.config.ShowCursor {
			canvas.DrawCursor(img, ev.Point, brush, p.canvas.Background())
		}
		if p.config.ShowFPS {
			canvas.DrawFPS(img, fps)
		}
	})
	sinks := append([]display.Sink{}, p.sinks...)
	observers := append([]func(Event){}, p.onEvent...)
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("composite failed", "err", err)
	} else {
		for _, s := range sinks {
			if err := s.Show(p.out); err != nil {
				if errors.Is(err, display.ErrQuit) {
					return active, err
				}
				p.logger.Warn("sink failed", "err", err)
			}
		}
	}

	for _, fn := range observers {
		fn(ev)
	}
	return active, nil
}

// detect returns the first hand in frame, or nil. Detector failures count as
// no hand for the frame.
func (p *Painter) detect(frame *gocv.Mat) *detector.HandLandmarks {
	hands, err := p.detector.Detect(frame)
	if err != nil {
		if !p.detectErr {
			p.logger.Warn("hand detection failed", "err", err)
			p.detectErr = true
		} else {
			p.logger.Debug("hand detection failed", "err", err)
		}
		return nil
	}
	if p.detectErr {
		p.logger.Info("hand detection recovered")
		p.detectErr = false
	}

	if len(hands) == 0 {
		return nil
	}
	return &hands[0]
}

// trace advances the stroke with hand. Called with p.mu held.
func (p *Painter) trace(hand *detector.HandLandmarks, width, height int, ev Event) Event {
	if hand == nil {
		p.tracker.Lift()
		p.smoother.Reset()
		return ev
	}

	x, y := hand.Fingertip(width, height)
	size := p.canvas.Size()
	pt := stroke.Scale(stroke.Point{X: x, Y: y}, stroke.Size{Width: width, Height: height}, size)
	pt = p.smoother.Update(stroke.Clamp(pt, size))

	ev.Hand = true
	ev.Point = pt

	if p.config.HoverLift && hand.Hovering() {
		p.tracker.Lift()
		ev.Hovering = true
		return ev
	}

	if seg, ok := p.tracker.Next(pt); ok {
		p.canvas.Draw(seg, p.brush)
		ev.Drawing = true
	}
	return ev
}

// measure updates the frame counters. Called with p.mu held.
func (p *Painter) measure(now time.Time, active bool) {
	p.frames++
	if p.idle == active {
		if active {
			p.logger.Debug("scene active")
		} else {
			p.logger.Debug("scene still, idling")
		}
	}
	p.idle = !active

	if !p.lastTick.IsZero() {
		if dt := now.Sub(p.lastTick).Seconds(); dt > 0 {
			rate := 1 / dt
			if p.fps == 0 {
				p.fps = rate
			} else {
				p.fps = fpsSmoothing*p.fps + (1-fpsSmoothing)*rate
			}
		}
	}
	p.lastTick = now
}
