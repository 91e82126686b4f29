// Package painter runs the finger-painting pipeline: it reads camera frames,
// tracks the index fingertip, draws strokes onto the canvas and hands the
// composited picture to the display sinks.
package painter

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ayusman/lukis/internal/canvas"
	"github.com/ayusman/lukis/internal/capture"
	"github.com/ayusman/lukis/internal/detector"
	"github.com/ayusman/lukis/internal/display"
	"github.com/ayusman/lukis/internal/stroke"
	"gocv.io/x/gocv"
)

// Pipeline timing defaults.
const (
	// FrameDelay is the pause between two ticks while the scene is active.
	FrameDelay = 15 * time.Millisecond
	// IdleDelay is the pause between ticks once the scene has been still for
	// Config.IdleAfter.
	IdleDelay = 200 * time.Millisecond
)

// ErrClosed is returned when starting a painter that has been closed.
var ErrClosed = errors.New("painter is closed")

// Config holds the pipeline settings.
type Config struct {
	Mode canvas.Mode
	// Canvas is the size of the drawing buffer.
	Canvas stroke.Size
	// Display is the size of the output picture; zero keeps the composite size.
	Display stroke.Size
	// Header is stacked above the output when set. The painter closes it.
	Header *canvas.Header

	// Smoothing is the weight of the previous fingertip position; zero disables smoothing.
	Smoothing float64
	// Jitter is the per-axis movement in pixels that must be exceeded to extend a stroke.
	Jitter int

	FrameDelay time.Duration
	IdleDelay  time.Duration
	// IdleAfter is how long the scene must be still before the painter
	// stops detecting and ticks at IdleDelay. Zero, the default, detects on
	// every tick. A visible hand keeps the painter active regardless.
	IdleAfter       time.Duration
	MotionThreshold float64

	// Mirror flips camera frames horizontally.
	Mirror bool
	// HoverLift lifts the pen while index and middle finger are both raised.
	HoverLift     bool
	DrawLandmarks bool
	ShowCursor    bool
	ShowFPS       bool
}

// DefaultConfig returns the settings for mode.
func DefaultConfig(mode canvas.Mode) Config {
	return Config{
		Mode:            mode,
		Canvas:          stroke.Size{Width: capture.DefaultWidth, Height: capture.DefaultHeight},
		Smoothing:       stroke.DefaultWeight,
		Jitter:          stroke.DefaultJitter,
		FrameDelay:      FrameDelay,
		IdleDelay:       IdleDelay,
		MotionThreshold: 1.0,
		Mirror:          true,
		ShowCursor:      true,
	}
}

// Event describes the fingertip after one tick.
type Event struct {
	// Hand is false when no hand was found in the frame.
	Hand bool `json:"hand"`
	// Point is the smoothed fingertip in canvas coordinates.
	Point    stroke.Point `json:"point"`
	Drawing  bool         `json:"drawing"`
	Hovering bool         `json:"hovering"`
	Idle     bool         `json:"idle"`
	// Timestamp is in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// State is a point-in-time view of the painter.
type State struct {
	Running bool         `json:"running"`
	Idle    bool         `json:"idle"`
	Mode    canvas.Mode  `json:"mode"`
	Brush   canvas.Brush `json:"brush"`
	Canvas  stroke.Size  `json:"canvas"`
	FPS     float64      `json:"fps"`
	Frames  uint64       `json:"frames"`
}

// Painter owns the camera, the detector and the canvas.
//
// Commands may be issued from any goroutine. The pipeline itself runs on a
// single goroutine, started by Start or Run.
type Painter struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	gate     *capture.MotionGate
	comp     *canvas.Compositor
	logger   *log.Logger

	// Pipeline goroutine only.
	smoother  *stroke.Smoother
	tracker   *stroke.Tracker
	out       gocv.Mat
	lastTick  time.Time
	detectErr bool
	handSeen  bool

	mu       sync.Mutex
	canvas   *canvas.Canvas
	brush    canvas.Brush
	sinks    []display.Sink
	onEvent  []func(Event)
	onBrush  []func(canvas.Brush)
	idle     bool
	fps      float64
	frames   uint64
	closed   bool
	runMu    sync.Mutex
	running  bool
	stopCh   chan struct{}
	done     chan struct{}
	closeErr error
}

// New creates a painter reading from camera and locating hands with det.
// Zero fields in config fall back to DefaultConfig.
func New(config Config, camera capture.Camera, det detector.Detector, logger *log.Logger) *Painter {
	def := DefaultConfig(config.Mode)
	if config.Mode == "" {
		config.Mode = canvas.ModeOverlay
	}
	if config.Canvas.Width <= 0 || config.Canvas.Height <= 0 {
		config.Canvas = def.Canvas
	}
	if config.FrameDelay <= 0 {
		config.FrameDelay = def.FrameDelay
	}
	if config.IdleDelay <= 0 {
		config.IdleDelay = def.IdleDelay
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Painter{
		config:   config,
		camera:   camera,
		detector: det,
		gate:     capture.NewMotionGate(config.MotionThreshold, config.IdleAfter),
		comp: &canvas.Compositor{
			Mode:    config.Mode,
			Header:  config.Header,
			Display: config.Display,
		},
		logger:   logger.WithPrefix("painter"),
		smoother: stroke.NewSmoother(config.Smoothing),
		tracker:  stroke.NewTracker(config.Jitter),
		out:      gocv.NewMat(),
		canvas:   canvas.New(config.Canvas, config.Mode.Background()),
		brush:    canvas.DefaultBrush(config.Mode),
	}
}

// AddSink registers a destination for composited frames.
func (p *Painter) AddSink(s display.Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks = append(p.sinks, s)
}

// OnEvent registers fn to receive the fingertip event of every tick.
// fn runs on the pipeline goroutine and must not call Stop or Close.
func (p *Painter) OnEvent(fn func(Event)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onEvent = append(p.onEvent, fn)
}

// OnBrushChange registers fn to receive the brush after every change.
func (p *Painter) OnBrushChange(fn func(canvas.Brush)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onBrush = append(p.onBrush, fn)
}

// Start opens the camera and runs the pipeline on a new goroutine.
// It is a no-op if the painter is already running.
func (p *Painter) Start() error {
	stopCh, done, err := p.begin()
	if err != nil || stopCh == nil {
		return err
	}

	go func() {
		if err := p.loop(stopCh, done); err != nil {
			p.logger.Error("pipeline halted", "err", err)
		}
	}()
	return nil
}

// Run opens the camera and runs the pipeline on the calling goroutine until
// ctx is cancelled, Stop is called, a sink reports display.ErrQuit or the
// camera stops delivering frames. Only the last case returns an error.
func (p *Painter) Run(ctx context.Context) error {
	stopCh, done, err := p.begin()
	if err != nil || stopCh == nil {
		return err
	}

	go func() {
		select {
		case <-ctx.Done():
			p.Stop()
		case <-done:
		}
	}()

	return p.loop(stopCh, done)
}

func (p *Painter) begin() (chan struct{}, chan struct{}, error) {
	p.lockStopped()
	defer p.runMu.Unlock()

	if p.running {
		return nil, nil, nil
	}
	if p.isClosed() {
		return nil, nil, ErrClosed
	}

	if err := p.camera.Open(); err != nil {
		return nil, nil, err
	}

	p.tracker.Lift()
	p.smoother.Reset()
	p.gate.Reset()
	p.lastTick = time.Time{}
	p.handSeen = false

	p.running = true
	p.stopCh = make(chan struct{})
	p.done = make(chan struct{})

	p.logger.Info("pipeline started", "mode", p.config.Mode, "canvas", p.config.Canvas)
	return p.stopCh, p.done, nil
}

// lockStopped acquires runMu once the previous loop, if any, has released
// the camera. It returns at once while the painter is running.
func (p *Painter) lockStopped() {
	for {
		p.runMu.Lock()
		prev := p.done
		if p.running || prev == nil {
			return
		}
		select {
		case <-prev:
			return
		default:
		}
		p.runMu.Unlock()
		<-prev
	}
}

// finish runs on the pipeline goroutine when the loop exits.
func (p *Painter) finish(done chan struct{}) {
	p.runMu.Lock()
	if p.done == done {
		p.running = false
		p.stopCh = nil
	}
	p.runMu.Unlock()

	if err := p.camera.Close(); err != nil {
		p.logger.Warn("error closing camera", "err", err)
	}

	p.mu.Lock()
	p.idle = false
	p.fps = 0
	p.mu.Unlock()

	close(done)
	p.logger.Info("pipeline stopped")
}

// Stop halts the pipeline, releases the camera and clears the canvas.
// It waits for the current tick to finish.
func (p *Painter) Stop() {
	p.runMu.Lock()
	if !p.running {
		p.runMu.Unlock()
		return
	}
	close(p.stopCh)
	p.stopCh = nil
	p.running = false
	done := p.done
	p.runMu.Unlock()

	<-done

	p.Clear()
}

// IsRunning reports whether the pipeline is running.
func (p *Painter) IsRunning() bool {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	return p.running
}

// Close stops the painter and releases the detector, the canvas, the
// header and every sink. Close is idempotent.
func (p *Painter) Close() error {
	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return p.closeErr
	}
	p.closed = true

	var errs []error
	if err := p.detector.Close(); err != nil {
		errs = append(errs, err)
	}
	for _, s := range p.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.sinks = nil
	if p.config.Header != nil {
		p.config.Header.Close()
	}
	p.gate.Close()
	p.canvas.Close()
	p.out.Close()

	p.closeErr = errors.Join(errs...)
	return p.closeErr
}

func (p *Painter) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Brush returns the current brush.
func (p *Painter) Brush() canvas.Brush {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.brush
}

// SetBrush replaces the brush, for example with one restored from settings.
// Zero thicknesses keep the current values.
func (p *Painter) SetBrush(b canvas.Brush) canvas.Brush {
	return p.updateBrush(func(cur canvas.Brush) canvas.Brush {
		if b.Thickness <= 0 {
			b.Thickness = cur.Thickness
		}
		if b.EraserThickness <= 0 {
			b.EraserThickness = cur.EraserThickness
		}
		return b
	})
}

// SetColor selects the pen color and turns the eraser off.
func (p *Painter) SetColor(c canvas.Color) canvas.Brush {
	return p.updateBrush(func(cur canvas.Brush) canvas.Brush {
		return cur.WithColor(c)
	})
}

// ToggleEraser switches between pen and eraser.
func (p *Painter) ToggleEraser() canvas.Brush {
	return p.updateBrush(canvas.Brush.Toggled)
}

func (p *Painter) updateBrush(change func(canvas.Brush) canvas.Brush) canvas.Brush {
	p.mu.Lock()
	p.brush = change(p.brush)
	b := p.brush
	observers := append([]func(canvas.Brush){}, p.onBrush...)
	p.mu.Unlock()

	p.logger.Debug("brush changed", "color", b.Color, "eraser", b.Eraser)
	for _, fn := range observers {
		fn(b)
	}
	return b
}

// Clear wipes the canvas.
func (p *Painter) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.canvas.Clear()
}

// Snapshot returns the canvas as PNG.
func (p *Painter) Snapshot() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	return p.canvas.PNG()
}

// State returns the current painter state.
func (p *Painter) State() State {
	running := p.IsRunning()

	p.mu.Lock()
	defer p.mu.Unlock()
	return State{
		Running: running,
		Idle:    p.idle,
		Mode:    p.config.Mode,
		Brush:   p.brush,
		Canvas:  p.config.Canvas,
		FPS:     p.fps,
		Frames:  p.frames,
	}
}
