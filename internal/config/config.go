// Package config loads lukis settings from a TOML file.
//
// Values are layered: Default, then the file, then command-line flags set
// by the cli package, then Validate.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ayusman/lukis/internal/canvas"
)

// DirName is the per-user data directory under the home directory.
const DirName = ".lukis"

// Config is the complete application configuration.
type Config struct {
	// DataDir holds the database, scripts and web assets. Empty means ~/.lukis.
	DataDir  string   `toml:"data_dir"`
	Mode     string   `toml:"mode"`
	Camera   Camera   `toml:"camera"`
	Brush    Brush    `toml:"brush"`
	Stroke   Stroke   `toml:"stroke"`
	Pipeline Pipeline `toml:"pipeline"`
	Display  Display  `toml:"display"`
	Detector Detector `toml:"detector"`
	Server   Server   `toml:"server"`
}

// Camera selects the capture device.
type Camera struct {
	Device int `toml:"device"`
	// File replays a video instead of opening Device.
	File   string `toml:"file"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	FPS    int    `toml:"fps"`
	Mirror bool   `toml:"mirror"`
}

// Brush is the starting pen.
type Brush struct {
	// Color is a palette name or #rrggbb. Empty uses the mode default.
	Color           string `toml:"color"`
	Thickness       int    `toml:"thickness"`
	EraserThickness int    `toml:"eraser_thickness"`
	// Remember restores the last brush from the database at startup.
	Remember bool `toml:"remember"`
}

// Stroke tunes fingertip filtering.
type Stroke struct {
	Smoothing float64 `toml:"smoothing"`
	Jitter    int     `toml:"jitter"`
	HoverLift bool    `toml:"hover_lift"`
}

// Pipeline sets the tick rates.
type Pipeline struct {
	FrameDelay Duration `toml:"frame_delay"`
	IdleDelay  Duration `toml:"idle_delay"`

	// IdleAfter turns on motion gating: after this long without motion and
	// without a hand the painter stops detecting. Zero detects every tick.
	IdleAfter       Duration `toml:"idle_after"`
	MotionThreshold float64  `toml:"motion_threshold"`
}

// Display controls where the output goes and what is drawn on it.
type Display struct {
	Window        bool   `toml:"window"`
	Fullscreen    bool   `toml:"fullscreen"`
	Tray          bool   `toml:"tray"`
	Width         int    `toml:"width"`
	Height        int    `toml:"height"`
	Header        string `toml:"header"`
	ShowFPS       bool   `toml:"show_fps"`
	ShowLandmarks bool   `toml:"show_landmarks"`
	ShowCursor    bool   `toml:"show_cursor"`
}

// Detector configures the MediaPipe service.
type Detector struct {
	Python        string   `toml:"python"`
	Script        string   `toml:"script"`
	MaxHands      int      `toml:"max_hands"`
	MinConfidence float64  `toml:"min_confidence"`
	MinTracking   float64  `toml:"min_tracking"`
	IdleTimeout   Duration `toml:"idle_timeout"`
}

// Server configures the HTTP surface. An empty Addr disables it.
type Server struct {
	Addr        string `toml:"addr"`
	WebDir      string `toml:"web_dir"`
	JPEGQuality int    `toml:"jpeg_quality"`
}

// Duration is a time.Duration written as a string such as "15ms".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Mode: string(canvas.ModeOverlay),
		Camera: Camera{
			Width:  640,
			Height: 480,
			FPS:    30,
			Mirror: true,
		},
		Brush: Brush{
			EraserThickness: canvas.EraserThickness,
			Remember:        true,
		},
		Stroke: Stroke{
			Smoothing: 0.7,
			Jitter:    5,
		},
		Pipeline: Pipeline{
			FrameDelay:      Duration{15 * time.Millisecond},
			IdleDelay:       Duration{200 * time.Millisecond},
			MotionThreshold: 1.0,
		},
		Display: Display{
			Window:     true,
			ShowCursor: true,
		},
		Detector: Detector{
			MaxHands:      1,
			MinConfidence: 0.5,
			MinTracking:   0.5,
			IdleTimeout:   Duration{30 * time.Second},
		},
		Server: Server{
			Addr:        "127.0.0.1:8080",
			JPEGQuality: 80,
		},
	}
}

// DefaultPath returns ~/.lukis/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, DirName, "config.toml"), nil
}

// Load reads path over Default. A missing file is not an error.
// Keys the configuration does not know are rejected to catch typos.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	return cfg, nil
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks value ranges and names.
func (c Config) Validate() error {
	var errs []error

	if _, err := canvas.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if c.Brush.Color != "" {
		if _, err := canvas.ParseColor(c.Brush.Color); err != nil {
			errs = append(errs, fmt.Errorf("brush.color: %w", err))
		}
	}
	if c.Brush.Thickness < 0 || c.Brush.EraserThickness < 0 {
		errs = append(errs, errors.New("brush thickness must not be negative"))
	}
	if c.Camera.Device < 0 {
		errs = append(errs, errors.New("camera.device must not be negative"))
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		errs = append(errs, errors.New("camera.width and camera.height must be positive"))
	}
	if c.Camera.FPS <= 0 {
		errs = append(errs, errors.New("camera.fps must be positive"))
	}
	if c.Stroke.Smoothing < 0 || c.Stroke.Smoothing >= 1 {
		errs = append(errs, fmt.Errorf("stroke.smoothing %.2f must be in [0, 1)", c.Stroke.Smoothing))
	}
	if c.Stroke.Jitter < 0 {
		errs = append(errs, errors.New("stroke.jitter must not be negative"))
	}
	if c.Pipeline.FrameDelay.Duration <= 0 || c.Pipeline.IdleDelay.Duration <= 0 {
		errs = append(errs, errors.New("pipeline delays must be positive"))
	}
	if c.Pipeline.IdleAfter.Duration < 0 {
		errs = append(errs, errors.New("pipeline.idle_after must not be negative"))
	}
	if (c.Display.Width == 0) != (c.Display.Height == 0) || c.Display.Width < 0 || c.Display.Height < 0 {
		errs = append(errs, errors.New("display.width and display.height must both be set or both be zero"))
	}
	if c.Display.Window && c.Display.Tray {
		errs = append(errs, errors.New("display.window and display.tray both need the main thread; enable one"))
	}
	if c.Detector.MaxHands <= 0 {
		errs = append(errs, errors.New("detector.max_hands must be positive"))
	}
	if !unit(c.Detector.MinConfidence) || !unit(c.Detector.MinTracking) {
		errs = append(errs, errors.New("detector confidences must be in [0, 1]"))
	}
	if c.Server.JPEGQuality < 1 || c.Server.JPEGQuality > 100 {
		errs = append(errs, errors.New("server.jpeg_quality must be in [1, 100]"))
	}

	return errors.Join(errs...)
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

// Dir returns the data directory, defaulting to ~/.lukis.
func (c Config) Dir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// DatabasePath returns the SQLite file inside the data directory.
func (c Config) DatabasePath() (string, error) {
	dir, err := c.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lukis.db"), nil
}
