package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ayusman/lukis/internal/canvas"
	"github.com/ayusman/lukis/internal/capture"
	"github.com/ayusman/lukis/internal/config"
	"github.com/ayusman/lukis/internal/detector"
	"github.com/ayusman/lukis/internal/display"
	"github.com/ayusman/lukis/internal/painter"
	"github.com/ayusman/lukis/internal/server"
	"github.com/ayusman/lukis/internal/store"
	"github.com/ayusman/lukis/internal/stroke"
	"github.com/ayusman/lukis/internal/tray"
)

const windowTitle = "lukis"

// paintOptions are the paint flags. Only flags set on the command line
// override the configuration file.
type paintOptions struct {
	mode        string
	device      int
	addr        string
	window      bool
	fullscreen  bool
	tray        bool
	header      string
	noSmoothing bool
	color       string
}

// register defines the paint flags on flags.
func (o *paintOptions) register(flags *pflag.FlagSet) {
	flags.StringVar(&o.mode, "mode", string(canvas.ModeOverlay), "canvas mode: overlay or whiteboard")
	flags.IntVar(&o.device, "device", 0, "camera device index")
	flags.StringVar(&o.addr, "addr", "", `HTTP listen address ("" disables the server)`)
	flags.BoolVar(&o.window, "window", true, "show the output in a window")
	flags.BoolVar(&o.fullscreen, "fullscreen", false, "show the window fullscreen")
	flags.BoolVar(&o.tray, "tray", false, "control the painter from the system tray")
	flags.StringVar(&o.header, "header", "", "image stacked above the output")
	flags.BoolVar(&o.noSmoothing, "no-smoothing", false, "draw raw fingertip positions")
	flags.StringVar(&o.color, "color", "", "starting color: palette name or #rrggbb")
}

// apply copies the flags that were set in flags onto cfg.
func (o *paintOptions) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("mode") {
		cfg.Mode = o.mode
	}
	if flags.Changed("device") {
		cfg.Camera.Device = o.device
		cfg.Camera.File = ""
	}
	if flags.Changed("addr") {
		cfg.Server.Addr = o.addr
	}
	if flags.Changed("window") {
		cfg.Display.Window = o.window
	}
	if flags.Changed("fullscreen") {
		cfg.Display.Fullscreen = o.fullscreen
		if o.fullscreen && !flags.Changed("window") {
			cfg.Display.Window = true
		}
	}
	if flags.Changed("tray") {
		cfg.Display.Tray = o.tray
		// The tray takes the main thread unless a window was asked for too.
		if o.tray && !flags.Changed("window") && !flags.Changed("fullscreen") {
			cfg.Display.Window = false
		}
	}
	if flags.Changed("header") {
		cfg.Display.Header = o.header
	}
	if o.noSmoothing {
		cfg.Stroke.Smoothing = 0
	}
	if flags.Changed("color") {
		cfg.Brush.Color = o.color
		cfg.Brush.Remember = false
	}
}

func newPaintCmd(root *rootOptions) *cobra.Command {
	opts := &paintOptions{}

	cmd := &cobra.Command{
		Use:   "paint",
		Short: "Paint on the webcam picture with your index finger",
		Long: `Paint opens the camera, tracks the index fingertip and draws its path.

In overlay mode the strokes are drawn over the live video; in whiteboard
mode on a plain white board. Press q or Esc in the window to quit. When
an address is set, the picture, brush controls and saved drawings are
also served over HTTP.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			opts.apply(cmd.Flags(), &cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runPaint(cmd.Context(), cfg, loggerFromContext(cmd.Context()))
		},
	}

	opts.register(cmd.Flags())

	return cmd
}

// runPaint wires camera, detector, painter, sinks, server and tray from cfg
// and paints until ctx is cancelled or the output is closed.
func runPaint(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	mode, err := canvas.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	pc := painterConfig(cfg, mode)
	if cfg.Display.Header != "" {
		header, err := canvas.LoadHeader(cfg.Display.Header)
		if err != nil {
			return err
		}
		pc.Header = header
	}

	det, err := detector.NewMediaPipeDetector(detectorConfig(cfg), logger)
	if err != nil {
		if pc.Header != nil {
			pc.Header.Close()
		}
		return fmt.Errorf("hand detector: %w", err)
	}

	cam := capture.NewCamera(capture.Config{
		Device: cfg.Camera.Device,
		File:   cfg.Camera.File,
		Width:  cfg.Camera.Width,
		Height: cfg.Camera.Height,
		FPS:    cfg.Camera.FPS,
	})

	p := painter.New(pc, cam, det, logger)
	defer func() {
		if err := p.Close(); err != nil {
			logger.Warn("close painter", "err", err)
		}
	}()

	settings := st.Settings()
	p.SetBrush(startBrush(cfg, mode, settings, logger))

	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	var srv *server.Server
	if cfg.Server.Addr != "" {
		hub := display.NewHub(cfg.Server.JPEGQuality)
		p.AddSink(hub)

		dataDir, _ := cfg.Dir()
		webDir := cfg.Server.WebDir
		if webDir == "" {
			webDir = findWebDir(dataDir)
		}

		srv = server.New(server.Config{
			StaticDir: webDir,
			Store:     st,
			Painter:   p,
			Hub:       hub,
			Logger:    logger,
		})
		p.OnEvent(srv.Events().PublishEvent)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Serve(ctx, cfg.Server.Addr); err != nil {
				logger.Error("server failed", "err", err)
				cancel()
			}
		}()
	}

	if cfg.Display.Window {
		p.AddSink(display.NewWindow(windowTitle, cfg.Display.Fullscreen))
	}

	p.OnBrushChange(func(b canvas.Brush) {
		if cfg.Brush.Remember {
			if err := saveBrush(settings, b); err != nil {
				logger.Warn("save brush", "err", err)
			}
		}
		if srv != nil {
			srv.Events().PublishBrush(b)
		}
	})

	logger.Info("painting", "mode", mode, "device", cfg.Camera.Device, "window", cfg.Display.Window, "addr", cfg.Server.Addr)

	if cfg.Display.Tray {
		return runTray(ctx, cancel, p, st.Drawings(), cfg, logger)
	}
	return p.Run(ctx)
}

// runTray runs the painter on a goroutine and the tray menu on the calling one.
func runTray(ctx context.Context, cancel context.CancelFunc, p *painter.Painter, drawings *store.DrawingRepository, cfg config.Config, logger *log.Logger) error {
	t := tray.New(logger)
	t.SetBrush(p.Brush())

	p.OnBrushChange(t.SetBrush)
	t.OnColor(func(c canvas.Color) { p.SetColor(c) })
	t.OnToggleEraser(func() { p.ToggleEraser() })
	t.OnClear(p.Clear)
	t.OnSave(func() {
		d, err := saveDrawing(drawings, p, "")
		if err != nil {
			logger.Error("save drawing", "err", err)
			return
		}
		logger.Info("saved drawing", "id", d.ID, "name", d.Name)
	})
	if cfg.Server.Addr != "" {
		url := browserURL(cfg.Server.Addr)
		t.OnOpen(func() {
			if err := openBrowser(url); err != nil {
				logger.Warn("open browser", "err", err)
			}
		})
	}
	t.OnQuit(cancel)

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Run(ctx)
		t.Quit()
	}()

	t.Run()
	cancel()
	return <-errCh
}

// painterConfig maps the configuration onto the painter's settings.
func painterConfig(cfg config.Config, mode canvas.Mode) painter.Config {
	return painter.Config{
		Mode:            mode,
		Canvas:          stroke.Size{Width: cfg.Camera.Width, Height: cfg.Camera.Height},
		Display:         stroke.Size{Width: cfg.Display.Width, Height: cfg.Display.Height},
		Smoothing:       cfg.Stroke.Smoothing,
		Jitter:          cfg.Stroke.Jitter,
		FrameDelay:      cfg.Pipeline.FrameDelay.Duration,
		IdleDelay:       cfg.Pipeline.IdleDelay.Duration,
		IdleAfter:       cfg.Pipeline.IdleAfter.Duration,
		MotionThreshold: cfg.Pipeline.MotionThreshold,
		Mirror:          cfg.Camera.Mirror,
		HoverLift:       cfg.Stroke.HoverLift,
		DrawLandmarks:   cfg.Display.ShowLandmarks,
		ShowCursor:      cfg.Display.ShowCursor,
		ShowFPS:         cfg.Display.ShowFPS,
	}
}

// detectorConfig maps the configuration onto the MediaPipe service settings.
func detectorConfig(cfg config.Config) detector.Config {
	return detector.Config{
		MaxHands:        cfg.Detector.MaxHands,
		MinConfidence:   cfg.Detector.MinConfidence,
		MinTrackingConf: cfg.Detector.MinTracking,
		Python:          cfg.Detector.Python,
		Script:          cfg.Detector.Script,
		IdleTimeout:     cfg.Detector.IdleTimeout.Duration,
	}
}

// startBrush builds the first brush: the mode default, then the configured
// pen, then the brush remembered from the last session.
func startBrush(cfg config.Config, mode canvas.Mode, settings *store.SettingRepository, logger *log.Logger) canvas.Brush {
	b := canvas.DefaultBrush(mode)
	if cfg.Brush.Thickness > 0 {
		b.Thickness = cfg.Brush.Thickness
	}
	if cfg.Brush.EraserThickness > 0 {
		b.EraserThickness = cfg.Brush.EraserThickness
	}
	if cfg.Brush.Color != "" {
		if c, err := canvas.ParseColor(cfg.Brush.Color); err == nil {
			b = b.WithColor(c)
		}
	}

	if !cfg.Brush.Remember {
		return b
	}

	if value, err := settings.Get(store.KeyBrushColor); err == nil {
		c, err := canvas.ParseColor(value)
		if err != nil {
			logger.Warn("ignoring saved brush color", "value", value, "err", err)
		} else {
			b = b.WithColor(c)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		logger.Warn("read saved brush color", "err", err)
	}

	if eraser, err := settings.GetBool(store.KeyBrushEraser); err == nil {
		b.Eraser = eraser
	} else if !errors.Is(err, store.ErrNotFound) {
		logger.Warn("read saved eraser state", "err", err)
	}

	return b
}

// saveBrush remembers b for the next session.
func saveBrush(settings *store.SettingRepository, b canvas.Brush) error {
	if err := settings.Set(store.KeyBrushColor, b.Color.String()); err != nil {
		return err
	}
	return settings.SetBool(store.KeyBrushEraser, b.Eraser)
}
