// Package server provides the HTTP surface of lukis: brush and canvas
// controls, saved drawings, a live MJPEG stream and fingertip events.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ayusman/lukis/internal/display"
	"github.com/ayusman/lukis/internal/server/api"
	"github.com/ayusman/lukis/internal/store"
)

// shutdownTimeout bounds how long Serve waits for open requests on exit.
const shutdownTimeout = 5 * time.Second

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Painter   api.Painter
	Hub       *display.Hub
	Logger    *log.Logger
}

// Server represents the HTTP server for the lukis application.
type Server struct {
	config Config
	mux    *http.ServeMux
	events *EventsHandler
	logger *log.Logger
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("server")

	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		events: NewEventsHandler(logger),
		logger: logger,
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/events", s.events)

	if s.config.Painter != nil {
		brush := api.NewBrushHandler(s.config.Painter)
		s.mux.Handle("/api/brush", brush)
		s.mux.Handle("/api/brush/", brush)

		canvasHandler := api.NewCanvasHandler(s.config.Painter)
		s.mux.Handle("/api/canvas/", canvasHandler)
		s.mux.Handle("/api/state", canvasHandler)
	}

	if s.config.Store != nil {
		drawings := api.NewDrawingHandler(s.config.Store, s.config.Painter)
		s.mux.Handle("/api/drawings", drawings)
		s.mux.Handle("/api/drawings/", drawings)
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Hub))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// Events returns the websocket broadcaster. Wire the painter's observers to it.
func (s *Server) Events() *EventsHandler {
	return s.events
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Painter != nil {
		response["running"] = s.config.Painter.State().Running
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return s.Serve(context.Background(), addr)
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.events.Close()
		return err
	case <-ctx.Done():
	}

	s.events.Close()
	if s.config.Hub != nil {
		// Ends open MJPEG responses.
		s.config.Hub.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
