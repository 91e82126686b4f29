package api

import (
	"net/http"
	"strings"
)

// CanvasHandler handles /api/canvas/clear, /api/canvas/snapshot and /api/state.
type CanvasHandler struct {
	painter Painter
}

// NewCanvasHandler creates a new CanvasHandler for p.
func NewCanvasHandler(p Painter) *CanvasHandler {
	return &CanvasHandler{painter: p}
}

// ServeHTTP implements the http.Handler interface.
func (h *CanvasHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimSuffix(r.URL.Path, "/") {
	case "/api/canvas/clear":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.painter.Clear()
		w.WriteHeader(http.StatusNoContent)

	case "/api/canvas/snapshot":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		data, err := h.painter.Snapshot()
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "Canvas unavailable")
			return
		}
		writePNG(w, data)

	case "/api/state":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.painter.State())

	default:
		http.NotFound(w, r)
	}
}
