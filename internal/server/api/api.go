// Package api provides HTTP API handlers for controlling the painter and
// managing saved drawings.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/lukis/internal/canvas"
	"github.com/ayusman/lukis/internal/painter"
)

// Painter is the part of the painter the API drives.
type Painter interface {
	Brush() canvas.Brush
	SetColor(c canvas.Color) canvas.Brush
	ToggleEraser() canvas.Brush
	Clear()
	Snapshot() ([]byte, error)
	State() painter.State
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writePNG writes an image response.
func writePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
