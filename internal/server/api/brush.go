package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ayusman/lukis/internal/canvas"
)

// BrushHandler handles /api/brush and /api/brush/eraser.
type BrushHandler struct {
	painter Painter
}

// NewBrushHandler creates a new BrushHandler for p.
func NewBrushHandler(p Painter) *BrushHandler {
	return &BrushHandler{painter: p}
}

type setBrushRequest struct {
	Color string `json:"color"`
}

type brushResponse struct {
	Color     string   `json:"color"`
	Eraser    bool     `json:"eraser"`
	Thickness int      `json:"thickness"`
	Palette   []string `json:"palette"`
}

func toBrushResponse(b canvas.Brush) brushResponse {
	return brushResponse{
		Color:     b.Color.String(),
		Eraser:    b.Eraser,
		Thickness: b.Thickness,
		Palette:   canvas.PaletteNames,
	}
}

// ServeHTTP implements the http.Handler interface.
func (h *BrushHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/brush")
	path = strings.Trim(path, "/")

	switch path {
	case "":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, toBrushResponse(h.painter.Brush()))
		case http.MethodPut:
			h.set(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "eraser":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, toBrushResponse(h.painter.ToggleEraser()))
	default:
		http.NotFound(w, r)
	}
}

// set handles PUT /api/brush and selects a pen color.
func (h *BrushHandler) set(w http.ResponseWriter, r *http.Request) {
	var req setBrushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c, err := canvas.ParseColor(req.Color)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toBrushResponse(h.painter.SetColor(c)))
}
