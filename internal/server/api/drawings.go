package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/lukis/internal/store"
)

// DrawingHandler handles HTTP requests for saved drawings.
type DrawingHandler struct {
	store   *store.Store
	painter Painter
}

// NewDrawingHandler creates a new DrawingHandler. p may be nil, in which
// case new drawings cannot be saved.
func NewDrawingHandler(s *store.Store, p Painter) *DrawingHandler {
	return &DrawingHandler{store: s, painter: p}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *DrawingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/drawings, /api/drawings/{id}, /api/drawings/{id}/image
	path := strings.TrimPrefix(r.URL.Path, "/api/drawings")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id, rest, _ := strings.Cut(path, "/")
	switch rest {
	case "":
	case "image":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.image(w, r, id)
		return
	default:
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.rename(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createDrawingRequest struct {
	Name string `json:"name"`
}

type renameDrawingRequest struct {
	Name string `json:"name"`
}

type drawingResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Mode      string `json:"mode"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Size      int    `json:"size"`
	Image     string `json:"image"`
	CreatedAt string `json:"created_at"`
}

type listDrawingsResponse struct {
	Drawings []drawingResponse `json:"drawings"`
}

func toDrawingResponse(d *store.Drawing) drawingResponse {
	return drawingResponse{
		ID:        d.ID,
		Name:      d.Name,
		Mode:      d.Mode,
		Width:     d.Width,
		Height:    d.Height,
		Size:      d.Size,
		Image:     "/api/drawings/" + d.ID + "/image",
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
}

// list handles GET /api/drawings.
func (h *DrawingHandler) list(w http.ResponseWriter, r *http.Request) {
	drawings, err := h.store.Drawings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list drawings")
		return
	}

	response := listDrawingsResponse{
		Drawings: make([]drawingResponse, 0, len(drawings)),
	}
	for _, d := range drawings {
		response.Drawings = append(response.Drawings, toDrawingResponse(d))
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/drawings and saves the current canvas.
// The request body is optional.
func (h *DrawingHandler) create(w http.ResponseWriter, r *http.Request) {
	if h.painter == nil {
		writeError(w, http.StatusServiceUnavailable, "Painter is not running")
		return
	}

	var req createDrawingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	png, err := h.painter.Snapshot()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Canvas unavailable")
		return
	}

	state := h.painter.State()
	d := &store.Drawing{
		Name:   req.Name,
		Mode:   string(state.Mode),
		Width:  state.Canvas.Width,
		Height: state.Canvas.Height,
		PNG:    png,
	}
	if err := h.store.Drawings().Create(d); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save drawing")
		return
	}

	writeJSON(w, http.StatusCreated, toDrawingResponse(d))
}

// get handles GET /api/drawings/{id}.
func (h *DrawingHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	d, ok := h.lookup(w, id)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toDrawingResponse(d))
}

// image handles GET /api/drawings/{id}/image.
func (h *DrawingHandler) image(w http.ResponseWriter, r *http.Request, id string) {
	d, ok := h.lookup(w, id)
	if !ok {
		return
	}
	writePNG(w, d.PNG)
}

// rename handles PUT /api/drawings/{id}.
func (h *DrawingHandler) rename(w http.ResponseWriter, r *http.Request, id string) {
	var req renameDrawingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	if err := h.store.Drawings().Rename(id, req.Name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Drawing not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to rename drawing")
		return
	}

	h.get(w, r, id)
}

// delete handles DELETE /api/drawings/{id}.
func (h *DrawingHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Drawings().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Drawing not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete drawing")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DrawingHandler) lookup(w http.ResponseWriter, id string) (*store.Drawing, bool) {
	d, err := h.store.Drawings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Drawing not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get drawing")
		return nil, false
	}
	return d, true
}
