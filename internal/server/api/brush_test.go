package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayusman/lukis/internal/canvas"
)

func TestBrushHandler_Get(t *testing.T) {
	handler := NewBrushHandler(newFakePainter())

	req := httptest.NewRequest(http.MethodGet, "/api/brush", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response brushResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Color != "red" || response.Eraser || response.Thickness != canvas.OverlayThickness {
		t.Errorf("unexpected brush %+v", response)
	}
	if len(response.Palette) == 0 {
		t.Error("expected palette in response")
	}
}

func TestBrushHandler_SetColor(t *testing.T) {
	p := newFakePainter()
	p.ToggleEraser()
	handler := NewBrushHandler(p)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantColor  canvas.Color
	}{
		{name: "palette name", body: `{"color": "green"}`, wantStatus: http.StatusOK, wantColor: canvas.Green},
		{name: "hex", body: `{"color": "#0000ff"}`, wantStatus: http.StatusOK, wantColor: canvas.Blue},
		{name: "unknown color", body: `{"color": "teal"}`, wantStatus: http.StatusBadRequest, wantColor: canvas.Blue},
		{name: "invalid json", body: `{`, wantStatus: http.StatusBadRequest, wantColor: canvas.Blue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/brush", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if b := p.Brush(); b.Color != tt.wantColor || b.Eraser {
				t.Errorf("brush = %+v, want %v pen", b, tt.wantColor)
			}
		})
	}
}

func TestBrushHandler_ToggleEraser(t *testing.T) {
	p := newFakePainter()
	handler := NewBrushHandler(p)

	req := httptest.NewRequest(http.MethodPost, "/api/brush/eraser", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !p.Brush().Eraser {
		t.Error("eraser should be enabled")
	}

	t.Run("only allows POST", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/brush/eraser", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}

func TestBrushHandler_MethodsAndPaths(t *testing.T) {
	handler := NewBrushHandler(newFakePainter())

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{method: http.MethodDelete, path: "/api/brush", want: http.StatusMethodNotAllowed},
		{method: http.MethodGet, path: "/api/brush/size", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != tt.want {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, tt.want, rec.Code)
		}
	}
}
