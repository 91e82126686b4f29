package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayusman/lukis/internal/store"
)

func TestDrawingHandler_Create(t *testing.T) {
	s := newTestStore(t)
	handler := NewDrawingHandler(s, newFakePainter())

	tests := []struct {
		name     string
		body     string
		wantName string
	}{
		{name: "named", body: `{"name": "house"}`, wantName: "house"},
		{name: "empty body", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/drawings", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusCreated {
				t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
			}

			var response drawingResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response.ID == "" {
				t.Error("expected generated ID")
			}
			if tt.wantName != "" && response.Name != tt.wantName {
				t.Errorf("name = %q, want %q", response.Name, tt.wantName)
			}
			if response.Name == "" {
				t.Error("expected a default name")
			}
			if response.Mode != "overlay" || response.Width != 640 || response.Height != 480 {
				t.Errorf("unexpected metadata %+v", response)
			}
			if response.Image != "/api/drawings/"+response.ID+"/image" {
				t.Errorf("image = %q", response.Image)
			}

			saved, err := s.Drawings().GetByID(response.ID)
			if err != nil {
				t.Fatalf("drawing not stored: %v", err)
			}
			if !bytes.Equal(saved.PNG, fakePNG) {
				t.Error("stored image does not match the snapshot")
			}
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/drawings", bytes.NewBufferString(`{"name":`))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})
}

func TestDrawingHandler_CreateWithoutPainter(t *testing.T) {
	handler := NewDrawingHandler(newTestStore(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/drawings", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestDrawingHandler_ListGetImageDelete(t *testing.T) {
	s := newTestStore(t)
	handler := NewDrawingHandler(s, nil)

	d := &store.Drawing{Name: "tree", Mode: "whiteboard", Width: 320, Height: 240, PNG: fakePNG}
	if err := s.Drawings().Create(d); err != nil {
		t.Fatalf("failed to create drawing: %v", err)
	}

	t.Run("list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/drawings", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var response listDrawingsResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(response.Drawings) != 1 || response.Drawings[0].Name != "tree" {
			t.Errorf("unexpected list %+v", response.Drawings)
		}
		if response.Drawings[0].Size != len(fakePNG) {
			t.Errorf("size = %d, want %d", response.Drawings[0].Size, len(fakePNG))
		}
	})

	t.Run("get", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/drawings/"+d.ID, nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var response drawingResponse
		json.NewDecoder(rec.Body).Decode(&response)
		if response.ID != d.ID || response.Mode != "whiteboard" {
			t.Errorf("unexpected drawing %+v", response)
		}
	})

	t.Run("image", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/drawings/"+d.ID+"/image", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("expected Content-Type image/png, got %s", ct)
		}
		if !bytes.Equal(rec.Body.Bytes(), fakePNG) {
			t.Error("unexpected image body")
		}
	})

	t.Run("rename", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/drawings/"+d.ID, bytes.NewBufferString(`{"name": "oak"}`))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var response drawingResponse
		json.NewDecoder(rec.Body).Decode(&response)
		if response.Name != "oak" {
			t.Errorf("name = %q, want oak", response.Name)
		}
	})

	t.Run("delete", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/drawings/"+d.ID, nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
		}
		if _, err := s.Drawings().GetByID(d.ID); err == nil {
			t.Error("drawing should be deleted")
		}
	})
}

func TestDrawingHandler_NotFound(t *testing.T) {
	handler := NewDrawingHandler(newTestStore(t), nil)

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{method: http.MethodGet, path: "/api/drawings/missing"},
		{method: http.MethodGet, path: "/api/drawings/missing/image"},
		{method: http.MethodDelete, path: "/api/drawings/missing"},
		{method: http.MethodPut, path: "/api/drawings/missing", body: `{"name": "x"}`},
		{method: http.MethodGet, path: "/api/drawings/missing/thumbnail"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, http.StatusNotFound, rec.Code)
		}
	}
}

func TestDrawingHandler_MethodNotAllowed(t *testing.T) {
	handler := NewDrawingHandler(newTestStore(t), nil)

	tests := []struct {
		method string
		path   string
	}{
		{method: http.MethodPatch, path: "/api/drawings"},
		{method: http.MethodPost, path: "/api/drawings/some-id"},
		{method: http.MethodDelete, path: "/api/drawings/some-id/image"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}
