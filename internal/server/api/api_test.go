package api

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ayusman/lukis/internal/canvas"
	"github.com/ayusman/lukis/internal/painter"
	"github.com/ayusman/lukis/internal/store"
	"github.com/ayusman/lukis/internal/stroke"
)

var fakePNG = []byte("\x89PNG\r\n\x1a\nfake")

// fakePainter records commands without touching OpenCV.
type fakePainter struct {
	mu      sync.Mutex
	brush   canvas.Brush
	clears  int
	snapErr error
}

func newFakePainter() *fakePainter {
	return &fakePainter{brush: canvas.DefaultBrush(canvas.ModeOverlay)}
}

func (f *fakePainter) Brush() canvas.Brush {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.brush
}

func (f *fakePainter) SetColor(c canvas.Color) canvas.Brush {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.brush = f.brush.WithColor(c)
	return f.brush
}

func (f *fakePainter) ToggleEraser() canvas.Brush {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.brush = f.brush.Toggled()
	return f.brush
}

func (f *fakePainter) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
}

func (f *fakePainter) Snapshot() ([]byte, error) {
	if f.snapErr != nil {
		return nil, f.snapErr
	}
	return fakePNG, nil
}

func (f *fakePainter) State() painter.State {
	return painter.State{
		Mode:   canvas.ModeOverlay,
		Brush:  f.Brush(),
		Canvas: stroke.Size{Width: 640, Height: 480},
	}
}

var errNoCanvas = errors.New("no canvas")

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}
