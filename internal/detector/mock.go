package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu       sync.Mutex
	hands    []HandLandmarks
	sequence [][]HandLandmarks
	err      error
	calls    int
	closed   bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetSequence queues per-frame results. Each Detect call consumes one entry;
// once the queue is empty Detect falls back to the hands set by SetHands.
func (m *MockDetector) SetSequence(seq [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = seq
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.hands, nil
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close records the call and returns nil.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// PointingAt returns a right hand with only the index finger raised and its
// tip at the normalised position (x, y).
func PointingAt(x, y float64) HandLandmarks {
	h := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	// Offsets relative to the index tip, Y grows downward.
	h.Points[Wrist] = Point3D{X: x - 0.05, Y: y + 0.45}

	h.Points[ThumbCMC] = Point3D{X: x - 0.01, Y: y + 0.40}
	h.Points[ThumbMCP] = Point3D{X: x - 0.02, Y: y + 0.35, Z: -0.01}
	h.Points[ThumbIP] = Point3D{X: x - 0.04, Y: y + 0.32, Z: -0.02}
	h.Points[ThumbTip] = Point3D{X: x - 0.06, Y: y + 0.30, Z: -0.03}

	// Index finger extended upward
	h.Points[IndexMCP] = Point3D{X: x, Y: y + 0.25}
	h.Points[IndexPIP] = Point3D{X: x, Y: y + 0.15}
	h.Points[IndexDIP] = Point3D{X: x, Y: y + 0.07}
	h.Points[IndexTip] = Point3D{X: x, Y: y}

	curl(&h, MiddleMCP, x-0.04, y+0.26)
	curl(&h, RingMCP, x-0.08, y+0.28)
	curl(&h, PinkyMCP, x-0.12, y+0.30)

	return h
}

// HoverAt returns a right hand with index and middle fingers raised, the
// index tip at the normalised position (x, y).
func HoverAt(x, y float64) HandLandmarks {
	h := PointingAt(x, y)

	h.Points[MiddleMCP] = Point3D{X: x - 0.04, Y: y + 0.26}
	h.Points[MiddlePIP] = Point3D{X: x - 0.04, Y: y + 0.16}
	h.Points[MiddleDIP] = Point3D{X: x - 0.04, Y: y + 0.08}
	h.Points[MiddleTip] = Point3D{X: x - 0.04, Y: y + 0.01}

	return h
}

// curl places a finger folded back toward the palm, starting at its MCP joint.
func curl(h *HandLandmarks, mcp int, x, y float64) {
	h.Points[mcp] = Point3D{X: x, Y: y, Z: -0.02}
	h.Points[mcp+1] = Point3D{X: x, Y: y - 0.02, Z: -0.05}
	h.Points[mcp+2] = Point3D{X: x + 0.01, Y: y + 0.01, Z: -0.04}
	h.Points[mcp+3] = Point3D{X: x + 0.01, Y: y + 0.03, Z: -0.02}
}
