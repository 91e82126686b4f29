package display

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// DefaultQuality is the JPEG quality used by NewHub when given zero.
const DefaultQuality = 80

// Hub encodes frames as JPEG and fans them out to subscribers.
//
// Each subscriber has a one-frame mailbox: a slow reader skips frames
// rather than blocking the painter. The latest frame is kept so that new
// subscribers and snapshot requests get a picture immediately.
type Hub struct {
	quality int

	mu     sync.Mutex
	latest []byte
	subs   map[chan []byte]struct{}
	closed bool
}

// NewHub creates a Hub encoding at the given JPEG quality (1-100).
func NewHub(quality int) *Hub {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Hub{
		quality: quality,
		subs:    make(map[chan []byte]struct{}),
	}
}

// Show encodes frame and publishes it.
func (h *Hub) Show(frame gocv.Mat) error {
	if frame.Empty() {
		return nil
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame, []int{gocv.IMWriteJpegQuality, h.quality})
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())

	h.Publish(data)
	return nil
}

// Publish hands an encoded JPEG to every subscriber.
func (h *Hub) Publish(jpeg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.latest = jpeg

	for ch := range h.subs {
		select {
		case ch <- jpeg:
		default:
			// Replace the stale frame.
			select {
			case <-ch:
			default:
			}
			ch <- jpeg
		}
	}
}

// Subscribe registers a new viewer. The returned channel is closed when
// cancel is called or the hub is closed.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 1)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	if h.latest != nil {
		ch <- h.latest
	}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[ch]; ok {
				delete(h.subs, ch)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Latest returns the most recent frame, or nil before the first one.
func (h *Hub) Latest() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

// Subscribers returns the number of connected viewers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects every subscriber.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
	return nil
}
