package display

import (
	"bytes"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestHub_Publish(t *testing.T) {
	h := NewHub(0)
	defer h.Close()

	if h.quality != DefaultQuality {
		t.Errorf("quality = %d, want %d", h.quality, DefaultQuality)
	}
	if h.Latest() != nil {
		t.Error("Latest() should be nil before the first frame")
	}

	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish([]byte("one"))

	select {
	case got := <-ch:
		if string(got) != "one" {
			t.Errorf("received %q, want one", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
	}
}

func TestHub_SlowSubscriberGetsNewest(t *testing.T) {
	h := NewHub(90)
	defer h.Close()

	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish([]byte("one"))
	h.Publish([]byte("two"))
	h.Publish([]byte("three"))

	if got := <-ch; string(got) != "three" {
		t.Errorf("received %q, want three", got)
	}
	select {
	case got := <-ch:
		t.Errorf("unexpected extra frame %q", got)
	default:
	}
}

func TestHub_LateJoinerGetsLatest(t *testing.T) {
	h := NewHub(90)
	defer h.Close()

	h.Publish([]byte("first"))

	ch, cancel := h.Subscribe()
	defer cancel()

	if got := <-ch; string(got) != "first" {
		t.Errorf("received %q, want first", got)
	}
}

func TestHub_CancelAndClose(t *testing.T) {
	h := NewHub(90)

	ch1, cancel1 := h.Subscribe()
	ch2, _ := h.Subscribe()

	if h.Subscribers() != 2 {
		t.Fatalf("Subscribers() = %d, want 2", h.Subscribers())
	}

	cancel1()
	cancel1()
	if _, ok := <-ch1; ok {
		t.Error("cancelled channel should be closed")
	}
	if h.Subscribers() != 1 {
		t.Errorf("Subscribers() = %d, want 1", h.Subscribers())
	}

	h.Close()
	if _, ok := <-ch2; ok {
		t.Error("channel should be closed with the hub")
	}

	ch3, cancel3 := h.Subscribe()
	defer cancel3()
	if _, ok := <-ch3; ok {
		t.Error("subscribing to a closed hub should yield a closed channel")
	}

	// Publishing after close is ignored.
	h.Publish([]byte("late"))
}

func TestHub_Show(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	h := NewHub(75)
	defer h.Close()

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	if err := h.Show(frame); err != nil {
		t.Fatalf("Show() error = %v", err)
	}

	// JPEG start-of-image marker.
	if !bytes.HasPrefix(h.Latest(), []byte{0xff, 0xd8}) {
		t.Error("Latest() is not a JPEG")
	}

	empty := gocv.NewMat()
	defer empty.Close()
	if err := h.Show(empty); err != nil {
		t.Errorf("Show(empty) error = %v", err)
	}
}

func TestIsQuitKey(t *testing.T) {
	tests := []struct {
		key  int
		want bool
	}{
		{key: 'q', want: true},
		{key: 'Q', want: true},
		{key: 27, want: true},
		{key: -1, want: false},
		{key: 'a', want: false},
		{key: 0x100000 | 'q', want: true},
	}

	for _, tt := range tests {
		if got := isQuitKey(tt.key); got != tt.want {
			t.Errorf("isQuitKey(%d) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestDiscard(t *testing.T) {
	var s Sink = Discard{}
	if err := s.Show(gocv.Mat{}); err != nil {
		t.Errorf("Show() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
