// Package display delivers composited frames to the screen and to network viewers.
package display

import (
	"errors"

	"gocv.io/x/gocv"
)

// ErrQuit is returned by a sink when the user asked to quit.
var ErrQuit = errors.New("display closed by user")

// Sink receives every composited frame.
// Show must not retain frame after it returns.
type Sink interface {
	Show(frame gocv.Mat) error
	Close() error
}

// Discard is a Sink that drops frames.
type Discard struct{}

func (Discard) Show(gocv.Mat) error { return nil }
func (Discard) Close() error        { return nil }
