package display

import (
	"gocv.io/x/gocv"
)

const keyEsc = 27

// Window shows frames in an OS window. It must be created, shown and
// closed from the main goroutine on platforms whose GUI toolkit requires it.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window titled title.
func NewWindow(title string, fullscreen bool) *Window {
	win := gocv.NewWindow(title)
	if fullscreen {
		win.SetWindowProperty(gocv.WindowPropertyFullscreen, gocv.WindowFullscreen)
	}
	return &Window{win: win}
}

// Show draws frame and polls the keyboard. It returns ErrQuit when q or
// Esc was pressed.
func (w *Window) Show(frame gocv.Mat) error {
	w.win.IMShow(frame)
	if isQuitKey(w.win.WaitKey(1)) {
		return ErrQuit
	}
	return nil
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}

func isQuitKey(key int) bool {
	switch key & 0xff {
	case 'q', 'Q', keyEsc:
		return key >= 0
	}
	return false
}
