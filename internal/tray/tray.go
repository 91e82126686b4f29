// Package tray provides a system tray menu for controlling the painter.
package tray

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/getlantern/systray"

	"github.com/ayusman/lukis/internal/canvas"
)

// Menu item titles.
const (
	titleEraserOn  = "● Eraser"
	titleEraserOff = "○ Eraser"
)

// Tray is the system tray menu. Callbacks run on the menu goroutine, outside
// the tray's lock.
type Tray struct {
	logger *log.Logger

	mu      sync.RWMutex
	eraser  bool
	color   canvas.Color
	onColor func(c canvas.Color)
	onErase func()
	onClear func()
	onSave  func()
	onOpen  func()
	onQuit  func()

	// Menu items stored for later updates
	menuEraser *systray.MenuItem
	menuColor  *systray.MenuItem
}

// New creates a new Tray.
func New(logger *log.Logger) *Tray {
	if logger == nil {
		logger = log.Default()
	}
	return &Tray{
		logger: logger.WithPrefix("tray"),
		color:  canvas.Red,
	}
}

// OnColor sets the callback for the color items.
func (t *Tray) OnColor(fn func(c canvas.Color)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onColor = fn
}

// OnToggleEraser sets the callback for the eraser item.
func (t *Tray) OnToggleEraser(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onErase = fn
}

// OnClear sets the callback for the clear item.
func (t *Tray) OnClear(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClear = fn
}

// OnSave sets the callback for the save item.
func (t *Tray) OnSave(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSave = fn
}

// OnOpen sets the callback for the browser item. Without one the item is
// disabled.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback for the quit item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called or the quit item is clicked.
// It must be called from the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Lukis")
	systray.SetTooltip("Lukis finger painting")

	t.mu.Lock()
	t.menuColor = systray.AddMenuItem(colorTitle(t.color), "Current brush color")
	t.menuColor.Disable()
	t.menuEraser = systray.AddMenuItem(eraserTitle(t.eraser), "Toggle the eraser")
	open := t.onOpen != nil
	t.mu.Unlock()
	systray.AddSeparator()

	colors := []struct {
		item  *systray.MenuItem
		color canvas.Color
	}{
		{systray.AddMenuItem("Red", "Paint in red"), canvas.Red},
		{systray.AddMenuItem("Green", "Paint in green"), canvas.Green},
		{systray.AddMenuItem("Blue", "Paint in blue"), canvas.Blue},
	}
	systray.AddSeparator()

	menuClear := systray.AddMenuItem("Clear", "Clear the canvas")
	menuSave := systray.AddMenuItem("Save Drawing", "Save the canvas as a drawing")
	menuOpen := systray.AddMenuItem("Open in Browser", "Open the web view")
	if !open {
		menuOpen.Disable()
	}
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Lukis")

	for _, c := range colors {
		go func() {
			for range c.item.ClickedCh {
				t.handleColor(c.color)
			}
		}()
	}

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuEraser.ClickedCh:
				t.handleEraser()
			case <-menuClear.ClickedCh:
				t.call(t.clearFn())
			case <-menuSave.ClickedCh:
				t.call(t.saveFn())
			case <-menuOpen.ClickedCh:
				t.call(t.openFn())
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
	t.logger.Debug("tray closed")
}

// handleColor handles a color item click.
func (t *Tray) handleColor(c canvas.Color) {
	t.mu.RLock()
	callback := t.onColor
	t.mu.RUnlock()

	t.logger.Debug("color selected", "color", c)
	if callback != nil {
		callback(c)
	}
}

// handleEraser handles the eraser item click.
func (t *Tray) handleEraser() {
	t.mu.RLock()
	callback := t.onErase
	t.mu.RUnlock()

	// The title follows the brush through SetBrush.
	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

func (t *Tray) clearFn() func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onClear
}

func (t *Tray) saveFn() func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onSave
}

func (t *Tray) openFn() func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onOpen
}

func (t *Tray) call(fn func()) {
	if fn != nil {
		fn()
	}
}

// SetBrush updates the menu to show b. Safe to call before Run.
func (t *Tray) SetBrush(b canvas.Brush) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.eraser = b.Eraser
	t.color = b.Color

	if t.menuEraser != nil {
		t.menuEraser.SetTitle(eraserTitle(b.Eraser))
	}
	if t.menuColor != nil {
		t.menuColor.SetTitle(colorTitle(b.Color))
	}
}

// Eraser reports whether the menu shows the eraser as active.
func (t *Tray) Eraser() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.eraser
}

// Color returns the color the menu shows.
func (t *Tray) Color() canvas.Color {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.color
}

func eraserTitle(on bool) string {
	if on {
		return titleEraserOn
	}
	return titleEraserOff
}

func colorTitle(c canvas.Color) string {
	return "Color: " + c.String()
}
