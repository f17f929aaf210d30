// Package display shows annotated frames in a window and collects pointer
// clicks and key presses.
package display

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// KeyEscape is the key code that ends a session.
const KeyEscape = 27

// eventLButtonDown is OpenCV's EVENT_LBUTTONDOWN.
const eventLButtonDown = 1

// Window is a titled display surface backed by an OpenCV highgui window.
type Window struct {
	win *gocv.Window

	mu     sync.Mutex
	clicks []image.Point
}

// NewWindow opens a window and starts listening for left-button presses.
func NewWindow(title string) *Window {
	w := &Window{win: gocv.NewWindow(title)}
	w.win.SetMouseHandler(w.onMouse, nil)
	return w
}

// onMouse runs inside WaitKey on the loop goroutine.
func (w *Window) onMouse(event, x, y, flags int, userdata interface{}) {
	if event != eventLButtonDown {
		return
	}
	w.mu.Lock()
	w.clicks = append(w.clicks, image.Pt(x, y))
	w.mu.Unlock()
}

// Show renders frame.
func (w *Window) Show(frame gocv.Mat) error {
	return w.win.IMShow(frame)
}

// WaitKey polls the keyboard for delay and returns the low byte of the key
// code, or -1 when nothing was pressed.
func (w *Window) WaitKey(delay time.Duration) int {
	ms := int(delay / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	key := w.win.WaitKey(ms)
	if key < 0 {
		return -1
	}
	return key & 0xFF
}

// Clicks drains the left-button presses recorded since the last call.
func (w *Window) Clicks() []image.Point {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.clicks
	w.clicks = nil
	return out
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
