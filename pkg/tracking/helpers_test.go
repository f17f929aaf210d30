package tracking

import (
	"image"
	"image/color"
	"testing"

	"github.com/teslashibe/juggle-music/pkg/target"
	"gocv.io/x/gocv"
)

const (
	testRows = 480
	testCols = 640
)

// Pure BGR colours and the HSV samples OpenCV converts them to.
var (
	bgrOrange = color.RGBA{R: 255, G: 128, A: 255}
	bgrYellow = color.RGBA{R: 255, G: 255, A: 255}
	bgrRed    = color.RGBA{R: 255, A: 255}

	hsvOrange = target.HSV{H: 15, S: 255, V: 255}
	hsvYellow = target.HSV{H: 30, S: 255, V: 255}
	hsvRed    = target.HSV{H: 0, S: 255, V: 255}
)

// blackFrame returns a zeroed three-channel frame.
func blackFrame(t *testing.T) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), testRows, testCols, gocv.MatTypeCV8UC3)
	if m.Empty() {
		t.Fatal("failed to allocate frame")
	}
	return m
}

// fillHSV paints r with an HSV sample. Channel order is H, S, V.
func fillHSV(m *gocv.Mat, r image.Rectangle, c target.HSV) {
	gocv.Rectangle(m, r, color.RGBA{R: uint8(c.V), G: uint8(c.S), B: uint8(c.H)}, -1)
}

// squareAt returns the rectangle whose filled pixels are centred on c.
func squareAt(c image.Point, half int) image.Rectangle {
	return image.Rect(c.X-half, c.Y-half, c.X+half+1, c.Y+half+1)
}

func near(a, b image.Point, tol int) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx >= -tol && dx <= tol && dy >= -tol && dy <= tol
}
