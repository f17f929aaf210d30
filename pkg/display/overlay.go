package display

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Overlay layout.
const (
	promptBarHeight = 50
	markerRadius    = 5
)

var (
	black      = color.RGBA{A: 255}
	markerBlue = color.RGBA{B: 255, A: 255}
	zoneGreen  = color.RGBA{G: 200, A: 255}
)

// Prompt draws a black bar across the top of img with text in c.
func Prompt(img *gocv.Mat, text string, c color.RGBA) {
	bar := image.Rect(0, 0, img.Cols(), promptBarHeight)
	gocv.Rectangle(img, bar, black, -1)
	gocv.PutText(img, text, image.Pt(100, 30), gocv.FontHersheySimplex, 1, c, 2)
}

// PromptText is the calibration instruction for a target.
func PromptText(name string) string {
	return "Click on the " + name + " object"
}

// Marker draws a filled dot at a tracked centroid.
func Marker(img *gocv.Mat, at image.Point, radius int) {
	if radius <= 0 {
		radius = markerRadius
	}
	gocv.Circle(img, at, radius, markerBlue, -1)
}

// Zone outlines the trigger zone from the top-left corner to size.
func Zone(img *gocv.Mat, size image.Point) {
	gocv.Rectangle(img, image.Rectangle{Max: size}, zoneGreen, 1)
}
