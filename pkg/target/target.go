// Package target describes the coloured objects being tracked and the HSV
// intervals used to classify their pixels.
package target

import (
	"fmt"
	"image/color"

	"gocv.io/x/gocv"
)

// HSV is a hue/saturation/value sample in OpenCV's 8-bit convention:
// hue 0-179, saturation and value 0-255.
type HSV struct {
	H, S, V float64
}

// Scalar converts the sample to a gocv scalar for range thresholding.
func (c HSV) Scalar() gocv.Scalar {
	return gocv.NewScalar(c.H, c.S, c.V, 0)
}

func (c HSV) String() string {
	return fmt.Sprintf("(%.0f, %.0f, %.0f)", c.H, c.S, c.V)
}

// Interval is an inclusive HSV classification range.
type Interval struct {
	Low  HSV
	High HSV
}

// Contains reports whether c lies inside the interval on all three channels.
func (iv Interval) Contains(c HSV) bool {
	return c.H >= iv.Low.H && c.H <= iv.High.H &&
		c.S >= iv.Low.S && c.S <= iv.High.S &&
		c.V >= iv.Low.V && c.V <= iv.High.V
}

// Calibration parameters used to turn a clicked sample into an interval.
const (
	HueTolerance = 5
	MinSatVal    = 80
	MaxSatVal    = 255
)

// FromSample derives the classification interval for a clicked pixel:
// hue ±HueTolerance, saturation and value fixed to [MinSatVal, MaxSatVal].
func FromSample(s HSV) Interval {
	return Interval{
		Low:  HSV{H: s.H - HueTolerance, S: MinSatVal, V: MinSatVal},
		High: HSV{H: s.H + HueTolerance, S: MaxSatVal, V: MaxSatVal},
	}
}

// Target is a named object to track.
// Interval is nil until the target has been calibrated.
type Target struct {
	Name     string
	Prompt   color.RGBA // colour of the calibration prompt text
	Interval *Interval
}

// Bound reports whether the target has a classification interval.
func (t *Target) Bound() bool {
	return t.Interval != nil
}

// Bind sets the target's interval.
func (t *Target) Bind(iv Interval) {
	t.Interval = &iv
}

// Names returns the target names in list order.
func Names(targets []*Target) []string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	return names
}
