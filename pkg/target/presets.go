package target

import "image/color"

// Prompt colours for the default targets.
var (
	Orange = color.RGBA{R: 255, G: 115, B: 0}
	Yellow = color.RGBA{R: 255, G: 240, B: 0}
	Red    = color.RGBA{R: 255, G: 0, B: 0}
)

// Calibration returns the default targets with no intervals, in the order
// the user is asked to click them: orange, yellow, red.
func Calibration() []*Target {
	return []*Target{
		{Name: "orange", Prompt: Orange},
		{Name: "yellow", Prompt: Yellow},
		{Name: "red", Prompt: Red},
	}
}

// Presets returns the default targets with fixed hue intervals.
func Presets() []*Target {
	return []*Target{
		{Name: "orange", Prompt: Orange, Interval: &Interval{
			Low:  HSV{H: 8, S: MinSatVal, V: MinSatVal},
			High: HSV{H: 20, S: MaxSatVal, V: MaxSatVal},
		}},
		{Name: "yellow", Prompt: Yellow, Interval: &Interval{
			Low:  HSV{H: 22, S: MinSatVal, V: MinSatVal},
			High: HSV{H: 35, S: MaxSatVal, V: MaxSatVal},
		}},
		{Name: "red", Prompt: Red, Interval: &Interval{
			Low:  HSV{H: 0, S: MinSatVal, V: MinSatVal},
			High: HSV{H: 6, S: MaxSatVal, V: MaxSatVal},
		}},
	}
}
