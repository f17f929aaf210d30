package tracking

import "github.com/teslashibe/juggle-music/pkg/target"

// State is the calibration state of a session.
type State int

const (
	// StateCalibrating means at least one target still needs a click.
	StateCalibrating State = iota
	// StateTracking means every target is bound. It is terminal.
	StateTracking
)

func (s State) String() string {
	switch s {
	case StateCalibrating:
		return "calibrating"
	case StateTracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// Calibrator binds clicked colour samples to targets, one per click, in list order.
type Calibrator struct {
	targets []*target.Target
}

// NewCalibrator creates a calibrator over targets. Targets that already carry
// an interval are skipped when prompting.
func NewCalibrator(targets []*target.Target) *Calibrator {
	return &Calibrator{targets: targets}
}

// Pending returns the next target waiting for a click.
func (c *Calibrator) Pending() (*target.Target, bool) {
	for _, t := range c.targets {
		if !t.Bound() {
			return t, true
		}
	}
	return nil, false
}

// Bind derives an interval from sample and binds it to the pending target.
// Once every target is bound it does nothing and returns false.
func (c *Calibrator) Bind(sample target.HSV) (*target.Target, bool) {
	t, ok := c.Pending()
	if !ok {
		return nil, false
	}
	t.Bind(target.FromSample(sample))
	return t, true
}

// BoundCount returns how many targets have an interval.
func (c *Calibrator) BoundCount() int {
	n := 0
	for _, t := range c.targets {
		if t.Bound() {
			n++
		}
	}
	return n
}

// State reports whether calibration is complete.
func (c *Calibrator) State() State {
	if _, pending := c.Pending(); pending {
		return StateCalibrating
	}
	return StateTracking
}
