package tracking

import (
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/juggle-music/pkg/debug"
	"github.com/teslashibe/juggle-music/pkg/target"
	"gocv.io/x/gocv"
)

// Processor turns HSV frames into per-target centroid events.
type Processor struct {
	cfg        Config
	targets    []*target.Target
	calibrator *Calibrator
	classifier *Classifier
	sinks      []Sink
	logger     *slog.Logger

	// mu guards target bindings against concurrent Status readers.
	mu sync.RWMutex

	frames      atomic.Int64
	triggers    atomic.Int64
	lastTrigger map[string]time.Time
	// missing holds targets in a miss streak that has already been reported.
	missing map[string]bool
	now     func() time.Time
}

// NewProcessor creates a frame processor over targets.
// In preset mode every target must already have an interval.
func NewProcessor(cfg Config, targets []*target.Target, logger *slog.Logger, sinks ...Sink) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets configured")
	}
	if cfg.Mode == ModePreset {
		for _, t := range targets {
			if !t.Bound() {
				return nil, fmt.Errorf("preset mode: target %q has no interval", t.Name)
			}
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Processor{
		cfg:         cfg,
		targets:     targets,
		calibrator:  NewCalibrator(targets),
		classifier:  NewClassifier(),
		sinks:       sinks,
		logger:      logger,
		lastTrigger: make(map[string]time.Time),
		missing:     make(map[string]bool),
		now:         time.Now,
	}, nil
}

// AddSink registers another event sink.
func (p *Processor) AddSink(s Sink) {
	p.sinks = append(p.sinks, s)
}

// Config returns the processor configuration.
func (p *Processor) Config() Config {
	return p.cfg
}

// Targets returns the targets in list order.
func (p *Processor) Targets() []*target.Target {
	return p.targets
}

// State returns the calibration state.
func (p *Processor) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.calibrator.State()
}

// Pending returns the target the user should click next, if any.
func (p *Processor) Pending() (*target.Target, bool) {
	if p.cfg.Mode != ModeCalibrate {
		return nil, false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.calibrator.Pending()
}

// Frames returns how many frames have been processed.
func (p *Processor) Frames() int64 {
	return p.frames.Load()
}

// Triggers returns how many trigger events have fired.
func (p *Processor) Triggers() int64 {
	return p.triggers.Load()
}

// TargetStatus describes one target for status reporting.
type TargetStatus struct {
	Name  string      `json:"name"`
	Bound bool        `json:"bound"`
	Low   *target.HSV `json:"low,omitempty"`
	High  *target.HSV `json:"high,omitempty"`
}

// Status is a point-in-time snapshot of the processor.
type Status struct {
	Mode     Mode           `json:"mode"`
	State    string         `json:"state"`
	Pending  string         `json:"pending,omitempty"`
	Targets  []TargetStatus `json:"targets"`
	Frames   int64          `json:"frames"`
	Triggers int64          `json:"triggers"`
}

// Status returns a snapshot safe to call from other goroutines.
func (p *Processor) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	st := Status{
		Mode:     p.cfg.Mode,
		State:    p.calibrator.State().String(),
		Targets:  make([]TargetStatus, len(p.targets)),
		Frames:   p.frames.Load(),
		Triggers: p.triggers.Load(),
	}
	if t, ok := p.calibrator.Pending(); ok && p.cfg.Mode == ModeCalibrate {
		st.Pending = t.Name
	}
	for i, t := range p.targets {
		ts := TargetStatus{Name: t.Name, Bound: t.Bound()}
		if t.Bound() {
			low, high := t.Interval.Low, t.Interval.High
			ts.Low, ts.High = &low, &high
		}
		st.Targets[i] = ts
	}
	return st
}

// Preprocess blurs frame into blurred and converts the result to HSV.
// frame must be a three-channel BGR image.
func (p *Processor) Preprocess(frame gocv.Mat, blurred, hsv *gocv.Mat) error {
	if err := gocv.Blur(frame, blurred, image.Pt(p.cfg.BlurSize, p.cfg.BlurSize)); err != nil {
		return fmt.Errorf("blur: %w", err)
	}
	if err := gocv.CvtColor(*blurred, hsv, gocv.ColorBGRToHSV); err != nil {
		return fmt.Errorf("convert to hsv: %w", err)
	}
	return nil
}

// Process locates every bound target in hsv and notifies the sinks.
// While calibrating nothing is tracked and nil is returned. A threshold
// failure aborts the frame before any sink sees it.
func (p *Processor) Process(hsv gocv.Mat) ([]Event, error) {
	frame := p.frames.Add(1)

	// Bindings only change on this goroutine, so no lock is needed to read them.
	if p.calibrator.State() != StateTracking {
		return nil, nil
	}

	type located struct {
		region Region
		ok     bool
	}
	found := make([]located, len(p.targets))
	for i, t := range p.targets {
		region, ok, err := p.classifier.Locate(hsv, *t.Interval)
		if err != nil {
			return nil, fmt.Errorf("locate %s: %w", t.Name, err)
		}
		found[i] = located{region: region, ok: ok}
	}

	now := p.now()
	events := make([]Event, 0, len(p.targets))

	for i, t := range p.targets {
		ev := Event{Target: t.Name, Frame: frame, Time: now}

		region, ok := found[i].region, found[i].ok
		if ok {
			ev.Centroid, ok = region.Centroid()
		}
		if !ok {
			p.reportMissing(t.Name)
			events = append(events, ev)
			p.emit(ev)
			continue
		}

		delete(p.missing, t.Name)
		ev.Found = true
		debug.TrackLog("🎯 %s at (%d, %d) area=%.0f\n", t.Name, ev.Centroid.X, ev.Centroid.Y, region.Area)

		if p.cfg.Triggers() && p.cfg.InTriggerZone(ev.Centroid) && p.retriggerReady(t.Name, now) {
			ev.Triggered = true
			p.triggers.Add(1)
			p.lastTrigger[t.Name] = now
		}

		events = append(events, ev)
		p.emit(ev)
	}

	return events, nil
}

// reportMissing logs the first frame of a miss streak at info level and the
// rest at debug.
func (p *Processor) reportMissing(name string) {
	if p.missing[name] {
		p.logger.Debug("no color range yet", "target", name)
		return
	}
	p.missing[name] = true
	p.logger.Info("no color range yet", "target", name)
}

// Click handles a left-button press at pt. In calibrate mode it binds the
// sampled colour to the pending target; in preset mode it only logs it.
func (p *Processor) Click(hsv gocv.Mat, pt image.Point) {
	sample, ok := SampleAt(hsv, pt)
	if !ok {
		debug.TrackLog("🖱️  click outside frame at (%d, %d)\n", pt.X, pt.Y)
		return
	}

	if p.cfg.Mode != ModeCalibrate {
		p.logger.Info("sampled color", "x", pt.X, "y", pt.Y, "hsv", sample.String(), "matches", p.matching(sample))
		return
	}

	p.mu.Lock()
	t, bound := p.calibrator.Bind(sample)
	p.mu.Unlock()
	if !bound {
		debug.TrackLog("🖱️  all targets bound, ignoring click at (%d, %d)\n", pt.X, pt.Y)
		return
	}

	p.logger.Info("calibrated target",
		"target", t.Name,
		"hsv", sample.String(),
		"hue_low", t.Interval.Low.H,
		"hue_high", t.Interval.High.H,
		"bound", p.calibrator.BoundCount(),
		"of", len(p.targets),
	)

	if p.calibrator.State() == StateTracking {
		p.logger.Info("calibration complete, tracking enabled")
	}
}

// matching names the first bound target whose interval holds c, or "none".
func (p *Processor) matching(c target.HSV) string {
	for _, t := range p.targets {
		if t.Bound() && t.Interval.Contains(c) {
			return t.Name
		}
	}
	return "none"
}

// Close releases the classifier buffers.
func (p *Processor) Close() error {
	return p.classifier.Close()
}

func (p *Processor) retriggerReady(name string, now time.Time) bool {
	if p.cfg.RetriggerInterval <= 0 {
		return true
	}
	last, seen := p.lastTrigger[name]
	return !seen || now.Sub(last) >= p.cfg.RetriggerInterval
}

func (p *Processor) emit(ev Event) {
	for _, s := range p.sinks {
		s.HandleEvent(ev)
	}
}

// SampleAt reads the three-channel pixel at pt.
func SampleAt(hsv gocv.Mat, pt image.Point) (target.HSV, bool) {
	if hsv.Empty() || hsv.Channels() < 3 {
		return target.HSV{}, false
	}
	if pt.X < 0 || pt.Y < 0 || pt.X >= hsv.Cols() || pt.Y >= hsv.Rows() {
		return target.HSV{}, false
	}

	v := hsv.GetVecbAt(pt.Y, pt.X)
	return target.HSV{H: float64(v[0]), S: float64(v[1]), V: float64(v[2])}, true
}
