package tracking

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/teslashibe/juggle-music/pkg/display"
	"gocv.io/x/gocv"
)

// FrameSource supplies camera frames
type FrameSource interface {
	// Read decodes the next frame into dst, blocking until one is available.
	Read(dst *gocv.Mat) error
	Close() error
}

// Display shows frames and reports user input
type Display interface {
	Show(frame gocv.Mat) error
	// WaitKey polls for a key press and returns its code, or -1.
	WaitKey(delay time.Duration) int
	// Clicks drains the left-button presses since the last call.
	Clicks() []image.Point
	Close() error
}

// FramePublisher receives every annotated frame after it is shown.
// It runs on the loop goroutine and must not retain img.
type FramePublisher interface {
	PublishFrame(img gocv.Mat)
}

// Tracker runs the frame loop: read, process, annotate, show, poll.
type Tracker struct {
	source    FrameSource
	display   Display
	processor *Processor
	publisher FramePublisher
	logger    *slog.Logger
}

// NewTracker creates a tracker. It takes ownership of source and display
// and releases them when Run returns.
func NewTracker(source FrameSource, disp Display, processor *Processor, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		source:    source,
		display:   disp,
		processor: processor,
		logger:    logger,
	}
}

// SetFramePublisher installs an optional preview consumer.
func (t *Tracker) SetFramePublisher(p FramePublisher) {
	t.publisher = p
}

// Run processes frames until Escape is pressed, ctx is cancelled or the
// source fails. The camera and window are released on every path.
func (t *Tracker) Run(ctx context.Context) error {
	defer func() {
		if cerr := t.source.Close(); cerr != nil {
			t.logger.Warn("close video source", "error", cerr)
		}
		if cerr := t.display.Close(); cerr != nil {
			t.logger.Warn("close window", "error", cerr)
		}
	}()

	frame := gocv.NewMat()
	defer frame.Close()
	blurred := gocv.NewMat()
	defer blurred.Close()
	hsv := gocv.NewMat()
	defer hsv.Close()

	cfg := t.processor.Config()

	t.logger.Info("tracker started",
		"mode", cfg.Mode,
		"targets", len(t.processor.Targets()),
		"zone", cfg.TriggerZone,
	)

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("tracker stopped", "reason", ctx.Err(), "frames", t.processor.Frames())
			return nil
		default:
		}

		if err := t.source.Read(&frame); err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		if err := t.processor.Preprocess(frame, &blurred, &hsv); err != nil {
			return fmt.Errorf("preprocess frame: %w", err)
		}
		events, err := t.processor.Process(hsv)
		if err != nil {
			return fmt.Errorf("process frame %d: %w", t.processor.Frames(), err)
		}

		t.annotate(&blurred, events)
		if err := t.display.Show(blurred); err != nil {
			return fmt.Errorf("show frame: %w", err)
		}
		if t.publisher != nil {
			t.publisher.PublishFrame(blurred)
		}

		key := t.display.WaitKey(cfg.KeyDelay)

		// Clicks arrive during WaitKey and are sampled from this frame's HSV.
		for _, pt := range t.display.Clicks() {
			t.processor.Click(hsv, pt)
		}

		if key == display.KeyEscape {
			t.logger.Info("escape pressed, exiting",
				"frames", t.processor.Frames(),
				"triggers", t.processor.Triggers(),
			)
			return nil
		}
	}
}

func (t *Tracker) annotate(img *gocv.Mat, events []Event) {
	cfg := t.processor.Config()

	if pending, ok := t.processor.Pending(); ok {
		display.Prompt(img, display.PromptText(pending.Name), pending.Prompt)
		return
	}

	if cfg.Triggers() {
		display.Zone(img, cfg.TriggerZone)
	}
	for _, ev := range events {
		if ev.Found {
			display.Marker(img, ev.Centroid, cfg.MarkerRadius)
		}
	}
}
