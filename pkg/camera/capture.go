package camera

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrEndOfStream is returned by Read once a file source has no more frames.
var ErrEndOfStream = errors.New("end of video stream")

// Capture reads frames from a camera device or video file.
type Capture struct {
	vc     *gocv.VideoCapture
	cfg    Config
	logger *slog.Logger
}

// Open opens the configured source.
func Open(cfg Config, logger *slog.Logger) (*Capture, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid camera config: %s", strings.Join(errs, "; "))
	}
	if logger == nil {
		logger = slog.Default()
	}

	vc, err := gocv.OpenVideoCapture(cfg.Source)
	if err != nil {
		return nil, errors.Wrapf(err, "open video source %v", cfg.Source)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, errors.Errorf("video source %v is not available", cfg.Source)
	}

	if cfg.Width > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}
	if cfg.Framerate > 0 {
		vc.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
	}

	logger.Info("video source opened",
		"source", cfg.Source,
		"width", int(vc.Get(gocv.VideoCaptureFrameWidth)),
		"height", int(vc.Get(gocv.VideoCaptureFrameHeight)),
	)

	return &Capture{vc: vc, cfg: cfg, logger: logger}, nil
}

// Read decodes the next frame into dst. It blocks until a frame arrives.
func (c *Capture) Read(dst *gocv.Mat) error {
	if ok := c.vc.Read(dst); !ok {
		if _, isFile := c.cfg.Source.(string); isFile {
			return ErrEndOfStream
		}
		return errors.Errorf("read frame from %v", c.cfg.Source)
	}
	if dst.Empty() {
		return emptyFrameErr(c.cfg.Source)
	}
	return nil
}

// emptyFrameErr ends a file source cleanly; an empty frame from a device is a failure.
func emptyFrameErr(source interface{}) error {
	if _, isFile := source.(string); isFile {
		return errors.Wrapf(ErrEndOfStream, "empty frame from %v", source)
	}
	return errors.Errorf("empty frame from device %v", source)
}

// Close releases the device.
func (c *Capture) Close() error {
	return errors.Wrap(c.vc.Close(), "close video source")
}
