package juggle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teslashibe/juggle-music/pkg/audio"
	"github.com/teslashibe/juggle-music/pkg/camera"
	"github.com/teslashibe/juggle-music/pkg/debug"
	"github.com/teslashibe/juggle-music/pkg/display"
	"github.com/teslashibe/juggle-music/pkg/target"
	"github.com/teslashibe/juggle-music/pkg/tracking"
	"github.com/teslashibe/juggle-music/pkg/web"
)

// App is the application orchestrator.
// It manages all components and their lifecycle.
type App struct {
	config Config
	logger *slog.Logger

	targets   []*target.Target
	player    audio.Player
	processor *tracking.Processor
	webServer *web.Server

	capture *camera.Capture
	window  *display.Window
	tracker *tracking.Tracker
	ran     bool
}

// New creates an application with the given configuration.
func New(cfg Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	debug.Tracking.Store(cfg.Debug)

	return &App{config: cfg, logger: logger}, nil
}

// Init opens every component. Call it after New and before Run.
func (a *App) Init() error {
	if err := a.initCore(); err != nil {
		return err
	}
	if err := a.initCapture(); err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	return nil
}

// Run starts the dashboard, if configured, and blocks in the frame loop
// until Escape, ctx cancellation or a camera failure. A video file that
// runs out of frames ends the run without error.
func (a *App) Run(ctx context.Context) error {
	if a.tracker == nil {
		return fmt.Errorf("app not initialized")
	}
	a.ran = true

	if a.webServer != nil {
		a.webServer.StartAsync(ctx)
	}

	err := a.tracker.Run(ctx)
	if errors.Is(err, camera.ErrEndOfStream) {
		a.logger.Info("video source finished", "frames", a.processor.Frames())
		return nil
	}
	return err
}

// Shutdown releases everything Run did not already release.
func (a *App) Shutdown() {
	if !a.ran {
		if a.capture != nil {
			a.capture.Close()
		}
		if a.window != nil {
			a.window.Close()
		}
	}
	if a.webServer != nil {
		if err := a.webServer.Shutdown(); err != nil {
			a.logger.Warn("dashboard shutdown", "error", err)
		}
	}
	if a.processor != nil {
		a.processor.Close()
	}
	var notes audio.Stats
	if a.player != nil {
		notes = a.player.Stats()
		if err := a.player.Close(); err != nil {
			a.logger.Warn("audio close", "error", err)
		}
	}

	a.logger.Info("goodbye",
		"frames", a.frames(),
		"triggers", a.triggers(),
		"notes_played", notes.Played,
		"notes_dropped", notes.Dropped,
	)
}

// Processor returns the frame processor, nil before Init.
func (a *App) Processor() *tracking.Processor {
	return a.processor
}

// initCore sets up everything that does not need a camera or a display.
func (a *App) initCore() error {
	targets, err := LoadTargets(a.config)
	if err != nil {
		return fmt.Errorf("targets: %w", err)
	}
	a.targets = targets

	sinks := []tracking.Sink{}

	if a.config.Tracking.Triggers() {
		player, err := audio.NewPlayer(a.config.Audio, a.logger.With("component", "audio"))
		if err != nil {
			return fmt.Errorf("audio: %w", err)
		}
		a.player = player
		sinks = append(sinks, tracking.NewTriggerSink(a.config.Tracking, player, a.logger.With("component", "trigger")))
	}

	proc, err := tracking.NewProcessor(a.config.Tracking, targets, a.logger.With("component", "tracking"), sinks...)
	if err != nil {
		return fmt.Errorf("tracking: %w", err)
	}
	a.processor = proc

	if a.config.WebAddr != "" {
		a.webServer = web.NewServer(a.config.WebAddr, proc, a.logger.With("component", "web"))
		proc.AddSink(a.webServer)
	}

	a.logger.Info("initialized",
		"mode", a.config.Tracking.Mode,
		"targets", target.Names(targets),
		"audio", a.playerName(),
		"dashboard", a.config.WebAddr,
	)
	return nil
}

func (a *App) initCapture() error {
	capture, err := camera.Open(a.config.Camera, a.logger.With("component", "camera"))
	if err != nil {
		return err
	}
	a.capture = capture
	a.window = display.NewWindow(a.config.WindowTitle)

	a.tracker = tracking.NewTracker(capture, a.window, a.processor, a.logger.With("component", "tracker"))
	if a.webServer != nil {
		a.tracker.SetFramePublisher(a.webServer)
	}
	return nil
}

func (a *App) playerName() string {
	if a.player == nil {
		return "off"
	}
	return a.player.Name()
}

func (a *App) frames() int64 {
	if a.processor == nil {
		return 0
	}
	return a.processor.Frames()
}

func (a *App) triggers() int64 {
	if a.processor == nil {
		return 0
	}
	return a.processor.Triggers()
}

// LoadTargets returns the targets for cfg: the YAML file when one is set,
// otherwise the built-in calibration or preset targets.
func LoadTargets(cfg Config) ([]*target.Target, error) {
	if cfg.TargetsFile != "" {
		return target.LoadFile(cfg.TargetsFile)
	}
	if cfg.Tracking.Mode == tracking.ModePreset {
		return target.Presets(), nil
	}
	return target.Calibration(), nil
}
