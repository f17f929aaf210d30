// juggle-music tracks coloured balls in a webcam feed and plays a note
// whenever one enters the top-left trigger zone.
//
// Usage:
//
//	juggle-music [flags] [video-source]
//
// video-source is a device index or a video file; it defaults to device 0.
// Press Escape in the window to quit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/teslashibe/juggle-music/internal/config"
	applog "github.com/teslashibe/juggle-music/internal/log"
	"github.com/teslashibe/juggle-music/pkg/audio"
	"github.com/teslashibe/juggle-music/pkg/camera"
	"github.com/teslashibe/juggle-music/pkg/juggle"
	"github.com/teslashibe/juggle-music/pkg/tracking"
)

func main() {
	cfg, logLevel, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}

	logger := applog.Init(logLevel)
	if err != nil {
		fatal("❌ Configuration error", err)
	}

	applog.For("main").Info("🎵 juggle-music starting",
		"mode", cfg.Tracking.Mode,
		"source", cfg.Camera.Source,
		"width", cfg.Camera.Width,
		"height", cfg.Camera.Height,
	)

	app, err := juggle.New(cfg, logger)
	if err != nil {
		fatal("❌ Configuration error", err)
	}

	if err := app.Init(); err != nil {
		app.Shutdown()
		fatal("❌ Initialization failed", err)
	}
	defer app.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		cancel()
		app.Shutdown()
		fatal("❌ Runtime error", err)
	}
}

// fatal logs err and exits. Deferred calls do not run.
func fatal(msg string, err error) {
	applog.Error(msg, "error", err)
	os.Exit(1)
}

// parseFlags parses command line flags and returns configuration.
// Environment variables supply the defaults flags override.
func parseFlags(args []string) (juggle.Config, string, error) {
	cfg := juggle.DefaultConfig()

	fs := flag.NewFlagSet("juggle-music", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: juggle-music [flags] [video-source]\n\n")
		fs.PrintDefaults()
	}

	mode := fs.String("mode", string(tracking.ModeCalibrate), "Target setup: calibrate (click each ball, play notes) or preset (fixed colours, draw only)")
	targets := fs.String("targets", "", "YAML file listing targets (overrides the built-in orange/yellow/red)")
	soundbank := fs.String("soundbank", config.Soundbank(), "WAV sample recorded at middle C; empty uses the built-in synth (env JUGGLE_SOUNDBANK)")
	backend := fs.String("audio", config.AudioBackend(), "Audio backend: speaker, mock, none (env JUGGLE_AUDIO_BACKEND)")
	webAddr := fs.String("web", config.WebAddr(), "Dashboard listen address, e.g. :8080; empty disables it (env JUGGLE_WEB_ADDR)")
	zone := fs.Int("zone", cfg.Tracking.TriggerZone.X, "Side of the top-left trigger zone in pixels")
	retrigger := fs.Duration("retrigger", cfg.Tracking.RetriggerInterval, "Minimum time between triggers of one ball; 0 fires every frame")
	preset := fs.String("camera", "default", "Capture preset: "+strings.Join(camera.PresetNames(), ", ")+"; -width and -height override it")
	width := fs.Int("width", 0, "Requested capture width; 0 keeps the preset")
	height := fs.Int("height", 0, "Requested capture height; 0 keeps the preset")
	logLevel := fs.String("log-level", config.LogLevel(), "Log level: debug, info, warn, error (env LOG_LEVEL)")
	debugFlag := fs.Bool("debug", false, "Enable verbose per-frame tracing")

	if err := fs.Parse(args); err != nil {
		return cfg, "", err
	}
	if fs.NArg() > 1 {
		return cfg, "", fmt.Errorf("expected at most one video source, got %d", fs.NArg())
	}

	m, err := tracking.ParseMode(*mode)
	if err != nil {
		return cfg, "", err
	}
	if m == tracking.ModePreset {
		cfg.Tracking = tracking.PresetConfig()
	}

	b, err := audio.ParseBackend(*backend)
	if err != nil {
		return cfg, "", err
	}

	cam, ok := camera.Presets()[*preset]
	if !ok {
		return cfg, "", fmt.Errorf("unknown camera preset %q (want %s)", *preset, strings.Join(camera.PresetNames(), ", "))
	}
	if *width != 0 || *height != 0 {
		cam.Width, cam.Height = *width, *height
	}

	cfg.Debug = *debugFlag
	cfg.TargetsFile = *targets
	cfg.WebAddr = *webAddr
	cfg.Audio.Backend = b
	cfg.Audio.Soundbank = *soundbank
	cfg.SetZone(*zone)
	cfg.Tracking.RetriggerInterval = *retrigger
	cfg.Camera = cam
	cfg.Camera.Source = config.VideoSource(fs.Arg(0))

	return cfg, *logLevel, nil
}
