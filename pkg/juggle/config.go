// Package juggle wires the camera, colour tracker, audio player, window and
// dashboard into one application.
package juggle

import (
	"image"
	"strings"

	"github.com/teslashibe/juggle-music/internal/config"
	"github.com/teslashibe/juggle-music/pkg/audio"
	"github.com/teslashibe/juggle-music/pkg/camera"
	"github.com/teslashibe/juggle-music/pkg/tracking"
)

// Config holds all configuration for the application.
// Flag parsing is done in cmd/juggle-music/main.go; this struct is data only.
type Config struct {
	// Debug enables per-frame tracing.
	Debug bool

	// TargetsFile is an optional YAML list of targets. Empty uses the
	// built-in orange, yellow and red targets for the selected mode.
	TargetsFile string

	// WebAddr enables the dashboard when set, e.g. ":8080".
	WebAddr string

	// WindowTitle names the display window.
	WindowTitle string

	Tracking tracking.Config
	Audio    audio.Config
	Camera   camera.Config
}

// DefaultConfig returns the interactive calibration setup on device 0.
func DefaultConfig() Config {
	return Config{
		WindowTitle: config.DefaultWindowTitle,
		Tracking:    tracking.DefaultConfig(),
		Audio:       audio.DefaultConfig(),
		Camera:      camera.DefaultConfig(),
	}
}

// SetZone sets a square trigger zone of the given side in pixels.
func (c *Config) SetZone(side int) {
	c.Tracking.TriggerZone = image.Pt(side, side)
}

// Validate checks every component configuration.
func (c *Config) Validate() error {
	if err := c.Tracking.Validate(); err != nil {
		return &ConfigError{Field: "Tracking", Message: err.Error()}
	}
	// Preset mode never plays notes, so the audio settings are not used.
	if c.Tracking.Triggers() {
		if err := c.Audio.Validate(); err != nil {
			return &ConfigError{Field: "Audio", Message: err.Error()}
		}
	}
	if errs := c.Camera.Validate(); len(errs) > 0 {
		return &ConfigError{Field: "Camera", Message: strings.Join(errs, "; ")}
	}
	if c.WindowTitle == "" {
		return &ConfigError{Field: "WindowTitle", Message: "window title must not be empty"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return strings.ToLower(e.Field) + ": " + e.Message
}
