// Package camera opens the video source frames are read from.
package camera

import (
	"fmt"
	"sort"
)

// Config holds the capture settings.
type Config struct {
	// Source is a device index (int) or a file path / stream URL (string).
	Source interface{} `json:"source"`

	// Requested frame size. Zero keeps the device default.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Framerate requested from the device. Zero keeps the device default.
	Framerate int `json:"framerate"`
}

// Capture limits.
const (
	MaxWidth     = 4096
	MaxHeight    = 2160
	MaxFramerate = 240
)

// DefaultConfig opens device 0 at its native resolution.
func DefaultConfig() Config {
	return Config{Source: 0}
}

// VGAConfig requests 640x480, the resolution the trigger zone was tuned for.
func VGAConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 480
	return cfg
}

// Presets returns the named capture presets.
func Presets() map[string]Config {
	return map[string]Config{
		"default": DefaultConfig(),
		"vga":     VGAConfig(),
	}
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	presets := Presets()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	switch s := c.Source.(type) {
	case int:
		if s < 0 {
			errors = append(errors, "device index must not be negative")
		}
	case string:
		if s == "" {
			errors = append(errors, "source path must not be empty")
		}
	default:
		errors = append(errors, fmt.Sprintf("source must be a device index or path, got %T", c.Source))
	}

	if c.Width < 0 || c.Width > MaxWidth {
		errors = append(errors, fmt.Sprintf("width must be between 0 and %d", MaxWidth))
	}
	if c.Height < 0 || c.Height > MaxHeight {
		errors = append(errors, fmt.Sprintf("height must be between 0 and %d", MaxHeight))
	}
	if (c.Width == 0) != (c.Height == 0) {
		errors = append(errors, "width and height must be set together")
	}
	if c.Framerate < 0 || c.Framerate > MaxFramerate {
		errors = append(errors, fmt.Sprintf("framerate must be between 0 and %d", MaxFramerate))
	}

	return errors
}
