package tracking

import (
	"fmt"
	"image"
	"time"
)

// Mode selects how targets get their colour intervals.
type Mode string

const (
	// ModeCalibrate asks the user to click each target, then triggers notes.
	ModeCalibrate Mode = "calibrate"
	// ModePreset uses fixed intervals and only draws centroids.
	ModePreset Mode = "preset"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCalibrate, ModePreset:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (want calibrate or preset)", s)
	}
}

// Config holds all tunable parameters for colour tracking
type Config struct {
	Mode Mode

	// Pre-processing
	BlurSize int // Box blur kernel size in pixels

	// Trigger zone: a centroid triggers when X < TriggerZone.X and Y < TriggerZone.Y
	TriggerZone image.Point

	// Note played on trigger
	Note     int
	Channel  int
	Velocity int

	// RetriggerInterval is the minimum time between two triggers of the same
	// target. Zero fires on every frame the centroid is inside the zone.
	RetriggerInterval time.Duration

	// Presentation
	KeyDelay     time.Duration // How long each key poll waits
	MarkerRadius int           // Centroid marker radius in pixels
}

// DefaultConfig returns the interactive calibration configuration
func DefaultConfig() Config {
	return Config{
		Mode: ModeCalibrate,

		BlurSize: 3,

		TriggerZone: image.Pt(150, 150),

		Note:     64, // E4
		Channel:  0,
		Velocity: 100,

		RetriggerInterval: 0,

		KeyDelay:     5 * time.Millisecond,
		MarkerRadius: 5,
	}
}

// PresetConfig returns the fixed-interval configuration
func PresetConfig() Config {
	cfg := DefaultConfig()
	cfg.Mode = ModePreset
	return cfg
}

// Triggers reports whether mode fires notes at all.
func (c Config) Triggers() bool {
	return c.Mode == ModeCalibrate
}

// InTriggerZone reports whether p lies strictly inside the trigger zone.
func (c Config) InTriggerZone(p image.Point) bool {
	return p.X < c.TriggerZone.X && p.Y < c.TriggerZone.Y
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if c.BlurSize < 1 {
		return fmt.Errorf("blur size must be at least 1, got %d", c.BlurSize)
	}
	if c.TriggerZone.X < 0 || c.TriggerZone.Y < 0 {
		return fmt.Errorf("trigger zone must not be negative, got %v", c.TriggerZone)
	}
	if c.Note < 0 || c.Note > 127 {
		return fmt.Errorf("note must be 0-127, got %d", c.Note)
	}
	if c.Channel < 0 || c.Channel > 15 {
		return fmt.Errorf("channel must be 0-15, got %d", c.Channel)
	}
	if c.Velocity < 0 || c.Velocity > 127 {
		return fmt.Errorf("velocity must be 0-127, got %d", c.Velocity)
	}
	if c.RetriggerInterval < 0 {
		return fmt.Errorf("retrigger interval must not be negative, got %v", c.RetriggerInterval)
	}
	if c.KeyDelay < time.Millisecond {
		return fmt.Errorf("key delay must be at least 1ms, got %v", c.KeyDelay)
	}
	return nil
}
