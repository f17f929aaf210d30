// Package audio plays trigger notes.
//
// This package supports multiple backends:
//   - Speaker - the system audio device through beep/oto (ALSA on Linux)
//   - Mock - records notes for tests
//   - None - discards notes
//
// Notes are rendered either by a built-in synthesized voice or by a WAV
// soundbank sample pitched relative to its base note.
package audio

import (
	"fmt"
	"time"
)

// Backend represents the audio backend type.
type Backend string

const (
	// BackendSpeaker plays through the default output device.
	BackendSpeaker Backend = "speaker"
	// BackendMock records notes without producing sound.
	BackendMock Backend = "mock"
	// BackendNone discards notes.
	BackendNone Backend = "none"
)

// Config holds audio configuration.
type Config struct {
	// Backend specifies which audio backend to use.
	// Default: "speaker"
	Backend Backend `yaml:"backend" json:"backend"`

	// SampleRate is the output sample rate in Hz.
	// Default: 44100
	SampleRate int `yaml:"sample_rate" json:"sample_rate"`

	// BufferDuration is the speaker buffer size.
	// Default: 100ms
	BufferDuration time.Duration `yaml:"buffer_duration" json:"buffer_duration"`

	// Soundbank is a WAV file used as the note sample.
	// Empty selects the synthesized voice.
	Soundbank string `yaml:"soundbank" json:"soundbank"`

	// BaseNote is the MIDI pitch the soundbank sample was recorded at.
	// Default: 60 (middle C)
	BaseNote int `yaml:"base_note" json:"base_note"`

	// NoteDuration is how long each note sounds.
	// Default: 400ms
	NoteDuration time.Duration `yaml:"note_duration" json:"note_duration"`

	// MaxVoices caps how many notes may sound at once; extra notes are dropped.
	// Default: 32
	MaxVoices int `yaml:"max_voices" json:"max_voices"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendSpeaker,
		SampleRate:     44100,
		BufferDuration: 100 * time.Millisecond,
		BaseNote:       60,
		NoteDuration:   400 * time.Millisecond,
		MaxVoices:      32,
	}
}

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case BackendSpeaker, BackendMock, BackendNone:
		return Backend(s), nil
	default:
		return "", fmt.Errorf("unsupported backend: %s", s)
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if _, err := ParseBackend(string(c.Backend)); err != nil {
		return err
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.BufferDuration <= 0 {
		return fmt.Errorf("buffer_duration must be positive, got %v", c.BufferDuration)
	}
	if c.BaseNote < 0 || c.BaseNote > 127 {
		return fmt.Errorf("base_note must be 0-127, got %d", c.BaseNote)
	}
	if c.NoteDuration <= 0 {
		return fmt.Errorf("note_duration must be positive, got %v", c.NoteDuration)
	}
	if c.MaxVoices <= 0 {
		return fmt.Errorf("max_voices must be positive, got %d", c.MaxVoices)
	}
	return nil
}

// BufferSize returns the number of samples per speaker buffer.
func (c *Config) BufferSize() int {
	return int(float64(c.SampleRate) * c.BufferDuration.Seconds())
}
