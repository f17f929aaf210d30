// Package config provides environment configuration helpers for juggle-music.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Defaults used when the environment does not override them.
const (
	DefaultVideoSource  = "0"
	DefaultAudioBackend = "speaker"
	DefaultLogLevel     = "info"
	DefaultWindowTitle  = "juggle-music"
)

// Soundbank returns the soundbank path from JUGGLE_SOUNDBANK.
// An empty result selects the built-in synthesized voice.
func Soundbank() string {
	return os.Getenv("JUGGLE_SOUNDBANK")
}

// AudioBackend returns the audio backend from JUGGLE_AUDIO_BACKEND or the default.
func AudioBackend() string {
	if b := os.Getenv("JUGGLE_AUDIO_BACKEND"); b != "" {
		return b
	}
	return DefaultAudioBackend
}

// WebAddr returns the dashboard listen address from JUGGLE_WEB_ADDR.
// Empty disables the dashboard.
func WebAddr() string {
	return os.Getenv("JUGGLE_WEB_ADDR")
}

// LogLevel returns LOG_LEVEL or the default.
func LogLevel() string {
	if l := os.Getenv("LOG_LEVEL"); l != "" {
		return l
	}
	return DefaultLogLevel
}

// VideoSource resolves the positional video source argument.
// It returns a device index when arg parses as an integer, otherwise the
// trimmed string (file path or stream URL). An empty arg means device 0.
func VideoSource(arg string) interface{} {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		arg = DefaultVideoSource
	}
	if idx, err := strconv.Atoi(arg); err == nil {
		return idx
	}
	return arg
}
