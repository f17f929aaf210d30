package tracking

import (
	"image"
	"log/slog"
	"time"
)

// Event reports one target's outcome for one frame.
type Event struct {
	Target    string      `json:"target"`
	Frame     int64       `json:"frame"`
	Found     bool        `json:"found"`
	Centroid  image.Point `json:"centroid"`
	Triggered bool        `json:"triggered"`
	Time      time.Time   `json:"time"`
}

// Sink receives tracking events. Sinks are called synchronously from the
// frame loop and must not block.
type Sink interface {
	HandleEvent(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// HandleEvent calls f.
func (f SinkFunc) HandleEvent(ev Event) { f(ev) }

// NotePlayer plays a single note on an audio backend.
type NotePlayer interface {
	PlayNote(pitch, channel, velocity int) error
}

// TriggerSink plays the configured note for every triggered event.
type TriggerSink struct {
	player NotePlayer
	cfg    Config
	logger *slog.Logger
}

// NewTriggerSink creates a sink that plays cfg's note through player.
func NewTriggerSink(cfg Config, player NotePlayer, logger *slog.Logger) *TriggerSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &TriggerSink{player: player, cfg: cfg, logger: logger}
}

// HandleEvent plays a note when ev triggered.
func (s *TriggerSink) HandleEvent(ev Event) {
	if !ev.Triggered {
		return
	}

	s.logger.Info("triggered", "target", ev.Target, "x", ev.Centroid.X, "y", ev.Centroid.Y)

	if err := s.player.PlayNote(s.cfg.Note, s.cfg.Channel, s.cfg.Velocity); err != nil {
		s.logger.Warn("play note failed", "target", ev.Target, "error", err)
	}
}
