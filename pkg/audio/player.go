package audio

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"
)

// Player plays single notes. There is no note-off; each note decays on its own.
type Player interface {
	// PlayNote starts a note and returns immediately.
	PlayNote(pitch, channel, velocity int) error

	// Name returns the backend name (e.g., "speaker", "mock").
	Name() string

	// Stats returns the note counters since the player was created.
	Stats() Stats

	// Close releases the output device.
	io.Closer
}

// Stats counts notes a player has handled.
type Stats struct {
	Played  int64 `json:"played"`
	Dropped int64 `json:"dropped"`
}

// NewPlayer creates a player for cfg.Backend.
func NewPlayer(cfg Config, logger *slog.Logger) (Player, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("creating audio player",
		"backend", cfg.Backend,
		"sample_rate", cfg.SampleRate,
		"buffer_ms", cfg.BufferDuration.Milliseconds(),
		"soundbank", cfg.Soundbank,
	)

	switch cfg.Backend {
	case BackendMock:
		return NewMockPlayer(), nil
	case BackendNone:
		return nopPlayer{}, nil
	case BackendSpeaker:
		return newSpeakerPlayer(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
}

// SpeakerPlayer mixes note voices into the system output device.
type SpeakerPlayer struct {
	cfg    Config
	voice  Voice
	mixer  *beep.Mixer
	logger *slog.Logger

	mu     sync.Mutex
	closed bool

	played  atomic.Int64
	dropped atomic.Int64
}

func newSpeakerPlayer(cfg Config, logger *slog.Logger) (*SpeakerPlayer, error) {
	voice, err := NewVoice(cfg)
	if err != nil {
		return nil, err
	}

	rate := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(rate, cfg.BufferSize()); err != nil {
		return nil, errors.Wrap(err, "init speaker")
	}

	mixer := &beep.Mixer{}
	speaker.Play(mixer)

	return &SpeakerPlayer{
		cfg:    cfg,
		voice:  voice,
		mixer:  mixer,
		logger: logger,
	}, nil
}

// PlayNote implements Player.
func (p *SpeakerPlayer) PlayNote(pitch, channel, velocity int) error {
	n := Note{Pitch: pitch, Channel: channel, Velocity: velocity}
	if err := n.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("player closed")
	}

	stream := p.voice.Render(n)

	speaker.Lock()
	full := p.mixer.Len() >= p.cfg.MaxVoices
	if !full {
		p.mixer.Add(stream)
	}
	speaker.Unlock()

	if full {
		p.dropped.Add(1)
		p.logger.Debug("voice limit reached, note dropped", "pitch", pitch, "max_voices", p.cfg.MaxVoices)
		return nil
	}

	p.played.Add(1)
	return nil
}

// Stats implements Player. Dropped counts notes refused at the voice limit.
func (p *SpeakerPlayer) Stats() Stats {
	return Stats{Played: p.played.Load(), Dropped: p.dropped.Load()}
}

// Name implements Player.
func (p *SpeakerPlayer) Name() string { return string(BackendSpeaker) }

// Close stops all voices and shuts the speaker down.
func (p *SpeakerPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	return nil
}

// nopPlayer discards notes.
type nopPlayer struct{}

func (nopPlayer) PlayNote(pitch, channel, velocity int) error {
	return Note{Pitch: pitch, Channel: channel, Velocity: velocity}.Validate()
}
func (nopPlayer) Name() string { return string(BackendNone) }
func (nopPlayer) Stats() Stats { return Stats{} }
func (nopPlayer) Close() error { return nil }
