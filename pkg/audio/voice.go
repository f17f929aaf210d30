package audio

import (
	"math"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/wav"
	"github.com/pkg/errors"
)

// Voice renders a note into a finite stream.
type Voice interface {
	Render(n Note) beep.Streamer
}

// NewVoice returns the soundbank voice when cfg.Soundbank is set, otherwise
// the synthesized voice.
func NewVoice(cfg Config) (Voice, error) {
	rate := beep.SampleRate(cfg.SampleRate)
	if cfg.Soundbank == "" {
		return NewSynthVoice(rate, cfg.NoteDuration), nil
	}

	buf, err := LoadSoundbank(cfg.Soundbank, rate)
	if err != nil {
		return nil, err
	}
	return NewSampleVoice(buf, cfg.BaseNote, cfg.NoteDuration), nil
}

// SynthVoice is an additive sine voice with a plucked decay.
type SynthVoice struct {
	rate     beep.SampleRate
	duration time.Duration
}

// harmonic amplitudes of the synthesized voice, fundamental first
var harmonics = []float64{0.6, 0.25, 0.1}

// NewSynthVoice creates a synthesized voice.
func NewSynthVoice(rate beep.SampleRate, duration time.Duration) *SynthVoice {
	return &SynthVoice{rate: rate, duration: duration}
}

// Render implements Voice.
func (v *SynthVoice) Render(n Note) beep.Streamer {
	freq := NoteFreq(n.Pitch)

	partials := make([]beep.Streamer, 0, len(harmonics))
	for i, amp := range harmonics {
		// SineTone rejects frequencies at or above Nyquist; those partials are dropped.
		tone, err := generators.SineTone(v.rate, freq*float64(i+1))
		if err != nil {
			continue
		}
		partials = append(partials, withGain(tone, amp))
	}

	samples := v.rate.N(v.duration)
	s := beep.Take(samples, beep.Mix(partials...))
	return withGain(newPluck(s, samples, v.rate.N(5*time.Millisecond)), VelocityGain(n.Velocity))
}

// SampleVoice pitches a recorded sample by resampling.
type SampleVoice struct {
	buf      *beep.Buffer
	base     int
	duration time.Duration
}

// NewSampleVoice creates a voice from a buffer recorded at base pitch.
func NewSampleVoice(buf *beep.Buffer, base int, duration time.Duration) *SampleVoice {
	return &SampleVoice{buf: buf, base: base, duration: duration}
}

// Render implements Voice.
func (v *SampleVoice) Render(n Note) beep.Streamer {
	rate := v.buf.Format().SampleRate
	pitched := beep.ResampleRatio(4, PitchRatio(v.base, n.Pitch), v.buf.Streamer(0, v.buf.Len()))
	return withGain(beep.Take(rate.N(v.duration), pitched), VelocityGain(n.Velocity))
}

// LoadSoundbank decodes a WAV file into a stereo buffer at rate.
func LoadSoundbank(path string, rate beep.SampleRate) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open soundbank")
	}

	s, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "decode soundbank %s", path)
	}
	defer s.Close()

	var src beep.Streamer = s
	if format.SampleRate != rate {
		src = beep.Resample(4, format.SampleRate, rate, s)
	}

	buf := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	buf.Append(src)

	if err := s.Err(); err != nil {
		return nil, errors.Wrapf(err, "read soundbank %s", path)
	}
	if buf.Len() == 0 {
		return nil, errors.Errorf("soundbank %s has no samples", path)
	}
	return buf, nil
}

// withGain scales s by a linear gain.
// math.Log2(0) is -Inf, so a zero gain is made silent instead.
func withGain(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}

// pluck applies a short linear attack followed by an exponential decay.
type pluck struct {
	streamer beep.Streamer
	position int
	attack   int
	tau      float64
}

func newPluck(s beep.Streamer, total, attack int) beep.Streamer {
	tau := float64(total) / 5
	if tau <= 0 {
		tau = 1
	}
	return &pluck{streamer: s, attack: attack, tau: tau}
}

func (p *pluck) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = p.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := math.Exp(-float64(p.position) / p.tau)
		if p.position < p.attack && p.attack > 0 {
			vol *= float64(p.position) / float64(p.attack)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		p.position++
	}
	return n, ok
}

func (p *pluck) Err() error { return p.streamer.Err() }
