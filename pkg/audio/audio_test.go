package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/wav"
)

func TestNoteFreq(t *testing.T) {
	tests := []struct {
		midi int
		want float64
	}{
		{69, 440.0},
		{57, 220.0},
		{81, 880.0},
		{60, 261.6256},
		{64, 329.6276},
		{-1, 0},
		{128, 0},
	}

	for _, tc := range tests {
		got := NoteFreq(tc.midi)
		if math.Abs(got-tc.want) > 0.001 {
			t.Errorf("NoteFreq(%d) = %.4f, want %.4f", tc.midi, got, tc.want)
		}
	}
}

func TestPitchRatio(t *testing.T) {
	if got := PitchRatio(60, 72); math.Abs(got-2) > 1e-9 {
		t.Errorf("octave up ratio = %f, want 2", got)
	}
	if got := PitchRatio(60, 48); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("octave down ratio = %f, want 0.5", got)
	}
	if got := PitchRatio(64, 64); got != 1 {
		t.Errorf("unison ratio = %f, want 1", got)
	}
}

func TestVelocityGain(t *testing.T) {
	tests := []struct {
		velocity int
		want     float64
	}{
		{-5, 0},
		{0, 0},
		{127, 1},
		{200, 1},
		{100, 100.0 / 127.0},
	}

	for _, tc := range tests {
		if got := VelocityGain(tc.velocity); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("VelocityGain(%d) = %f, want %f", tc.velocity, got, tc.want)
		}
	}
}

func TestNote_Validate(t *testing.T) {
	tests := []struct {
		name    string
		note    Note
		wantErr bool
	}{
		{"trigger note", Note{Pitch: 64, Channel: 0, Velocity: 100}, false},
		{"pitch too high", Note{Pitch: 128}, true},
		{"negative pitch", Note{Pitch: -1}, true},
		{"channel too high", Note{Pitch: 60, Channel: 16}, true},
		{"velocity too high", Note{Pitch: 60, Velocity: 128}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.note.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"mock backend", func(c *Config) { c.Backend = BackendMock }, false},
		{"unknown backend", func(c *Config) { c.Backend = "fluidsynth" }, true},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }, true},
		{"zero buffer", func(c *Config) { c.BufferDuration = 0 }, true},
		{"base note out of range", func(c *Config) { c.BaseNote = 200 }, true},
		{"zero note duration", func(c *Config) { c.NoteDuration = 0 }, true},
		{"no voices", func(c *Config) { c.MaxVoices = 0 }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestConfig_BufferSize(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.BufferSize(); got != 4410 {
		t.Errorf("BufferSize() = %d, want 4410", got)
	}
}

func TestNewPlayer_Backends(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Backend = BackendMock
	p, err := NewPlayer(cfg, nil)
	if err != nil {
		t.Fatalf("mock backend: %v", err)
	}
	if p.Name() != "mock" {
		t.Errorf("Name() = %q, want mock", p.Name())
	}
	p.Close()

	cfg.Backend = BackendNone
	p, err = NewPlayer(cfg, nil)
	if err != nil {
		t.Fatalf("none backend: %v", err)
	}
	if err := p.PlayNote(64, 0, 100); err != nil {
		t.Errorf("none backend PlayNote: %v", err)
	}
	if err := p.PlayNote(300, 0, 100); err == nil {
		t.Error("none backend should still validate notes")
	}
	if p.Stats() != (Stats{}) {
		t.Errorf("none backend Stats() = %+v, want zero", p.Stats())
	}

	cfg.Backend = "jack"
	if _, err := NewPlayer(cfg, nil); err == nil {
		t.Error("expected error for unsupported backend")
	}
}

func TestMockPlayer(t *testing.T) {
	m := NewMockPlayer()

	if err := m.PlayNote(64, 0, 100); err != nil {
		t.Fatalf("PlayNote: %v", err)
	}
	if err := m.PlayNote(67, 1, 90); err != nil {
		t.Fatalf("PlayNote: %v", err)
	}

	notes := m.Notes()
	if len(notes) != 2 {
		t.Fatalf("recorded %d notes, want 2", len(notes))
	}
	if notes[0] != (Note{Pitch: 64, Channel: 0, Velocity: 100}) {
		t.Errorf("first note = %+v", notes[0])
	}

	m.Err = errors.New("device busy")
	if err := m.PlayNote(64, 0, 100); err == nil {
		t.Error("expected configured error")
	}
	m.Err = nil

	if got, want := m.Stats(), (Stats{Played: 2, Dropped: 1}); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}

	m.Reset()
	if len(m.Notes()) != 0 || m.Stats() != (Stats{}) {
		t.Error("Reset should clear notes and counters")
	}

	m.Close()
	if err := m.PlayNote(64, 0, 100); err == nil {
		t.Error("expected error after Close")
	}
}

// drain streams s to completion and returns the number of samples and the
// largest absolute sample value.
func drain(s beep.Streamer) (count int, peak float64) {
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			peak = math.Max(peak, math.Max(math.Abs(buf[i][0]), math.Abs(buf[i][1])))
		}
		count += n
		if !ok {
			return count, peak
		}
	}
}

func TestSynthVoice_Render(t *testing.T) {
	rate := beep.SampleRate(44100)
	v := NewSynthVoice(rate, 200*time.Millisecond)

	count, peak := drain(v.Render(Note{Pitch: 64, Velocity: 100}))

	if want := rate.N(200 * time.Millisecond); count != want {
		t.Errorf("rendered %d samples, want %d", count, want)
	}
	if peak <= 0 {
		t.Error("voice rendered silence")
	}
	if peak > 1 {
		t.Errorf("voice clipped: peak %f", peak)
	}
}

func TestSynthVoice_ZeroVelocityIsSilent(t *testing.T) {
	v := NewSynthVoice(beep.SampleRate(44100), 50*time.Millisecond)

	_, peak := drain(v.Render(Note{Pitch: 64, Velocity: 0}))
	if peak != 0 {
		t.Errorf("zero velocity peak = %f, want 0", peak)
	}
}

func toneBuffer(t *testing.T, rate beep.SampleRate, samples int) *beep.Buffer {
	t.Helper()
	tone, err := generators.SineTone(rate, 440)
	if err != nil {
		t.Fatalf("SineTone: %v", err)
	}
	buf := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	buf.Append(beep.Take(samples, tone))
	return buf
}

func TestSampleVoice_OctaveUpHalvesLength(t *testing.T) {
	rate := beep.SampleRate(44100)
	v := NewSampleVoice(toneBuffer(t, rate, 1000), 60, time.Second)

	count, _ := drain(v.Render(Note{Pitch: 72, Velocity: 127}))
	if count < 490 || count > 510 {
		t.Errorf("octave-up render = %d samples, want about 500", count)
	}
}

func TestSampleVoice_DurationCapsLength(t *testing.T) {
	rate := beep.SampleRate(44100)
	v := NewSampleVoice(toneBuffer(t, rate, 44100), 60, 10*time.Millisecond)

	count, _ := drain(v.Render(Note{Pitch: 60, Velocity: 127}))
	if want := rate.N(10 * time.Millisecond); count != want {
		t.Errorf("render = %d samples, want %d", count, want)
	}
}

func writeWAV(t *testing.T, rate beep.SampleRate, samples int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "note.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	tone, err := generators.SineTone(rate, 440)
	if err != nil {
		t.Fatalf("SineTone: %v", err)
	}
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Take(samples, tone), format); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func TestLoadSoundbank(t *testing.T) {
	rate := beep.SampleRate(44100)
	path := writeWAV(t, rate, 2000)

	buf, err := LoadSoundbank(path, rate)
	if err != nil {
		t.Fatalf("LoadSoundbank: %v", err)
	}
	if buf.Len() != 2000 {
		t.Errorf("buffer length = %d, want 2000", buf.Len())
	}
}

func TestLoadSoundbank_Resamples(t *testing.T) {
	path := writeWAV(t, beep.SampleRate(22050), 1000)

	buf, err := LoadSoundbank(path, beep.SampleRate(44100))
	if err != nil {
		t.Fatalf("LoadSoundbank: %v", err)
	}
	if buf.Len() < 1980 || buf.Len() > 2020 {
		t.Errorf("resampled length = %d, want about 2000", buf.Len())
	}
}

func TestLoadSoundbank_Errors(t *testing.T) {
	if _, err := LoadSoundbank("/nonexistent/bank.wav", 44100); err == nil {
		t.Error("expected error for missing file")
	}

	bogus := filepath.Join(t.TempDir(), "bogus.wav")
	if err := os.WriteFile(bogus, []byte("not a wav file at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSoundbank(bogus, 44100); err == nil {
		t.Error("expected error for invalid wav")
	}
}

func TestNewVoice(t *testing.T) {
	cfg := DefaultConfig()

	v, err := NewVoice(cfg)
	if err != nil {
		t.Fatalf("synth voice: %v", err)
	}
	if _, ok := v.(*SynthVoice); !ok {
		t.Errorf("empty soundbank should select SynthVoice, got %T", v)
	}

	cfg.Soundbank = writeWAV(t, beep.SampleRate(cfg.SampleRate), 500)
	v, err = NewVoice(cfg)
	if err != nil {
		t.Fatalf("sample voice: %v", err)
	}
	if _, ok := v.(*SampleVoice); !ok {
		t.Errorf("soundbank should select SampleVoice, got %T", v)
	}

	cfg.Soundbank = "/nonexistent/bank.wav"
	if _, err := NewVoice(cfg); err == nil {
		t.Error("missing soundbank must be an error")
	}
}
