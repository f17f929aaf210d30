package audio

import (
	"fmt"
	"math"
)

// NoteFrequencies contains precomputed frequencies for MIDI notes 0-127
// A4 (note 69) = 440Hz, equal temperament
var NoteFrequencies [128]float64

func init() {
	for i := range NoteFrequencies {
		NoteFrequencies[i] = 440.0 * math.Exp2((float64(i)-69.0)/12.0)
	}
}

// NoteFreq returns frequency in Hz for MIDI note number
func NoteFreq(midi int) float64 {
	if midi < 0 || midi >= 128 {
		return 0
	}
	return NoteFrequencies[midi]
}

// PitchRatio is the playback speed that moves a sample recorded at base to pitch.
func PitchRatio(base, pitch int) float64 {
	return math.Exp2(float64(pitch-base) / 12.0)
}

// VelocityGain maps a MIDI velocity to a linear amplitude in [0, 1].
func VelocityGain(velocity int) float64 {
	if velocity <= 0 {
		return 0
	}
	if velocity >= 127 {
		return 1
	}
	return float64(velocity) / 127.0
}

// Note is a single note-on request.
type Note struct {
	Pitch    int
	Channel  int
	Velocity int
}

// Validate checks the note against MIDI ranges.
func (n Note) Validate() error {
	if n.Pitch < 0 || n.Pitch > 127 {
		return fmt.Errorf("pitch must be 0-127, got %d", n.Pitch)
	}
	if n.Channel < 0 || n.Channel > 15 {
		return fmt.Errorf("channel must be 0-15, got %d", n.Channel)
	}
	if n.Velocity < 0 || n.Velocity > 127 {
		return fmt.Errorf("velocity must be 0-127, got %d", n.Velocity)
	}
	return nil
}
