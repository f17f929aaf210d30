package audio

import (
	"fmt"
	"sync"
)

// MockPlayer records notes for testing.
type MockPlayer struct {
	mu      sync.Mutex
	notes   []Note
	dropped int64
	closed  bool

	// Err, when set, is returned by PlayNote instead of recording.
	Err error
}

// NewMockPlayer creates an empty mock player.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

// PlayNote implements Player.
func (m *MockPlayer) PlayNote(pitch, channel, velocity int) error {
	n := Note{Pitch: pitch, Channel: channel, Velocity: velocity}
	if err := n.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("player closed")
	}
	if m.Err != nil {
		m.dropped++
		return m.Err
	}
	m.notes = append(m.notes, n)
	return nil
}

// Notes returns a copy of the recorded notes.
func (m *MockPlayer) Notes() []Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Note, len(m.notes))
	copy(out, m.notes)
	return out
}

// Reset clears the recorded notes.
func (m *MockPlayer) Reset() {
	m.mu.Lock()
	m.notes = nil
	m.dropped = 0
	m.mu.Unlock()
}

// Stats implements Player. Notes rejected by Err count as dropped.
func (m *MockPlayer) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{Played: int64(len(m.notes)), Dropped: m.dropped}
}

// Name implements Player.
func (m *MockPlayer) Name() string { return string(BackendMock) }

// Close implements Player.
func (m *MockPlayer) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
