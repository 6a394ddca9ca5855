package session

import (
	"sync"
	"time"

	"supportchat/internal/models"
	"supportchat/internal/transcript"
)

// State is everything one session owns. It is never shared with another session.
type State struct {
	ID         string
	Transcript transcript.Store

	// turn serializes the turns of this session.
	turn sync.Mutex

	mu        sync.Mutex
	createdAt time.Time
	lastSeen  time.Time
}

func newState(id string, store transcript.Store, now time.Time) *State {
	return &State{
		ID:         id,
		Transcript: store,
		createdAt:  now,
		lastSeen:   now,
	}
}

// BeginTurn blocks until no other turn of this session is running. The returned func ends the turn.
func (s *State) BeginTurn() (end func()) {
	s.turn.Lock()
	return s.turn.Unlock
}

// Info returns the session metadata.
func (s *State) Info() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Session{ID: s.ID, CreatedAt: s.createdAt, LastSeen: s.lastSeen}
}

func (s *State) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *State) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// busy reports whether a turn is in flight.
func (s *State) busy() bool {
	if s.turn.TryLock() {
		s.turn.Unlock()
		return false
	}
	return true
}
