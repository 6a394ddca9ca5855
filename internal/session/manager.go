package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"supportchat/internal/transcript"
)

const (
	DefaultIdleTTL  = 2 * time.Hour
	minReapInterval = time.Second
)

// Manager owns the live sessions of the process. Each session gets its own transcript from the
// backend; sessions idle for longer than the idle TTL are ended by Run.
type Manager struct {
	backend transcript.Backend
	idleTTL time.Duration
	logger  zerolog.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*State
}

func NewManager(backend transcript.Backend, idleTTL time.Duration, logger zerolog.Logger) *Manager {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Manager{
		backend:  backend,
		idleTTL:  idleTTL,
		logger:   logger.With().Str("component", "sessions").Logger(),
		now:      time.Now,
		sessions: make(map[string]*State),
	}
}

// Get returns the session with the given ID, starting a new one when the ID is unknown or not a
// UUID. The returned State's ID is the one the caller has to remember.
func (m *Manager) Get(id string) *State {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := uuid.Parse(id); err == nil {
		if st, ok := m.sessions[id]; ok {
			st.touch(now)
			return st
		}
	} else {
		id = uuid.NewString()
	}

	st := newState(id, m.backend.Open(id), now)
	m.sessions[id] = st
	m.logger.Debug().Str("session_id", id).Msg("session started")
	return st
}

// Lookup returns a live session without starting one.
func (m *Manager) Lookup(id string) (*State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[id]
	return st, ok
}

// Remove ends a session and drops its transcript.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return m.backend.Drop(ctx, id)
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Reap ends every idle session that has no turn in flight and returns how many were ended.
func (m *Manager) Reap(ctx context.Context) int {
	now := m.now()

	var stale []string
	m.mu.Lock()
	for id, st := range m.sessions {
		if st.idleSince(now) >= m.idleTTL && !st.busy() {
			stale = append(stale, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, id := range stale {
		if err := m.backend.Drop(ctx, id); err != nil {
			m.logger.Warn().Err(err).Str("session_id", id).Msg("drop transcript failed")
		}
	}
	if len(stale) > 0 {
		m.logger.Info().Int("reaped", len(stale)).Int("live", m.Len()).Msg("idle sessions ended")
	}
	return len(stale)
}

// Run reaps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	interval := m.idleTTL / 2
	if interval < minReapInterval {
		interval = minReapInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Reap(ctx)
		}
	}
}
