package transcript

import (
	"context"
	"sync"

	"supportchat/internal/models"
)

// MemoryStore keeps a transcript in a slice.
type MemoryStore struct {
	mu       sync.RWMutex
	messages []models.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, msg models.Message) error {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	return nil
}

// All returns a copy, so callers cannot reorder the stored history.
func (s *MemoryStore) All(_ context.Context) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
	return nil
}

// MemoryBackend gives every session its own MemoryStore. Nothing is shared between sessions,
// so dropping a session only forgets the store.
type MemoryBackend struct{}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (MemoryBackend) Open(string) Store {
	return NewMemoryStore()
}

func (MemoryBackend) Drop(context.Context, string) error {
	return nil
}

func (MemoryBackend) Close() error {
	return nil
}
