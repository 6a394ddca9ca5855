package transcript

import (
	"context"

	"github.com/pkg/errors"

	"supportchat/internal/config"
	"supportchat/internal/models"
)

// Store is the ordered history of one session. Appends keep order; Clear empties it.
type Store interface {
	Append(ctx context.Context, msg models.Message) error
	All(ctx context.Context) ([]models.Message, error)
	Clear(ctx context.Context) error
}

// Backend hands out one Store per session and releases it when the session ends.
type Backend interface {
	Open(sessionID string) Store
	Drop(ctx context.Context, sessionID string) error
	Close() error
}

// NewBackend builds the backend named by kind ("memory" or "sqlite").
func NewBackend(kind, sqliteDSN string) (Backend, error) {
	switch kind {
	case "", config.BackendMemory:
		return NewMemoryBackend(), nil
	case config.BackendSQLite:
		return OpenSQLiteBackend(sqliteDSN)
	default:
		return nil, errors.Errorf("unsupported transcript backend %q", kind)
	}
}
