package transcript

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"supportchat/internal/models"
	"supportchat/internal/storage"
)

// SQLiteBackend keeps every session's transcript in one in-memory SQLite database.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLiteBackend opens and migrates the in-memory database described by dsn.
func OpenSQLiteBackend(dsn string) (*SQLiteBackend, error) {
	db, err := storage.Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := storage.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Open(sessionID string) Store {
	return &SQLiteStore{db: b.db, sessionID: sessionID}
}

// Drop deletes the session's rows.
func (b *SQLiteBackend) Drop(ctx context.Context, sessionID string) error {
	return b.Open(sessionID).Clear(ctx)
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// SQLiteStore is the transcript of one session inside a SQLiteBackend.
type SQLiteStore struct {
	db        *sql.DB
	sessionID string
}

func (s *SQLiteStore) Append(ctx context.Context, msg models.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, seq, role, content, created_at)
		 SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ? FROM messages WHERE session_id = ?`,
		s.sessionID, string(msg.Role), msg.Content, time.Now().UTC(), s.sessionID,
	)
	if err != nil {
		return errors.Wrap(err, "append message")
	}
	return nil
}

func (s *SQLiteStore) All(ctx context.Context) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM messages WHERE session_id = ? ORDER BY seq ASC`,
		s.sessionID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list messages")
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var (
			role string
			msg  models.Message
		)
		if err := rows.Scan(&role, &msg.Content); err != nil {
			return nil, errors.Wrap(err, "scan message")
		}
		msg.Role = models.Role(role)
		if !msg.Role.Valid() {
			return nil, errors.Errorf("scan message: unknown role %q", role)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, s.sessionID); err != nil {
		return errors.Wrap(err, "clear messages")
	}
	return nil
}
