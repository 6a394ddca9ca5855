package storage

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const driverName = "sqlite3"

// Open connects to a process-private, in-memory SQLite database. File-backed DSNs are refused:
// transcripts must not outlive the process.
func Open(dsn string) (*sql.DB, error) {
	if !isInMemory(dsn) {
		return nil, errors.Errorf("sqlite dsn %q is not in-memory", dsn)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite database")
	}
	// One connection keeps the in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return db, nil
}

func isInMemory(dsn string) bool {
	dsn = strings.TrimSpace(dsn)
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file::memory:") {
		return true
	}
	return strings.HasPrefix(dsn, "file:") && strings.Contains(dsn, "mode=memory")
}

// Migrate ensures the transcript tables are present.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (session_id, seq)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrap(err, "migrate (sqlite3)")
		}
	}
	return nil
}
