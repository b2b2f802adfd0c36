package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLite is the durable Store backed by the credentials table.
//
// Values survive process restarts; the table is created by the shared
// migration runner during setup.
type SQLite struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-backed store on an open database connection.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM credentials WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
	return value, nil
}

func (s *SQLite) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}
	return nil
}

func (s *SQLite) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM credentials WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
