// package repositories provides persistence for the song catalog.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"
)

// Store is a string key-value store.
//
// SetMany must apply all entries or none.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	SetMany(entries map[string]string) error
}

// KVStore implements [Store] over the SQLite kv_store table.
type KVStore struct {
	db *sql.DB
}

// NewKVStore creates a new KVStore with the given database connection.
//
// The kv_store table must exist; see shared.RunMigrations.
func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

// Get returns the value stored under key. ok is false when the key is absent.
func (s *KVStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, true, nil
}

// SetMany upserts all entries in one transaction.
func (s *KVStore) SetMany(entries map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	now := time.Now().UTC()
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if _, err := tx.Exec(query, key, entries[key], now); err != nil {
			return fmt.Errorf("failed to write key %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *KVStore) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv_store WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// UpdatedAt returns when key was last written.
func (s *KVStore) UpdatedAt(key string) (time.Time, bool, error) {
	var at time.Time
	err := s.db.QueryRow("SELECT updated_at FROM kv_store WHERE key = ?", key).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return at, true, nil
}
