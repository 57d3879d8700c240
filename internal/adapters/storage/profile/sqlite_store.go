package profile

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"civicbriefs/internal/adapters/storage"
)

// SQLiteStore implements Store using the profile and profile_kv tables.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a new SQLiteStore.
// PRE: db has been migrated
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func (s *SQLiteStore) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// Ensure creates the profile row if missing and refreshes last_seen_at.
// PRE: profileID is non-empty
// POST: a profile row with this ID exists
func (s *SQLiteStore) Ensure(ctx context.Context, profileID string) error {
	if profileID == "" {
		return ErrEmptyProfile
	}
	ts := s.stamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profile (id, created_at, last_seen_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET last_seen_at = excluded.last_seen_at`,
		profileID, ts, ts,
	)
	return err
}

// Get returns the value stored under key.
// POST: Returns ErrNotFound when nothing is stored
func (s *SQLiteStore) Get(ctx context.Context, profileID, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM profile_kv WHERE profile_id = ? AND key = ?`, profileID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// Set stores value under key, creating the profile row if needed.
// PRE: profileID and key are non-empty
// POST: Get(profileID, key) returns value
func (s *SQLiteStore) Set(ctx context.Context, profileID, key, value string) error {
	if err := s.Ensure(ctx, profileID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profile_kv (profile_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(profile_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		profileID, key, value, s.stamp(),
	)
	return err
}

// SetIfAbsent stores value only when key has no value, and returns whichever
// value is stored afterwards. Concurrent callers all observe the same winner.
// POST: Returns the stored value for key
func (s *SQLiteStore) SetIfAbsent(ctx context.Context, profileID, key, value string) (string, error) {
	if err := s.Ensure(ctx, profileID); err != nil {
		return "", err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO profile_kv (profile_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(profile_id, key) DO NOTHING`,
		profileID, key, value, s.stamp(),
	); err != nil {
		return "", err
	}
	return s.Get(ctx, profileID, key)
}

// Delete removes the given keys. Missing keys are not an error.
// POST: Get returns ErrNotFound for every key
func (s *SQLiteStore) Delete(ctx context.Context, profileID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, 0, len(keys)+1)
	args = append(args, profileID)
	for _, k := range keys {
		args = append(args, k)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM profile_kv WHERE profile_id = ? AND key IN (`+placeholders+`)`, args...,
	)
	return err
}
