// Package session binds the durable client state of one browser profile.
//
// A Session never caches: every accessor re-reads the store, so a login or
// logout in one request is visible to the next accessor call in any other.
package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"civicbriefs/internal/adapters/storage/profile"
	"civicbriefs/internal/domain/account"
	"civicbriefs/internal/domain/theme"
)

// Store is the key-value persistence a Session needs.
type Store interface {
	Get(ctx context.Context, profileID, key string) (string, error)
	Set(ctx context.Context, profileID, key, value string) error
	SetIfAbsent(ctx context.Context, profileID, key, value string) (string, error)
	Delete(ctx context.Context, profileID string, keys ...string) error
}

// ErrEmptyCredential is returned by Login when no credential is given.
var ErrEmptyCredential = errors.New("credential cannot be empty")

// Session is the injectable identity of one browser profile.
type Session struct {
	store     Store
	profileID string
	newID     func() string
}

// New binds a Session to profileID.
// PRE: profileID is non-empty
func New(store Store, profileID string) *Session {
	return &Session{store: store, profileID: profileID, newID: uuid.NewString}
}

// ProfileID returns the bound profile.
func (s *Session) ProfileID() string {
	return s.profileID
}

// read returns the stored value, treating any failure as absent.
func (s *Session) read(ctx context.Context, key string) string {
	v, err := s.store.Get(ctx, s.profileID, key)
	if err != nil {
		if !errors.Is(err, profile.ErrNotFound) {
			slog.Warn("session_read_failed", "key", key, "error", err)
		}
		return ""
	}
	return v
}

// Credential returns the stored bearer credential, or "".
func (s *Session) Credential(ctx context.Context) string {
	return s.read(ctx, profile.KeyToken)
}

// IsAuthenticated reports whether a credential is present. Expiry is the server's concern.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	return s.Credential(ctx) != ""
}

// Role returns the stored role, or "".
func (s *Session) Role(ctx context.Context) string {
	return s.read(ctx, profile.KeyRole)
}

// IsAdmin reports whether the stored role is admin or manager.
// INVARIANT: recomputed from storage on every call
func (s *Session) IsAdmin(ctx context.Context) bool {
	return account.IsPrivileged(s.Role(ctx))
}

// Login stores a credential and role.
// PRE: credential is non-empty
// POST: Credential and Role return the new values
func (s *Session) Login(ctx context.Context, credential, role string) error {
	if credential == "" {
		return ErrEmptyCredential
	}
	if err := s.store.Set(ctx, s.profileID, profile.KeyToken, credential); err != nil {
		return err
	}
	return s.store.Set(ctx, s.profileID, profile.KeyRole, role)
}

// SetRole refreshes the stored role from the server's answer.
func (s *Session) SetRole(ctx context.Context, role string) error {
	return s.store.Set(ctx, s.profileID, profile.KeyRole, role)
}

// Logout clears the credential and role. Theme and chat session survive.
func (s *Session) Logout(ctx context.Context) error {
	return s.store.Delete(ctx, s.profileID, profile.KeyToken, profile.KeyRole)
}

// Theme returns the stored theme, defaulting to light.
func (s *Session) Theme(ctx context.Context) string {
	return theme.Normalize(s.read(ctx, profile.KeyTheme))
}

// ToggleTheme flips and stores the theme.
// POST: two calls restore the original theme
func (s *Session) ToggleTheme(ctx context.Context) (string, error) {
	next := theme.Toggle(s.Theme(ctx))
	if err := s.store.Set(ctx, s.profileID, profile.KeyTheme, next); err != nil {
		return "", err
	}
	return next, nil
}

// ChatSessionID returns the profile's conversation identifier, generating
// and persisting one on first use.
// INVARIANT: generated at most once per profile
func (s *Session) ChatSessionID(ctx context.Context) (string, error) {
	if id := s.read(ctx, profile.KeyChatSessionID); id != "" {
		return id, nil
	}
	return s.store.SetIfAbsent(ctx, s.profileID, profile.KeyChatSessionID, s.newID())
}

// Identity decodes the credential's embedded claims for display.
// Returns false when there is no credential or it cannot be read.
func (s *Session) Identity(ctx context.Context) (account.Identity, bool) {
	id, err := account.DecodeIdentity(s.Credential(ctx))
	if err != nil {
		return account.Identity{}, false
	}
	return id, true
}
