package profile

import (
	"context"
	"errors"
)

// Fixed keys of the per-profile key-value store.
const (
	KeyToken         = "token"
	KeyRole          = "role"
	KeyTheme         = "cb_theme"
	KeyChatSessionID = "cb_chat_sid"
	KeyFlash         = "cb_flash"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("profile value not found")

// ErrEmptyProfile is returned when a call carries no profile ID.
var ErrEmptyProfile = errors.New("profile id cannot be empty")

// Store persists durable client state per browser profile. Values never expire.
type Store interface {
	Ensure(ctx context.Context, profileID string) error
	Get(ctx context.Context, profileID, key string) (string, error)
	Set(ctx context.Context, profileID, key, value string) error
	SetIfAbsent(ctx context.Context, profileID, key, value string) (string, error)
	Delete(ctx context.Context, profileID string, keys ...string) error
}
