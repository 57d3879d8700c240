package profile

import (
	"context"
	"strings"
	"testing"

	"civicbriefs/internal/adapters/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db)
}

// TestSQLiteStore_SetGetDelete covers the round trip and missing keys.
func TestSQLiteStore_SetGetDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "p1", KeyRole); err != ErrNotFound {
		t.Fatalf("Get missing: err = %v, want ErrNotFound", err)
	}
	if err := s.Set(ctx, "p1", KeyRole, "user"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "p1", KeyRole, "admin"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := s.Get(ctx, "p1", KeyRole)
	if err != nil || got != "admin" {
		t.Errorf("Get = %q, %v; want admin", got, err)
	}
	if _, err := s.Get(ctx, "p2", KeyRole); err != ErrNotFound {
		t.Errorf("other profile: err = %v, want ErrNotFound", err)
	}

	s.Set(ctx, "p1", KeyTheme, "dark")
	if err := s.Delete(ctx, "p1", KeyRole, KeyToken); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "p1", KeyRole); err != ErrNotFound {
		t.Errorf("deleted key: err = %v, want ErrNotFound", err)
	}
	if got, _ := s.Get(ctx, "p1", KeyTheme); got != "dark" {
		t.Errorf("theme = %q, want dark (untouched by Delete)", got)
	}
}

// TestSQLiteStore_SetIfAbsent keeps the first value.
func TestSQLiteStore_SetIfAbsent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.SetIfAbsent(ctx, "p1", KeyChatSessionID, "sid-1")
	if err != nil || first != "sid-1" {
		t.Fatalf("SetIfAbsent = %q, %v", first, err)
	}
	second, err := s.SetIfAbsent(ctx, "p1", KeyChatSessionID, "sid-2")
	if err != nil || second != "sid-1" {
		t.Errorf("SetIfAbsent second = %q, %v; want sid-1", second, err)
	}
}

func TestSQLiteStore_EnsureRejectsEmpty(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ensure(context.Background(), ""); err != ErrEmptyProfile {
		t.Errorf("Ensure(\"\") = %v, want ErrEmptyProfile", err)
	}
}

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// TestSealedStore_RoundTrip verifies sealed keys are unreadable at rest.
func TestSealedStore_RoundTrip(t *testing.T) {
	inner := newTestStore(t)
	s, err := NewSealedStore(inner, testSecret, KeyToken)
	if err != nil {
		t.Fatalf("NewSealedStore: %v", err)
	}
	ctx := context.Background()

	if err := s.Set(ctx, "p1", KeyToken, "eyJ.secret.token"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	raw, _ := inner.Get(ctx, "p1", KeyToken)
	if raw == "" || strings.Contains(raw, "secret") {
		t.Errorf("raw stored value %q should be ciphertext", raw)
	}
	got, err := s.Get(ctx, "p1", KeyToken)
	if err != nil || got != "eyJ.secret.token" {
		t.Errorf("Get = %q, %v", got, err)
	}

	s.Set(ctx, "p1", KeyRole, "user")
	if raw, _ := inner.Get(ctx, "p1", KeyRole); raw != "user" {
		t.Errorf("unsealed key stored as %q, want plain user", raw)
	}
}

// TestSealedStore_BoundToProfile verifies a value copied across profiles does not open.
func TestSealedStore_BoundToProfile(t *testing.T) {
	inner := newTestStore(t)
	s, _ := NewSealedStore(inner, testSecret, KeyToken)
	ctx := context.Background()

	s.Set(ctx, "p1", KeyToken, "tok")
	raw, _ := inner.Get(ctx, "p1", KeyToken)
	inner.Set(ctx, "p2", KeyToken, raw)

	if _, err := s.Get(ctx, "p2", KeyToken); err != ErrUnsealable {
		t.Errorf("Get copied value: err = %v, want ErrUnsealable", err)
	}
	inner.Set(ctx, "p3", KeyToken, "not base64 !!")
	if _, err := s.Get(ctx, "p3", KeyToken); err != ErrUnsealable {
		t.Errorf("Get garbage: err = %v, want ErrUnsealable", err)
	}
}

func TestNewSealedStore_ShortSecret(t *testing.T) {
	if _, err := NewSealedStore(nil, []byte("short"), KeyToken); err == nil {
		t.Error("expected error for short secret")
	}
}
