package profile

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// ErrUnsealable is returned when a sealed value cannot be opened.
var ErrUnsealable = errors.New("stored value cannot be unsealed")

const sealInfo = "civicbriefs profile seal v1"

// SealedStore encrypts selected keys at rest with XChaCha20-Poly1305.
// The profile ID and key are bound as associated data, so a value copied
// to another profile or key fails to open.
type SealedStore struct {
	inner  Store
	sealed map[string]bool
	aead   aeadCipher
}

type aeadCipher interface {
	NonceSize() int
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
}

// NewSealedStore wraps inner, sealing values stored under keys.
// PRE: secret is at least 32 bytes
// POST: Returns a Store that is transparent for unsealed keys
func NewSealedStore(inner Store, secret []byte, keys ...string) (*SealedStore, error) {
	if len(secret) < chacha20poly1305.KeySize {
		return nil, fmt.Errorf("seal secret must be at least %d bytes", chacha20poly1305.KeySize)
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(sealInfo)), key); err != nil {
		return nil, fmt.Errorf("derive seal key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init seal cipher: %w", err)
	}
	sealed := make(map[string]bool, len(keys))
	for _, k := range keys {
		sealed[k] = true
	}
	return &SealedStore{inner: inner, sealed: sealed, aead: aead}, nil
}

// Ensure delegates to the wrapped store.
func (s *SealedStore) Ensure(ctx context.Context, profileID string) error {
	return s.inner.Ensure(ctx, profileID)
}

// Get opens sealed values.
// POST: Returns ErrUnsealable for tampered or foreign ciphertext
func (s *SealedStore) Get(ctx context.Context, profileID, key string) (string, error) {
	raw, err := s.inner.Get(ctx, profileID, key)
	if err != nil || !s.sealed[key] {
		return raw, err
	}
	blob, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil || len(blob) < s.aead.NonceSize() {
		return "", ErrUnsealable
	}
	nonce, ct := blob[:s.aead.NonceSize()], blob[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ct, associated(profileID, key))
	if err != nil {
		return "", ErrUnsealable
	}
	return string(plain), nil
}

// Set seals the value when key is sealed, then stores it.
func (s *SealedStore) Set(ctx context.Context, profileID, key, value string) error {
	if !s.sealed[key] {
		return s.inner.Set(ctx, profileID, key, value)
	}
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(value)+chacha20poly1305.Overhead)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("seal nonce: %w", err)
	}
	blob := s.aead.Seal(nonce, nonce, []byte(value), associated(profileID, key))
	return s.inner.Set(ctx, profileID, key, base64.RawURLEncoding.EncodeToString(blob))
}

// SetIfAbsent delegates for unsealed keys. Sealed keys are never generated
// in place, so they take the Get-then-Set path.
func (s *SealedStore) SetIfAbsent(ctx context.Context, profileID, key, value string) (string, error) {
	if !s.sealed[key] {
		return s.inner.SetIfAbsent(ctx, profileID, key, value)
	}
	existing, err := s.Get(ctx, profileID, key)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	if err := s.Set(ctx, profileID, key, value); err != nil {
		return "", err
	}
	return value, nil
}

// Delete delegates to the wrapped store.
func (s *SealedStore) Delete(ctx context.Context, profileID string, keys ...string) error {
	return s.inner.Delete(ctx, profileID, keys...)
}

func associated(profileID, key string) []byte {
	return []byte(profileID + "\x00" + key)
}
