// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// Package session holds the authenticated identity and its durable
// client-side storage.
//
// Storage mirrors the fixed-key model of a browser's localStorage: the
// keys "token", "role", "refresh_token", "email" and "theme" each live in
// their own file under the ragterm home directory. The refresh token is
// the only long-lived credential and is encrypted at rest.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/ragterm/ragterm/internal/util"
)

// Fixed storage keys. No other client state is persisted.
const (
	KeyToken        = "token"
	KeyRole         = "role"
	KeyRefreshToken = "refresh_token"
	KeyEmail        = "email"
	KeyTheme        = "theme"
)

// encPrefix marks values that are encrypted on disk.
const encPrefix = "enc:"

// secretKeys lists the storage keys whose values are encrypted at rest.
var secretKeys = map[string]bool{
	KeyRefreshToken: true,
}

// ErrBadKey rejects storage keys outside the fixed set.
var ErrBadKey = errors.New("unknown storage key")

var knownKeys = map[string]bool{
	KeyToken:        true,
	KeyRole:         true,
	KeyRefreshToken: true,
	KeyEmail:        true,
	KeyTheme:        true,
}

// Store is the durable key-value storage backing the session.
type Store struct {
	dir string
}

// OpenStore opens (creating if needed) the storage directory. An empty dir
// selects ~/.ragterm/storage.
func OpenStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".ragterm", "storage")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Get returns the stored value for key, or "" when absent. Unreadable or
// undecryptable values read as absent; a corrupt credential is
// indistinguishable from a logged-out state and is handled the same way.
func (s *Store) Get(key string) string {
	if !knownKeys[key] {
		return ""
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return ""
	}
	value := strings.TrimSpace(string(data))

	if strings.HasPrefix(value, encPrefix) {
		plain, err := s.decrypt(strings.TrimPrefix(value, encPrefix))
		if err != nil {
			return ""
		}
		return plain
	}
	return value
}

// Set stores value under key, atomically. Secret keys are encrypted before
// they touch disk. An empty value deletes the key.
func (s *Store) Set(key, value string) error {
	if !knownKeys[key] {
		return fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	if value == "" {
		return s.Delete(key)
	}

	if secretKeys[key] {
		sealed, err := s.encrypt(value)
		if err != nil {
			return err
		}
		value = encPrefix + sealed
	}
	return util.AtomicWriteFile(s.path(key), []byte(value), 0o600)
}

// Delete removes a key. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) error {
	if !knownKeys[key] {
		return fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes every session key. Theme survives: it is a UI preference,
// not a credential.
func (s *Store) Clear() error {
	for _, key := range []string{KeyToken, KeyRole, KeyRefreshToken, KeyEmail} {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key)
}

// =============================================================================
// ENCRYPTION AT REST
// =============================================================================

// loadKey returns the store's symmetric key, generating it on first use.
func (s *Store) loadKey() ([]byte, error) {
	keyPath := filepath.Join(s.dir, "storage.key")

	if data, err := os.ReadFile(keyPath); err == nil {
		key, decErr := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
		if decErr == nil && len(key) == chacha20poly1305.KeySize {
			return key, nil
		}
		// Unusable key file: fall through and regenerate. Anything sealed
		// with the old key reads as absent, which forces a re-login.
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate storage key: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(key)
	if err := util.AtomicWriteFile(keyPath, []byte(encoded), 0o600); err != nil {
		return nil, fmt.Errorf("persist storage key: %w", err)
	}
	return key, nil
}

// encrypt seals plaintext with the store key. Output is base64(nonce|box).
func (s *Store) encrypt(plain string) (string, error) {
	key, err := s.loadKey()
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// decrypt opens a value produced by encrypt.
func (s *Store) decrypt(encoded string) (string, error) {
	key, err := s.loadKey()
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", err
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, box := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, box, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
