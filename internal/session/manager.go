// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"sync"

	"github.com/ragterm/ragterm/internal/api"
)

// Session is the in-memory identity of the current user.
type Session struct {
	AccessToken  string
	RefreshToken string
	Role         api.Role
	Email        string
}

// Manager owns the session lifecycle: read storage once at startup, hold
// the identity in memory, write through on login, clear on logout. All
// other packages get the identity from here instead of reaching into
// storage themselves.
type Manager struct {
	mu      sync.Mutex
	store   *Store
	current *Session
}

// NewManager creates a manager and restores any persisted session.
func NewManager(store *Store) *Manager {
	m := &Manager{store: store}
	m.restore()
	return m
}

// restore reads the stored session, if any. A session exists iff a token
// is stored, matching the browser client's token-presence check.
func (m *Manager) restore() {
	token := m.store.Get(KeyToken)
	if token == "" {
		return
	}
	m.current = &Session{
		AccessToken:  token,
		RefreshToken: m.store.Get(KeyRefreshToken),
		Role:         api.Role(m.store.Get(KeyRole)),
		Email:        m.store.Get(KeyEmail),
	}
}

// Current returns a copy of the active session, or nil when logged out.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// TokenSource exposes the access token to the API client. It reads the
// live session, so a login or logout takes effect without rebuilding the
// client.
func (m *Manager) TokenSource() api.TokenSource {
	return func() string {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.current == nil {
			return ""
		}
		return m.current.AccessToken
	}
}

// Login installs a fresh token pair and persists it.
func (m *Manager) Login(res *api.LoginResult, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(KeyToken, res.AccessToken); err != nil {
		return err
	}
	if err := m.store.Set(KeyRole, string(res.Role)); err != nil {
		return err
	}
	if err := m.store.Set(KeyRefreshToken, res.RefreshToken); err != nil {
		return err
	}
	if err := m.store.Set(KeyEmail, email); err != nil {
		return err
	}

	m.current = &Session{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Role:         res.Role,
		Email:        email,
	}
	return nil
}

// Logout clears the session. The server is asked, best effort, to revoke
// the refresh token first; a failed revocation never blocks the local
// logout.
func (m *Manager) Logout(ctx context.Context, client *api.Client) error {
	m.mu.Lock()
	refresh := ""
	if m.current != nil {
		refresh = m.current.RefreshToken
	}
	m.mu.Unlock()

	if refresh != "" && client != nil {
		// Errors swallowed: logout always succeeds locally.
		_ = client.Logout(ctx, refresh)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	return m.store.Clear()
}

// Theme returns the persisted theme preference, or "" when unset.
func (m *Manager) Theme() string {
	return m.store.Get(KeyTheme)
}

// SetTheme persists the theme preference. Unlike credentials it survives
// logout.
func (m *Manager) SetTheme(theme string) error {
	return m.store.Set(KeyTheme, theme)
}
