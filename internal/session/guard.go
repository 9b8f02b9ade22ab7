// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package session

import (
	"errors"

	"github.com/ragterm/ragterm/internal/api"
)

// Guard errors. Access control is structural: entry points check the
// session before acting, rather than recovering from 401s after the fact.
var (
	// ErrNotLoggedIn means no session exists; the caller should point the
	// user at "ragterm login".
	ErrNotLoggedIn = errors.New("not logged in (run 'ragterm login')")

	// ErrAdminOnly means the session exists but lacks the admin role.
	ErrAdminOnly = errors.New("admin access required")
)

// RequireAuth passes when any session exists.
func (m *Manager) RequireAuth() error {
	if m.Current() == nil {
		return ErrNotLoggedIn
	}
	return nil
}

// RequireAdmin passes only for an authenticated admin session.
func (m *Manager) RequireAdmin() error {
	s := m.Current()
	if s == nil {
		return ErrNotLoggedIn
	}
	if s.Role != api.RoleAdmin {
		return ErrAdminOnly
	}
	return nil
}
