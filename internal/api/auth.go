// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// loginRequest is the credential body for Login.
type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// logoutRequest carries the refresh token to invalidate.
type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login exchanges credentials for a token pair and role.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	in := loginRequest{Email: email, Password: password}
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}

	var out LoginResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", in, &out, "login failed"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout asks the server to invalidate the refresh token. Callers treat
// failures as non-fatal; logout always succeeds locally.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	in := logoutRequest{RefreshToken: refreshToken}
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", in, nil, "logout failed")
}

// =============================================================================
// OWN PROFILE
// =============================================================================

// Profile fetches the caller's own account information.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &out, "could not load profile"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile updates the caller's own account information.
func (c *Client) UpdateProfile(ctx context.Context, p ProfilePayload) (*Profile, error) {
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}

	var out Profile
	if err := c.doJSON(ctx, http.MethodPut, "/auth/me", p, &out, "could not update profile"); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// ADMIN: USERS
// =============================================================================

// ListUsers returns all accounts. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/admin/users", nil, &out, "could not load users"); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUser creates an account. Admin only.
func (c *Client) CreateUser(ctx context.Context, p UserPayload) (*User, error) {
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	var out User
	if err := c.doJSON(ctx, http.MethodPost, "/auth/admin/users", p, &out, "could not create user"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser updates an account's fields. Admin only.
func (c *Client) UpdateUser(ctx context.Context, id int64, p UserPayload) (*User, error) {
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	var out User
	path := fmt.Sprintf("/auth/admin/users/%d", id)
	if err := c.doJSON(ctx, http.MethodPut, path, p, &out, "could not update user"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUserRole changes an account's role. Admin only. The role travels
// as a query parameter, not a body.
func (c *Client) UpdateUserRole(ctx context.Context, id int64, role Role) (*User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	var out User
	path := fmt.Sprintf("/auth/admin/users/%d/role?new_role=%s", id, url.QueryEscape(string(role)))
	if err := c.doJSON(ctx, http.MethodPut, path, nil, &out, "could not change role"); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes an account. Admin only.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/auth/admin/users/%d", id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, "could not delete user")
}
