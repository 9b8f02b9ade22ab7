// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package api

import (
	"fmt"
	"time"
)

// =============================================================================
// CHAT MODES
// =============================================================================

// Mode selects how a question is answered by the backend.
type Mode string

const (
	// ModeRAG answers using retrieved document context.
	ModeRAG Mode = "rag"
	// ModeChat answers as a direct model completion, without retrieval.
	ModeChat Mode = "chat"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeRAG || m == ModeChat
}

// =============================================================================
// ROLES
// =============================================================================

// Role is the access level attached to a session or user account.
type Role string

const (
	RoleVisitor Role = "visitor"
	RoleMember  Role = "member"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleVisitor || r == RoleMember || r == RoleAdmin
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// Thread is a persisted conversation owned by the authenticated account.
// The client never invents thread IDs; they are server-assigned.
type Thread struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Mode   Mode   `json:"mode,omitempty"`
	Pinned bool   `json:"pinned,omitempty"`
}

// validate checks the shape of a thread returned by the server.
func (t *Thread) validate() error {
	if t.ID == 0 {
		return fmt.Errorf("%w: thread missing id", ErrBadPayload)
	}
	if t.Mode != "" && !t.Mode.Valid() {
		return fmt.Errorf("%w: unknown thread mode %q", ErrBadPayload, t.Mode)
	}
	return nil
}

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Valid reports whether s is a known sender.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAssistant
}

// Message is a single entry of a conversation. Only the role and content
// cross the wire; anything else the client tracks is local-only.
type Message struct {
	Role    Sender `json:"role"`
	Content string `json:"content"`
}

// validate checks the shape of a message returned by the server.
func (m *Message) validate() error {
	if !m.Role.Valid() {
		return fmt.Errorf("%w: unknown message role %q", ErrBadPayload, m.Role)
	}
	return nil
}

// Answer is the response to a sent question.
type Answer struct {
	Answer string `json:"answer"`
}

// =============================================================================
// ACCOUNTS
// =============================================================================

// LoginResult is the token pair and role returned by a successful login.
type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Role         Role   `json:"role"`
}

// validate checks the shape of a login response.
func (l *LoginResult) validate() error {
	if l.AccessToken == "" {
		return fmt.Errorf("%w: login response missing access_token", ErrBadPayload)
	}
	if !l.Role.Valid() {
		return fmt.Errorf("%w: login response has unknown role %q", ErrBadPayload, l.Role)
	}
	return nil
}

// User is an account as seen by the admin endpoints.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// validate checks the shape of a user returned by the server.
func (u *User) validate() error {
	if u.ID == 0 {
		return fmt.Errorf("%w: user missing id", ErrBadPayload)
	}
	if u.Email == "" {
		return fmt.Errorf("%w: user missing email", ErrBadPayload)
	}
	return nil
}

// UserPayload is the body for admin user create/update calls.
type UserPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
	Role     Role   `json:"role,omitempty" validate:"omitempty,oneof=visitor member admin"`
}

// Profile is the caller's own account information.
type Profile struct {
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// ProfilePayload is the body for profile updates.
type ProfilePayload struct {
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// Visibility scopes an uploaded document.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// UploadedFile describes a document managed by the admin file endpoints.
// File contents are never cached client-side.
type UploadedFile struct {
	Filename   string     `json:"filename"`
	Visibility Visibility `json:"visibility,omitempty"`
	Size       int64      `json:"size,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at,omitempty"`
}

// validate checks the shape of a file entry returned by the server.
func (f *UploadedFile) validate() error {
	if f.Filename == "" {
		return fmt.Errorf("%w: file entry missing filename", ErrBadPayload)
	}
	return nil
}
