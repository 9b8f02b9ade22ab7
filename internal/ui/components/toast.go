// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// Non-blocking toasts in the status line. Errors from API calls land
// here instead of in a modal, so a failed rename never traps the user in
// a dialog.
package components

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ragterm/ragterm/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	// ToastKindStatus is an informational toast
	ToastKindStatus ToastKind = iota
	// ToastKindError is an error toast
	ToastKindError
	// ToastKindSuccess is a success toast
	ToastKindSuccess
)

// DefaultToastDuration is the auto-dismiss duration for status toasts.
const DefaultToastDuration = 4 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts,
// longer so there is time to read them.
const ErrorToastDuration = 8 * time.Second

var toastSeq atomic.Int64

// Toast is a transient notification shown in the status line.
type Toast struct {
	ID       int64
	Message  string
	Kind     ToastKind
	Duration time.Duration
}

// NewErrorToast creates an error toast.
func NewErrorToast(message string) Toast {
	return Toast{
		ID:       toastSeq.Add(1),
		Message:  message,
		Kind:     ToastKindError,
		Duration: ErrorToastDuration,
	}
}

// NewStatusToast creates an informational toast.
func NewStatusToast(message string) Toast {
	return Toast{
		ID:       toastSeq.Add(1),
		Message:  message,
		Kind:     ToastKindStatus,
		Duration: DefaultToastDuration,
	}
}

// NewSuccessToast creates a success toast.
func NewSuccessToast(message string) Toast {
	return Toast{
		ID:       toastSeq.Add(1),
		Message:  message,
		Kind:     ToastKindSuccess,
		Duration: DefaultToastDuration,
	}
}

// ToastExpiredMsg is emitted when a toast's display time elapses.
type ToastExpiredMsg struct {
	ID int64
}

// ExpireCmd returns the command that dismisses this toast when its
// duration elapses.
func (t Toast) ExpireCmd() tea.Cmd {
	id := t.ID
	return tea.Tick(t.Duration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// Render renders the toast with the theme's toast styles.
func (t Toast) Render(theme *styles.Theme) string {
	switch t.Kind {
	case ToastKindError:
		return theme.ToastError.Render(styles.StatusIndicators.Error + " " + t.Message)
	case ToastKindSuccess:
		return theme.Toast.Render(styles.StatusIndicators.Success + " " + t.Message)
	default:
		return theme.Toast.Render(t.Message)
	}
}
