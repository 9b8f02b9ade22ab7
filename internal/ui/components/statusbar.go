// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ragterm/ragterm/internal/api"
	"github.com/ragterm/ragterm/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar renders the bottom line: identity, answer mode, transient
// toast, and key hints.
type StatusBar struct {
	Email string
	Role  api.Role
	Mode  api.Mode

	// Toast, when set, takes over the middle section until it expires.
	Toast *Toast
}

// shortcut is one key hint in the status bar.
type shortcut struct {
	key  string
	desc string
}

var chatShortcuts = []shortcut{
	{"enter", "send"},
	{"ctrl+n", "new"},
	{"ctrl+r", "rename"},
	{"ctrl+d", "delete"},
	{"/", "search"},
	{"ctrl+g", "regen"},
	{"ctrl+c", "quit"},
}

// View renders the status bar at the given width.
func (s StatusBar) View(theme *styles.Theme, width int) string {
	var left strings.Builder
	if s.Email != "" {
		left.WriteString(theme.RoleBadge.Render(string(s.Role)))
		left.WriteString(" ")
		left.WriteString(theme.StatusDesc.Render(s.Email))
		left.WriteString("  ")
	}
	switch s.Mode {
	case api.ModeChat:
		left.WriteString(theme.ModeChat.Render("chat"))
	default:
		left.WriteString(theme.ModeRAG.Render("rag"))
	}

	middle := ""
	if s.Toast != nil {
		middle = s.Toast.Render(theme)
	}

	var hints []string
	for _, sc := range chatShortcuts {
		hints = append(hints, theme.StatusKey.Render(sc.key)+theme.StatusDesc.Render(":"+sc.desc))
	}
	right := strings.Join(hints, " ")

	line := left.String()
	if middle != "" {
		line += "  " + middle
	}

	gap := width - lipgloss.Width(line) - lipgloss.Width(right) - 2
	if gap < 1 {
		// Not enough room for hints; the toast and identity win.
		return theme.StatusBar.Width(width).Render(line)
	}
	return theme.StatusBar.Width(width).Render(line + strings.Repeat(" ", gap) + right)
}
