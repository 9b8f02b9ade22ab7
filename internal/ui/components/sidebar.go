// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ragterm/ragterm/internal/api"
	"github.com/ragterm/ragterm/internal/ui/styles"
	"github.com/ragterm/ragterm/internal/util"
)

// =============================================================================
// THREAD SIDEBAR
// =============================================================================

// Sidebar renders the conversation list with the active thread
// highlighted and a cursor for keyboard navigation.
type Sidebar struct {
	Width  int
	Height int

	threads []api.Thread
	cursor  int
}

// NewSidebar creates an empty sidebar.
func NewSidebar(width, height int) Sidebar {
	return Sidebar{Width: width, Height: height}
}

// SetThreads replaces the listed threads, clamping the cursor.
func (s Sidebar) SetThreads(threads []api.Thread) Sidebar {
	s.threads = threads
	if s.cursor >= len(threads) {
		s.cursor = len(threads) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	return s
}

// SetSize updates the layout dimensions.
func (s Sidebar) SetSize(width, height int) Sidebar {
	s.Width = width
	s.Height = height
	return s
}

// CursorUp moves the cursor up one entry.
func (s Sidebar) CursorUp() Sidebar {
	if s.cursor > 0 {
		s.cursor--
	}
	return s
}

// CursorDown moves the cursor down one entry.
func (s Sidebar) CursorDown() Sidebar {
	if s.cursor < len(s.threads)-1 {
		s.cursor++
	}
	return s
}

// CursorTo moves the cursor to the thread with the given id, if listed.
func (s Sidebar) CursorTo(id int64) Sidebar {
	for i, t := range s.threads {
		if t.ID == id {
			s.cursor = i
			break
		}
	}
	return s
}

// Selected returns the thread under the cursor, or nil when empty.
func (s Sidebar) Selected() *api.Thread {
	if len(s.threads) == 0 {
		return nil
	}
	t := s.threads[s.cursor]
	return &t
}

// View renders the sidebar. activeID marks the thread whose messages are
// on screen; the cursor may rest elsewhere while browsing.
func (s Sidebar) View(theme *styles.Theme, activeID int64) string {
	if s.Width <= 0 {
		return ""
	}

	inner := s.Width - 4
	if inner < 8 {
		inner = 8
	}

	var b strings.Builder
	b.WriteString(theme.ThreadTitle.Render("Conversations"))
	b.WriteString("\n")

	if len(s.threads) == 0 {
		b.WriteString(theme.ThreadMeta.Render("no conversations"))
	}

	// Keep the cursor visible within the height budget.
	visible := s.Height - 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if s.cursor >= visible {
		start = s.cursor - visible + 1
	}

	for i := start; i < len(s.threads) && i < start+visible; i++ {
		t := s.threads[i]

		label := t.Title
		if label == "" {
			label = "(untitled)"
		}
		if t.Pinned {
			label = "* " + label
		}
		// Wide runes make naive slicing tear the layout; truncate by
		// display width instead.
		label = util.TruncateWidth(label, inner)

		style := theme.ThreadItem
		switch {
		case i == s.cursor:
			style = theme.ThreadItemSelected
		case t.ID == activeID:
			style = theme.ThreadItem.Bold(true)
		}
		b.WriteString("\n")
		b.WriteString(style.Render(label))
	}

	return theme.Sidebar.
		Width(s.Width).
		Height(s.Height).
		Render(b.String())
}

// JoinWithMain lays the sidebar beside the main panel.
func (s Sidebar) JoinWithMain(sidebar, main string) string {
	if sidebar == "" {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
}
