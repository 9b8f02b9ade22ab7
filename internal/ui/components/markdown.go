// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// Package components provides UI components for the ragterm TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// MarkdownRenderer renders assistant markdown for the terminal. It is
// rebuilt on resize so word wrap follows the viewport.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
	dark     bool
}

// NewMarkdownRenderer creates a renderer for the given width and theme.
func NewMarkdownRenderer(width int, dark bool) *MarkdownRenderer {
	m := &MarkdownRenderer{width: width, dark: dark}
	m.rebuild()
	return m
}

func (m *MarkdownRenderer) rebuild() {
	style := glamour.WithStandardStyle("light")
	if m.dark {
		style = glamour.WithStandardStyle("dark")
	}

	width := m.width
	if width < 20 {
		width = 20
	}

	r, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		// Render falls back to plain text when the renderer is nil.
		m.renderer = nil
		return
	}
	m.renderer = r
}

// SetWidth updates the wrap width, rebuilding the renderer when needed.
func (m *MarkdownRenderer) SetWidth(width int) {
	if width == m.width {
		return
	}
	m.width = width
	m.rebuild()
}

// Render renders markdown to styled terminal text. Rendering failures
// fall back to the raw text; an answer must never be lost to a styling
// problem.
func (m *MarkdownRenderer) Render(markdown string) string {
	if m.renderer == nil {
		return markdown
	}
	out, err := m.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}
