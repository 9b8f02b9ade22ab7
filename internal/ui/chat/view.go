// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ragterm/ragterm/internal/api"
	"github.com/ragterm/ragterm/internal/threads"
)

// View renders the whole chat screen.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.viewport.View()
	body := m.sidebar.JoinWithMain(sidebar, main)

	input := m.theme.InputContainer.
		Width(m.width - 2).
		Render(m.theme.InputPrompt.Render("> ") + m.input.View())

	status := m.status.View(m.theme, m.width)

	screen := lipgloss.JoinVertical(lipgloss.Left, header, body, input, status)

	if m.modal.Open() {
		return lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			m.modal.View(m.theme))
	}
	return screen
}

func (m Model) renderHeader() string {
	title := "ragterm"
	if active := m.syncer.Active(); active != nil && active.Title != "" {
		title = active.Title
	}
	return m.theme.Header.Width(m.width).Render(m.theme.HeaderTitle.Render(title))
}

func (m Model) renderSidebar() string {
	if m.theme.SidebarWidth() <= 0 {
		return ""
	}

	search := m.theme.SearchBox.Render(
		m.theme.SearchPrompt.Render("/ ") + m.search.View())
	list := m.sidebar.View(m.theme, m.syncer.ActiveID())
	return lipgloss.JoinVertical(lipgloss.Left, search, list)
}

// renderMessages renders the chat history for the viewport.
func (m Model) renderMessages() string {
	entries := m.log.Entries()

	if m.syncer.ActiveID() == threads.NoThread {
		return m.theme.ThinkingText.Render(
			"No conversation selected. Press ctrl+n to start one.")
	}
	if len(entries) == 0 && !m.log.Sending() {
		return m.theme.ThinkingText.Render("No messages yet. Ask away.")
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch {
		case e.Role == api.SenderUser && e.Pending:
			b.WriteString(m.theme.PendingBubble.Render(e.Content))
		case e.Role == api.SenderUser:
			b.WriteString(m.theme.UserBubble.Render(e.Content))
		default:
			b.WriteString(m.theme.AssistantBubble.Render(m.markdown.Render(e.Content)))
		}
	}

	if m.log.Sending() {
		b.WriteString("\n\n")
		b.WriteString(m.spinner.View())
		b.WriteString(m.theme.ThinkingText.Render(" thinking..."))
	}
	return b.String()
}
