// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ragterm/ragterm/internal/ui/styles"
)

// =============================================================================
// UNIFIED MODAL
// =============================================================================

// ModalKind identifies what a modal is asking.
type ModalKind int

const (
	// ModalNone means no modal is open.
	ModalNone ModalKind = iota
	// ModalRename asks for a new thread title.
	ModalRename
	// ModalConfirmDelete asks to confirm a thread deletion.
	ModalConfirmDelete
)

// ModalConfirmedMsg is emitted when the user confirms a modal.
type ModalConfirmedMsg struct {
	Kind     ModalKind
	ThreadID int64
	// Value carries the entered text for ModalRename.
	Value string
}

// ModalCancelledMsg is emitted when the user cancels a modal.
type ModalCancelledMsg struct{}

// Modal is the single in-app dialog. Every prompt in the UI (rename,
// delete confirmation) goes through this one component with explicit
// open/confirm/cancel state; nothing blocks on a raw terminal prompt.
type Modal struct {
	kind     ModalKind
	title    string
	body     string
	threadID int64
	input    textinput.Model

	// confirmFocused tracks which button is highlighted in confirm modals.
	confirmFocused bool
}

// NewModal creates a closed modal.
func NewModal() Modal {
	in := textinput.New()
	in.CharLimit = 200
	in.Width = 40
	return Modal{kind: ModalNone, input: in}
}

// Open reports whether a modal is currently showing.
func (m Modal) Open() bool {
	return m.kind != ModalNone
}

// Kind returns the open modal's kind, or ModalNone.
func (m Modal) Kind() ModalKind {
	return m.kind
}

// OpenRename opens the rename dialog seeded with the current title.
func (m Modal) OpenRename(threadID int64, currentTitle string) Modal {
	m.kind = ModalRename
	m.title = "Rename conversation"
	m.threadID = threadID
	m.input.SetValue(currentTitle)
	m.input.CursorEnd()
	m.input.Focus()
	return m
}

// OpenConfirmDelete opens the delete confirmation dialog.
func (m Modal) OpenConfirmDelete(threadID int64, title string) Modal {
	m.kind = ModalConfirmDelete
	m.title = "Delete conversation"
	m.body = "Delete \"" + title + "\"? This cannot be undone."
	m.threadID = threadID
	m.confirmFocused = false
	return m
}

// Close closes the modal.
func (m Modal) Close() Modal {
	m.kind = ModalNone
	m.body = ""
	m.input.Blur()
	return m
}

// Update handles input while the modal is open. It returns the updated
// modal and, on confirm or cancel, a command carrying the outcome.
func (m Modal) Update(msg tea.Msg) (Modal, tea.Cmd) {
	if m.kind == ModalNone {
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "esc":
		return m.Close(), func() tea.Msg { return ModalCancelledMsg{} }

	case "enter":
		out := ModalConfirmedMsg{Kind: m.kind, ThreadID: m.threadID}
		if m.kind == ModalRename {
			out.Value = m.input.Value()
		}
		if m.kind == ModalConfirmDelete && !m.confirmFocused {
			// "Cancel" is the default button; confirming it cancels.
			return m.Close(), func() tea.Msg { return ModalCancelledMsg{} }
		}
		return m.Close(), func() tea.Msg { return out }

	case "tab", "left", "right":
		if m.kind == ModalConfirmDelete {
			m.confirmFocused = !m.confirmFocused
			return m, nil
		}
	}

	if m.kind == ModalRename {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the modal box.
func (m Modal) View(theme *styles.Theme) string {
	if m.kind == ModalNone {
		return ""
	}

	title := theme.ModalTitle.Render(m.title)

	var body string
	switch m.kind {
	case ModalRename:
		body = m.input.View() + "\n\n" +
			theme.StatusDesc.Render("enter: save   esc: cancel")
	case ModalConfirmDelete:
		cancel := theme.ModalButtonActive.Render("Cancel")
		del := theme.ModalButton.Render("Delete")
		if m.confirmFocused {
			cancel = theme.ModalButton.Render("Cancel")
			del = theme.ModalButtonActive.Render("Delete")
		}
		body = theme.ModalBody.Render(m.body) + "\n\n" +
			lipgloss.JoinHorizontal(lipgloss.Top, cancel, del)
	}

	return theme.ModalBox.Render(title + "\n\n" + body)
}
