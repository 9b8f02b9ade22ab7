// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package chat

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ragterm/ragterm/internal/api"
	"github.com/ragterm/ragterm/internal/config"
	"github.com/ragterm/ragterm/internal/threads"
	"github.com/ragterm/ragterm/internal/ui/components"
	"github.com/ragterm/ragterm/internal/ui/styles"
)

// Update is the Bubble Tea update loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case components.ToastExpiredMsg:
		if m.toast != nil && m.toast.ID == msg.ID {
			m.toast = nil
			m.status.Toast = nil
		}
		return m, nil

	case components.ModalConfirmedMsg:
		switch msg.Kind {
		case components.ModalRename:
			return m, m.renameCmd(msg.ThreadID, msg.Value)
		case components.ModalConfirmDelete:
			return m, m.deleteCmd(msg.ThreadID)
		}
		return m, nil

	case components.ModalCancelledMsg:
		return m, nil

	case configReloadedMsg:
		return m.applyConfig(msg.cfg), nil

	case threadsRefreshedMsg:
		if msg.err != nil {
			return m.showError(msg.err)
		}
		return m.syncThreads()

	case threadCreatedMsg:
		if msg.err != nil {
			return m.showError(msg.err)
		}
		if msg.thread == nil {
			// Suppressed duplicate create.
			return m, nil
		}
		m.sidebar = m.sidebar.SetThreads(m.syncer.Threads()).CursorTo(msg.thread.ID)
		return m, m.loadHistoryCmd(msg.thread.ID)

	case threadRenamedMsg:
		if msg.err != nil {
			return m.showError(msg.err)
		}
		m.sidebar = m.sidebar.SetThreads(m.syncer.Threads())
		return m, nil

	case threadDeletedMsg:
		if msg.err != nil {
			return m.showError(msg.err)
		}
		m.sidebar = m.sidebar.SetThreads(m.syncer.Threads())
		if m.syncer.ActiveID() == threads.NoThread {
			m.log.Clear()
			m.viewport.SetContent(m.renderMessages())
		}
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			return m.showError(msg.err)
		}
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		return m, nil

	case answerMsg:
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		if msg.err != nil {
			// The optimistic user entry stays; only the error surfaces.
			return m.showError(msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey routes a keystroke to the modal or the focused area.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal.Open() {
		var cmd tea.Cmd
		m.modal, cmd = m.modal.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.NewThread):
		return m, m.createCmd()

	case key.Matches(msg, keys.Rename):
		if active := m.syncer.Active(); active != nil {
			m.modal = m.modal.OpenRename(active.ID, active.Title)
		}
		return m, nil

	case key.Matches(msg, keys.Delete):
		if active := m.syncer.Active(); active != nil {
			m.modal = m.modal.OpenConfirmDelete(active.ID, active.Title)
		}
		return m, nil

	case key.Matches(msg, keys.ToggleMode):
		if m.mode == api.ModeChat {
			m.mode = api.ModeRAG
		} else {
			m.mode = api.ModeChat
		}
		m.status.Mode = m.mode
		return m, nil

	case key.Matches(msg, keys.Regenerate):
		if id := m.lastAssistantID(); id != "" && !m.log.Sending() {
			return m, m.regenerateCmd(id)
		}
		return m, nil

	case key.Matches(msg, keys.FocusNext):
		return m.cycleFocus(), nil
	}

	switch m.focus {
	case focusSearch:
		return m.handleSearchKey(msg)
	case focusSidebar:
		return m.handleSidebarKey(msg)
	default:
		return m.handleInputKey(msg)
	}
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.search.SetValue("")
		m.search.Blur()
		m.focus = focusInput
		m.input.Focus()
		return m, m.refreshCmd("")

	case key.Matches(msg, keys.Select):
		m.search.Blur()
		m.focus = focusSidebar
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	// Server-side search on every keystroke, throttled.
	return m, tea.Batch(cmd, m.searchCmd(m.search.Value()))
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		m.sidebar = m.sidebar.CursorUp()
		return m, nil

	case key.Matches(msg, keys.Down):
		m.sidebar = m.sidebar.CursorDown()
		return m, nil

	case key.Matches(msg, keys.Search):
		return m.focusSearchBox(), nil

	case key.Matches(msg, keys.Select):
		selected := m.sidebar.Selected()
		if selected == nil {
			return m, nil
		}
		m.syncer.SetActive(selected.ID)
		m.focus = focusInput
		m.input.Focus()
		return m, m.loadHistoryCmd(selected.ID)

	case key.Matches(msg, keys.Escape):
		m.focus = focusInput
		m.input.Focus()
		return m, nil
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// "/" opens search only on an empty input line; otherwise it is text.
	if key.Matches(msg, keys.Search) && m.input.Value() == "" {
		return m.focusSearchBox(), nil
	}

	if key.Matches(msg, keys.Select) {
		question := m.input.Value()
		if question == "" || m.log.Sending() {
			return m, nil
		}
		if m.syncer.ActiveID() == threads.NoThread {
			// No thread yet: create one, the question stays in the input.
			return m, m.createCmd()
		}
		m.input.Reset()
		cmd := m.sendCmd(question)
		m.viewport.SetContent(m.renderMessages())
		return m, tea.Batch(cmd, m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// HELPERS
// =============================================================================

// syncThreads mirrors the syncer's state into the sidebar and reloads
// history when the active thread changed under a refresh.
func (m Model) syncThreads() (tea.Model, tea.Cmd) {
	active := m.syncer.ActiveID()
	m.sidebar = m.sidebar.SetThreads(m.syncer.Threads()).CursorTo(active)

	if active == threads.NoThread {
		m.log.Clear()
		m.viewport.SetContent(m.renderMessages())
		return m, nil
	}
	if m.log.ThreadID() != active {
		return m, m.loadHistoryCmd(active)
	}
	return m, nil
}

func (m Model) focusSearchBox() Model {
	m.focus = focusSearch
	m.input.Blur()
	m.search.Focus()
	return m
}

func (m Model) cycleFocus() Model {
	switch m.focus {
	case focusInput:
		m.focus = focusSidebar
		m.input.Blur()
	case focusSidebar:
		m.focus = focusInput
		m.input.Focus()
	case focusSearch:
		m.focus = focusInput
		m.search.Blur()
		m.input.Focus()
	}
	return m
}

// lastAssistantID returns the local id of the newest assistant entry.
func (m Model) lastAssistantID() string {
	entries := m.log.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Role == api.SenderAssistant {
			return entries[i].LocalID
		}
	}
	return ""
}

// showError surfaces an error as a toast.
func (m Model) showError(err error) (tea.Model, tea.Cmd) {
	toast := components.NewErrorToast(err.Error())
	m.toast = &toast
	m.status.Toast = &toast
	return m, toast.ExpireCmd()
}

// resize lays the UI out for a new terminal size.
func (m Model) resize(width, height int) Model {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	sidebarWidth := m.theme.SidebarWidth()
	mainWidth := width - sidebarWidth

	chromeHeight := 4 // header, input border, status bar
	vpHeight := height - chromeHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(mainWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = mainWidth
		m.viewport.Height = vpHeight
	}

	m.sidebar = m.sidebar.SetSize(sidebarWidth, vpHeight)
	m.input.Width = mainWidth - 4
	m.search.Width = sidebarWidth - 4
	m.markdown.SetWidth(mainWidth - 6)
	m.viewport.SetContent(m.renderMessages())
	return m
}

// applyConfig swaps in a config reloaded from disk. Only presentation
// settings take effect live; the server connection stays as it was.
func (m Model) applyConfig(cfg *config.Config) Model {
	m.cfg = cfg
	m.theme = styles.NewTheme(cfg.UI.Theme)
	m.theme.SetSize(m.width, m.height)
	m.markdown = components.NewMarkdownRenderer(m.viewport.Width-6, m.theme.IsDark)
	m.viewport.SetContent(m.renderMessages())
	return m
}
