// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ragterm/ragterm/internal/api"
	"github.com/ragterm/ragterm/internal/config"
)

// =============================================================================
// MESSAGES
// =============================================================================

// threadsRefreshedMsg reports a completed thread list refresh.
type threadsRefreshedMsg struct {
	err error
}

// threadCreatedMsg reports a completed create call. thread is nil when
// the create was suppressed by the in-flight guard.
type threadCreatedMsg struct {
	thread *api.Thread
	err    error
}

// threadRenamedMsg reports a completed rename call.
type threadRenamedMsg struct {
	err error
}

// threadDeletedMsg reports a completed delete call.
type threadDeletedMsg struct {
	err error
}

// historyLoadedMsg reports a completed message history load.
type historyLoadedMsg struct {
	threadID int64
	err      error
}

// answerMsg reports a completed send.
type answerMsg struct {
	latency time.Duration
	err     error
}

// configReloadedMsg carries a config freshly reloaded from disk.
type configReloadedMsg struct {
	cfg *config.Config
}

// ConfigReloaded wraps a reloaded config for delivery via Program.Send.
func ConfigReloaded(cfg *config.Config) tea.Msg {
	return configReloadedMsg{cfg: cfg}
}

// =============================================================================
// COMMANDS
// =============================================================================

// refreshCmd fetches the thread list, filtered by search.
func (m Model) refreshCmd(search string) tea.Cmd {
	return func() tea.Msg {
		return threadsRefreshedMsg{err: m.syncer.Refresh(m.ctx(), search)}
	}
}

// searchCmd is refreshCmd throttled for per-keystroke use.
func (m Model) searchCmd(search string) tea.Cmd {
	return func() tea.Msg {
		if err := m.limiter.Wait(m.ctx()); err != nil {
			return threadsRefreshedMsg{err: err}
		}
		return threadsRefreshedMsg{err: m.syncer.Refresh(m.ctx(), search)}
	}
}

// createCmd creates a new thread in the current mode.
func (m Model) createCmd() tea.Cmd {
	return func() tea.Msg {
		t, err := m.syncer.Create(m.ctx(), m.mode)
		return threadCreatedMsg{thread: t, err: err}
	}
}

// renameCmd renames a thread. The blank-title no-op lives in the syncer.
func (m Model) renameCmd(id int64, title string) tea.Cmd {
	return func() tea.Msg {
		return threadRenamedMsg{err: m.syncer.Rename(m.ctx(), id, title)}
	}
}

// deleteCmd deletes a thread.
func (m Model) deleteCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		return threadDeletedMsg{err: m.syncer.Delete(m.ctx(), id)}
	}
}

// loadHistoryCmd loads the message history for a thread.
func (m Model) loadHistoryCmd(threadID int64) tea.Cmd {
	return func() tea.Msg {
		return historyLoadedMsg{threadID: threadID, err: m.log.Load(m.ctx(), threadID)}
	}
}

// sendCmd submits a question against the active thread and journals the
// outcome.
func (m Model) sendCmd(question string) tea.Cmd {
	threadID := m.syncer.ActiveID()
	mode := m.mode
	return func() tea.Msg {
		start := time.Now()
		err := m.log.Send(m.ctx(), mode, question)
		latency := time.Since(start)
		if m.journal != nil {
			_ = m.journal.Record(threadID, mode, err == nil, latency)
		}
		return answerMsg{latency: latency, err: err}
	}
}

// regenerateCmd splices out an assistant reply and re-asks its question.
func (m Model) regenerateCmd(assistantID string) tea.Cmd {
	threadID := m.syncer.ActiveID()
	mode := m.mode
	return func() tea.Msg {
		start := time.Now()
		err := m.log.Regenerate(m.ctx(), mode, assistantID)
		latency := time.Since(start)
		if m.journal != nil {
			_ = m.journal.Record(threadID, mode, err == nil, latency)
		}
		return answerMsg{latency: latency, err: err}
	}
}
