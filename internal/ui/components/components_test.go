// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragterm/ragterm/internal/api"
	"github.com/ragterm/ragterm/internal/ui/styles"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// =============================================================================
// MODAL
// =============================================================================

func TestModal_RenameConfirmCarriesValue(t *testing.T) {
	m := NewModal()
	assert.False(t, m.Open())

	m = m.OpenRename(7, "Old title")
	require.True(t, m.Open())
	assert.Equal(t, ModalRename, m.Kind())

	m, cmd := m.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	msg := cmd()

	confirmed, ok := msg.(ModalConfirmedMsg)
	require.True(t, ok)
	assert.Equal(t, ModalRename, confirmed.Kind)
	assert.Equal(t, int64(7), confirmed.ThreadID)
	assert.Equal(t, "Old title", confirmed.Value)
	assert.False(t, m.Open(), "confirm closes the modal")
}

func TestModal_EscCancels(t *testing.T) {
	m := NewModal().OpenRename(7, "title")

	m, cmd := m.Update(keyMsg("esc"))
	require.NotNil(t, cmd)
	_, ok := cmd().(ModalCancelledMsg)
	assert.True(t, ok)
	assert.False(t, m.Open())
}

func TestModal_DeleteDefaultsToCancel(t *testing.T) {
	m := NewModal().OpenConfirmDelete(3, "Budget")

	// Enter on the default button cancels, not deletes.
	m, cmd := m.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	_, cancelled := cmd().(ModalCancelledMsg)
	assert.True(t, cancelled, "default button must be the safe one")
}

func TestModal_DeleteConfirmAfterToggle(t *testing.T) {
	m := NewModal().OpenConfirmDelete(3, "Budget")

	m, _ = m.Update(keyMsg("tab"))
	m, cmd := m.Update(keyMsg("enter"))
	require.NotNil(t, cmd)

	confirmed, ok := cmd().(ModalConfirmedMsg)
	require.True(t, ok)
	assert.Equal(t, ModalConfirmDelete, confirmed.Kind)
	assert.Equal(t, int64(3), confirmed.ThreadID)
}

func TestModal_IgnoresInputWhenClosed(t *testing.T) {
	m := NewModal()
	m, cmd := m.Update(keyMsg("enter"))
	assert.Nil(t, cmd)
	assert.False(t, m.Open())
}

// =============================================================================
// SIDEBAR
// =============================================================================

func sampleThreads() []api.Thread {
	return []api.Thread{
		{ID: 1, Title: "Quarterly budget review"},
		{ID: 2, Title: "Onboarding"},
		{ID: 3, Title: "Security questions"},
	}
}

func TestSidebar_CursorNavigation(t *testing.T) {
	s := NewSidebar(30, 20).SetThreads(sampleThreads())

	require.NotNil(t, s.Selected())
	assert.Equal(t, int64(1), s.Selected().ID)

	s = s.CursorDown()
	assert.Equal(t, int64(2), s.Selected().ID)

	s = s.CursorDown().CursorDown().CursorDown()
	assert.Equal(t, int64(3), s.Selected().ID, "cursor clamps at the end")

	s = s.CursorUp().CursorUp().CursorUp().CursorUp()
	assert.Equal(t, int64(1), s.Selected().ID, "cursor clamps at the start")
}

func TestSidebar_CursorTo(t *testing.T) {
	s := NewSidebar(30, 20).SetThreads(sampleThreads()).CursorTo(3)
	assert.Equal(t, int64(3), s.Selected().ID)

	s = s.CursorTo(99)
	assert.Equal(t, int64(3), s.Selected().ID, "unknown id leaves cursor alone")
}

func TestSidebar_SetThreadsClampsCursor(t *testing.T) {
	s := NewSidebar(30, 20).SetThreads(sampleThreads())
	s = s.CursorDown().CursorDown()

	s = s.SetThreads(sampleThreads()[:1])
	require.NotNil(t, s.Selected())
	assert.Equal(t, int64(1), s.Selected().ID)

	s = s.SetThreads(nil)
	assert.Nil(t, s.Selected())
}

func TestSidebar_ViewTruncatesWideTitles(t *testing.T) {
	theme := styles.NewTheme("dark")
	long := api.Thread{ID: 1, Title: strings.Repeat("很", 40)}
	s := NewSidebar(20, 10).SetThreads([]api.Thread{long})

	view := s.View(theme, 1)
	for _, line := range strings.Split(view, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 22, "no line may overflow the sidebar")
	}
}

func TestSidebar_HiddenAtZeroWidth(t *testing.T) {
	s := NewSidebar(0, 10).SetThreads(sampleThreads())
	assert.Empty(t, s.View(styles.NewTheme("dark"), 1))
}

// =============================================================================
// MARKDOWN / CODE
// =============================================================================

func TestMarkdownRenderer_FallsBackOnPlainText(t *testing.T) {
	r := NewMarkdownRenderer(60, true)
	out := r.Render("plain answer")
	assert.Contains(t, out, "plain answer")
}

func TestHighlightFences_LeavesProseAlone(t *testing.T) {
	in := "Here is code:\n```go\nfunc main() {}\n```\ndone."
	out := HighlightFences(in)
	assert.Contains(t, out, "Here is code:")
	assert.Contains(t, out, "done.")
	assert.NotContains(t, out, "```", "fences are consumed")
}

func TestHighlightFences_UnclosedFence(t *testing.T) {
	in := "```python\nprint('hi')"
	out := HighlightFences(in)
	assert.Contains(t, out, "print")
}

// =============================================================================
// TOAST
// =============================================================================

func TestToast_KindsAndExpiry(t *testing.T) {
	e := NewErrorToast("boom")
	s := NewStatusToast("saved")
	assert.Equal(t, ToastKindError, e.Kind)
	assert.Equal(t, ErrorToastDuration, e.Duration)
	assert.Equal(t, DefaultToastDuration, s.Duration)
	assert.NotEqual(t, e.ID, s.ID)
	assert.NotNil(t, e.ExpireCmd())
}

func TestToast_RenderIncludesIndicator(t *testing.T) {
	theme := styles.NewTheme("dark")
	assert.Contains(t, NewErrorToast("boom").Render(theme), "[X]")
	assert.Contains(t, NewSuccessToast("ok").Render(theme), "[OK]")
}
