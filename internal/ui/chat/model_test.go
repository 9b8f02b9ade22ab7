// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragterm/ragterm/internal/api"
	"github.com/ragterm/ragterm/internal/config"
	"github.com/ragterm/ragterm/internal/session"
	"github.com/ragterm/ragterm/internal/ui/components"
)

// testBackend is a minimal conversations server for model tests.
type testBackend struct {
	threads []api.Thread
	lists   atomic.Int64
	renames atomic.Int64
	deletes atomic.Int64
}

func (b *testBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/conversations/me":
			b.lists.Add(1)
			json.NewEncoder(w).Encode(b.threads)
		case r.Method == http.MethodPatch:
			b.renames.Add(1)
			json.NewEncoder(w).Encode(api.Thread{ID: 1, Title: "renamed"})
		case r.Method == http.MethodDelete:
			b.deletes.Add(1)
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode([]api.Message{})
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestModel(t *testing.T, b *testBackend) Model {
	t.Helper()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	store, err := session.OpenStore(t.TempDir())
	require.NoError(t, err)
	sessions := session.NewManager(store)
	require.NoError(t, sessions.Login(&api.LoginResult{
		AccessToken: "at", RefreshToken: "rt", Role: api.RoleMember,
	}, "m@example.com"))

	client := api.New(srv.URL).WithTokenSource(sessions.TokenSource())
	return New(config.Default(), client, sessions, nil)
}

// drive runs one Update and returns the typed model.
func drive(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	typed, ok := next.(Model)
	require.True(t, ok)
	return typed, cmd
}

func TestNew_ModeFollowsConfig(t *testing.T) {
	m := newTestModel(t, &testBackend{})
	assert.Equal(t, api.ModeRAG, m.mode)
	assert.Equal(t, "m@example.com", m.status.Email)
	assert.Equal(t, api.RoleMember, m.status.Role)
}

func TestRefresh_PopulatesSidebarAndLoadsHistory(t *testing.T) {
	b := &testBackend{threads: []api.Thread{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}}
	m := newTestModel(t, b)
	m, _ = drive(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	msg := m.refreshCmd("")()
	m, cmd := drive(t, m, msg)
	assert.Equal(t, int64(1), m.syncer.ActiveID())
	require.NotNil(t, cmd, "active thread changed, history load expected")

	m, _ = drive(t, m, cmd())
	assert.Equal(t, int64(1), m.log.ThreadID())
}

func TestToggleMode(t *testing.T) {
	m := newTestModel(t, &testBackend{})
	m, _ = drive(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, api.ModeChat, m.mode)
	assert.Equal(t, api.ModeChat, m.status.Mode)

	m, _ = drive(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, api.ModeRAG, m.mode)
}

func TestErrorSurfacesAsToastAndExpires(t *testing.T) {
	m := newTestModel(t, &testBackend{})

	m, cmd := drive(t, m, threadsRefreshedMsg{err: assert.AnError})
	require.NotNil(t, m.toast)
	require.NotNil(t, cmd)

	m, _ = drive(t, m, components.ToastExpiredMsg{ID: m.toast.ID})
	assert.Nil(t, m.toast)
}

func TestToastExpiry_IgnoresStaleID(t *testing.T) {
	m := newTestModel(t, &testBackend{})
	m, _ = drive(t, m, threadsRefreshedMsg{err: assert.AnError})
	require.NotNil(t, m.toast)

	m, _ = drive(t, m, components.ToastExpiredMsg{ID: m.toast.ID - 1})
	assert.NotNil(t, m.toast, "only the matching toast may be dismissed")
}

func TestModalConfirm_DispatchesRename(t *testing.T) {
	b := &testBackend{threads: []api.Thread{{ID: 1, Title: "A"}}}
	m := newTestModel(t, b)
	m, _ = drive(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = drive(t, m, m.refreshCmd("")())

	m, cmd := drive(t, m, components.ModalConfirmedMsg{
		Kind: components.ModalRename, ThreadID: 1, Value: "New name",
	})
	require.NotNil(t, cmd)
	m, _ = drive(t, m, cmd())
	assert.EqualValues(t, 1, b.renames.Load())
}

func TestModalConfirm_BlankRenameNeverReachesServer(t *testing.T) {
	b := &testBackend{threads: []api.Thread{{ID: 1, Title: "A"}}}
	m := newTestModel(t, b)
	m, _ = drive(t, m, m.refreshCmd("")())

	m, cmd := drive(t, m, components.ModalConfirmedMsg{
		Kind: components.ModalRename, ThreadID: 1, Value: "   ",
	})
	require.NotNil(t, cmd)
	drive(t, m, cmd())
	assert.Zero(t, b.renames.Load())
}

func TestDeleteActiveThread_ClearsChat(t *testing.T) {
	b := &testBackend{threads: []api.Thread{{ID: 1, Title: "A"}}}
	m := newTestModel(t, b)
	m, _ = drive(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = drive(t, m, m.refreshCmd("")())
	require.Equal(t, int64(1), m.syncer.ActiveID())

	m, cmd := drive(t, m, components.ModalConfirmedMsg{
		Kind: components.ModalConfirmDelete, ThreadID: 1,
	})
	require.NotNil(t, cmd)
	m, _ = drive(t, m, cmd())

	assert.EqualValues(t, 1, b.deletes.Load())
	assert.Zero(t, m.syncer.ActiveID())
	assert.Empty(t, m.log.Entries())
}

func TestSuppressedDuplicateCreateIsQuiet(t *testing.T) {
	m := newTestModel(t, &testBackend{})
	m, cmd := drive(t, m, threadCreatedMsg{thread: nil, err: nil})
	assert.Nil(t, cmd)
	assert.Nil(t, m.toast)
}

func TestFocusCycling(t *testing.T) {
	m := newTestModel(t, &testBackend{})
	assert.Equal(t, focusInput, m.focus)

	m, _ = drive(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusSidebar, m.focus)

	m, _ = drive(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusInput, m.focus)
}

func TestSearchBurst_IsThrottled(t *testing.T) {
	b := &testBackend{threads: []api.Thread{{ID: 1, Title: "A"}}}
	m := newTestModel(t, b)

	// Three keystroke-driven refreshes back to back. The limiter admits
	// one immediately and spaces the rest at 200ms apiece.
	start := time.Now()
	for i := 0; i < 3; i++ {
		msg := m.searchCmd("a")()
		refreshed, ok := msg.(threadsRefreshedMsg)
		require.True(t, ok)
		require.NoError(t, refreshed.err)
	}
	elapsed := time.Since(start)

	assert.EqualValues(t, 3, b.lists.Load(), "every keystroke still reaches the server")
	assert.GreaterOrEqual(t, elapsed, 350*time.Millisecond,
		"a burst of searches must be paced by the limiter")
}

func TestConfigReload_SwapsThemeLive(t *testing.T) {
	m := newTestModel(t, &testBackend{})
	m, _ = drive(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	fresh := config.Default()
	fresh.UI.Theme = "light"
	m, cmd := drive(t, m, ConfigReloaded(fresh))
	assert.Nil(t, cmd)
	assert.Equal(t, "light", m.cfg.UI.Theme)
	assert.False(t, m.theme.IsDark)

	fresh = config.Default()
	fresh.UI.Theme = "dark"
	m, _ = drive(t, m, ConfigReloaded(fresh))
	assert.True(t, m.theme.IsDark)
}

func TestSlashOpensSearchOnlyOnEmptyInput(t *testing.T) {
	m := newTestModel(t, &testBackend{})

	m, _ = drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	m, _ = drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	assert.Equal(t, focusInput, m.focus, "slash inside text is just a character")
	assert.Equal(t, "h/", m.input.Value())

	m.input.Reset()
	m, _ = drive(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	assert.Equal(t, focusSearch, m.focus)
}
