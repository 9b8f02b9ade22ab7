// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// Package chat implements the main ragterm TUI: thread sidebar, message
// viewport, input line, search, and the rename/delete modal.
package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/ragterm/ragterm/internal/api"
	"github.com/ragterm/ragterm/internal/chatlog"
	"github.com/ragterm/ragterm/internal/config"
	"github.com/ragterm/ragterm/internal/history"
	"github.com/ragterm/ragterm/internal/session"
	"github.com/ragterm/ragterm/internal/threads"
	"github.com/ragterm/ragterm/internal/ui/components"
	"github.com/ragterm/ragterm/internal/ui/styles"
)

// focusArea identifies which part of the UI receives keystrokes.
type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
	focusSearch
)

// searchRate throttles server-side search refreshes while typing. The
// thread syncer's generation stamping drops whatever still resolves out
// of order.
var searchRate = rate.Limit(5)

// Model is the Bubble Tea model for the chat view.
type Model struct {
	cfg      *config.Config
	theme    *styles.Theme
	client   *api.Client
	sessions *session.Manager

	syncer  *threads.Sync
	log     *chatlog.Log
	journal *history.Journal // nil when journaling is disabled

	sidebar  components.Sidebar
	modal    components.Modal
	status   components.StatusBar
	markdown *components.MarkdownRenderer

	input    textinput.Model
	search   textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	focus   focusArea
	mode    api.Mode
	toast   *components.Toast
	limiter *rate.Limiter

	width  int
	height int
	ready  bool
}

// New builds the chat model. journal may be nil.
func New(cfg *config.Config, client *api.Client, sessions *session.Manager, journal *history.Journal) Model {
	theme := styles.NewTheme(cfg.UI.Theme)

	input := textinput.New()
	input.Placeholder = "Ask a question..."
	input.CharLimit = 4000
	input.Focus()

	search := textinput.New()
	search.Placeholder = "Search conversations..."
	search.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	m := Model{
		cfg:      cfg,
		theme:    theme,
		client:   client,
		sessions: sessions,
		syncer:   threads.NewSync(client),
		log:      chatlog.NewLog(client),
		journal:  journal,
		sidebar:  components.NewSidebar(0, 0),
		modal:    components.NewModal(),
		markdown: components.NewMarkdownRenderer(80, theme.IsDark),
		input:    input,
		search:   search,
		spinner:  sp,
		mode:     cfg.Mode(),
		limiter:  rate.NewLimiter(searchRate, 1),
	}

	if s := sessions.Current(); s != nil {
		m.status = components.StatusBar{Email: s.Email, Role: s.Role, Mode: m.mode}
	}
	return m
}

// Init kicks off the first thread refresh.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(""), m.spinner.Tick)
}

// ctx returns the context used for API calls issued by commands.
func (m Model) ctx() context.Context {
	return context.Background()
}
