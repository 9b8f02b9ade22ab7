// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// ragterm - terminal client for a Mini-RAG backend.
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ragterm/ragterm/internal/api"
	"github.com/ragterm/ragterm/internal/cli"
	"github.com/ragterm/ragterm/internal/config"
	"github.com/ragterm/ragterm/internal/history"
	"github.com/ragterm/ragterm/internal/session"
	"github.com/ragterm/ragterm/internal/ui/chat"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run())
}

func run() int {
	args, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return cli.ExitUsage
	}

	switch args.Command {
	case cli.CmdHelp:
		cli.PrintUsage()
		return cli.ExitOK
	case cli.CmdVersion:
		cli.PrintVersion()
		return cli.ExitOK
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: bad config:", err)
		return cli.ExitError
	}

	dir, err := config.Dir()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return cli.ExitError
	}
	if err := config.EnsureDir(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return cli.ExitError
	}

	store, err := session.OpenStore(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return cli.ExitError
	}
	sessions := session.NewManager(store)

	client := api.New(cfg.Server.BaseURL).
		WithTokenSource(sessions.TokenSource()).
		WithTimeout(time.Duration(cfg.Server.TimeoutSecs) * time.Second)

	env := &cli.Env{Cfg: cfg, Client: client, Sessions: sessions}
	journal := openJournal(cfg)
	if journal != nil {
		defer journal.Close()
	}

	switch args.Command {
	case cli.CmdLogin:
		return env.HandleLogin(args)
	case cli.CmdLogout:
		return env.HandleLogout(args)
	case cli.CmdWhoami:
		return env.HandleWhoami(args)
	case cli.CmdAsk:
		return env.HandleAsk(args, journal)
	case cli.CmdChat:
		return env.HandleChat(args, journal)
	case cli.CmdUpload:
		return env.HandleUpload(args)
	case cli.CmdUsers:
		return env.HandleUsers(args)
	case cli.CmdFiles:
		return env.HandleFiles(args)
	case cli.CmdProfile:
		return env.HandleProfile(args)
	case cli.CmdStats:
		return env.HandleStats(args, journal)
	case cli.CmdConfig:
		return env.HandleConfig(args)
	}

	return runTUI(cfg, client, sessions, journal)
}

// runTUI starts the Bubble Tea chat interface.
func runTUI(cfg *config.Config, client *api.Client, sessions *session.Manager, journal *history.Journal) int {
	if err := sessions.RequireAuth(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return cli.ExitError
	}

	program := tea.NewProgram(
		chat.New(cfg, client, sessions, journal),
		tea.WithAltScreen(),
	)

	// Live-reload presentation settings while the TUI runs.
	if path, err := config.Path(); err == nil {
		if watcher, err := config.Watch(path, func(fresh *config.Config) {
			program.Send(chat.ConfigReloaded(fresh))
		}); err == nil {
			defer watcher.Close()
		}
	}

	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return cli.ExitError
	}
	return cli.ExitOK
}

// openJournal opens the local question journal, or returns nil when
// history is disabled or unavailable. A broken journal never blocks the
// client.
func openJournal(cfg *config.Config) *history.Journal {
	if !cfg.History.Enabled {
		return nil
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		return nil
	}
	journal, err := history.Open(path)
	if err != nil {
		return nil
	}
	return journal
}
