// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// ask.go - one-shot question handler.
//
// Command: ask [question]
//
// Examples:
//   ragterm ask "What does the onboarding doc say about VPN access?"
//   ragterm ask --mode chat "Summarize the last answer"
//   ragterm ask --thread 42 "And in production?"
//   ragterm ask --raw "Give me the raw markdown"
package cli

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/ragterm/ragterm/internal/history"
	"github.com/ragterm/ragterm/internal/ui/components"
	"github.com/ragterm/ragterm/internal/ui/styles"
)

// HandleAsk sends a single question and prints the rendered answer.
// Without --thread it creates a fresh conversation first.
func (e *Env) HandleAsk(args *Args, journal *history.Journal) int {
	if err := e.Sessions.RequireAuth(); err != nil {
		return Fail(err)
	}

	mode, err := pickMode(args.Mode, e.Cfg)
	if err != nil {
		return Fail(err)
	}

	ctx, cancel := e.ctx()
	defer cancel()

	threadID := args.ThreadID
	if threadID == 0 {
		t, err := e.Client.CreateThread(ctx, mode)
		if err != nil {
			return Fail(fmt.Errorf("create conversation: %w", err))
		}
		threadID = t.ID
		if args.Verbose {
			fmt.Fprintln(os.Stderr, infoStyle.Render(
				fmt.Sprintf("conversation %d created", threadID)))
		}
	}

	start := time.Now()
	answer, err := e.Client.Send(ctx, threadID, mode, args.Query)
	latency := time.Since(start)
	if journal != nil {
		_ = journal.Record(threadID, mode, err == nil, latency)
	}
	if err != nil {
		return Fail(err)
	}

	fmt.Println(renderAnswer(answer, args.Options.BoolFlag("raw"), e.Cfg.UI.Theme))
	if args.Verbose {
		fmt.Fprintln(os.Stderr, infoStyle.Render(
			fmt.Sprintf("answered in %s", latency.Round(time.Millisecond))))
	}
	return ExitOK
}

// renderAnswer renders markdown for terminals, falling back to
// fence-highlighted plain text when stdout is not a terminal.
func renderAnswer(answer string, raw bool, themeMode string) string {
	if raw {
		return answer
	}

	width := 100
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	} else {
		// Pipes get syntax-highlighted fences but no glamour layout.
		return components.HighlightFences(answer)
	}

	theme := styles.NewTheme(themeMode)
	md := components.NewMarkdownRenderer(width, theme.IsDark)
	return md.Render(answer)
}
