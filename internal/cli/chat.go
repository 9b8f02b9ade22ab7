// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// chat.go - line-mode chat for terminals where the TUI is unwanted.
//
// Command: chat
//
// Interactive commands during chat:
//   /new              Start a new conversation
//   /threads          List conversations
//   /switch ID        Switch to a conversation
//   /mode [rag|chat]  Show or set the answer mode
//   /history          Reprint the current conversation
//   /help             Show commands
//   /quit, Ctrl+D     Exit
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/ragterm/ragterm/internal/api"
	"github.com/ragterm/ragterm/internal/chatlog"
	"github.com/ragterm/ragterm/internal/config"
	"github.com/ragterm/ragterm/internal/history"
	"github.com/ragterm/ragterm/internal/threads"
)

const chatHistoryFile = "chat_history"

// replCommands feed liner's tab completion.
var replCommands = []string{
	"/new", "/threads", "/switch", "/mode", "/history", "/help", "/quit",
}

// HandleChat runs the liner REPL against the active backend.
func (e *Env) HandleChat(args *Args, journal *history.Journal) int {
	if err := e.Sessions.RequireAuth(); err != nil {
		return Fail(err)
	}

	mode, err := pickMode(args.Mode, e.Cfg)
	if err != nil {
		return Fail(err)
	}

	syncer := threads.NewSync(e.Client)
	log := chatlog.NewLog(e.Client)

	ctx, cancel := e.ctx()
	defer cancel()

	if err := syncer.Refresh(ctx, ""); err != nil {
		return Fail(err)
	}
	if id := syncer.ActiveID(); id != threads.NoThread {
		if err := log.Load(ctx, id); err != nil {
			return Fail(err)
		}
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(prefix string) (out []string) {
		for _, c := range replCommands {
			if strings.HasPrefix(c, prefix) {
				out = append(out, c)
			}
		}
		return out
	})
	loadReplHistory(line)
	defer saveReplHistory(line)

	if !args.Quiet {
		fmt.Println(headerStyle.Render("ragterm chat"))
		fmt.Println(infoStyle.Render("type /help for commands, /quit to exit"))
		printActive(syncer)
	}

	for {
		input, err := line.Prompt(promptText(mode))
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return ExitOK
		}
		if err != nil {
			return Fail(err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			done, newMode := e.replCommand(input, syncer, log, mode)
			mode = newMode
			if done {
				return ExitOK
			}
			continue
		}

		if err := e.replAsk(syncer, log, journal, mode, input); err != nil {
			fmt.Println(errorStyle.Render("error: ") + err.Error())
		}
	}
}

func promptText(mode api.Mode) string {
	return fmt.Sprintf("[%s] > ", mode)
}

// replAsk sends one question, creating a conversation on demand.
func (e *Env) replAsk(syncer *threads.Sync, log *chatlog.Log, journal *history.Journal, mode api.Mode, question string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if syncer.ActiveID() == threads.NoThread {
		t, err := syncer.Create(ctx, mode)
		if err != nil {
			return err
		}
		if t != nil {
			log.Clear()
			if err := log.Load(ctx, t.ID); err != nil {
				return err
			}
		}
	}

	start := time.Now()
	err := log.Send(ctx, mode, question)
	latency := time.Since(start)
	if journal != nil {
		_ = journal.Record(syncer.ActiveID(), mode, err == nil, latency)
	}
	if err != nil {
		return err
	}

	entries := log.Entries()
	if len(entries) > 0 {
		last := entries[len(entries)-1]
		fmt.Println(renderAnswer(last.Content, false, e.Cfg.UI.Theme))
	}
	return nil
}

// replCommand handles one /command. It returns (done, mode).
func (e *Env) replCommand(input string, syncer *threads.Sync, log *chatlog.Log, mode api.Mode) (bool, api.Mode) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/quit", "/q", "/exit":
		return true, mode

	case "/help", "/h":
		fmt.Println(infoStyle.Render("/new /threads /switch ID /mode [rag|chat] /history /quit"))

	case "/new":
		t, err := syncer.Create(ctx, mode)
		if err != nil {
			fmt.Println(errorStyle.Render("error: ") + err.Error())
			break
		}
		if t != nil {
			log.Clear()
			_ = log.Load(ctx, t.ID)
			printActive(syncer)
		}

	case "/threads":
		if err := syncer.Refresh(ctx, ""); err != nil {
			fmt.Println(errorStyle.Render("error: ") + err.Error())
			break
		}
		for _, t := range syncer.Threads() {
			marker := "  "
			if t.ID == syncer.ActiveID() {
				marker = promptStyle.Render("* ")
			}
			title := t.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%s%-6d %s\n", marker, t.ID, title)
		}

	case "/switch":
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			fmt.Println(warnStyle.Render("usage: /switch ID"))
			break
		}
		syncer.SetActive(id)
		if err := log.Load(ctx, id); err != nil {
			fmt.Println(errorStyle.Render("error: ") + err.Error())
			break
		}
		printActive(syncer)
		printTranscript(log)

	case "/mode":
		if rest == "" {
			fmt.Println(infoStyle.Render("mode: " + string(mode)))
			break
		}
		next := api.Mode(rest)
		if !next.Valid() {
			fmt.Println(warnStyle.Render("usage: /mode rag|chat"))
			break
		}
		mode = next
		fmt.Println(infoStyle.Render("mode: " + string(mode)))

	case "/history":
		printTranscript(log)

	default:
		fmt.Println(warnStyle.Render("unknown command " + cmd + " (try /help)"))
	}
	return false, mode
}

func printActive(syncer *threads.Sync) {
	active := syncer.Active()
	if active == nil {
		fmt.Println(infoStyle.Render("no conversation selected; your first question starts one"))
		return
	}
	title := active.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Println(infoStyle.Render(fmt.Sprintf("conversation %d: %s", active.ID, title)))
}

func printTranscript(log *chatlog.Log) {
	for _, entry := range log.Entries() {
		switch entry.Role {
		case api.SenderUser:
			fmt.Println(promptStyle.Render("you: ") + entry.Content)
		default:
			fmt.Println(labelStyle.Render("assistant: ") + entry.Content)
		}
	}
}

// =============================================================================
// REPL HISTORY
// =============================================================================

func replHistoryPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, chatHistoryFile), nil
}

func loadReplHistory(line *liner.State) {
	path, err := replHistoryPath()
	if err != nil {
		return
	}
	if f, err := os.Open(path); err == nil {
		defer f.Close()
		_, _ = line.ReadHistory(f)
	}
}

func saveReplHistory(line *liner.State) {
	path, err := replHistoryPath()
	if err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = line.WriteHistory(f)
}
