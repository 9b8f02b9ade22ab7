// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// helpers.go - shared plumbing for the command handlers.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/ragterm/ragterm/internal/api"
	"github.com/ragterm/ragterm/internal/config"
	"github.com/ragterm/ragterm/internal/session"
)

// Env carries the shared dependencies of every command handler. main
// builds one Env and dispatches on the parsed command.
type Env struct {
	Cfg      *config.Config
	Client   *api.Client
	Sessions *session.Manager
}

// commandTimeout bounds every one-shot CLI request.
const commandTimeout = 2 * time.Minute

func (e *Env) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

// =============================================================================
// TERMINAL
// =============================================================================

// stdinIsTerminal reports whether stdin is an interactive terminal.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// readLine prompts on stdout and reads one trimmed line from stdin.
func readLine(prompt string) (string, error) {
	fmt.Print(promptStyle.Render(prompt))
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword prompts and reads a password without echo. Falls back to
// a plain line read when stdin is not a terminal (tests, pipes).
func readPassword(prompt string) (string, error) {
	if !stdinIsTerminal() {
		return readLine(prompt)
	}
	fmt.Print(promptStyle.Render(prompt))
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// =============================================================================
// CONFIRMATION
// =============================================================================

// confirm gates a destructive action. The --confirm flag skips the
// prompt; without a terminal the flag is mandatory.
func confirm(action string, confirmFlag bool) (bool, error) {
	if confirmFlag {
		return true, nil
	}
	if !stdinIsTerminal() {
		return false, fmt.Errorf("%s requires --confirm when stdin is not a terminal", action)
	}
	answer, err := readLine(fmt.Sprintf("%s? [y/N] ", action))
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// =============================================================================
// ARGUMENT HELPERS
// =============================================================================

// pickMode resolves the answer mode from a flag with the config default.
func pickMode(flag string, cfg *config.Config) (api.Mode, error) {
	if flag == "" {
		return cfg.Mode(), nil
	}
	mode := api.Mode(flag)
	if !mode.Valid() {
		return "", fmt.Errorf("unknown mode %q (rag or chat)", flag)
	}
	return mode, nil
}

// pickVisibility resolves the upload visibility from a flag with the
// config default.
func pickVisibility(flag string, cfg *config.Config) (api.Visibility, error) {
	if flag == "" {
		return cfg.Visibility(), nil
	}
	v := api.Visibility(flag)
	if !v.Valid() {
		return "", fmt.Errorf("unknown visibility %q (public or private)", flag)
	}
	return v, nil
}
