// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// styles.go - lipgloss styles for plain CLI output.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ragterm/ragterm/internal/ui/styles"
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	labelStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	okStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	warnStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)
)
