// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// TruncateRunes truncates s to at most maxRunes characters, appending "..."
// when something was cut. Counting runes rather than bytes keeps multi-byte
// UTF-8 sequences intact.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// TruncateWidth truncates s to at most maxWidth display columns, accounting
// for double-width (CJK) characters, appending an ellipsis when truncated.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 1 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// CollapseSpace replaces runs of whitespace (including newlines) with a
// single space and trims the result. Used for single-line previews of
// multi-line content.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
