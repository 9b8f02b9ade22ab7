// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// args.go - unified argument parsing shared by all command handlers.
package cli

import (
	"strconv"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser parses the arguments after the command word. It handles:
//
//	--flag value     long flag with space-separated value
//	--flag=value     long flag with equals sign
//	--flag           boolean flag
//	word             positional argument; the first one is the subcommand
type ArgParser struct {
	subcommand string
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// NewArgParser parses raw arguments.
func NewArgParser(raw []string) *ArgParser {
	p := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") {
			p.positional = append(p.positional, arg)
			i++
			continue
		}

		if name, value, ok := strings.Cut(arg, "="); ok {
			p.flags[strings.TrimLeft(name, "-")] = value
			i++
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") && !isBoolFlag(name) {
			p.flags[name] = raw[i+1]
			i += 2
		} else {
			p.boolFlags[name] = true
			i++
		}
	}

	if len(p.positional) > 0 {
		p.subcommand = p.positional[0]
	}
	return p
}

// boolOnlyFlags never take a value, so a following word stays positional.
var boolOnlyFlags = map[string]bool{
	"confirm": true,
	"raw":     true,
}

func isBoolFlag(name string) bool {
	return boolOnlyFlags[name]
}

// Subcommand returns the first positional argument, or "".
func (p *ArgParser) Subcommand() string {
	if p == nil {
		return ""
	}
	return p.subcommand
}

// Flag returns the value of a string flag, or "".
func (p *ArgParser) Flag(name string) string {
	if p == nil {
		return ""
	}
	return p.flags[name]
}

// BoolFlag reports whether a boolean flag was passed.
func (p *ArgParser) BoolFlag(name string) bool {
	if p == nil {
		return false
	}
	return p.boolFlags[name]
}

// Int64Flag parses a flag as int64, returning 0 when absent or invalid.
func (p *ArgParser) Int64Flag(name string) int64 {
	n, _ := strconv.ParseInt(p.Flag(name), 10, 64)
	return n
}

// IntFlag parses a flag as int, returning 0 when absent or invalid.
func (p *ArgParser) IntFlag(name string) int {
	n, _ := strconv.Atoi(p.Flag(name))
	return n
}

// Positional returns the i-th positional argument, or "".
func (p *ArgParser) Positional(i int) string {
	if p == nil || i < 0 || i >= len(p.positional) {
		return ""
	}
	return p.positional[i]
}

// JoinPositional joins all positional arguments with spaces. Used by
// "ask" so unquoted questions still work.
func (p *ArgParser) JoinPositional() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(p.positional, " "))
}
