// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// cli.go - command parsing for ragterm.
package cli

import (
	"fmt"
	"os"
	"runtime"
)

// Version information (can be overridden at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdAsk
	CmdChat
	CmdUpload
	CmdUsers
	CmdFiles
	CmdProfile
	CmdStats
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds the parsed command line.
type Args struct {
	Command Command

	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool

	// Command-specific
	Query      string
	File       string
	Subcommand string
	Mode       string
	Visibility string
	ThreadID   int64

	// Raw args remaining after the command word.
	Raw []string

	// Options holds named options (e.g. --role, --email).
	Options *ArgParser
}

const usageText = `ragterm - terminal client for a Mini-RAG backend

Usage:
  ragterm                       Start the chat TUI (default)
  ragterm login                 Log in and store the session
  ragterm logout                Revoke and clear the session
  ragterm whoami                Show the current session
  ragterm ask "question"        Ask a single question
    --mode rag|chat             Answer mode (default from config)
    --thread ID                 Ask inside an existing conversation
    --raw                       Skip markdown rendering
  ragterm chat                  Line-mode chat for dumb terminals
    --mode rag|chat             Answer mode (default from config)
  ragterm upload FILE           Upload a document (admin)
    --visibility public|private Upload target (default from config)
  ragterm users [subcommand]    User administration (admin)
    users list
    users add --email E --password P [--role member|admin]
    users role ID ROLE
    users delete ID [--confirm]
  ragterm files [subcommand]    File administration (admin)
    files list [--visibility V]
    files rename NAME NEW [--visibility V]
    files delete NAME [--visibility V] [--confirm]
    files reindex
  ragterm profile [set ...]     Show or update your profile
    profile set --name N
    profile set --password P
  ragterm stats                 Local usage summary
    --prune DAYS                Drop journal rows older than DAYS
  ragterm config [path|show]    Show config path or contents
  ragterm version               Show version
  ragterm help                  Show this help

Global flags:
  -q, --quiet                   Minimal output
  -v, --verbose                 Verbose output
  --json                        JSON output where supported

Environment:
  RAGTERM_SERVER_URL            Backend base URL
  RAGTERM_CONFIG                Config file path
  RAGTERM_THEME                 dark | light | auto
`

// commands maps the command word to its Command value.
var commands = map[string]Command{
	"login":   CmdLogin,
	"logout":  CmdLogout,
	"whoami":  CmdWhoami,
	"ask":     CmdAsk,
	"chat":    CmdChat,
	"upload":  CmdUpload,
	"users":   CmdUsers,
	"files":   CmdFiles,
	"profile": CmdProfile,
	"stats":   CmdStats,
	"config":  CmdConfig,
	"version": CmdVersion,
	"help":    CmdHelp,
}

// Parse turns os.Args[1:] into an Args. An unknown command word is an
// error so that typos do not silently start the TUI.
func Parse(argv []string) (*Args, error) {
	args := &Args{Command: CmdTUI}

	// Peel off global flags wherever they appear.
	rest := make([]string, 0, len(argv))
	for _, a := range argv {
		switch a {
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--json":
			args.JSON = true
		case "-h", "--help":
			args.Command = CmdHelp
			return args, nil
		case "--version":
			args.Command = CmdVersion
			return args, nil
		default:
			rest = append(rest, a)
		}
	}

	if len(rest) == 0 {
		return args, nil
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		return nil, fmt.Errorf("unknown command %q (try 'ragterm help')", rest[0])
	}
	args.Command = cmd
	args.Raw = rest[1:]
	args.Options = NewArgParser(args.Raw)
	args.Subcommand = args.Options.Subcommand()
	args.Mode = args.Options.Flag("mode")
	args.Visibility = args.Options.Flag("visibility")
	args.ThreadID = args.Options.Int64Flag("thread")

	switch cmd {
	case CmdAsk:
		args.Query = args.Options.JoinPositional()
		if args.Query == "" {
			return nil, fmt.Errorf("ask needs a question (ragterm ask \"...\")")
		}
	case CmdUpload:
		args.File = args.Options.Positional(0)
		if args.File == "" {
			return nil, fmt.Errorf("upload needs a file path")
		}
	}
	return args, nil
}

// PrintUsage writes the help text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("ragterm %s (%s, built %s, %s/%s)\n",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// Exit codes used by the handlers.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Fail prints an error and returns the error exit code.
func Fail(err error) int {
	fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
	return ExitError
}
