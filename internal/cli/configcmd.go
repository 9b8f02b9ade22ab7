// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// configcmd.go - config inspection handler.
//
// Command: config [path|show]
package cli

import (
	"fmt"
	"os"

	"github.com/ragterm/ragterm/internal/config"
)

// HandleConfig shows the config path or its effective contents.
func (e *Env) HandleConfig(args *Args) int {
	path, err := config.Path()
	if err != nil {
		return Fail(err)
	}

	switch args.Subcommand {
	case "path":
		fmt.Println(path)
		return ExitOK

	case "", "show":
		if args.JSON {
			return printJSON(e.Cfg)
		}
		fmt.Println(labelStyle.Render("path: ") + path)
		raw, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			fmt.Println(infoStyle.Render("(no config file; defaults in effect)"))
			return ExitOK
		}
		if err != nil {
			return Fail(err)
		}
		fmt.Print(string(raw))
		return ExitOK

	default:
		return Fail(fmt.Errorf("unknown config subcommand %q", args.Subcommand))
	}
}
