// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// profile.go - own-account profile handlers.
//
// Command: profile [set ...]
//
//	profile                     Show the profile
//	profile set --name NAME     Update the display name
//	profile set --password P    Change the password (prompts when omitted)
package cli

import (
	"fmt"

	"github.com/ragterm/ragterm/internal/api"
)

// HandleProfile shows or updates the caller's profile.
func (e *Env) HandleProfile(args *Args) int {
	if err := e.Sessions.RequireAuth(); err != nil {
		return Fail(err)
	}

	switch args.Subcommand {
	case "":
		return e.profileShow(args)
	case "set":
		return e.profileSet(args)
	default:
		return Fail(fmt.Errorf("unknown profile subcommand %q", args.Subcommand))
	}
}

func (e *Env) profileShow(args *Args) int {
	ctx, cancel := e.ctx()
	defer cancel()

	p, err := e.Client.Profile(ctx)
	if err != nil {
		return Fail(err)
	}
	if args.JSON {
		return printJSON(p)
	}

	fmt.Println(labelStyle.Render("email: ") + p.Email)
	if p.FullName != "" {
		fmt.Println(labelStyle.Render("name:  ") + p.FullName)
	}
	if p.Role != "" {
		fmt.Println(labelStyle.Render("role:  ") + string(p.Role))
	}
	return ExitOK
}

func (e *Env) profileSet(args *Args) int {
	payload := api.ProfilePayload{
		FullName: args.Options.Flag("name"),
		Password: args.Options.Flag("password"),
	}

	if payload.Password == "" && args.Options.BoolFlag("password") {
		pw, err := readPassword("new password: ")
		if err != nil {
			return Fail(err)
		}
		again, err := readPassword("repeat: ")
		if err != nil {
			return Fail(err)
		}
		if pw != again {
			return Fail(fmt.Errorf("passwords do not match"))
		}
		payload.Password = pw
	}

	if payload.FullName == "" && payload.Password == "" {
		return Fail(fmt.Errorf("profile set needs --name or --password"))
	}

	ctx, cancel := e.ctx()
	defer cancel()

	p, err := e.Client.UpdateProfile(ctx, payload)
	if err != nil {
		return Fail(err)
	}
	if args.JSON {
		return printJSON(p)
	}
	fmt.Println(okStyle.Render("[OK]") + " profile updated")
	return ExitOK
}
