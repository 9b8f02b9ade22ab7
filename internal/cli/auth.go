// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// auth.go - login, logout and whoami handlers.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// HandleLogin prompts for credentials, exchanges them for a token pair
// and persists the session.
func (e *Env) HandleLogin(args *Args) int {
	email := args.Options.Flag("email")
	if email == "" {
		var err error
		email, err = readLine("email: ")
		if err != nil {
			return Fail(err)
		}
	}
	if email == "" {
		return Fail(fmt.Errorf("email is required"))
	}

	password := args.Options.Flag("password")
	if password == "" {
		var err error
		password, err = readPassword("password: ")
		if err != nil {
			return Fail(err)
		}
	}

	ctx, cancel := e.ctx()
	defer cancel()

	res, err := e.Client.Login(ctx, email, password)
	if err != nil {
		return Fail(err)
	}
	if err := e.Sessions.Login(res, email); err != nil {
		return Fail(err)
	}

	if !args.Quiet {
		fmt.Printf("%s logged in as %s (%s)\n",
			okStyle.Render("[OK]"), email, res.Role)
	}
	return ExitOK
}

// HandleLogout revokes the refresh token server-side when possible and
// always clears the local session.
func (e *Env) HandleLogout(args *Args) int {
	if err := e.Sessions.RequireAuth(); err != nil {
		return Fail(err)
	}

	ctx, cancel := e.ctx()
	defer cancel()

	if err := e.Sessions.Logout(ctx, e.Client); err != nil {
		return Fail(err)
	}
	if !args.Quiet {
		fmt.Println(okStyle.Render("[OK]") + " logged out")
	}
	return ExitOK
}

// HandleWhoami prints the stored session identity.
func (e *Env) HandleWhoami(args *Args) int {
	s := e.Sessions.Current()
	if s == nil {
		fmt.Println(infoStyle.Render("not logged in"))
		return ExitOK
	}

	if args.JSON {
		out := map[string]string{
			"email":  s.Email,
			"role":   string(s.Role),
			"server": e.Client.BaseURL(),
		}
		return printJSON(out)
	}

	fmt.Println(labelStyle.Render("email:  ") + s.Email)
	fmt.Println(labelStyle.Render("role:   ") + string(s.Role))
	fmt.Println(labelStyle.Render("server: ") + e.Client.BaseURL())
	return ExitOK
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return Fail(err)
	}
	return ExitOK
}
