// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// users.go - admin user management handlers.
//
// Command: users [subcommand]
//
//	users list
//	users add --email E --password P [--role member|admin]
//	users role ID ROLE
//	users delete ID [--confirm]
package cli

import (
	"fmt"
	"strconv"

	"github.com/ragterm/ragterm/internal/api"
)

// HandleUsers dispatches the users subcommands.
func (e *Env) HandleUsers(args *Args) int {
	if err := e.Sessions.RequireAdmin(); err != nil {
		return Fail(err)
	}

	switch args.Subcommand {
	case "", "list":
		return e.usersList(args)
	case "add":
		return e.usersAdd(args)
	case "role":
		return e.usersRole(args)
	case "delete":
		return e.usersDelete(args)
	default:
		return Fail(fmt.Errorf("unknown users subcommand %q", args.Subcommand))
	}
}

func (e *Env) usersList(args *Args) int {
	ctx, cancel := e.ctx()
	defer cancel()

	users, err := e.Client.ListUsers(ctx)
	if err != nil {
		return Fail(err)
	}
	if args.JSON {
		return printJSON(users)
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%-6s %-32s %s", "ID", "EMAIL", "ROLE")))
	for _, u := range users {
		fmt.Printf("%-6d %-32s %s\n", u.ID, u.Email, u.Role)
	}
	return ExitOK
}

func (e *Env) usersAdd(args *Args) int {
	payload := api.UserPayload{
		Email:    args.Options.Flag("email"),
		Password: args.Options.Flag("password"),
		Role:     api.Role(args.Options.Flag("role")),
	}
	if payload.Email == "" || payload.Password == "" {
		return Fail(fmt.Errorf("users add needs --email and --password"))
	}
	if payload.Role == "" {
		payload.Role = api.RoleMember
	}
	if !payload.Role.Valid() {
		return Fail(fmt.Errorf("unknown role %q", payload.Role))
	}

	ctx, cancel := e.ctx()
	defer cancel()

	u, err := e.Client.CreateUser(ctx, payload)
	if err != nil {
		return Fail(err)
	}
	if args.JSON {
		return printJSON(u)
	}
	fmt.Printf("%s user %d created (%s, %s)\n",
		okStyle.Render("[OK]"), u.ID, u.Email, u.Role)
	return ExitOK
}

func (e *Env) usersRole(args *Args) int {
	id, err := strconv.ParseInt(args.Options.Positional(1), 10, 64)
	if err != nil {
		return Fail(fmt.Errorf("users role needs a numeric user id"))
	}
	role := api.Role(args.Options.Positional(2))
	if !role.Valid() {
		return Fail(fmt.Errorf("users role needs one of visitor, member, admin"))
	}

	ctx, cancel := e.ctx()
	defer cancel()

	u, err := e.Client.UpdateUserRole(ctx, id, role)
	if err != nil {
		return Fail(err)
	}
	if args.JSON {
		return printJSON(u)
	}
	fmt.Printf("%s user %d is now %s\n", okStyle.Render("[OK]"), u.ID, u.Role)
	return ExitOK
}

func (e *Env) usersDelete(args *Args) int {
	id, err := strconv.ParseInt(args.Options.Positional(1), 10, 64)
	if err != nil {
		return Fail(fmt.Errorf("users delete needs a numeric user id"))
	}

	ok, err := confirm(fmt.Sprintf("delete user %d", id), args.Options.BoolFlag("confirm"))
	if err != nil {
		return Fail(err)
	}
	if !ok {
		fmt.Println(infoStyle.Render("aborted"))
		return ExitOK
	}

	ctx, cancel := e.ctx()
	defer cancel()

	if err := e.Client.DeleteUser(ctx, id); err != nil {
		return Fail(err)
	}
	fmt.Printf("%s user %d deleted\n", okStyle.Render("[OK]"), id)
	return ExitOK
}
