// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// files.go - admin file management handlers.
//
// Command: files [subcommand]
//
//	files list [--visibility V]
//	files rename NAME NEW [--visibility V]
//	files delete NAME [--visibility V] [--confirm]
//	files reindex
package cli

import (
	"fmt"
)

// HandleFiles dispatches the files subcommands.
func (e *Env) HandleFiles(args *Args) int {
	if err := e.Sessions.RequireAdmin(); err != nil {
		return Fail(err)
	}

	switch args.Subcommand {
	case "", "list":
		return e.filesList(args)
	case "rename":
		return e.filesRename(args)
	case "delete":
		return e.filesDelete(args)
	case "reindex":
		return e.filesReindex(args)
	default:
		return Fail(fmt.Errorf("unknown files subcommand %q", args.Subcommand))
	}
}

func (e *Env) filesList(args *Args) int {
	visibility, err := pickVisibility(args.Visibility, e.Cfg)
	if err != nil {
		return Fail(err)
	}

	ctx, cancel := e.ctx()
	defer cancel()

	files, err := e.Client.ListFiles(ctx, visibility)
	if err != nil {
		return Fail(err)
	}
	if args.JSON {
		return printJSON(files)
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%-40s %-10s %s", "FILENAME", "SIZE", "UPDATED")))
	for _, f := range files {
		updated := ""
		if !f.UpdatedAt.IsZero() {
			updated = f.UpdatedAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("%-40s %-10d %s\n", f.Filename, f.Size, updated)
	}
	return ExitOK
}

func (e *Env) filesRename(args *Args) int {
	name := args.Options.Positional(1)
	newName := args.Options.Positional(2)
	if name == "" || newName == "" {
		return Fail(fmt.Errorf("usage: files rename NAME NEW"))
	}
	visibility, err := pickVisibility(args.Visibility, e.Cfg)
	if err != nil {
		return Fail(err)
	}

	ctx, cancel := e.ctx()
	defer cancel()

	if err := e.Client.RenameFile(ctx, visibility, name, newName); err != nil {
		return Fail(err)
	}
	fmt.Printf("%s %s renamed to %s\n", okStyle.Render("[OK]"), name, newName)
	return ExitOK
}

func (e *Env) filesDelete(args *Args) int {
	name := args.Options.Positional(1)
	if name == "" {
		return Fail(fmt.Errorf("usage: files delete NAME"))
	}
	visibility, err := pickVisibility(args.Visibility, e.Cfg)
	if err != nil {
		return Fail(err)
	}

	ok, err := confirm(fmt.Sprintf("delete %s", name), args.Options.BoolFlag("confirm"))
	if err != nil {
		return Fail(err)
	}
	if !ok {
		fmt.Println(infoStyle.Render("aborted"))
		return ExitOK
	}

	ctx, cancel := e.ctx()
	defer cancel()

	if err := e.Client.DeleteFile(ctx, visibility, name); err != nil {
		return Fail(err)
	}
	fmt.Printf("%s %s deleted\n", okStyle.Render("[OK]"), name)
	return ExitOK
}

func (e *Env) filesReindex(args *Args) int {
	ctx, cancel := e.ctx()
	defer cancel()

	if err := e.Client.Reindex(ctx); err != nil {
		return Fail(err)
	}
	if !args.Quiet {
		fmt.Println(okStyle.Render("[OK]") + " reindex started")
	}
	return ExitOK
}
