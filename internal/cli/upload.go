// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// upload.go - document upload handler.
//
// Command: upload FILE [--visibility public|private]
package cli

import (
	"fmt"
	"os"
)

// HandleUpload sends a document to the backend for indexing.
func (e *Env) HandleUpload(args *Args) int {
	if err := e.Sessions.RequireAdmin(); err != nil {
		return Fail(err)
	}

	visibility, err := pickVisibility(args.Visibility, e.Cfg)
	if err != nil {
		return Fail(err)
	}

	info, err := os.Stat(args.File)
	if err != nil {
		return Fail(err)
	}
	if info.IsDir() {
		return Fail(fmt.Errorf("%s is a directory", args.File))
	}

	ctx, cancel := e.ctx()
	defer cancel()

	f, err := e.Client.UploadDocument(ctx, args.File, visibility)
	if err != nil {
		return Fail(err)
	}

	if args.JSON {
		return printJSON(f)
	}
	if !args.Quiet {
		fmt.Printf("%s uploaded %s (%s)\n",
			okStyle.Render("[OK]"), f.Filename, visibility)
	}
	return ExitOK
}
