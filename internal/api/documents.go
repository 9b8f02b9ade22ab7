// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// UploadDocument uploads a local file for indexing, scoped by visibility.
// The request is multipart form data; everything else in this client is
// JSON, so the upload builds its own request instead of going through
// doJSON.
func (c *Client) UploadDocument(ctx context.Context, path string, visibility Visibility) (*UploadedFile, error) {
	if !visibility.Valid() {
		return nil, fmt.Errorf("unknown visibility %q", visibility)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if err := w.WriteField("visibility", string(visibility)); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/documents/upload", &buf)
	if err != nil {
		return nil, err
	}
	// Override the JSON default with the multipart boundary.
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out UploadedFile
	if err := c.do(req, &out, "upload failed"); err != nil {
		return nil, err
	}
	return &out, nil
}

// =============================================================================
// ADMIN: FILES
// =============================================================================

// renameFileRequest carries the new name for a managed file.
type renameFileRequest struct {
	NewName string `json:"new_name"`
}

// ListFiles returns the uploaded documents with the given visibility.
// Admin only.
func (c *Client) ListFiles(ctx context.Context, visibility Visibility) ([]UploadedFile, error) {
	if !visibility.Valid() {
		return nil, fmt.Errorf("unknown visibility %q", visibility)
	}

	var out []UploadedFile
	path := "/admin/files?visibility=" + url.QueryEscape(string(visibility))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out, "could not list files"); err != nil {
		return nil, err
	}
	return out, nil
}

// RenameFile renames a managed document. Admin only.
func (c *Client) RenameFile(ctx context.Context, visibility Visibility, filename, newName string) error {
	if !visibility.Valid() {
		return fmt.Errorf("unknown visibility %q", visibility)
	}

	path := fmt.Sprintf("/admin/files/%s/%s", visibility, url.PathEscape(filename))
	in := renameFileRequest{NewName: newName}
	return c.doJSON(ctx, http.MethodPatch, path, in, nil, "could not rename file")
}

// DeleteFile removes a managed document. Admin only.
func (c *Client) DeleteFile(ctx context.Context, visibility Visibility, filename string) error {
	if !visibility.Valid() {
		return fmt.Errorf("unknown visibility %q", visibility)
	}

	path := fmt.Sprintf("/admin/files/%s/%s", visibility, url.PathEscape(filename))
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, "could not delete file")
}

// Reindex asks the backend to rebuild its document index now. Admin only.
func (c *Client) Reindex(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/admin/reindex", nil, nil, "could not reindex")
}
