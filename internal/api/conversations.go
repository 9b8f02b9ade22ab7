// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// createThreadRequest optionally seeds the mode of a new thread.
type createThreadRequest struct {
	Mode Mode `json:"mode,omitempty"`
}

// renameThreadRequest carries the new title for a thread.
type renameThreadRequest struct {
	Title string `json:"title"`
}

// questionRequest carries a question for the active thread.
type questionRequest struct {
	Question string `json:"question"`
}

// ListThreads returns the caller's threads, filtered server-side by search
// (empty = all). The result is the authoritative list; callers replace
// their local copy wholesale.
func (c *Client) ListThreads(ctx context.Context, search string) ([]Thread, error) {
	path := "/conversations/me"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}

	var out []Thread
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out, "could not load conversations"); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateThread creates a new thread. The server assigns the ID and an
// initial title.
func (c *Client) CreateThread(ctx context.Context, mode Mode) (*Thread, error) {
	if mode != "" && !mode.Valid() {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	var out Thread
	in := createThreadRequest{Mode: mode}
	if err := c.doJSON(ctx, http.MethodPost, "/conversations", in, &out, "could not create conversation"); err != nil {
		return nil, err
	}
	return &out, nil
}

// RenameThread changes a thread's title and returns the updated thread.
// The title must be non-empty after trimming; that guard belongs to the
// caller (threads.Sync) so no request is issued for blank titles.
func (c *Client) RenameThread(ctx context.Context, id int64, title string) (*Thread, error) {
	var out Thread
	path := fmt.Sprintf("/conversations/%d", id)
	in := renameThreadRequest{Title: title}
	if err := c.doJSON(ctx, http.MethodPatch, path, in, &out, "could not rename conversation"); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteThread removes a thread and its messages.
func (c *Client) DeleteThread(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/conversations/%d", id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, "could not delete conversation")
}

// Messages returns the full message history of a thread. The server is the
// source of truth; callers replace local history on every thread switch.
func (c *Client) Messages(ctx context.Context, threadID int64) ([]Message, error) {
	var out []Message
	path := fmt.Sprintf("/conversations/%d/messages", threadID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out, "could not load messages"); err != nil {
		return nil, err
	}
	return out, nil
}

// Send submits a question against a thread and returns the assistant's
// answer. ModeRAG uses the retrieval-augmented endpoint; ModeChat the
// direct-completion variant. The call blocks until the answer is ready;
// there is no streaming channel.
func (c *Client) Send(ctx context.Context, threadID int64, mode Mode, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("empty question")
	}
	if mode == "" {
		mode = ModeRAG
	}
	if !mode.Valid() {
		return "", fmt.Errorf("unknown mode %q", mode)
	}

	path := fmt.Sprintf("/conversations/%d/messages", threadID)
	if mode == ModeChat {
		path += "/chat"
	}

	var out Answer
	in := questionRequest{Question: question}
	if err := c.doJSON(ctx, http.MethodPost, path, in, &out, "server error"); err != nil {
		return "", err
	}
	return out.Answer, nil
}
