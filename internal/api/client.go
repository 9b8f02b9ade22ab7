// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// Package api implements the typed HTTP client for the Mini-RAG backend.
//
// Every call follows the same convention: JSON bodies, bearer-token auth,
// and structured error payloads whose "detail"/"message" field is turned
// into a human-readable error. Responses are decoded into explicit types
// and shape-checked at this boundary so malformed payloads fail fast
// instead of leaking zero values into view state.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultBaseURL is the backend address used when none is configured.
	DefaultBaseURL = "http://127.0.0.1:8000"

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 60 * time.Second

	// maxResponseSize caps response bodies to keep a misbehaving server
	// from exhausting memory.
	maxResponseSize = 10 * 1024 * 1024
)

// sharedHTTPClient pools connections across all API calls.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	Timeout: DefaultTimeout,
}

// validate checks request payload structs before they are sent.
var validate = validator.New(validator.WithRequiredStructEnabled())

// TokenSource supplies the current bearer token, or "" when the caller is
// not authenticated. Reading through a function keeps the client usable
// across login/logout without rebuilding it.
type TokenSource func() string

// Client talks to the Mini-RAG backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

// New creates a client for the given base URL. An empty baseURL selects
// DefaultBaseURL.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: sharedHTTPClient,
	}
}

// WithTokenSource sets the bearer token provider.
func (c *Client) WithTokenSource(src TokenSource) *Client {
	c.token = src
	return c
}

// WithHTTPClient replaces the underlying HTTP client (tests, custom TLS).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	// Copy so the shared pooled client keeps its own timeout.
	hc := *c.httpClient
	hc.Timeout = d
	c.httpClient = &hc
	return c
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// newRequest builds a request with the JSON/bearer conventions applied.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

// doJSON performs a request with an optional JSON body and decodes a JSON
// response into out (which may be nil for ack-only endpoints). fallback is
// the error message used when the failure body carries none.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, fallback string) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return c.do(req, out, fallback)
}

// do executes a prepared request and decodes the response.
func (c *Client) do(req *http.Request, out any, fallback string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp, fallback)
	}

	if out == nil {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return checkShape(out)
}

// shaped is implemented by response types that can verify their own shape.
type shaped interface {
	validate() error
}

// checkShape validates decoded payloads, including element-wise validation
// of slices of shaped values.
func checkShape(out any) error {
	switch v := out.(type) {
	case shaped:
		return v.validate()
	case *[]Thread:
		for i := range *v {
			if err := (*v)[i].validate(); err != nil {
				return err
			}
		}
	case *[]Message:
		for i := range *v {
			if err := (*v)[i].validate(); err != nil {
				return err
			}
		}
	case *[]User:
		for i := range *v {
			if err := (*v)[i].validate(); err != nil {
				return err
			}
		}
	case *[]UploadedFile:
		for i := range *v {
			if err := (*v)[i].validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
