// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Sentinel errors for common API failures.
var (
	// ErrUnauthorized indicates a missing, invalid or expired token (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the session role does not allow the operation (HTTP 403).
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the resource does not exist on the server (HTTP 404).
	ErrNotFound = errors.New("not found")

	// ErrBadPayload indicates the server returned a body that does not match
	// the expected shape for the endpoint.
	ErrBadPayload = errors.New("unexpected response payload")
)

// Error is a normalized non-2xx response from the backend.
type Error struct {
	// Status is the HTTP status code.
	Status int
	// Message is the human-readable message extracted from the response
	// body ("detail" first, then "message"), or the caller's fallback.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("api error (HTTP %d): %s", e.Status, e.Message)
}

// Unwrap maps well-known status codes onto sentinel errors so callers can
// use errors.Is without inspecting status codes.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// errorBody is the structured error payload the backend sends on failure.
// FastAPI-style backends use "detail"; others use "message".
type errorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// parseError turns a non-2xx response into an *Error. The body is consumed.
// Preference order for the message: body "detail", body "message", fallback.
func parseError(resp *http.Response, fallback string) *Error {
	msg := fallback

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err == nil && len(data) > 0 {
		var body errorBody
		if jsonErr := json.Unmarshal(data, &body); jsonErr == nil {
			switch {
			case body.Detail != "":
				msg = body.Detail
			case body.Message != "":
				msg = body.Message
			}
		}
	}

	return &Error{Status: resp.StatusCode, Message: msg}
}

// IsUnauthorized reports whether err represents an HTTP 401 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden reports whether err represents an HTTP 403 response.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsNotFound reports whether err represents an HTTP 404 response.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
