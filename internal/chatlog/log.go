// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// Package chatlog holds the message history of the active thread.
//
// The server owns the history: switching threads discards everything and
// reloads. The only local-first entry is the optimistic user message
// appended at send time, and that one is never rolled back. A question
// the user typed stays on screen even when the answer never arrives.
package chatlog

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ragterm/ragterm/internal/api"
)

// ErrBusy rejects a send while another question is still in flight.
var ErrBusy = errors.New("a question is already in flight")

// Entry is one rendered message. LocalID identifies the entry within this
// client only; the server does not address individual messages.
type Entry struct {
	LocalID string
	Role    api.Sender
	Content string

	// Pending marks an optimistic user entry whose answer is still in
	// flight.
	Pending bool
}

// Log is the message state for the currently active thread.
type Log struct {
	mu       sync.Mutex
	client   *api.Client
	threadID int64
	entries  []Entry
	sending  bool

	// gen stamps loads and sends; a response carrying a stale stamp
	// resolved after a thread switch and is discarded.
	gen uint64
}

// NewLog creates an empty log bound to an API client.
func NewLog(client *api.Client) *Log {
	return &Log{client: client}
}

// Entries returns a copy of the current history.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// ThreadID returns the thread this log currently shows.
func (l *Log) ThreadID() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.threadID
}

// Sending reports whether a question is in flight.
func (l *Log) Sending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sending
}

// Load switches the log to a thread: all local entries are discarded and
// replaced by the server's history. A load that resolves after a newer
// load or send started is discarded.
func (l *Log) Load(ctx context.Context, threadID int64) error {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.threadID = threadID
	l.entries = nil
	l.mu.Unlock()

	msgs, err := l.client.Messages(ctx, threadID)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return nil
	}
	entries := make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		entries = append(entries, Entry{
			LocalID: uuid.NewString(),
			Role:    m.Role,
			Content: m.Content,
		})
	}
	l.entries = entries
	return nil
}

// Clear empties the log and detaches it from any thread.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.threadID = 0
	l.entries = nil
}

// Send submits a question in the given mode. The user entry is appended
// before the request goes out and stays regardless of the outcome; the
// assistant entry is appended only on success. While a send is in flight
// further sends are rejected.
func (l *Log) Send(ctx context.Context, mode api.Mode, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil
	}

	l.mu.Lock()
	if l.sending {
		l.mu.Unlock()
		return ErrBusy
	}
	l.sending = true
	gen := l.gen
	threadID := l.threadID
	userID := uuid.NewString()
	l.entries = append(l.entries, Entry{
		LocalID: userID,
		Role:    api.SenderUser,
		Content: question,
		Pending: true,
	})
	l.mu.Unlock()

	answer, err := l.client.Send(ctx, threadID, mode, question)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sending = false
	if gen != l.gen {
		// The thread changed under us; the reply belongs to a history that
		// is no longer on screen.
		return nil
	}
	l.settle(userID)
	if err != nil {
		return err
	}
	l.entries = append(l.entries, Entry{
		LocalID: uuid.NewString(),
		Role:    api.SenderAssistant,
		Content: answer,
	})
	return nil
}

// settle clears the pending flag on an optimistic entry.
func (l *Log) settle(localID string) {
	for i := range l.entries {
		if l.entries[i].LocalID == localID {
			l.entries[i].Pending = false
			return
		}
	}
}

// Regenerate removes an assistant entry and re-asks the user question
// immediately preceding it. The removal is a plain local splice; the
// resend then follows the normal send path.
func (l *Log) Regenerate(ctx context.Context, mode api.Mode, assistantID string) error {
	l.mu.Lock()
	idx := -1
	for i := range l.entries {
		if l.entries[i].LocalID == assistantID && l.entries[i].Role == api.SenderAssistant {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.mu.Unlock()
		return nil
	}

	qIdx := -1
	for i := idx - 1; i >= 0; i-- {
		if l.entries[i].Role == api.SenderUser {
			qIdx = i
			break
		}
	}
	if qIdx < 0 {
		l.mu.Unlock()
		return nil
	}
	question := l.entries[qIdx].Content
	if strings.TrimSpace(question) == "" {
		l.mu.Unlock()
		return nil
	}

	// Splice out both the stale reply and its question, wherever the
	// question sits; the resend appends the question again, so the pairing
	// ends up adjacent.
	kept := make([]Entry, 0, len(l.entries)-1)
	for i, e := range l.entries {
		if i == idx || i == qIdx {
			continue
		}
		kept = append(kept, e)
	}
	l.entries = kept
	l.mu.Unlock()

	return l.Send(ctx, mode, question)
}
