// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// Package threads keeps the local conversation list consistent with the
// server and keeps the active-thread selection valid across mutations.
//
// The list is a projection of the last successful server response, never
// an independently evolving copy: refresh replaces it wholesale, and the
// only local-first edits are the optimistic ones create and rename apply
// after the server already confirmed.
package threads

import (
	"context"
	"strings"
	"sync"

	"github.com/ragterm/ragterm/internal/api"
)

// NoThread is the active id when no thread is selected.
const NoThread int64 = 0

// Sync owns the thread list and the active selection.
type Sync struct {
	mu       sync.Mutex
	client   *api.Client
	threads  []api.Thread
	activeID int64
	creating bool

	// refreshGen stamps each refresh; a response whose stamp is no longer
	// current lost the race to a newer refresh and is discarded.
	refreshGen uint64
}

// NewSync creates an empty thread state bound to an API client.
func NewSync(client *api.Client) *Sync {
	return &Sync{client: client, activeID: NoThread}
}

// Threads returns a copy of the current list.
func (s *Sync) Threads() []api.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Thread, len(s.threads))
	copy(out, s.threads)
	return out
}

// ActiveID returns the selected thread id, or NoThread.
func (s *Sync) ActiveID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Active returns the selected thread, or nil when none is selected.
func (s *Sync) Active() *api.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.threads {
		if s.threads[i].ID == s.activeID {
			t := s.threads[i]
			return &t
		}
	}
	return nil
}

// SetActive selects a thread by id. Selecting an id not in the list is
// allowed; the next refresh re-derives a valid selection.
func (s *Sync) SetActive(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
}

// Creating reports whether a create call is in flight.
func (s *Sync) Creating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creating
}

// Refresh fetches the list filtered by search (empty = all) and replaces
// local state wholesale. The active id afterwards is: the previous id if
// still present, else the first thread, else NoThread. A refresh that
// resolves after a newer one started is discarded.
func (s *Sync) Refresh(ctx context.Context, search string) error {
	s.mu.Lock()
	s.refreshGen++
	gen := s.refreshGen
	s.mu.Unlock()

	list, err := s.client.ListThreads(ctx, search)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.refreshGen {
		// Stale response; a newer refresh owns the list now.
		return nil
	}
	s.threads = list
	s.activeID = deriveActive(s.activeID, list)
	return nil
}

// deriveActive applies the selection invariant to a fresh list.
func deriveActive(prev int64, list []api.Thread) int64 {
	for _, t := range list {
		if t.ID == prev {
			return prev
		}
	}
	if len(list) > 0 {
		return list[0].ID
	}
	return NoThread
}

// Create asks the server for a new thread, prepends it locally and makes
// it active. While a create is in flight further calls are no-ops and
// return nil, so a double-tap cannot produce two threads.
func (s *Sync) Create(ctx context.Context, mode api.Mode) (*api.Thread, error) {
	s.mu.Lock()
	if s.creating {
		s.mu.Unlock()
		return nil, nil
	}
	s.creating = true
	s.mu.Unlock()

	t, err := s.client.CreateThread(ctx, mode)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.creating = false
	if err != nil {
		return nil, err
	}
	// Invalidate any refresh still in flight so its older list cannot
	// clobber the prepend.
	s.refreshGen++
	s.threads = append([]api.Thread{*t}, s.threads...)
	s.activeID = t.ID
	return t, nil
}

// Rename retitles a thread. A blank title is a no-op: no request is sent
// and the list is untouched. On success the matching entry is retitled in
// place without reordering.
func (s *Sync) Rename(ctx context.Context, id int64, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	if _, err := s.client.RenameThread(ctx, id, title); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshGen++
	for i := range s.threads {
		if s.threads[i].ID == id {
			s.threads[i].Title = title
			break
		}
	}
	return nil
}

// Delete removes a thread. Deleting the active thread clears the
// selection; the caller picks a new one on its next refresh.
func (s *Sync) Delete(ctx context.Context, id int64) error {
	if err := s.client.DeleteThread(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshGen++
	kept := s.threads[:0]
	for _, t := range s.threads {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.threads = kept
	if s.activeID == id {
		s.activeID = NoThread
	}
	return nil
}
