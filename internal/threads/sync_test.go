// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package threads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragterm/ragterm/internal/api"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

// threadServer serves a canned thread list and counts mutating calls.
type threadServer struct {
	list    []api.Thread
	creates atomic.Int64
	renames atomic.Int64
	deletes atomic.Int64

	// createHold, when non-nil, blocks create handling until closed.
	createHold chan struct{}
	nextID     atomic.Int64
}

func (ts *threadServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/conversations/me":
			json.NewEncoder(w).Encode(ts.list)
		case r.Method == http.MethodPost && r.URL.Path == "/conversations":
			ts.creates.Add(1)
			if ts.createHold != nil {
				<-ts.createHold
			}
			id := 100 + ts.nextID.Add(1)
			json.NewEncoder(w).Encode(api.Thread{ID: id, Title: fmt.Sprintf("New chat %d", id)})
		case r.Method == http.MethodPatch:
			ts.renames.Add(1)
			json.NewEncoder(w).Encode(api.Thread{ID: 2, Title: "renamed"})
		case r.Method == http.MethodDelete:
			ts.deletes.Add(1)
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestSync(t *testing.T, ts *threadServer) *Sync {
	t.Helper()
	srv := httptest.NewServer(ts.handler())
	t.Cleanup(srv.Close)
	return NewSync(api.New(srv.URL))
}

func TestRefresh_NoPriorActivePicksFirst(t *testing.T) {
	ts := &threadServer{list: []api.Thread{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}}
	s := newTestSync(t, ts)

	require.NoError(t, s.Refresh(context.Background(), ""))
	assert.Equal(t, int64(1), s.ActiveID())
	assert.Len(t, s.Threads(), 2)
}

func TestRefresh_KeepsActiveWhenStillPresent(t *testing.T) {
	ts := &threadServer{list: []api.Thread{{ID: 1}, {ID: 2}, {ID: 3}}}
	s := newTestSync(t, ts)
	s.SetActive(2)

	require.NoError(t, s.Refresh(context.Background(), ""))
	assert.Equal(t, int64(2), s.ActiveID())
}

func TestRefresh_AbsentActiveFallsBackToFirst(t *testing.T) {
	ts := &threadServer{list: []api.Thread{{ID: 1}, {ID: 2}}}
	s := newTestSync(t, ts)
	s.SetActive(5)

	require.NoError(t, s.Refresh(context.Background(), ""))
	assert.Equal(t, int64(1), s.ActiveID())
}

func TestRefresh_EmptyListClearsActive(t *testing.T) {
	ts := &threadServer{}
	s := newTestSync(t, ts)
	s.SetActive(5)

	require.NoError(t, s.Refresh(context.Background(), ""))
	assert.Equal(t, NoThread, s.ActiveID())
	assert.Nil(t, s.Active())
	assert.Empty(t, s.Threads())
}

func TestRefresh_ReplacesListWholesale(t *testing.T) {
	ts := &threadServer{list: []api.Thread{{ID: 1, Title: "A"}}}
	s := newTestSync(t, ts)
	require.NoError(t, s.Refresh(context.Background(), ""))

	ts.list = []api.Thread{{ID: 9, Title: "Z"}}
	require.NoError(t, s.Refresh(context.Background(), "z"))

	got := s.Threads()
	require.Len(t, got, 1)
	assert.Equal(t, int64(9), got[0].ID)
}

func TestCreate_PrependsAndActivates(t *testing.T) {
	ts := &threadServer{list: []api.Thread{{ID: 1, Title: "A"}}}
	s := newTestSync(t, ts)
	require.NoError(t, s.Refresh(context.Background(), ""))

	created, err := s.Create(context.Background(), api.ModeRAG)
	require.NoError(t, err)
	require.NotNil(t, created)

	got := s.Threads()
	require.Len(t, got, 2)
	assert.Equal(t, created.ID, got[0].ID, "new thread is prepended")
	assert.Equal(t, created.ID, s.ActiveID())
	assert.EqualValues(t, 1, ts.creates.Load())
}

func TestCreate_InFlightGuard(t *testing.T) {
	hold := make(chan struct{})
	ts := &threadServer{createHold: hold}
	s := newTestSync(t, ts)

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, err := s.Create(context.Background(), api.ModeRAG)
		assert.NoError(t, err)
	}()

	// Wait for the first create to reach the server, then try again.
	require.Eventually(t, s.Creating, waitFor, tick)
	second, err := s.Create(context.Background(), api.ModeRAG)
	require.NoError(t, err)
	assert.Nil(t, second, "second create while in flight is a no-op")

	close(hold)
	<-firstDone
	assert.EqualValues(t, 1, ts.creates.Load(), "exactly one create reaches the server")
	assert.False(t, s.Creating())
}

func TestCreate_GuardReleasedAfterFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	s := NewSync(api.New(srv.URL))

	_, err := s.Create(context.Background(), api.ModeRAG)
	require.Error(t, err)
	assert.False(t, s.Creating(), "a failed create releases the guard")
}

func TestRename_BlankTitleIsLocalNoOp(t *testing.T) {
	ts := &threadServer{list: []api.Thread{{ID: 2, Title: "B"}}}
	s := newTestSync(t, ts)
	require.NoError(t, s.Refresh(context.Background(), ""))

	require.NoError(t, s.Rename(context.Background(), 2, "  "))
	assert.EqualValues(t, 0, ts.renames.Load(), "blank rename never reaches the server")
	assert.Equal(t, "B", s.Threads()[0].Title)
}

func TestRename_UpdatesInPlaceWithoutReorder(t *testing.T) {
	ts := &threadServer{list: []api.Thread{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}, {ID: 3, Title: "C"}}}
	s := newTestSync(t, ts)
	require.NoError(t, s.Refresh(context.Background(), ""))

	require.NoError(t, s.Rename(context.Background(), 2, "  renamed  "))
	got := s.Threads()
	assert.Equal(t, []int64{1, 2, 3}, []int64{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "renamed", got[1].Title, "title is trimmed before sending")
	assert.EqualValues(t, 1, ts.renames.Load())
}

func TestDelete_ActiveThreadClearsSelection(t *testing.T) {
	ts := &threadServer{list: []api.Thread{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}}
	s := newTestSync(t, ts)
	require.NoError(t, s.Refresh(context.Background(), ""))
	require.Equal(t, int64(1), s.ActiveID())

	require.NoError(t, s.Delete(context.Background(), 1))
	assert.Equal(t, NoThread, s.ActiveID())
	got := s.Threads()
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestDelete_NonActiveThreadKeepsSelection(t *testing.T) {
	ts := &threadServer{list: []api.Thread{{ID: 1}, {ID: 2}}}
	s := newTestSync(t, ts)
	require.NoError(t, s.Refresh(context.Background(), ""))
	s.SetActive(2)

	require.NoError(t, s.Delete(context.Background(), 1))
	assert.Equal(t, int64(2), s.ActiveID())
}

func TestRefresh_InFlightDiscardedAfterMutation(t *testing.T) {
	release := make(chan struct{})
	var lists atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			lists.Add(1)
			// The list snapshot predates the create below.
			<-release
			json.NewEncoder(w).Encode([]api.Thread{{ID: 1, Title: "old"}})
		case r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(api.Thread{ID: 9, Title: "brand new"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	s := NewSync(api.New(srv.URL))

	refreshDone := make(chan struct{})
	go func() {
		defer close(refreshDone)
		assert.NoError(t, s.Refresh(context.Background(), ""))
	}()
	require.Eventually(t, func() bool { return lists.Load() == 1 }, waitFor, tick)

	created, err := s.Create(context.Background(), api.ModeRAG)
	require.NoError(t, err)
	require.NotNil(t, created)

	close(release)
	<-refreshDone

	got := s.Threads()
	require.Len(t, got, 1)
	assert.Equal(t, int64(9), got[0].ID,
		"a refresh started before the create must not clobber the prepend")
	assert.Equal(t, int64(9), s.ActiveID())
}

func TestRefresh_StaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n == 1 {
			// First refresh stalls until the second one has landed.
			<-release
			json.NewEncoder(w).Encode([]api.Thread{{ID: 1, Title: "stale"}})
			return
		}
		json.NewEncoder(w).Encode([]api.Thread{{ID: 2, Title: "fresh"}})
	}))
	defer srv.Close()
	s := NewSync(api.New(srv.URL))

	slowDone := make(chan struct{})
	go func() {
		defer close(slowDone)
		assert.NoError(t, s.Refresh(context.Background(), "old"))
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, waitFor, tick)

	require.NoError(t, s.Refresh(context.Background(), "new"))
	close(release)
	<-slowDone

	got := s.Threads()
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].Title, "slow stale refresh must not overwrite the newer one")
	assert.Equal(t, int64(2), s.ActiveID())
}
