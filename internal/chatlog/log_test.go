// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package chatlog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
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

// chatServer serves per-thread histories and answers every question with
// "echo: <question>".
type chatServer struct {
	histories map[int64][]api.Message
	sends     atomic.Int64
	failSends bool

	// sendHold, when non-nil, blocks answer handling until closed.
	sendHold chan struct{}
}

func (cs *chatServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/messages"):
			var id int64
			fmt.Sscanf(r.URL.Path, "/conversations/%d/messages", &id)
			json.NewEncoder(w).Encode(cs.histories[id])
		case r.Method == http.MethodPost:
			cs.sends.Add(1)
			if cs.sendHold != nil {
				<-cs.sendHold
			}
			if cs.failSends {
				w.WriteHeader(http.StatusBadGateway)
				json.NewEncoder(w).Encode(map[string]string{"detail": "model unavailable"})
				return
			}
			var in struct {
				Question string `json:"question"`
			}
			json.NewDecoder(r.Body).Decode(&in)
			json.NewEncoder(w).Encode(api.Answer{Answer: "echo: " + in.Question})
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestLog(t *testing.T, cs *chatServer) *Log {
	t.Helper()
	srv := httptest.NewServer(cs.handler())
	t.Cleanup(srv.Close)
	return NewLog(api.New(srv.URL))
}

func TestLoad_ReplacesHistoryOnSwitch(t *testing.T) {
	cs := &chatServer{histories: map[int64][]api.Message{
		1: {{Role: api.SenderUser, Content: "hi"}, {Role: api.SenderAssistant, Content: "hello"}},
		2: {{Role: api.SenderUser, Content: "other"}},
	}}
	l := newTestLog(t, cs)

	require.NoError(t, l.Load(context.Background(), 1))
	require.Len(t, l.Entries(), 2)
	assert.Equal(t, int64(1), l.ThreadID())

	require.NoError(t, l.Load(context.Background(), 2))
	got := l.Entries()
	require.Len(t, got, 1, "switch discards the previous history entirely")
	assert.Equal(t, "other", got[0].Content)
	assert.Equal(t, int64(2), l.ThreadID())
}

func TestSend_AppendsUserThenAssistant(t *testing.T) {
	cs := &chatServer{histories: map[int64][]api.Message{}}
	l := newTestLog(t, cs)
	require.NoError(t, l.Load(context.Background(), 1))

	require.NoError(t, l.Send(context.Background(), api.ModeRAG, "what is rag?"))

	got := l.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, api.SenderUser, got[0].Role)
	assert.Equal(t, "what is rag?", got[0].Content)
	assert.False(t, got[0].Pending)
	assert.Equal(t, api.SenderAssistant, got[1].Role)
	assert.Equal(t, "echo: what is rag?", got[1].Content)
	assert.NotEmpty(t, got[0].LocalID)
	assert.NotEqual(t, got[0].LocalID, got[1].LocalID)
}

func TestSend_FailureKeepsUserEntry(t *testing.T) {
	cs := &chatServer{histories: map[int64][]api.Message{}, failSends: true}
	l := newTestLog(t, cs)
	require.NoError(t, l.Load(context.Background(), 1))

	err := l.Send(context.Background(), api.ModeRAG, "doomed question")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")

	got := l.Entries()
	require.Len(t, got, 1, "the user entry is never rolled back")
	assert.Equal(t, api.SenderUser, got[0].Role)
	assert.Equal(t, "doomed question", got[0].Content)
	assert.False(t, got[0].Pending, "entry settles once the request resolves")
	assert.False(t, l.Sending())
}

func TestSend_BlankQuestionIsNoOp(t *testing.T) {
	cs := &chatServer{histories: map[int64][]api.Message{}}
	l := newTestLog(t, cs)
	require.NoError(t, l.Load(context.Background(), 1))

	require.NoError(t, l.Send(context.Background(), api.ModeRAG, "   "))
	assert.Empty(t, l.Entries())
	assert.EqualValues(t, 0, cs.sends.Load())
}

func TestSend_RejectsWhileInFlight(t *testing.T) {
	hold := make(chan struct{})
	cs := &chatServer{histories: map[int64][]api.Message{}, sendHold: hold}
	l := newTestLog(t, cs)
	require.NoError(t, l.Load(context.Background(), 1))

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, l.Send(context.Background(), api.ModeRAG, "slow one"))
	}()
	require.Eventually(t, l.Sending, waitFor, tick)

	assert.ErrorIs(t, l.Send(context.Background(), api.ModeRAG, "eager one"), ErrBusy)

	close(hold)
	<-done
	assert.EqualValues(t, 1, cs.sends.Load())
}

func TestSend_StaleReplyDiscardedAfterSwitch(t *testing.T) {
	hold := make(chan struct{})
	cs := &chatServer{
		histories: map[int64][]api.Message{2: {{Role: api.SenderUser, Content: "elsewhere"}}},
		sendHold:  hold,
	}
	l := newTestLog(t, cs)
	require.NoError(t, l.Load(context.Background(), 1))

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, l.Send(context.Background(), api.ModeRAG, "left behind"))
	}()
	require.Eventually(t, l.Sending, waitFor, tick)

	// Switch threads while the answer is still in flight.
	require.NoError(t, l.Load(context.Background(), 2))
	close(hold)
	<-done

	got := l.Entries()
	require.Len(t, got, 1, "the late answer must not leak into the new thread")
	assert.Equal(t, "elsewhere", got[0].Content)
}

func TestRegenerate_SplicesAndResends(t *testing.T) {
	cs := &chatServer{histories: map[int64][]api.Message{1: {
		{Role: api.SenderUser, Content: "q1"},
		{Role: api.SenderAssistant, Content: "bad answer"},
	}}}
	l := newTestLog(t, cs)
	require.NoError(t, l.Load(context.Background(), 1))

	entries := l.Entries()
	require.NoError(t, l.Regenerate(context.Background(), api.ModeRAG, entries[1].LocalID))

	got := l.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, "q1", got[0].Content)
	assert.Equal(t, "echo: q1", got[1].Content, "the stale reply is replaced by a fresh one")
	assert.EqualValues(t, 1, cs.sends.Load())
}

func TestRegenerate_ConsecutiveReplies_QuestionNotDuplicated(t *testing.T) {
	cs := &chatServer{histories: map[int64][]api.Message{1: {
		{Role: api.SenderUser, Content: "q1"},
		{Role: api.SenderAssistant, Content: "a1"},
		{Role: api.SenderAssistant, Content: "a2"},
	}}}
	l := newTestLog(t, cs)
	require.NoError(t, l.Load(context.Background(), 1))

	entries := l.Entries()
	require.NoError(t, l.Regenerate(context.Background(), api.ModeRAG, entries[2].LocalID))

	got := l.Entries()
	require.Len(t, got, 3)
	assert.Equal(t, "a1", got[0].Content, "the untouched reply stays in place")
	assert.Equal(t, "q1", got[1].Content)
	assert.Equal(t, "echo: q1", got[2].Content)

	count := 0
	for _, e := range got {
		if e.Content == "q1" {
			count++
		}
	}
	assert.Equal(t, 1, count, "the question must not appear twice")
}

func TestRegenerate_UnknownEntryIsNoOp(t *testing.T) {
	cs := &chatServer{histories: map[int64][]api.Message{1: {
		{Role: api.SenderUser, Content: "q1"},
		{Role: api.SenderAssistant, Content: "a1"},
	}}}
	l := newTestLog(t, cs)
	require.NoError(t, l.Load(context.Background(), 1))

	require.NoError(t, l.Regenerate(context.Background(), api.ModeRAG, "no-such-id"))
	assert.Len(t, l.Entries(), 2)
	assert.EqualValues(t, 0, cs.sends.Load())
}

func TestClear_DetachesFromThread(t *testing.T) {
	cs := &chatServer{histories: map[int64][]api.Message{1: {{Role: api.SenderUser, Content: "hi"}}}}
	l := newTestLog(t, cs)
	require.NoError(t, l.Load(context.Background(), 1))

	l.Clear()
	assert.Empty(t, l.Entries())
	assert.Zero(t, l.ThreadID())
}
