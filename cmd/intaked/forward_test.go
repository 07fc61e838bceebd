package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuesten-code/Werkbank-sub000/internal/async"
)

type recordingQueue struct {
	mu   sync.Mutex
	jobs []async.Job
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, job async.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return q.err
}

func (q *recordingQueue) Shutdown(context.Context) {}

func TestForwardEvents_ClosedErrorChannel(t *testing.T) {
	events := make(chan string)
	errs := make(chan error)
	close(errs)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	q := &recordingQueue{}

	done := make(chan struct{})
	go func() {
		defer close(done)
		forwardEvents(context.Background(), events, errs, q, logger)
	}()

	time.Sleep(20 * time.Millisecond)
	events <- "/inbox/a.pdf"
	events <- "/inbox/b.png"
	close(events)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("forwardEvents did not return after events closed")
	}

	require.Len(t, q.jobs, 2)
	assert.Equal(t, "/inbox/a.pdf", q.jobs[0].Path)
	assert.NotEmpty(t, q.jobs[0].TraceID)
	assert.Equal(t, 1, strings.Count(buf.String(), "error channel closed"))
}

func TestForwardEvents_StopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	errs <- errors.New("inotify overflow")

	var buf bytes.Buffer
	q := &recordingQueue{err: async.ErrQueueClosed}
	done := make(chan struct{})
	go func() {
		defer close(done)
		forwardEvents(ctx, make(chan string), errs, q, slog.New(slog.NewTextHandler(&buf, nil)))
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("forwardEvents ignored cancellation")
	}
	assert.Contains(t, buf.String(), "inotify overflow")
}
