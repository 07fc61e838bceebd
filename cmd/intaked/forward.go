package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kuesten-code/Werkbank-sub000/internal/async"
)

// forwardEvents queues every watched path until events closes or ctx ends.
func forwardEvents(ctx context.Context, events <-chan string, errs <-chan error, q async.Queue, logger *slog.Logger) {
	for {
		select {
		case path, ok := <-events:
			if !ok {
				return
			}
			job := async.Job{Path: path, SubmittedAt: time.Now(), TraceID: uuid.NewString()}
			if err := q.Enqueue(ctx, job); err != nil {
				logger.Warn("failed to enqueue file", "path", path, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				logger.Debug("inbox watcher error channel closed")
				errs = nil
				continue
			}
			logger.Warn("inbox watcher reported an error", "error", err)
		case <-ctx.Done():
			return
		}
	}
}
