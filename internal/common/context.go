package common

import (
	"context"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyFileName  contextKey = "file_name"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithFileName records the name of the document being processed.
func WithFileName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContextKeyFileName, name)
}

// FileNameFromContext returns the document name stored by WithFileName.
func FileNameFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(ContextKeyFileName).(string); ok {
		return name
	}
	return ""
}

// WithTimeout creates a context with the specified timeout.
// A non-positive timeout returns a plain cancelable context.
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
