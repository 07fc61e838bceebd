// Package patterns learns per-supplier field patterns from confirmed values
// and applies them (or a generic German rule set) to OCR text.
package patterns

import (
	"context"
	"errors"
	"regexp"
	"time"
)

// ErrMatchTimeout is returned when a single match exceeded its deadline.
var ErrMatchTimeout = errors.New("pattern match timed out")

// valueCapture follows every learned pattern on extraction.
const valueCapture = `([A-Za-z0-9.,\-/]+)`

type matchFunc func(re *regexp.Regexp, text string) []string

func findSubmatch(re *regexp.Regexp, text string) []string {
	return re.FindStringSubmatch(text)
}

// matchWithin runs match in its own goroutine and abandons it after timeout.
// An abandoned match still runs to completion in the background; the input
// is capped by the caller so that stays bounded.
func matchWithin(ctx context.Context, match matchFunc, re *regexp.Regexp, text string, timeout time.Duration) ([]string, error) {
	if timeout <= 0 {
		return match(re, text), nil
	}

	done := make(chan []string, 1)
	go func() { done <- match(re, text) }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case m := <-done:
		return m, nil
	case <-timer.C:
		return nil, ErrMatchTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
