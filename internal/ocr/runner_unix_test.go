//go:build unix

package ocr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_KillsProcessTreeOnTimeout(t *testing.T) {
	r := NewExecRunner(200*time.Millisecond, nil)

	start := time.Now()
	// the background sleep keeps stdout open; only a group kill ends it promptly
	_, _, err := r.Run(context.Background(), "sh", "-c", "sleep 30 & sleep 30")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrToolTimeout))
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "sh", te.Tool)
	assert.Less(t, elapsed, 5*time.Second)
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	r := NewExecRunner(5*time.Second, nil)

	_, stderr, err := r.Run(context.Background(), "sh", "-c", "echo broken >&2; exit 3")
	require.Error(t, err)
	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 3, te.ExitCode)
	assert.Equal(t, "broken", te.Stderr)
	assert.Equal(t, "broken\n", string(stderr))
}

func TestExecRunner_Success(t *testing.T) {
	r := NewExecRunner(5*time.Second, nil)

	out, _, err := r.Run(context.Background(), "sh", "-c", "printf hallo")
	require.NoError(t, err)
	assert.Equal(t, "hallo", string(out))
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := NewExecRunner(time.Second, nil)

	_, _, err := r.Run(context.Background(), "definitely-not-a-real-binary-xyz")
	assert.ErrorIs(t, err, ErrToolFailed)
}

func TestExecRunner_ParentCancellationIsNotATimeout(t *testing.T) {
	r := NewExecRunner(10*time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	_, _, err := r.Run(ctx, "sh", "-c", "sleep 30")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrToolTimeout))
}
