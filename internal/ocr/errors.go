package ocr

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrToolTimeout matches every TimeoutError.
	ErrToolTimeout = errors.New("external tool timed out")
	// ErrToolFailed matches every ToolError.
	ErrToolFailed = errors.New("external tool failed")
)

// TimeoutError is returned when a tool exceeded its wall-clock budget and its
// process tree was killed.
type TimeoutError struct {
	Tool    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %s", e.Tool, e.Timeout)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrToolTimeout }

// ToolError is returned when a tool could not be started or exited non-zero.
// Stderr carries the captured diagnostic output.
type ToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s exited with code %d: %v", e.Tool, e.ExitCode, e.Err)
}

func (e *ToolError) Is(target error) bool { return target == ErrToolFailed }

func (e *ToolError) Unwrap() error { return e.Err }
