package common

import (
	"errors"
	"fmt"
)

// AppError carries a stable code next to the message; Cause keeps the
// sentinel reachable for errors.Is.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
)

// NewAppError builds an AppError.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError reports an unusable configuration value. It matches ErrInvalidInput.
func ConfigError(format string, args ...any) error {
	return NewAppError("CONFIG_ERROR", fmt.Sprintf(format, args...), ErrInvalidInput)
}

// DatabaseError wraps a store failure so callers can match ErrDatabase.
func DatabaseError(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return NewAppError("DB_ERROR", op, errors.Join(ErrDatabase, cause))
}
