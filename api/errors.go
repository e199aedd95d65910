// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-channels.

package api

import (
	"context"
	"errors"
	"fmt"
)

// Common errors used across the library.
var (
	// ErrChannelClosed is reported by writes after completion and by reads
	// once a completed channel has been drained.
	ErrChannelClosed = errors.New("channel is closed")

	// ErrSuperseded completes a blocked read on a single-reader channel that
	// was replaced by a newer blocked read. It matches context.Canceled.
	ErrSuperseded = fmt.Errorf("read superseded by a newer blocked read: %w", context.Canceled)

	ErrInvalidArgument = errors.New("invalid argument")
	ErrExecutorClosed  = errors.New("executor is closed")

	// ErrNotSupported is wrapped by platform features that are unavailable,
	// such as CPU pinning off Linux.
	ErrNotSupported = errors.New("operation not supported")
)

// ClosedError reports a channel that was completed with a fault. It matches
// both ErrChannelClosed and the original cause under errors.Is.
type ClosedError struct {
	Cause error
}

// Error implements the error interface.
func (e *ClosedError) Error() string {
	return fmt.Sprintf("%s: %v", ErrChannelClosed.Error(), e.Cause)
}

// Unwrap exposes the close cause.
func (e *ClosedError) Unwrap() error { return e.Cause }

// Is makes every ClosedError match ErrChannelClosed.
func (e *ClosedError) Is(target error) bool {
	return target == ErrChannelClosed
}

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	// ErrCodeInvalidArgument marks rejected construction options.
	ErrCodeInvalidArgument ErrorCode = iota + 1
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap returns the sentinel the error was built from, if any.
func (e *Error) Unwrap() error { return e.cause }

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WrapError creates a structured error that still matches cause under errors.Is.
func WrapError(code ErrorCode, cause error, message string) *Error {
	e := NewError(code, message)
	e.cause = cause
	return e
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
