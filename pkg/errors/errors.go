// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package errors provides structured error handling for cuecast.
package errors

import (
	"errors"
	"fmt"
)

// Common error types
var (
	// ErrMalformedRequest indicates the request bytes are not a valid HTTP request.
	ErrMalformedRequest = errors.New("malformed request")

	// ErrUnsupportedMethod indicates a request line with a method outside the supported set.
	ErrUnsupportedMethod = errors.New("unsupported method")

	// ErrUnauthorized indicates authentication or authorization failure.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates rate limit exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrSizeLimitExceeded indicates size limit exceeded.
	ErrSizeLimitExceeded = errors.New("size limit exceeded")

	// ErrTimeout indicates an operation timeout.
	ErrTimeout = errors.New("timeout")

	// ErrStoreClosed indicates a write was issued after the state store was closed.
	ErrStoreClosed = errors.New("state store closed")
)

// ConnError wraps an error with the connection it happened on.
type ConnError struct {
	Op         string // Operation that failed
	ConnID     string // Connection identifier
	RemoteAddr string // Client address
	Err        error  // Underlying error
}

// Error implements the error interface.
func (e *ConnError) Error() string {
	if e.ConnID != "" {
		return fmt.Sprintf("%s [%s] %s: %v", e.Op, e.ConnID, e.RemoteAddr, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.RemoteAddr, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConnError) Unwrap() error {
	return e.Err
}

// New creates a new ConnError.
func New(op, connID, remoteAddr string, err error) error {
	if err == nil {
		return nil
	}
	return &ConnError{
		Op:         op,
		ConnID:     connID,
		RemoteAddr: remoteAddr,
		Err:        err,
	}
}

// Wrap wraps an error with context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
