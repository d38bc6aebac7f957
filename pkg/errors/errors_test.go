// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"errors"
	"io"
	"testing"
)

func TestConnError(t *testing.T) {
	tests := []struct {
		name string
		err  *ConnError
		want string
	}{
		{
			name: "with connection id",
			err:  &ConnError{Op: "parse", ConnID: "c1", RemoteAddr: "192.168.1.20:51234", Err: ErrMalformedRequest},
			want: "parse [c1] 192.168.1.20:51234: malformed request",
		},
		{
			name: "without connection id",
			err:  &ConnError{Op: "accept", RemoteAddr: "192.168.1.20:51234", Err: ErrTimeout},
			want: "accept 192.168.1.20:51234: timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	if err := New("parse", "c1", "addr", nil); err != nil {
		t.Errorf("Expected nil for nil error, got %v", err)
	}

	err := New("parse", "c1", "addr", ErrSizeLimitExceeded)
	if !errors.Is(err, ErrSizeLimitExceeded) {
		t.Error("Expected ConnError to unwrap to its cause")
	}

	var ce *ConnError
	if !errors.As(err, &ce) || ce.ConnID != "c1" {
		t.Errorf("Expected *ConnError with ConnID c1, got %#v", err)
	}
}

func TestWrap(t *testing.T) {
	if err := Wrap(nil, "read"); err != nil {
		t.Errorf("Expected nil for nil error, got %v", err)
	}

	err := Wrap(io.EOF, "read request")
	if err.Error() != "read request: EOF" {
		t.Errorf("Unexpected message %q", err.Error())
	}
	if !errors.Is(err, io.EOF) {
		t.Error("Expected wrapped error to match io.EOF")
	}
}
