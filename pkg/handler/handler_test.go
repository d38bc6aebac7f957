// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"context"
	"testing"
)

func TestNoopHandler(t *testing.T) {
	handler := &NoopHandler{}
	ctx := context.Background()
	hctx := &Context{
		ConnID:     "test-conn",
		RemoteAddr: "127.0.0.1:1234",
		Protocol:   "http",
		State:      StateReady,
		Method:     "PUT",
		Path:       "/api/cues",
		UserAgent:  "Mozilla/5.0",
		Username:   "operator",
		Password:   []byte("secret"),
	}

	tests := []struct {
		name string
		fn   func() error
	}{
		{
			name: "AuthRequest",
			fn:   func() error { return handler.AuthRequest(ctx, hctx) },
		},
		{
			name: "AuthWrite",
			fn: func() error {
				body := []byte(`{"stacks":[]}`)
				return handler.AuthWrite(ctx, hctx, hctx.Path, &body)
			},
		},
		{
			name: "OnConnect",
			fn:   func() error { return handler.OnConnect(ctx, hctx) },
		},
		{
			name: "OnRequest",
			fn:   func() error { return handler.OnRequest(ctx, hctx, 200) },
		},
		{
			name: "OnDisconnect",
			fn:   func() error { return handler.OnDisconnect(ctx, hctx) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); err != nil {
				t.Errorf("%s() returned error: %v", tt.name, err)
			}
		})
	}
}

func TestNoopHandler_LeavesBodyUntouched(t *testing.T) {
	handler := &NoopHandler{}
	body := []byte("payload")

	if err := handler.AuthWrite(context.Background(), &Context{}, "/api/clock", &body); err != nil {
		t.Fatalf("AuthWrite() error = %v", err)
	}

	if string(body) != "payload" {
		t.Errorf("Expected body to be unchanged, got %q", body)
	}
}
