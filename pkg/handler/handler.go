// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"context"
	"time"
)

// Connection protocol states reported in Context.State.
const (
	StateWaiting   = "waiting"
	StateReady     = "ready"
	StateFailed    = "failed"
	StateCancelled = "cancelled"
)

// Context contains connection metadata and the request currently being served.
// It is passed to Handler methods and lives for the whole connection; request
// fields are overwritten by the parser on every request.
type Context struct {
	// ConnID is a unique identifier for this connection
	ConnID string

	// RemoteAddr is the client's network address (host:port)
	RemoteAddr string

	// LocalAddr is the server-side address the client connected to
	LocalAddr string

	// Protocol indicates the protocol being used (always "http" today)
	Protocol string

	// State is the connection protocol state (waiting, ready, failed, cancelled)
	State string

	// ConnectedAt is when the connection was accepted
	ConnectedAt time.Time

	// RequestCount is the number of requests read on this connection so far
	RequestCount int

	// Method and Path of the current request
	Method string
	Path   string

	// UserAgent of the current request
	UserAgent string

	// Username and Password extracted from Basic auth on the current request
	Username string
	Password []byte
}

// Handler defines authorization and notification callbacks for connection events.
// The connection parser calls these methods at fixed points of each request.
//
// Authorization methods (AuthRequest, AuthWrite) are called BEFORE the request is
// routed. They can:
// - Return an error to reject the request
// - Modify the write body via its pointer
//
// Notification methods (OnConnect, OnRequest, OnDisconnect) are called for audit
// logging, tracking and metrics. Errors from these methods are logged but never
// fail the request.
type Handler interface {
	// AuthRequest authorizes a single request on an established connection.
	// Return an error to reject it.
	AuthRequest(ctx context.Context, hctx *Context) error

	// AuthWrite authorizes a state-changing request (POST, PUT, DELETE).
	// The body can be modified via its pointer before routing.
	AuthWrite(ctx context.Context, hctx *Context, path string, body *[]byte) error

	// OnConnect is called after a connection is accepted.
	OnConnect(ctx context.Context, hctx *Context) error

	// OnRequest is called after a response has been written.
	OnRequest(ctx context.Context, hctx *Context, status int) error

	// OnDisconnect is called when a connection closes (gracefully or due to error).
	OnDisconnect(ctx context.Context, hctx *Context) error
}

// NoopHandler is a Handler implementation that allows all operations.
// Useful for testing or when no tracking is needed.
type NoopHandler struct{}

var _ Handler = (*NoopHandler)(nil)

func (h *NoopHandler) AuthRequest(ctx context.Context, hctx *Context) error {
	return nil
}

func (h *NoopHandler) AuthWrite(ctx context.Context, hctx *Context, path string, body *[]byte) error {
	return nil
}

func (h *NoopHandler) OnConnect(ctx context.Context, hctx *Context) error {
	return nil
}

func (h *NoopHandler) OnRequest(ctx context.Context, hctx *Context, status int) error {
	return nil
}

func (h *NoopHandler) OnDisconnect(ctx context.Context, hctx *Context) error {
	return nil
}
