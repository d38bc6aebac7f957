// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package handler provides the interface that links the connection parser to
// application-level authorization and client tracking.
//
// # Data Flow
//
//	Client → Server (accept) → Parser (decode) → Handler (authorize) → Router → Parser (encode) → Client
//
// # Handler Methods
//
// Authorization methods are called before a request is routed:
//   - AuthRequest: Per-request gate (rate limiting, blocking)
//   - AuthWrite: Capability check for state-changing requests
//
// Notification methods are called around the connection lifecycle:
//   - OnConnect: A connection was accepted
//   - OnRequest: A response was written
//   - OnDisconnect: The connection closed
//
// # Context
//
// The Context struct carries connection metadata across all handler calls:
//   - ConnID: Unique identifier for this connection
//   - RemoteAddr, LocalAddr: Both ends of the socket
//   - State: Protocol state (waiting, ready, failed, cancelled)
//   - RequestCount: Requests served on this connection
//   - Method, Path, UserAgent: The current request
//   - Username, Password: Basic auth credentials of the current request
//
// The NoopHandler provides a pass-through implementation for tests.
package handler
