// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package tcp implements a protocol-agnostic keep-alive TCP server.
//
// # Overview
//
// The TCP server accepts connections and hands each one to a pluggable parser
// that reads one request and writes one response per call. It supports TLS,
// idle and request-count limits on keep-alive connections, and graceful
// shutdown.
//
// # Architecture
//
//	┌─────────┐         ┌─────────┐
//	│ Viewer  │ ←─TCP─→ │  Server │
//	└─────────┘         └─────────┘
//	                         ↓
//	                    ┌─────────┐
//	                    │ Parser  │ → Router → State store
//	                    └─────────┘
//	                         ↓
//	                    ┌─────────┐
//	                    │ Handler │
//	                    └─────────┘
//
// # Connection Flow
//
//  1. Client connects to server
//  2. Server accepts connection, State is "waiting"
//  3. Server calls handler.OnConnect() while State is still "waiting"
//  4. TLS handshake if configured, then State becomes "ready" ("failed" if
//     the handshake fails)
//  5. Server arms the idle deadline and calls parser.Parse() for the next request
//  6. Step 5 repeats until the parser returns io.EOF, the idle deadline
//     passes, MaxRequests is reached, or an error occurs
//  7. State becomes "cancelled" for ordinary closes and "failed" for errors
//  8. Server calls handler.OnDisconnect() and closes the connection
//
// # Graceful Shutdown
//
// When context is canceled:
//
//  1. Server stops accepting new connections
//  2. Connections waiting for their next request are closed at once
//  3. Requests in flight are allowed to finish
//  4. After ShutdownTimeout, forcefully closes remaining connections
//  5. Returns ErrShutdownTimeout if timeout exceeded
//
// Connection tracking uses sync.WaitGroup:
//
//	server.wg.Add(1)
//	go server.handleConn(...)
//	defer server.wg.Done()
//
// # TLS Support
//
// Optional TLS termination:
//
//	tlsConfig := &tls.Config{
//		Certificates: []tls.Certificate{cert},
//	}
//	cfg := tcp.Config{
//		Address:   ":8443",
//		TLSConfig: tlsConfig,
//	}
//
// # Configuration
//
//   - Address: Server listen address (e.g., ":8080")
//   - TLSConfig: Optional TLS configuration
//   - IdleTimeout: Max wait for the next request on a connection (default: 120s)
//   - MaxRequests: Requests served per connection (default: 1000)
//   - ShutdownTimeout: Max wait time for graceful shutdown (default: 30s)
//   - Logger: Structured logger
//
// # Error Handling
//
//   - Accept errors: Logged, server keeps accepting
//   - Parser errors: Logged, connection closed, OnDisconnect called
//   - OnConnect/OnDisconnect errors: Logged only
//   - Shutdown timeout: Returns ErrShutdownTimeout
//
// # Example
//
//	p := cuehttp.NewParser(router, logger, 0)
//	h := clients.NewHandler(clients.Config{...})
//
//	server := tcp.New(tcp.Config{Address: ":8080"}, p, h)
//	if err := server.Listen(ctx); err != nil {
//		log.Fatal(err)
//	}
package tcp
