// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package parser defines the interface for protocol-specific request handling
// on a single connection.
//
// # Architecture Overview
//
// Parsers sit between the transport layer (the TCP server) and the business
// logic layer (handlers and routers). The server owns the socket and the
// keep-alive loop; the parser owns the wire format.
//
// # Parser Interface
//
// The Parser interface has a single method:
//
//	Parse(ctx context.Context, r *bufio.Reader, w io.Writer, h handler.Handler, hctx *handler.Context) error
//
// One call is one request/response exchange:
//
//  1. Read a request from r
//  2. Update hctx with the request metadata
//  3. Call handler.Auth* methods
//  4. Route the request and write the response to w
//  5. Call handler.OnRequest
//
// # Integration with Servers
//
//	TCP Server:
//	  - One goroutine per connection
//	  - Parse() called until it returns an error, the request budget is spent,
//	    or the idle deadline expires
//
// # Protocol-Specific Parsers
//
//   - parser/http: HTTP/1.x request/response codec
package parser
