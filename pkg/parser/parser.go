// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"bufio"
	"context"
	"io"

	"github.com/absmach/cuecast/pkg/handler"
)

// Parser handles protocol-specific request processing on one connection.
// Implementations are responsible for:
//  1. Reading exactly one request from the reader
//  2. Filling request metadata into the handler context
//  3. Calling handler authorization methods (AuthRequest, AuthWrite)
//  4. Producing a response and writing it to the writer
//  5. Calling handler notification methods (OnRequest)
//
// Parse is called in a loop for the lifetime of a keep-alive connection. It should:
// - Return nil if the connection may serve another request
// - Return io.EOF for clean connection closure (peer closed, or Connection: close)
// - Return other errors for abnormal termination
type Parser interface {
	// Parse reads one request from r and writes one response to w.
	// The handler h is called for authorization and notifications.
	// The handler context hctx contains connection metadata and is updated
	// with the current request's method, path, user agent and credentials.
	Parse(ctx context.Context, r *bufio.Reader, w io.Writer, h handler.Handler, hctx *handler.Context) error
}
