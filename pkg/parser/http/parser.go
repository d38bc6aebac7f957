// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"

	cerrors "github.com/absmach/cuecast/pkg/errors"
	"github.com/absmach/cuecast/pkg/handler"
	"github.com/absmach/cuecast/pkg/parser"
)

// Router produces the response for a decoded request.
type Router interface {
	Route(ctx context.Context, req *Request) *Response
}

// Matcher is implemented by routers that can tell, without serving, whether a
// request would reach an endpoint.
type Matcher interface {
	Match(method, path string) (found, allowed bool)
}

// RouterFunc adapts a function to the Router interface.
type RouterFunc func(ctx context.Context, req *Request) *Response

// Route implements Router.
func (f RouterFunc) Route(ctx context.Context, req *Request) *Response {
	return f(ctx, req)
}

// Parser serves one HTTP exchange per Parse call on a keep-alive connection.
type Parser struct {
	router         Router
	logger         *slog.Logger
	maxRequestSize int
}

var _ parser.Parser = (*Parser)(nil)

// NewParser creates a new HTTP parser that routes decoded requests to router.
func NewParser(router Router, logger *slog.Logger, maxRequestSize int) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if maxRequestSize <= 0 {
		maxRequestSize = DefaultMaxRequestSize
	}

	return &Parser{
		router:         router,
		logger:         logger,
		maxRequestSize: maxRequestSize,
	}
}

// Parse implements parser.Parser.
// Decoding failures are answered with an error status and end the connection;
// they never propagate past the connection.
func (p *Parser) Parse(ctx context.Context, r *bufio.Reader, w io.Writer, h handler.Handler, hctx *handler.Context) error {
	resetRequest(hctx)

	req, err := ReadRequest(r, p.maxRequestSize)
	if err != nil {
		status, ok := decodeStatus(err)
		if !ok {
			return err
		}

		p.logger.Debug("rejecting undecodable request",
			slog.String("conn", hctx.ConnID),
			slog.String("remote", hctx.RemoteAddr),
			slog.String("error", err.Error()))

		if _, werr := NewResponse(status, nil).WriteTo(w); werr != nil {
			return werr
		}
		if err := h.OnRequest(ctx, hctx, status.Code()); err != nil {
			p.logger.Error("request notification error", slog.String("error", err.Error()))
		}
		return err
	}

	hctx.RequestCount++
	hctx.Method = req.Method
	hctx.Path = req.Path
	hctx.UserAgent = req.Header("user-agent")
	hctx.Username, hctx.Password = basicAuth(req.Header("authorization"))

	resp := p.serve(ctx, req, h, hctx)

	out := resp.Bytes()
	if req.Method == MethodHead {
		out = resp.Head()
	}
	if _, err := w.Write(out); err != nil {
		return err
	}

	if err := h.OnRequest(ctx, hctx, resp.Status.Code()); err != nil {
		p.logger.Error("request notification error",
			slog.String("conn", hctx.ConnID),
			slog.String("error", err.Error()))
	}

	if !req.KeepAlive() {
		return io.EOF
	}
	return nil
}

func (p *Parser) serve(ctx context.Context, req *Request, h handler.Handler, hctx *handler.Context) *Response {
	if err := h.AuthRequest(ctx, hctx); err != nil {
		p.logger.Debug("request rejected",
			slog.String("conn", hctx.ConnID),
			slog.String("path", req.Path),
			slog.String("error", err.Error()))
		return NewResponse(rejectStatus(err), nil)
	}

	if req.IsWrite() && p.routable(req) {
		body := req.Body
		if err := h.AuthWrite(ctx, hctx, req.Path, &body); err != nil {
			p.logger.Debug("write authorization failed",
				slog.String("conn", hctx.ConnID),
				slog.String("method", req.Method),
				slog.String("path", req.Path),
				slog.String("error", err.Error()))
			return NewResponse(rejectStatus(err), nil).With("WWW-Authenticate", `Basic realm="cuecast"`)
		}
		req.Body = body
	}

	return p.route(ctx, req)
}

// routable reports whether req reaches an endpoint. Requests that would be
// answered 404 or 405 skip write authorization.
func (p *Parser) routable(req *Request) bool {
	m, ok := p.router.(Matcher)
	if !ok {
		return true
	}
	found, allowed := m.Match(req.Method, req.Path)
	return found && allowed
}

// route calls the router and turns a panic into an empty 500.
func (p *Parser) route(ctx context.Context, req *Request) (resp *Response) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("router panic",
				slog.String("method", req.Method),
				slog.String("path", req.Path),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			resp = NewResponse(StatusInternalServerError, nil)
		}
	}()

	resp = p.router.Route(ctx, req)
	if resp == nil {
		resp = NewResponse(StatusInternalServerError, nil)
	}
	return resp
}

// resetRequest clears what the previous request left in hctx, so an
// undecodable request is never credited to it.
func resetRequest(hctx *handler.Context) {
	hctx.Method = ""
	hctx.Path = ""
	hctx.UserAgent = ""
	hctx.Username = ""
	hctx.Password = nil
}

func decodeStatus(err error) (Status, bool) {
	switch {
	case errors.Is(err, cerrors.ErrSizeLimitExceeded):
		return StatusPayloadTooLarge, true
	case errors.Is(err, cerrors.ErrUnsupportedMethod):
		return StatusMethodNotAllowed, true
	case errors.Is(err, cerrors.ErrMalformedRequest):
		return StatusBadRequest, true
	default:
		return 0, false
	}
}

func rejectStatus(err error) Status {
	if errors.Is(err, cerrors.ErrRateLimited) {
		return StatusTooManyRequests
	}
	return StatusUnauthorized
}

// basicAuth extracts credentials from a "Basic base64(user:pass)" header value.
func basicAuth(header string) (string, []byte) {
	scheme, encoded, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "basic") {
		return "", nil
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", nil
	}
	user, pass, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", nil
	}
	return user, []byte(pass)
}
