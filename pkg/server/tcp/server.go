// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package tcp

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	cerrors "github.com/absmach/cuecast/pkg/errors"
	"github.com/absmach/cuecast/pkg/handler"
	"github.com/absmach/cuecast/pkg/parser"
	"github.com/google/uuid"
)

var (
	// ErrShutdownTimeout is returned when graceful shutdown exceeds the configured timeout.
	ErrShutdownTimeout = errors.New("shutdown timeout exceeded")
)

// Defaults match the Keep-Alive header the HTTP codec advertises.
const (
	DefaultIdleTimeout     = 120 * time.Second
	DefaultMaxRequests     = 1000
	DefaultShutdownTimeout = 30 * time.Second
)

// Config holds the TCP server configuration.
type Config struct {
	// Address is the listen address (host:port)
	Address string

	// TLSConfig is optional TLS configuration for the listener
	TLSConfig *tls.Config

	// IdleTimeout bounds how long a keep-alive connection may wait for its
	// next request.
	IdleTimeout time.Duration

	// MaxRequests is the number of requests served on one connection before
	// it is closed.
	MaxRequests int

	// ShutdownTimeout is the maximum time to wait for active connections to drain
	// during graceful shutdown. After this timeout, remaining connections are
	// forcefully closed.
	ShutdownTimeout time.Duration

	// Logger for server events
	Logger *slog.Logger
}

// Server accepts connections and serves requests on each of them with a
// pluggable parser until the peer goes away or the keep-alive budget runs out.
type Server struct {
	config  Config
	parser  parser.Parser
	handler handler.Handler
	wg      sync.WaitGroup
}

// New creates a new TCP server with the given configuration, parser, and handler.
func New(cfg Config, p parser.Parser, h handler.Handler) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = DefaultMaxRequests
	}

	return &Server{
		config:  cfg,
		parser:  p,
		handler: h,
	}
}

// Listen opens the configured address and serves it until ctx is cancelled.
func (s *Server) Listen(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}

	// Wrap with TLS if configured
	if s.config.TLSConfig != nil {
		listener = tls.NewListener(listener, s.config.TLSConfig)
		s.config.Logger.Info("TLS enabled", slog.String("address", s.config.Address))
	}

	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener and blocks until ctx is cancelled.
// It implements graceful shutdown with connection draining and closes the
// listener before returning.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.config.Logger.Info("TCP server started", slog.String("address", listener.Addr().String()))

	// Cancelling connCtx closes every remaining connection.
	connCtx, connCancel := context.WithCancel(context.Background())
	defer connCancel()

	acceptDone := make(chan struct{})
	go func() {
		defer close(acceptDone)
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					// Expected error during shutdown
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				s.config.Logger.Error("failed to accept connection", slog.String("error", err.Error()))
				continue
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				if err := s.handleConn(ctx, connCtx, conn); err != nil {
					s.config.Logger.Debug("connection handler error",
						slog.String("remote", conn.RemoteAddr().String()),
						slog.String("error", err.Error()))
				}
			}()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	s.config.Logger.Info("shutdown signal received, closing listener")

	if err := listener.Close(); err != nil {
		s.config.Logger.Error("error closing listener", slog.String("error", err.Error()))
	}
	<-acceptDone

	// Wait for active connections to drain with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.config.Logger.Info("all connections closed gracefully")
		return nil
	case <-time.After(s.config.ShutdownTimeout):
		s.config.Logger.Warn("shutdown timeout exceeded, forcing connection closure")
		connCancel()
		select {
		case <-done:
		case <-time.After(1 * time.Second):
		}
		return ErrShutdownTimeout
	}
}

// handleConn serves requests on one connection. A shutdown interrupts the
// connection while it waits for a request; cancelling force closes it.
func (s *Server) handleConn(shutdown, force context.Context, conn net.Conn) error {
	defer conn.Close()

	hctx := &handler.Context{
		ConnID:      uuid.NewString(),
		RemoteAddr:  conn.RemoteAddr().String(),
		LocalAddr:   conn.LocalAddr().String(),
		Protocol:    "http",
		State:       handler.StateWaiting,
		ConnectedAt: time.Now(),
	}

	if err := s.handler.OnConnect(force, hctx); err != nil {
		s.config.Logger.Error("connect handler error",
			slog.String("conn", hctx.ConnID),
			slog.String("error", err.Error()))
	}
	defer func() {
		if err := s.handler.OnDisconnect(context.Background(), hctx); err != nil {
			s.config.Logger.Error("disconnect handler error",
				slog.String("conn", hctx.ConnID),
				slog.String("error", err.Error()))
		}
		s.config.Logger.Debug("connection closed",
			slog.String("conn", hctx.ConnID),
			slog.String("state", hctx.State),
			slog.Int("requests", hctx.RequestCount))
	}()

	if tlsConn, ok := conn.(*tls.Conn); ok {
		if err := tlsConn.HandshakeContext(force); err != nil {
			hctx.State = handler.StateFailed
			return cerrors.New("tls handshake", hctx.ConnID, hctx.RemoteAddr, err)
		}
	}
	hctx.State = handler.StateReady

	idle := &idleGuard{conn: conn}
	stopIdle := context.AfterFunc(shutdown, idle.interrupt)
	defer stopIdle()
	stopForce := context.AfterFunc(force, func() { conn.Close() })
	defer stopForce()

	r := bufio.NewReader(conn)
	for served := 0; served < s.config.MaxRequests; served++ {
		if !idle.arm(s.config.IdleTimeout) {
			hctx.State = handler.StateCancelled
			return nil
		}

		if err := s.parser.Parse(force, r, conn, s.handler, hctx); err != nil {
			return s.finish(hctx, err)
		}
	}

	hctx.State = handler.StateCancelled
	return nil
}

// finish records why the request loop ended. Closures by the peer, by
// keep-alive limits or by shutdown are not errors.
func (s *Server) finish(hctx *handler.Context, err error) error {
	var ne net.Error
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		hctx.State = handler.StateCancelled
		return nil
	case errors.As(err, &ne) && ne.Timeout():
		hctx.State = handler.StateCancelled
		return nil
	default:
		hctx.State = handler.StateFailed
		return cerrors.New("serve", hctx.ConnID, hctx.RemoteAddr, err)
	}
}

// idleGuard owns the connection's read deadline so that a shutdown cannot be
// undone by the request loop re-arming the idle timeout.
type idleGuard struct {
	mu          sync.Mutex
	conn        net.Conn
	interrupted bool
}

func (g *idleGuard) arm(timeout time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.interrupted {
		return false
	}
	g.conn.SetReadDeadline(time.Now().Add(timeout))
	return true
}

func (g *idleGuard) interrupt() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.interrupted = true
	g.conn.SetReadDeadline(time.Now())
}
