// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package clients

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/absmach/cuecast/pkg/classify"
	"github.com/absmach/cuecast/pkg/errors"
	"github.com/absmach/cuecast/pkg/handler"
	"github.com/absmach/cuecast/pkg/metrics"
	"github.com/absmach/cuecast/pkg/ratelimit"
	"github.com/absmach/cuecast/pkg/users"
	"github.com/jonboulle/clockwork"
)

const (
	// otherPath labels requests for paths outside Config.Paths in metrics.
	otherPath = "other"
	// undecoded labels requests that could not be decoded.
	undecoded = "undecoded"
)

// Config wires a Handler to its collaborators. Only Tracker is required.
type Config struct {
	Tracker    *Tracker
	Limiter    *ratelimit.Limiter
	Authorizer users.Authorizer
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Clock      clockwork.Clock

	// Paths are used as metric labels verbatim; anything else is "other".
	Paths []string
}

// Handler is the handler.Handler of the viewer server. It throttles polls per
// session, gates writes on an Authorizer, and records every request.
type Handler struct {
	tracker *Tracker
	limiter *ratelimit.Limiter
	auth    users.Authorizer
	metrics *metrics.Metrics
	logger  *slog.Logger
	clock   clockwork.Clock
	paths   map[string]struct{}
}

var _ handler.Handler = (*Handler)(nil)

// NewHandler creates a Handler from cfg.
func NewHandler(cfg Config) *Handler {
	if cfg.Tracker == nil {
		cfg.Tracker = NewTracker(cfg.Clock, nil, nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	paths := make(map[string]struct{}, len(cfg.Paths))
	for _, p := range cfg.Paths {
		paths[p] = struct{}{}
	}

	return &Handler{
		tracker: cfg.Tracker,
		limiter: cfg.Limiter,
		auth:    cfg.Authorizer,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		clock:   cfg.Clock,
		paths:   paths,
	}
}

// AuthRequest implements handler.Handler with per-session rate limiting.
func (h *Handler) AuthRequest(ctx context.Context, hctx *handler.Context) error {
	key := classify.SessionKey(classify.IPFromEndpoint(hctx.RemoteAddr), hctx.UserAgent)
	if !h.limiter.Allow(key) {
		if h.metrics != nil {
			h.metrics.RateLimitedRequests.Inc()
		}
		h.logger.Warn("Per-session rate limit exceeded",
			slog.String("conn_id", hctx.ConnID),
			slog.String("remote", hctx.RemoteAddr),
			slog.String("path", hctx.Path))
		return errors.ErrRateLimited
	}
	return nil
}

// AuthWrite implements handler.Handler. Writes require an Authorizer.
func (h *Handler) AuthWrite(ctx context.Context, hctx *handler.Context, path string, body *[]byte) error {
	if h.metrics != nil {
		h.metrics.AuthAttempts.Inc()
		h.metrics.RequestSize.Observe(float64(len(*body)))
	}

	reason := ""
	switch {
	case h.auth == nil:
		reason = "writes_disabled"
	case hctx.Username == "":
		reason = "no_credentials"
	default:
		if err := h.auth.Authorize(ctx, hctx.Username, hctx.Password, path); err != nil {
			reason = "denied"
		}
	}
	if reason == "" {
		return nil
	}

	if h.metrics != nil {
		h.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
	h.logger.Warn("Write rejected",
		slog.String("conn_id", hctx.ConnID),
		slog.String("remote", hctx.RemoteAddr),
		slog.String("user", hctx.Username),
		slog.String("path", path),
		slog.String("reason", reason))
	return fmt.Errorf("%s: %w", reason, errors.ErrUnauthorized)
}

// OnConnect implements handler.Handler.
func (h *Handler) OnConnect(ctx context.Context, hctx *handler.Context) error {
	h.tracker.Connect(hctx)
	if h.metrics != nil {
		h.metrics.ActiveConnections.Inc()
	}
	h.logger.Debug("Viewer connected",
		slog.String("conn_id", hctx.ConnID),
		slog.String("remote", hctx.RemoteAddr))
	return nil
}

// OnRequest implements handler.Handler. Requests that could not be decoded
// carry no Method; they are counted but not tracked.
func (h *Handler) OnRequest(ctx context.Context, hctx *handler.Context, status int) error {
	if hctx.Method == "" {
		if h.metrics != nil {
			h.metrics.ObserveRequest(undecoded, undecoded, status)
		}
		return nil
	}

	session, created := h.tracker.Record(hctx)

	if h.metrics != nil {
		h.metrics.ObserveRequest(hctx.Method, h.pathLabel(hctx.Path), status)
		if created {
			h.metrics.Sessions.Set(float64(h.tracker.SessionCount()))
		}
	}
	if created {
		h.logger.Info("New viewer session",
			slog.String("session_id", session.ID),
			slog.String("ip", session.IP),
			slog.String("browser", session.BrowserType),
			slog.String("device", session.DeviceName),
			slog.String("interface", session.NetworkInterface))
	}
	return nil
}

// OnDisconnect implements handler.Handler.
func (h *Handler) OnDisconnect(ctx context.Context, hctx *handler.Context) error {
	h.tracker.Disconnect(hctx)

	duration := h.clock.Since(hctx.ConnectedAt)
	if h.metrics != nil {
		h.metrics.ActiveConnections.Dec()
		h.metrics.TotalConnections.WithLabelValues(hctx.State).Inc()
		h.metrics.ConnectionDuration.Observe(duration.Seconds())
	}
	h.logger.Debug("Viewer disconnected",
		slog.String("conn_id", hctx.ConnID),
		slog.String("remote", hctx.RemoteAddr),
		slog.String("state", hctx.State),
		slog.Int("requests", hctx.RequestCount),
		slog.Duration("duration", duration))
	return nil
}

func (h *Handler) pathLabel(path string) string {
	if _, ok := h.paths[path]; ok {
		return path
	}
	return otherPath
}
