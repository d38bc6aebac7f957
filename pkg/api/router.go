// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/absmach/cuecast/pkg/clients"
	"github.com/absmach/cuecast/pkg/metrics"
	cuehttp "github.com/absmach/cuecast/pkg/parser/http"
	"github.com/absmach/cuecast/pkg/store"
	"github.com/bytedance/sonic"
)

// Route paths.
const (
	PathRoot       = "/"
	PathIndex      = "/index.html"
	PathCues       = "/cues"
	PathClients    = "/clients"
	PathHealth     = "/health"
	PathPushCues   = "/api/cues"
	PathHighlights = "/api/highlights"
	PathClock      = "/api/clock"
)

// State is the part of the state store the router serves and feeds.
type State interface {
	GenerateJSONResponse() []byte
	UpdateCues(stacks []store.CueStack, selectedStack, activeCue, selectedCue int)
	UpdateHighlightColors(colors []store.HighlightColor)
	UpdateClockState(current time.Time, countdown, countUp float64, countdownRunning, countUpRunning bool)
}

// Clients lists who is watching.
type Clients interface {
	Connections() []clients.ConnectionInfo
	Sessions() []clients.ClientSession
}

// Config wires a Router. State is required.
type Config struct {
	State   State
	Clients Clients
	Viewer  []byte
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

type endpoint func(ctx context.Context, req *cuehttp.Request) *cuehttp.Response

// Router maps method and path onto the state store. It implements
// cuehttp.Router.
type Router struct {
	state   State
	clients Clients
	viewer  []byte
	metrics *metrics.Metrics
	logger  *slog.Logger
	routes  map[string]map[string]endpoint
}

var _ cuehttp.Router = (*Router)(nil)

// NewRouter creates a Router from cfg.
func NewRouter(cfg Config) *Router {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := &Router{
		state:   cfg.State,
		clients: cfg.Clients,
		viewer:  cfg.Viewer,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}

	r.routes = map[string]map[string]endpoint{
		PathRoot:       {cuehttp.MethodGet: r.index},
		PathIndex:      {cuehttp.MethodGet: r.index},
		PathCues:       {cuehttp.MethodGet: r.cues},
		PathClients:    {cuehttp.MethodGet: r.listClients},
		PathHealth:     {cuehttp.MethodGet: r.health},
		PathPushCues:   {cuehttp.MethodPut: r.pushCues},
		PathHighlights: {cuehttp.MethodPut: r.pushHighlights},
		PathClock:      {cuehttp.MethodPut: r.pushClock},
	}
	for _, methods := range r.routes {
		if get, ok := methods[cuehttp.MethodGet]; ok {
			methods[cuehttp.MethodHead] = get
		}
	}

	return r
}

// Paths returns every routed path.
func Paths() []string {
	return []string{PathRoot, PathIndex, PathCues, PathClients, PathHealth, PathPushCues, PathHighlights, PathClock}
}

var _ cuehttp.Matcher = (*Router)(nil)

// Match implements cuehttp.Matcher. OPTIONS is allowed on every known path.
func (r *Router) Match(method, path string) (found, allowed bool) {
	path, _, _ = strings.Cut(path, "?")
	methods, ok := r.routes[path]
	if !ok {
		return false, false
	}
	if method == cuehttp.MethodOptions {
		return true, true
	}
	_, ok = methods[method]
	return true, ok
}

// Route implements cuehttp.Router.
func (r *Router) Route(ctx context.Context, req *cuehttp.Request) *cuehttp.Response {
	path, _, _ := strings.Cut(req.Path, "?")

	methods, ok := r.routes[path]
	if !ok {
		return cuehttp.NewResponse(cuehttp.StatusNotFound, nil)
	}

	if req.Method == cuehttp.MethodOptions {
		return cuehttp.NewResponse(cuehttp.StatusNoContent, nil).
			With("Allow", allow(methods)).
			With("Access-Control-Allow-Methods", allow(methods)).
			With("Access-Control-Allow-Headers", "Authorization, Content-Type")
	}

	ep, ok := methods[req.Method]
	if !ok {
		return cuehttp.NewResponse(cuehttp.StatusMethodNotAllowed, nil).With("Allow", allow(methods))
	}
	return ep(ctx, req)
}

func allow(methods map[string]endpoint) string {
	names := make([]string, 0, len(methods)+1)
	for m := range methods {
		names = append(names, m)
	}
	names = append(names, cuehttp.MethodOptions)
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (r *Router) index(ctx context.Context, req *cuehttp.Request) *cuehttp.Response {
	return cuehttp.NewResponse(cuehttp.StatusOK, r.viewer).With("Content-Type", "text/html; charset=utf-8")
}

func (r *Router) cues(ctx context.Context, req *cuehttp.Request) *cuehttp.Response {
	body := r.state.GenerateJSONResponse()
	if len(body) == 0 {
		if r.metrics != nil {
			r.metrics.RenderFaults.Inc()
		}
		return cuehttp.NewResponse(cuehttp.StatusInternalServerError, nil)
	}
	if r.metrics != nil {
		r.metrics.ResponseSize.Observe(float64(len(body)))
	}
	return cuehttp.JSON(body)
}

type clientsView struct {
	Connections []clients.ConnectionInfo `json:"connections"`
	Sessions    []clients.ClientSession  `json:"sessions"`
}

func (r *Router) listClients(ctx context.Context, req *cuehttp.Request) *cuehttp.Response {
	view := clientsView{
		Connections: []clients.ConnectionInfo{},
		Sessions:    []clients.ClientSession{},
	}
	if r.clients != nil {
		view.Connections = append(view.Connections, r.clients.Connections()...)
		view.Sessions = append(view.Sessions, r.clients.Sessions()...)
	}
	return r.encode(view)
}

func (r *Router) health(ctx context.Context, req *cuehttp.Request) *cuehttp.Response {
	return cuehttp.JSON([]byte(`{"status":"ok"}`))
}

type cuesRequest struct {
	Stacks        []store.CueStack `json:"stacks"`
	SelectedStack int              `json:"selectedStack"`
	ActiveCue     int              `json:"activeCue"`
	SelectedCue   int              `json:"selectedCue"`
}

func (r *Router) pushCues(ctx context.Context, req *cuehttp.Request) *cuehttp.Response {
	var in cuesRequest
	if resp := r.decode(req, &in); resp != nil {
		return resp
	}
	r.state.UpdateCues(in.Stacks, in.SelectedStack, in.ActiveCue, in.SelectedCue)
	return cuehttp.NewResponse(cuehttp.StatusNoContent, nil)
}

func (r *Router) pushHighlights(ctx context.Context, req *cuehttp.Request) *cuehttp.Response {
	var in []store.HighlightColor
	if resp := r.decode(req, &in); resp != nil {
		return resp
	}
	r.state.UpdateHighlightColors(in)
	return cuehttp.NewResponse(cuehttp.StatusNoContent, nil)
}

type clockRequest struct {
	CurrentTime      time.Time `json:"currentTime"`
	CountdownTime    float64   `json:"countdownTime"`
	CountUpTime      float64   `json:"countUpTime"`
	CountdownRunning bool      `json:"countdownRunning"`
	CountUpRunning   bool      `json:"countUpRunning"`
}

func (r *Router) pushClock(ctx context.Context, req *cuehttp.Request) *cuehttp.Response {
	var in clockRequest
	if resp := r.decode(req, &in); resp != nil {
		return resp
	}
	r.state.UpdateClockState(in.CurrentTime, in.CountdownTime, in.CountUpTime, in.CountdownRunning, in.CountUpRunning)
	return cuehttp.NewResponse(cuehttp.StatusNoContent, nil)
}

// decode unmarshals a write body. It returns a 400 response on failure.
func (r *Router) decode(req *cuehttp.Request, v any) *cuehttp.Response {
	if len(req.Body) == 0 {
		return cuehttp.NewResponse(cuehttp.StatusBadRequest, nil)
	}
	if err := sonic.Unmarshal(req.Body, v); err != nil {
		r.logger.Warn("rejecting write with invalid body",
			slog.String("path", req.Path),
			slog.String("error", err.Error()))
		return cuehttp.NewResponse(cuehttp.StatusBadRequest, nil)
	}
	return nil
}

func (r *Router) encode(v any) *cuehttp.Response {
	body, err := sonic.Marshal(v)
	if err != nil {
		r.logger.Error("failed to encode response", slog.String("error", err.Error()))
		return cuehttp.NewResponse(cuehttp.StatusInternalServerError, nil)
	}
	return cuehttp.JSON(body)
}
