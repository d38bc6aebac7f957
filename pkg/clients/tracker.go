// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package clients

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/absmach/cuecast/pkg/classify"
	"github.com/absmach/cuecast/pkg/handler"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ConnectionInfo describes one open connection as of the last read.
type ConnectionInfo struct {
	ID               string        `json:"id"`
	Endpoint         string        `json:"endpoint"`
	State            string        `json:"state"`
	RequestCount     int           `json:"requestCount"`
	LastSeen         time.Time     `json:"lastSeen"`
	IP               string        `json:"ip"`
	UserAgent        string        `json:"userAgent"`
	ConnectionType   string        `json:"connectionType"`
	Idle             time.Duration `json:"idleNanos"`
	BrowserType      string        `json:"browserType"`
	DeviceType       string        `json:"deviceType"`
	NetworkInterface string        `json:"networkInterface"`
}

// ClientSession is one viewing device, recognized across connections by its
// session key.
type ClientSession struct {
	ID               string    `json:"id"`
	IP               string    `json:"ip"`
	UserAgent        string    `json:"userAgent"`
	BrowserType      string    `json:"browserType"`
	DeviceType       string    `json:"deviceType"`
	DeviceName       string    `json:"deviceName"`
	FirstSeen        time.Time `json:"firstSeen"`
	LastSeen         time.Time `json:"lastSeen"`
	NetworkInterface string    `json:"networkInterface"`
	RequestCount     int       `json:"requestCount"`
}

type connection struct {
	id          string
	endpoint    string
	localAddr   string
	state       string
	requests    int
	connectedAt time.Time
	lastSeen    time.Time
	userAgent   string
}

// Tracker records open connections and the sessions they belong to.
//
// Sessions are never expired; a long show with many distinct devices grows
// the session map for the life of the process.
type Tracker struct {
	mu       sync.RWMutex
	conns    map[string]*connection
	sessions map[string]*ClientSession

	clock  clockwork.Clock
	hosts  classify.HostNamer
	ifaces classify.InterfaceResolver
}

// NewTracker creates a Tracker. hosts and ifaces may be nil, in which case
// Mac viewers are labelled "Mac" and interfaces "Unknown".
func NewTracker(clock clockwork.Clock, hosts classify.HostNamer, ifaces classify.InterfaceResolver) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Tracker{
		conns:    make(map[string]*connection),
		sessions: make(map[string]*ClientSession),
		clock:    clock,
		hosts:    hosts,
		ifaces:   ifaces,
	}
}

// Connect registers a newly accepted connection.
func (t *Tracker) Connect(hctx *handler.Context) {
	now := t.clock.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.conns[hctx.ConnID] = &connection{
		id:          hctx.ConnID,
		endpoint:    hctx.RemoteAddr,
		localAddr:   hctx.LocalAddr,
		state:       hctx.State,
		connectedAt: now,
		lastSeen:    now,
	}
}

// Record notes a served request and updates the caller's session. It
// returns a copy of the session and whether it was created by this call.
func (t *Tracker) Record(hctx *handler.Context) (ClientSession, bool) {
	now := t.clock.Now()
	ip := classify.IPFromEndpoint(hctx.RemoteAddr)
	key := classify.SessionKey(ip, hctx.UserAgent)
	iface := t.interfaceLabel(hctx.LocalAddr)
	fresh := ClientSession{
		IP:          ip,
		UserAgent:   hctx.UserAgent,
		BrowserType: classify.Browser(hctx.UserAgent),
		DeviceType:  classify.DeviceType(hctx.UserAgent),
		DeviceName:  classify.DeviceName(hctx.UserAgent, t.hosts),
		FirstSeen:   now,
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.conns[hctx.ConnID]; ok {
		c.state = hctx.State
		c.requests = hctx.RequestCount
		c.lastSeen = now
		c.userAgent = hctx.UserAgent
	}

	s, ok := t.sessions[key]
	if !ok {
		fresh.ID = uuid.NewString()
		s = &fresh
		t.sessions[key] = s
	}
	s.LastSeen = now
	s.NetworkInterface = iface
	s.RequestCount++

	return *s, !ok
}

// Disconnect forgets a closed connection. Its session remains.
func (t *Tracker) Disconnect(hctx *handler.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, hctx.ConnID)
}

// Connections rebuilds the connection list, oldest first.
func (t *Tracker) Connections() []ConnectionInfo {
	now := t.clock.Now()

	t.mu.RLock()
	conns := make([]connection, 0, len(t.conns))
	for _, c := range t.conns {
		conns = append(conns, *c)
	}
	t.mu.RUnlock()

	slices.SortFunc(conns, func(a, b connection) int {
		if c := a.connectedAt.Compare(b.connectedAt); c != 0 {
			return c
		}
		return strings.Compare(a.id, b.id)
	})

	out := make([]ConnectionInfo, len(conns))
	for i, c := range conns {
		out[i] = ConnectionInfo{
			ID:               c.id,
			Endpoint:         c.endpoint,
			State:            c.state,
			RequestCount:     c.requests,
			LastSeen:         c.lastSeen,
			IP:               classify.IPFromEndpoint(c.endpoint),
			UserAgent:        c.userAgent,
			ConnectionType:   classify.ConnectionType(c.state),
			Idle:             now.Sub(c.lastSeen),
			BrowserType:      classify.Browser(c.userAgent),
			DeviceType:       classify.DeviceType(c.userAgent),
			NetworkInterface: t.interfaceLabel(c.localAddr),
		}
	}
	return out
}

// Sessions returns every session seen, oldest first.
func (t *Tracker) Sessions() []ClientSession {
	t.mu.RLock()
	out := make([]ClientSession, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, *s)
	}
	t.mu.RUnlock()

	slices.SortFunc(out, func(a, b ClientSession) int {
		if c := a.FirstSeen.Compare(b.FirstSeen); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// SessionCount returns the number of sessions seen.
func (t *Tracker) SessionCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

func (t *Tracker) interfaceLabel(localAddr string) string {
	if t.ifaces == nil || localAddr == "" {
		return classify.Unknown
	}
	return classify.InterfaceLabel(t.ifaces.InterfaceName(classify.IPFromEndpoint(localAddr)))
}
