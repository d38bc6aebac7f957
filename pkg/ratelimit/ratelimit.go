// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package ratelimit throttles polling per viewer session.
package ratelimit

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

const (
	defaultMaxClients = 10000
	idleAfter         = 10 * time.Minute
	cleanupEvery      = 5 * time.Minute
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per key. A zero rate disables limiting.
type Limiter struct {
	mu         sync.Mutex
	limiters   map[string]*entry
	rate       rate.Limit
	burst      int
	maxClients int
	clock      clockwork.Clock
	cleanupAt  time.Time
}

// NewLimiter creates a limiter allowing perSecond sustained requests with the
// given burst per key. At most maxClients keys are tracked; requests from new
// keys beyond that are refused until idle keys are evicted.
func NewLimiter(perSecond float64, burst, maxClients int, clock clockwork.Clock) *Limiter {
	if maxClients <= 0 {
		maxClients = defaultMaxClients
	}
	if burst <= 0 {
		burst = 1
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Limiter{
		limiters:   make(map[string]*entry),
		rate:       rate.Limit(perSecond),
		burst:      burst,
		maxClients: maxClients,
		clock:      clock,
		cleanupAt:  clock.Now().Add(cleanupEvery),
	}
}

// Allow reports whether a request for key may proceed now.
func (l *Limiter) Allow(key string) bool {
	if l == nil || l.rate <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.After(l.cleanupAt) {
		l.cleanup(now)
		l.cleanupAt = now.Add(cleanupEvery)
	}

	e, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= l.maxClients {
			return false
		}
		e = &entry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = e
	}

	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Remove forgets key.
func (l *Limiter) Remove(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, key)
}

// Stats returns the number of tracked keys.
func (l *Limiter) Stats() (clients int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// cleanup drops keys idle for longer than idleAfter. Must be called with mu held.
func (l *Limiter) cleanup(now time.Time) {
	cutoff := now.Add(-idleAfter)
	for k, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, k)
		}
	}
}
