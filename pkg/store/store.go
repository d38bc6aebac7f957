// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/absmach/cuecast/pkg/errors"
	"github.com/jonboulle/clockwork"
)

const (
	// OfflineReadyInterval bounds how often EventOfflineReady is emitted.
	OfflineReadyInterval = 5 * time.Second
	// ClientsNotifyInterval bounds how often EventClientsNotified is emitted.
	ClientsNotifyInterval = 10 * time.Second

	writeQueueSize  = 64
	subscriberQueue = 16
)

// EventType names a change published to subscribers.
type EventType string

const (
	EventCuesUpdated       EventType = "cues_updated"
	EventHighlightsUpdated EventType = "highlights_updated"
	EventClockUpdated      EventType = "clock_updated"
	// EventOfflineReady signals the stacks are worth snapshotting for offline use.
	EventOfflineReady EventType = "offline_ready"
	// EventClientsNotified signals that polling viewers should be told about new cues.
	EventClientsNotified EventType = "clients_notified"
)

// Event is delivered to subscribers after a write has been applied.
type Event struct {
	Type EventType
	At   time.Time
}

type write struct {
	apply func(*State) EventType
	done  chan struct{}
}

// Store is the in-memory snapshot remote viewers read from.
//
// Reads share the read side of an RWMutex. All writes are queued to a single
// writer goroutine that applies each one under the write lock, so a grouped
// write becomes visible to readers all at once. Update methods return before
// the write is applied; use Flush to wait for it.
type Store struct {
	mu    sync.RWMutex
	state State

	clock  clockwork.Clock
	loc    *time.Location
	logger *slog.Logger

	writes  chan write
	closing chan struct{}
	stopped chan struct{}
	once    sync.Once

	subsMu  sync.Mutex
	subs    map[int]chan Event
	nextSub int

	// Owned by the writer goroutine.
	lastOffline time.Time
	lastNotify  time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for debouncing and timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithLocation sets the zone the show clock is rendered in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		s.loc = loc
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a Store and starts its writer goroutine. Call Close to stop it.
func New(opts ...Option) *Store {
	s := &Store{
		writes:  make(chan write, writeQueueSize),
		closing: make(chan struct{}),
		stopped: make(chan struct{}),
		subs:    make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	go s.run()
	return s
}

// UpdateCues replaces the stacks and the three selection indices as one write.
// The stacks are copied before the call returns.
func (s *Store) UpdateCues(stacks []CueStack, selectedStack, activeCue, selectedCue int) {
	stacks = cloneStacks(stacks)
	for i := range stacks {
		stacks[i].normalize()
	}

	s.enqueue(write{apply: func(st *State) EventType {
		st.CueStacks = stacks
		st.SelectedCueStackIndex = selectedStack
		st.ActiveCueIndex = activeCue
		st.SelectedCueIndex = selectedCue
		return EventCuesUpdated
	}})
}

// UpdateHighlightColors replaces the highlight list.
func (s *Store) UpdateHighlightColors(colors []HighlightColor) {
	colors = append([]HighlightColor(nil), colors...)
	for i := range colors {
		colors[i].Color = normalizeColor(colors[i].Color)
	}

	s.enqueue(write{apply: func(st *State) EventType {
		st.HighlightColors = colors
		return EventHighlightsUpdated
	}})
}

// UpdateClockState replaces all five clock fields as one write.
func (s *Store) UpdateClockState(current time.Time, countdown, countUp float64, countdownRunning, countUpRunning bool) {
	clock := ClockState{
		CurrentTime:      current,
		CountdownTime:    countdown,
		CountUpTime:      countUp,
		CountdownRunning: countdownRunning,
		CountUpRunning:   countUpRunning,
	}

	s.enqueue(write{apply: func(st *State) EventType {
		st.Clock = clock
		return EventClockUpdated
	}})
}

// Flush returns once every write enqueued before it has been applied.
func (s *Store) Flush(ctx context.Context) error {
	w := write{done: make(chan struct{})}
	if !s.enqueue(w) {
		return errors.ErrStoreClosed
	}

	select {
	case <-w.done:
		return nil
	case <-s.stopped:
		return errors.ErrStoreClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close applies queued writes, stops the writer and closes every subscriber
// channel. Writes issued after Close are dropped.
func (s *Store) Close() {
	s.once.Do(func() {
		close(s.closing)
	})
	<-s.stopped
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers for store events. Events are dropped for subscribers
// that fall behind. The returned func unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	ch := make(chan Event, subscriberQueue)
	select {
	case <-s.stopped:
		close(ch)
		return ch, func() {}
	default:
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	return ch, func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Store) enqueue(w write) bool {
	select {
	case <-s.closing:
		s.logger.Warn("store closed, dropping write")
		return false
	default:
	}

	select {
	case s.writes <- w:
		return true
	case <-s.closing:
		s.logger.Warn("store closed, dropping write")
		return false
	}
}

func (s *Store) run() {
	defer s.shutdown()

	for {
		select {
		case w := <-s.writes:
			s.apply(w)
		case <-s.closing:
			for {
				select {
				case w := <-s.writes:
					s.apply(w)
				default:
					return
				}
			}
		}
	}
}

func (s *Store) apply(w write) {
	if w.apply != nil {
		s.mu.Lock()
		ev := w.apply(&s.state)
		s.mu.Unlock()

		now := s.clock.Now()
		s.publish(Event{Type: ev, At: now})
		if ev == EventCuesUpdated {
			s.debounce(now)
		}
	}
	if w.done != nil {
		close(w.done)
	}
}

func (s *Store) debounce(now time.Time) {
	if s.lastOffline.IsZero() || now.Sub(s.lastOffline) >= OfflineReadyInterval {
		s.lastOffline = now
		s.publish(Event{Type: EventOfflineReady, At: now})
	}
	if s.lastNotify.IsZero() || now.Sub(s.lastNotify) >= ClientsNotifyInterval {
		s.lastNotify = now
		s.publish(Event{Type: EventClientsNotified, At: now})
	}
}

func (s *Store) publish(ev Event) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Debug("dropping store event for slow subscriber", slog.String("event", string(ev.Type)))
		}
	}
}

func (s *Store) shutdown() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	close(s.stopped)
}
