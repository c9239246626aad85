// Package streamrouter fans a single rpcmux.Conn's stream-event frames
// out to per-stream subscriber channels. It generalizes the teacher's
// watch.BaseWatcher subscription-map pattern from a string-keyed
// notifier registry to a StreamKey-keyed channel registry, and replaces
// watch.AgentRoleListWatcher's dirty-flag resync (appropriate for an
// authoritative list that can be refetched) with drop-oldest backpressure
// (appropriate for a high-frequency numeric sample stream that has no
// "current state" to resync from).
package streamrouter

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/emotiv-community/cortex-go/wire"
)

// OverflowPolicy controls what happens when a subscriber's channel is
// full at dispatch time.
type OverflowPolicy int

const (
	// Lag drops the oldest buffered sample to make room for the new
	// one, so a slow subscriber always sees the most recent data. This
	// is the default and the only policy implemented: Cortex streams
	// are high-rate telemetry where staleness is worse than a gap.
	Lag OverflowPolicy = iota
)

type subscription struct {
	id     string
	ch     chan wire.StreamEnvelope
	policy OverflowPolicy
}

// Router dispatches decoded stream-push frames to subscribers, keyed by
// stream. One Router is shared by every stream a single cortex.Client
// subscribes to; it survives reconnects (the underlying rpcmux.Conn
// does not).
type Router struct {
	log   *slog.Logger
	onDrop func(wire.StreamKey)

	mu   sync.RWMutex
	subs map[wire.StreamKey]map[string]*subscription
}

// NewRouter builds an empty Router. log may be nil to use slog.Default.
func NewRouter(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{log: log, subs: make(map[wire.StreamKey]map[string]*subscription)}
}

// OnDrop installs a callback invoked whenever a sample is dropped for a
// lagging subscriber (Lag policy). Used by package cortex to wire a
// metrics counter; nil disables the callback.
func (r *Router) OnDrop(fn func(wire.StreamKey)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onDrop = fn
}

// Subscribe registers a new subscriber for key with the given channel
// buffer size, and returns its receive channel plus a cancel func that
// unregisters it. The returned channel is closed when cancel is called.
func (r *Router) Subscribe(key wire.StreamKey, buffer int) (<-chan wire.StreamEnvelope, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	sub := &subscription{
		id:     uuid.Must(uuid.NewV7()).String(),
		ch:     make(chan wire.StreamEnvelope, buffer),
		policy: Lag,
	}

	r.mu.Lock()
	if r.subs[key] == nil {
		r.subs[key] = make(map[string]*subscription)
	}
	r.subs[key][sub.id] = sub
	r.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs[key], sub.id)
			r.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Dispatch fans an already-decoded stream-push envelope out to every
// current subscriber of its stream key; it does not decode the payload. It is meant to be called from
// rpcmux.Conn's read loop and must never block for long: a full
// subscriber channel is drained by one slot (Lag policy) rather than
// awaited.
func (r *Router) Dispatch(env wire.StreamEnvelope) {
	r.mu.RLock()
	subs := r.subs[env.Key]
	targets := make([]*subscription, 0, len(subs))
	for _, s := range subs {
		targets = append(targets, s)
	}
	r.mu.RUnlock()

	for _, s := range targets {
		r.send(s, env)
	}
}

func (r *Router) send(s *subscription, env wire.StreamEnvelope) {
	select {
	case s.ch <- env:
		return
	default:
	}

	switch s.policy {
	case Lag:
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- env:
		default:
			r.log.Warn("stream subscriber channel still full after drop, skipping sample", "key", env.Key, "subId", s.id)
		}
		r.mu.RLock()
		onDrop := r.onDrop
		r.mu.RUnlock()
		if onDrop != nil {
			onDrop(env.Key)
		}
	}
}

// UnsubscribeAll removes every subscriber of every key, closing their
// channels.
// Used when tearing down a Router entirely (e.g. on Client.Close).
func (r *Router) UnsubscribeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, subs := range r.subs {
		for _, s := range subs {
			close(s.ch)
		}
		delete(r.subs, key)
	}
}
