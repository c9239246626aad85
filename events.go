package cortex

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// EventKind tags a ConnectionEvent's variant.
type EventKind int

const (
	EventConnected EventKind = iota
	EventDisconnected
	EventReconnecting
	EventReconnected
	EventReconnectFailed
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "Connected"
	case EventDisconnected:
		return "Disconnected"
	case EventReconnecting:
		return "Reconnecting"
	case EventReconnected:
		return "Reconnected"
	case EventReconnectFailed:
		return "ReconnectFailed"
	default:
		return "Unknown"
	}
}

// ConnectionEvent is broadcast to every Client.Events subscriber on
// every connection lifecycle transition.
type ConnectionEvent struct {
	Kind EventKind
	// Reason is only meaningful for Disconnected; the Disconnected
	// event published when a reconnect starts leaves it empty.
	Reason string
	// Attempt is set for Reconnecting (the attempt currently starting).
	Attempt int
	// Attempts is set for ReconnectFailed (total attempts made).
	Attempts int
	// LastError is set for ReconnectFailed.
	LastError error
}

type eventSub struct {
	id string
	ch chan ConnectionEvent
}

// broadcaster fans ConnectionEvents out to subscribers with a bounded
// channel per subscriber, generalizing the teacher's
// watch.BaseWatcher.NotifyAll from per-connection RPC notifications to
// process-wide lifecycle events: a lagging subscriber loses old events
// rather than blocking the supervisor.
type broadcaster struct {
	log *slog.Logger

	mu   sync.RWMutex
	subs map[string]*eventSub
}

func newBroadcaster(log *slog.Logger) *broadcaster {
	return &broadcaster{log: log, subs: make(map[string]*eventSub)}
}

// Subscribe returns a receive channel for future events and a cancel
// func that unregisters it and closes the channel.
func (b *broadcaster) Subscribe(buffer int) (<-chan ConnectionEvent, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	sub := &eventSub{id: uuid.Must(uuid.NewV7()).String(), ch: make(chan ConnectionEvent, buffer)}

	b.mu.Lock()
	b.subs[sub.id] = sub
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, sub.id)
			b.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers ev to every current subscriber, non-blocking: a full
// channel drops its oldest buffered event to make room for ev, so a
// lagging subscriber always sees the most recent lifecycle state rather
// than stalling the caller.
func (b *broadcaster) Publish(ev ConnectionEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
			continue
		default:
		}

		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- ev:
		default:
			b.log.Warn("connection event subscriber channel still full after drop, skipping event", "kind", ev.Kind, "subId", sub.id)
		}
	}
}

// closeAll closes every subscriber channel, used on Client.Close.
func (b *broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
}
