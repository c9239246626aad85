package cortex

import (
	"sync"
	"time"

	"github.com/emotiv-community/cortex-go/cortexapi"
)

// State is the Client's connection state machine.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateReconnecting:
		return "Reconnecting"
	case StateDisposed:
		return "Disposed"
	default:
		return "Unknown"
	}
}

// sessionState is the wrapper's mutable record: the active low-level
// client, the current auth token and when it was obtained, the
// reconnect epoch, and the state-machine value. Mutated only under mu
// as a writer; read under mu as a reader.
type sessionState struct {
	mu sync.RWMutex

	state State
	low   *cortexapi.Client

	token         string
	tokenObtained time.Time

	sessionID string
	headsetID string

	epoch uint64

	consecutiveHealthFailures int
}

func newSessionState() *sessionState {
	return &sessionState{state: StateDisconnected}
}

func (s *sessionState) snapshot() (low *cortexapi.Client, token string, epoch uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.low, s.token, s.epoch
}

func (s *sessionState) getState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *sessionState) setState(v State) {
	s.mu.Lock()
	s.state = v
	s.mu.Unlock()
}

func (s *sessionState) tokenAge() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokenObtained.IsZero() {
		return time.Duration(1<<63 - 1) // force a refresh before first use
	}
	return timeSince(s.tokenObtained)
}

// install atomically replaces the active client and token
// after a successful (re)connect, bumping the epoch. Called only by the
// reconnect supervisor and the initial Connect, always under the writer
// lock.
func (s *sessionState) install(low *cortexapi.Client, token string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.low = low
	s.token = token
	s.tokenObtained = timeNow()
	s.epoch++
	s.state = StateConnected
	return s.epoch
}

func (s *sessionState) setSession(sessionID, headsetID string) {
	s.mu.Lock()
	s.sessionID = sessionID
	s.headsetID = headsetID
	s.mu.Unlock()
}

func (s *sessionState) getSession() (sessionID, headsetID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID, s.headsetID
}

// timeNow/timeSince are indirection points so tests can fake clock
// behavior without a real sleep; production code always uses the
// real clock.
var (
	timeNow   = time.Now
	timeSince = time.Since
)
