// Package rpcmux multiplexes JSON-RPC request/response correlation and
// unsolicited stream-event dispatch over one transport.Conn. It has no
// direct analogue in the teacher: sourcegraph/jsonrpc2's Conn assumes
// every inbound frame carries a method, which Cortex's stream-push
// frames never do, so request/response bookkeeping is built directly
// on a pending-id table instead, in the spirit of the teacher's
// watch.BaseWatcher subscription map.
package rpcmux

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/emotiv-community/cortex-go/cortexerr"
	"github.com/emotiv-community/cortex-go/transport"
	"github.com/emotiv-community/cortex-go/wire"
)

// EventHandler receives every decoded stream-push frame read off the
// wire, in the order frames arrive. Implementations must not block;
// streamrouter.Router.Dispatch is designed to return quickly.
type EventHandler func(wire.StreamEnvelope)

// Outcome is the result delivered to a pending Call when its response
// frame arrives.
type Outcome struct {
	Result json.RawMessage
	Err    error
}

// Conn layers request/response correlation and event dispatch over a
// single transport.Conn. One Conn corresponds to one physical
// WebSocket connection; the resilient wrapper in package cortex creates
// a fresh Conn (and a fresh rpcmux.Conn) on every reconnect.
type Conn struct {
	tc    *transport.Conn
	log   *slog.Logger
	onEvt EventHandler

	nextID atomic.Uint64

	pendingMu    sync.Mutex
	pending      map[uint64]chan Outcome
	pendingGauge prometheus.Gauge

	writeMu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
	closeErr  error
	closeMu   sync.Mutex
}

// New wraps tc and starts its read loop. onEvent is invoked for every
// stream-push frame; it may be nil if the caller only issues calls
// without subscribing to streams. pendingGauge, if non-nil, tracks the
// number of in-flight calls; pass nil to disable.
func New(tc *transport.Conn, log *slog.Logger, onEvent EventHandler, pendingGauge prometheus.Gauge) *Conn {
	if log == nil {
		log = slog.Default()
	}
	c := &Conn{
		tc:           tc,
		log:          log,
		onEvt:        onEvent,
		pending:      make(map[uint64]chan Outcome),
		pendingGauge: pendingGauge,
		done:         make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// deletePending removes id's pending entry, if present, and reports
// whether it was found, decrementing pendingGauge on a hit.
func (c *Conn) deletePending(id uint64) (chan Outcome, bool) {
	c.pendingMu.Lock()
	ch, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()
	if ok && c.pendingGauge != nil {
		c.pendingGauge.Dec()
	}
	return ch, ok
}

// Done is closed once the read loop exits, i.e. once the underlying
// connection has failed or been closed.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Err returns the terminal error that caused the connection to close,
// if any. Valid only after Done is closed.
func (c *Conn) Err() error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	return c.closeErr
}

// Close closes the underlying transport and fails every pending call.
func (c *Conn) Close() error {
	err := c.tc.Close()
	c.finish(cortexerr.NewConnectionError(cortexerr.KindClosed, "connection closed by caller", nil))
	return err
}

// Call issues a JSON-RPC request and blocks until a response arrives,
// ctx is cancelled, or timeout elapses (timeout <= 0 means no timeout
// beyond ctx). It never retries.
func (c *Conn) Call(ctx context.Context, method string, params any, timeout time.Duration) (json.RawMessage, error) {
	id := c.nextID.Add(1)

	outcome := make(chan Outcome, 1)
	c.pendingMu.Lock()
	c.pending[id] = outcome
	c.pendingMu.Unlock()
	if c.pendingGauge != nil {
		c.pendingGauge.Inc()
	}

	cleanup := func() { c.deletePending(id) }

	env, err := wire.NewRequest(id, method, params)
	if err != nil {
		cleanup()
		return nil, err
	}
	data, err := json.Marshal(env)
	if err != nil {
		cleanup()
		return nil, err
	}

	c.writeMu.Lock()
	writeErr := c.tc.WriteFrame(ctx, data)
	c.writeMu.Unlock()
	if writeErr != nil {
		cleanup()
		return nil, writeErr
	}

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case out := <-outcome:
		return out.Result, out.Err
	case <-ctx.Done():
		cleanup()
		return nil, ctx.Err()
	case <-timeoutCh:
		cleanup()
		return nil, &cortexerr.TimeoutError{Method: method, Deadline: timeout}
	case <-c.done:
		cleanup()
		return nil, c.Err()
	}
}

func (c *Conn) readLoop() {
	for {
		raw, err := c.tc.ReadFrame(context.Background())
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = cortexerr.NewConnectionError(cortexerr.KindClosed, "connection closed by peer", err)
			}
			c.finish(err)
			return
		}

		kind, err := wire.Classify(raw)
		if err != nil {
			c.log.Warn("dropping unparseable frame", "error", err)
			continue
		}

		switch kind {
		case wire.KindResponse:
			c.dispatchResponse(raw)
		case wire.KindEvent:
			c.dispatchEvent(raw)
		}
	}
}

func (c *Conn) dispatchResponse(raw []byte) {
	resp, err := wire.DecodeResponse(raw)
	if err != nil {
		c.log.Warn("dropping malformed response frame", "error", err)
		return
	}

	ch, ok := c.deletePending(resp.ID)
	if !ok {
		c.log.Warn("response for unknown or already-completed request id", "id", resp.ID)
		return
	}

	var outcome Outcome
	if resp.Error != nil {
		outcome.Err = cortexerr.NewApiError(resp.Error.Code, resp.Error.Message)
	} else {
		outcome.Result = resp.Result
	}

	select {
	case ch <- outcome:
	default:
		// Call already gave up (ctx/timeout); nothing to deliver to.
	}
}

func (c *Conn) dispatchEvent(raw []byte) {
	if c.onEvt == nil {
		return
	}
	env, err := wire.DecodeStreamEnvelope(raw)
	if err != nil {
		c.log.Warn("dropping unrecognized stream frame", "error", err)
		return
	}
	c.onEvt(env)
}

// finish drains every pending call with err and closes done, exactly
// once.
func (c *Conn) finish(err error) {
	c.closeOnce.Do(func() {
		c.closeMu.Lock()
		c.closeErr = err
		c.closeMu.Unlock()

		c.pendingMu.Lock()
		pending := c.pending
		c.pending = make(map[uint64]chan Outcome)
		c.pendingMu.Unlock()
		if c.pendingGauge != nil && len(pending) > 0 {
			c.pendingGauge.Sub(float64(len(pending)))
		}

		for _, ch := range pending {
			select {
			case ch <- Outcome{Err: err}:
			default:
			}
		}

		close(c.done)
	})
}
