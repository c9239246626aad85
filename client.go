// Package cortex is the resilient wrapper around the Cortex low-level
// client: it owns connection state, proactively refreshes the auth
// token, probes connection health, reconnects with bounded exponential
// backoff on connection-class failures, and broadcasts lifecycle
// events. This is the library's main entry point; most applications
// only ever construct a cortex.Client.
package cortex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/emotiv-community/cortex-go/cortexapi"
	"github.com/emotiv-community/cortex-go/cortexerr"
	"github.com/emotiv-community/cortex-go/logging"
	"github.com/emotiv-community/cortex-go/metrics"
	"github.com/emotiv-community/cortex-go/rpcmux"
	"github.com/emotiv-community/cortex-go/streamrouter"
	"github.com/emotiv-community/cortex-go/transport"
	"github.com/emotiv-community/cortex-go/wire"
)

// Client is the public resilient Cortex client.
type Client struct {
	cfg Config
	log *slog.Logger

	state   *sessionState
	router  *streamrouter.Router
	events  *broadcaster
	metrics *metrics.Collectors

	reconnectFlight singleflight.Group

	healthCtx    context.Context
	healthCancel context.CancelFunc
	wg           sync.WaitGroup

	closeOnce sync.Once
}

// New validates cfg and returns an unconnected Client in state
// Disconnected. Call Connect to perform the handshake and start the
// supervisor tasks.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, _ := logging.NewConnLogger()
	healthCtx, cancel := context.WithCancel(context.Background())

	c := &Client{
		cfg:          cfg,
		log:          log,
		state:        newSessionState(),
		router:       streamrouter.NewRouter(log),
		events:       newBroadcaster(log),
		healthCtx:    healthCtx,
		healthCancel: cancel,
	}
	if cfg.Metrics != nil {
		c.metrics = cfg.Metrics
		c.router.OnDrop(func(key wire.StreamKey) {
			c.metrics.StreamDropped.WithLabelValues(string(key)).Inc()
		})
	}
	return c, nil
}

// Connect dials Cortex, runs the handshake, installs the resulting
// low-level client and token, and starts the health probe (if enabled
// in Config); reconnects run on demand from exec and from the health
// probe rather than from a goroutine started here. It is idempotent only in the
// sense that calling it twice on an already-Connected client re-dials;
// callers normally call it exactly once.
func (c *Client) Connect(ctx context.Context) error {
	c.state.setState(StateConnecting)

	low, token, err := c.dialAndHandshake(ctx)
	if err != nil {
		c.state.setState(StateDisconnected)
		return err
	}

	c.state.install(low, token)
	c.events.Publish(ConnectionEvent{Kind: EventConnected})

	if c.cfg.Health.Enabled {
		c.wg.Add(1)
		go c.healthLoop()
	}
	return nil
}

// dialAndHandshake opens a fresh transport, wraps it in rpcmux and
// cortexapi, and runs getCortexInfo -> requestAccess -> authorize.
func (c *Client) dialAndHandshake(ctx context.Context) (*cortexapi.Client, string, error) {
	dialer := transport.Dialer{Addr: c.cfg.url(), InsecureSkipVerify: true}
	tc, err := dialer.Dial(ctx)
	if err != nil {
		return nil, "", err
	}

	var pendingGauge prometheus.Gauge
	if c.metrics != nil {
		pendingGauge = c.metrics.PendingRequests
	}
	mux := rpcmux.New(tc, c.log, c.router.Dispatch, pendingGauge)
	low := cortexapi.New(mux, c.cfg.rpcTimeout())

	if _, err := low.GetCortexInfo(ctx); err != nil {
		_ = tc.Close()
		return nil, "", err
	}

	access, err := low.RequestAccess(ctx, c.cfg.ClientID, c.cfg.ClientSecret)
	if err != nil {
		_ = tc.Close()
		return nil, "", err
	}
	if !access.AccessGranted {
		_ = tc.Close()
		return nil, "", cortexerr.NewAuthError("access not granted")
	}

	token, err := low.Authorize(ctx, c.cfg.ClientID, c.cfg.ClientSecret, c.cfg.License, 0)
	if err != nil {
		_ = tc.Close()
		return nil, "", err
	}

	return low, token, nil
}

// Events subscribes to connection lifecycle events. Cancel stops
// delivery and releases the subscription.
func (c *Client) Events(buffer int) (<-chan ConnectionEvent, func()) {
	return c.events.Subscribe(buffer)
}

// State reports the client's current connection state.
func (c *Client) State() State {
	return c.state.getState()
}

// Close disposes the client: cancels the health probe, drains any
// in-flight reconnect, closes the active connection, and refuses
// further calls.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.state.setState(StateDisposed)
		c.healthCancel()
		c.wg.Wait()

		low, _, _ := c.state.snapshot()
		if low != nil {
			err = low.Close()
		}
		c.router.UnsubscribeAll()
		c.events.closeAll()
	})
	return err
}

// exec runs op against the current low-level client. On a
// ConnectionError it reconnects (if enabled) and retries exactly once.
func (c *Client) exec(ctx context.Context, op func(*cortexapi.Client) error) error {
	low, _, _ := c.state.snapshot()
	if low == nil {
		return cortexerr.NewConnectionError(cortexerr.KindClosed, "client not connected", nil)
	}

	err := op(low)
	if err == nil || !c.isConnectionError(err) {
		return err
	}
	if !c.cfg.Reconnect.Enabled {
		c.state.setState(StateDisconnected)
		return err
	}

	if rerr := c.reconnect(ctx); rerr != nil {
		return rerr
	}

	low, _, _ = c.state.snapshot()
	return op(low)
}

// execWithToken is exec preceded by a proactive token-refresh check,
// double-checked under the writer lock to avoid redundant refreshes
// from concurrent callers.
func (c *Client) execWithToken(ctx context.Context, op func(*cortexapi.Client, string) error) error {
	if err := c.refreshTokenIfStale(ctx); err != nil {
		return err
	}
	return c.exec(ctx, func(low *cortexapi.Client) error {
		_, token, _ := c.state.snapshot()
		return op(low, token)
	})
}

func (c *Client) refreshTokenIfStale(ctx context.Context) error {
	if c.state.tokenAge() <= c.cfg.tokenRefreshInterval() {
		return nil
	}

	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	// Double-checked: another goroutine may have refreshed while we
	// waited for the lock.
	if timeSince(c.state.tokenObtained) <= c.cfg.tokenRefreshInterval() {
		return nil
	}
	if c.state.low == nil {
		return cortexerr.NewConnectionError(cortexerr.KindClosed, "client not connected", nil)
	}

	newToken, err := c.state.low.GenerateNewToken(ctx, c.state.token)
	if err != nil {
		return err
	}
	c.state.token = newToken
	c.state.tokenObtained = timeNow()
	if c.metrics != nil {
		c.metrics.TokenRefreshes.Inc()
	}
	return nil
}

func (c *Client) isConnectionError(err error) bool {
	var connErr *cortexerr.ConnectionError
	return errors.As(err, &connErr)
}

// reconnect coalesces concurrent reconnect requests (e.g. a failed call
// and a failed health probe racing each other) into a single attempt;
// every caller awaits the same completion.
func (c *Client) reconnect(ctx context.Context) error {
	_, err, _ := c.reconnectFlight.Do("reconnect", func() (any, error) {
		return nil, c.runReconnect(ctx)
	})
	return err
}

func (c *Client) runReconnect(ctx context.Context) error {
	c.state.setState(StateReconnecting)
	c.events.Publish(ConnectionEvent{Kind: EventDisconnected})

	if low, _, _ := c.state.snapshot(); low != nil {
		_ = low.Close()
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.Reconnect.MaxAttempts; attempt++ {
		c.events.Publish(ConnectionEvent{Kind: EventReconnecting, Attempt: attempt})

		low, token, err := c.dialAndHandshake(ctx)
		if err == nil {
			c.state.install(low, token)
			c.events.Publish(ConnectionEvent{Kind: EventReconnected})
			if c.metrics != nil {
				c.metrics.Reconnects.WithLabelValues("success").Inc()
			}
			return nil
		}
		lastErr = err
		if c.metrics != nil {
			c.metrics.Reconnects.WithLabelValues("failure").Inc()
		}

		if attempt == c.cfg.Reconnect.MaxAttempts {
			break
		}
		select {
		case <-time.After(backoffDelay(c.cfg.Reconnect, attempt)):
		case <-ctx.Done():
			lastErr = ctx.Err()
			attempt = c.cfg.Reconnect.MaxAttempts
		}
	}

	c.state.setState(StateDisconnected)
	c.events.Publish(ConnectionEvent{Kind: EventReconnectFailed, Attempts: c.cfg.Reconnect.MaxAttempts, LastError: lastErr})
	return fmt.Errorf("cortex: reconnect failed after %d attempts: %w", c.cfg.Reconnect.MaxAttempts, lastErr)
}

// backoffDelay computes base*2^(attempt-1) capped at max, with ±20%
// jitter to avoid every client in a fleet retrying in lockstep.
func backoffDelay(cfg ReconnectConfig, attempt int) time.Duration {
	shift := attempt - 1
	if shift > 32 {
		shift = 32 // guard against overflow on pathological MaxAttempts
	}
	delay := cfg.BaseDelay * time.Duration(1<<uint(shift))
	if delay > cfg.MaxDelay || delay <= 0 {
		delay = cfg.MaxDelay
	}
	jitter := 0.8 + rand.Float64()*0.4 // [0.8, 1.2)
	return time.Duration(float64(delay) * jitter)
}
