// Package cortexapi is the low-level Cortex client: one method per RPC,
// each building a params object, calling the multiplexer, and
// extracting the expected result fields. It never retries; connection
// and timeout errors surface verbatim for the resilient wrapper in
// package cortex to handle.
package cortexapi

import (
	"context"
	"encoding/json"
	"time"

	"github.com/emotiv-community/cortex-go/rpcmux"
)

// DefaultTimeout is the RPC deadline applied when a caller does not
// override it.
const DefaultTimeout = 30 * time.Second

// Client is a thin wrapper over rpcmux.Conn exposing one Go method per
// Cortex RPC. A Client has no retry logic and no reconnect awareness;
// it is rebuilt from scratch on every reconnect by package cortex.
type Client struct {
	mux     *rpcmux.Conn
	Timeout time.Duration
}

// New wraps mux. Timeout defaults to DefaultTimeout when zero.
func New(mux *rpcmux.Conn, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{mux: mux, Timeout: timeout}
}

// Close closes the underlying connection, failing any in-flight call.
func (c *Client) Close() error {
	return c.mux.Close()
}

// call issues method with params and unmarshals the result into out.
// out may be nil when the caller does not need the result value.
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	result, err := c.mux.Call(ctx, method, params, c.Timeout)
	if err != nil {
		return err
	}
	if out == nil || len(result) == 0 {
		return nil
	}
	return json.Unmarshal(result, out)
}
