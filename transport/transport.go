// Package transport dials the Cortex WebSocket endpoint and adapts
// github.com/coder/websocket into the plain read/write-frame shape the
// rpcmux layer wants, independent of any particular RPC envelope.
package transport

import (
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/emotiv-community/cortex-go/cortexerr"
)

// DefaultAddr is Cortex's well-known local endpoint.
const DefaultAddr = "wss://localhost:6868"

// Dialer opens connections to a Cortex instance. The zero Dialer dials
// DefaultAddr and verifies the TLS certificate; since Cortex serves a
// self-signed cert on localhost, most callers set InsecureSkipVerify.
type Dialer struct {
	// Addr overrides DefaultAddr, e.g. for tests against an httptest
	// server.
	Addr string
	// InsecureSkipVerify disables certificate verification, needed for
	// Cortex's self-signed localhost certificate.
	InsecureSkipVerify bool
	// HandshakeTimeout bounds the initial dial. Zero means 10s.
	HandshakeTimeout time.Duration
}

// Dial opens a new Conn. It fails with a *cortexerr.ConnectionError of
// kind KindHandshake on dial failure.
func (d Dialer) Dial(ctx context.Context) (*Conn, error) {
	addr := d.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	timeout := d.HandshakeTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: d.InsecureSkipVerify},
		},
	}

	wsConn, _, err := websocket.Dial(dialCtx, addr, &websocket.DialOptions{
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, cortexerr.NewConnectionError(cortexerr.KindHandshake, "dial "+addr, err)
	}
	wsConn.SetReadLimit(32 << 20) // 32MiB: EEG/motion burst frames can be large.

	return &Conn{conn: wsConn}, nil
}

// Conn is a single physical WebSocket connection to Cortex. It exposes
// raw frame read/write; rpcmux.Conn layers JSON-RPC correlation on top.
type Conn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// ReadFrame blocks until the next text frame arrives, skipping (with a
// warning on the default slog logger) any binary frames Cortex never
// sends in practice. A normal or going-away close is reported as io.EOF so
// callers can treat it like any other clean stream end.
func (c *Conn) ReadFrame(ctx context.Context) ([]byte, error) {
	for {
		msgType, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil, io.EOF
			}
			return nil, cortexerr.NewConnectionError(cortexerr.KindIO, "read frame", err)
		}
		if msgType != websocket.MessageText {
			slog.Warn("skipping non-text websocket frame", "type", msgType)
			continue
		}
		return data, nil
	}
}

// WriteFrame sends one text frame. Safe for concurrent use; writes are
// serialized under an internal mutex since coder/websocket forbids
// concurrent writers on one connection.
func (c *Conn) WriteFrame(ctx context.Context, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return cortexerr.NewConnectionError(cortexerr.KindIO, "write frame", err)
	}
	return nil
}

// Close sends a normal closure frame and releases the connection.
func (c *Conn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// CloseAbnormal closes with status 1011 (internal error) and reason
// "connection unhealthy", for a connection already known to be broken.
// Nothing in this module calls it; Close is used on every teardown path.
func (c *Conn) CloseAbnormal() error {
	return c.conn.Close(websocket.StatusInternalError, "connection unhealthy")
}
