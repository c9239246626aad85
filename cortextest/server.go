// Package cortextest provides a scriptable mock Cortex WebSocket server
// for this module's own tests and for applications that want to test
// against Cortex without a real headset. It mirrors the teacher's
// ws/handler_test.go idiom of an httptest.Server wrapping a
// coder/websocket handler, generalized from a single scripted exchange
// to a queue of canned replies plus on-demand event injection and
// forced close, to support the reconnect/health end-to-end scenarios.
package cortextest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/coder/websocket"
)

// Server is a scriptable mock Cortex endpoint.
type Server struct {
	httpServer *httptest.Server

	mu       sync.Mutex
	replies  map[string][]string // method -> queue of reply bodies
	requests []Request
	conn     *websocket.Conn
	connCh   chan struct{}
}

// Request records one inbound RPC call, for assertions against a
// scripted request/response contract.
type Request struct {
	Method string
	Params json.RawMessage
}

// New starts a mock server with no scripted replies; use Reply/Push to
// script behavior before the client connects.
func New() *Server {
	s := &Server{
		replies: make(map[string][]string),
		connCh:  make(chan struct{}, 16),
	}
	s.httpServer = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL is the ws:// endpoint to dial.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.httpServer.URL, "http")
}

// Close shuts down the underlying httptest.Server.
func (s *Server) Close() {
	s.httpServer.Close()
}

// Reply enqueues a canned response body for the next invocation of
// method. Multiple calls to the same method are answered in order.
func (s *Server) Reply(method, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[method] = append(s.replies[method], body)
}

// Requests returns every request received so far, in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// WaitConnected blocks until the next client connection (the Nth call
// waits for the Nth accepted connection, so a reconnect scenario can
// call it again after a forced close).
func (s *Server) WaitConnected() {
	<-s.connCh
}

// Push sends a raw frame (typically a stream-event frame) to the
// current connection immediately.
func (s *Server) Push(frame string) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	_ = conn.Write(context.Background(), websocket.MessageText, []byte(frame))
}

// ForceClose abruptly closes the current connection, simulating a
// dropped socket for the auto-reconnect scenario.
func (s *Server) ForceClose() {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		_ = conn.Close(websocket.StatusAbnormalClosure, "forced close")
	}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.connCh <- struct{}{}

	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}

		var req struct {
			ID     uint64          `json:"id"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.Unmarshal(data, &req); err != nil {
			continue
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: req.Method, Params: req.Params})
		queue := s.replies[req.Method]
		var body string
		if len(queue) > 0 {
			body = queue[0]
			s.replies[req.Method] = queue[1:]
		}
		s.mu.Unlock()

		if body == "" {
			continue
		}
		body = strings.Replace(body, "$ID", strconv.FormatUint(req.ID, 10), 1)
		if err := conn.Write(r.Context(), websocket.MessageText, []byte(body)); err != nil {
			return
		}
	}
}
