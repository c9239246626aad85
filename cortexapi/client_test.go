package cortexapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/emotiv-community/cortex-go/rpcmux"
	"github.com/emotiv-community/cortex-go/transport"
)

// fakeCortex answers a fixed JSON-RPC method surface and records every
// request it receives, the same mock-server idiom used across this
// module's tests (see rpcmux's scriptedServer).
type fakeCortex struct {
	mu       sync.Mutex
	requests []request
	replies  map[string]string
}

type request struct {
	Method string
	Params json.RawMessage
}

func newFakeCortex(t *testing.T, replies map[string]string) (*httptest.Server, *fakeCortex) {
	t.Helper()
	f := &fakeCortex{replies: replies}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
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
			_ = json.Unmarshal(data, &req)

			f.mu.Lock()
			f.requests = append(f.requests, request{Method: req.Method, Params: req.Params})
			f.mu.Unlock()

			reply, ok := f.replies[req.Method]
			if !ok {
				continue
			}
			reply = strings.Replace(reply, "$ID", strconv.FormatUint(req.ID, 10), 1)
			_ = conn.Write(r.Context(), websocket.MessageText, []byte(reply))
		}
	}))
	return srv, f
}

func (f *fakeCortex) last() request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, addr string) *Client {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(addr, "http")
	tc, err := (transport.Dialer{Addr: wsURL}).Dial(context.Background())
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	mux := rpcmux.New(tc, nil, nil, nil)
	return New(mux, 2*time.Second)
}

func TestHandshake(t *testing.T) {
	srv, _ := newFakeCortex(t, map[string]string{
		"getCortexInfo": `{"id":$ID,"result":{"version":"mock"}}`,
		"requestAccess": `{"id":$ID,"result":{"accessGranted":true}}`,
		"authorize":     `{"id":$ID,"result":{"cortexToken":"tok-A"}}`,
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	info, err := c.GetCortexInfo(ctx)
	if err != nil || info.Version != "mock" {
		t.Fatalf("GetCortexInfo() = %+v, %v", info, err)
	}

	access, err := c.RequestAccess(ctx, "id", "secret")
	if err != nil || !access.AccessGranted {
		t.Fatalf("RequestAccess() = %+v, %v", access, err)
	}

	token, err := c.Authorize(ctx, "id", "secret", "", 0)
	if err != nil || token != "tok-A" {
		t.Fatalf("Authorize() = %q, %v", token, err)
	}
}

func TestCreateSession_WireShape(t *testing.T) {
	srv, f := newFakeCortex(t, map[string]string{
		"createSession": `{"id":$ID,"result":{"id":"sess-1"}}`,
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	id, err := c.CreateSession(context.Background(), "tok-A", "headset-1")
	if err != nil || id != "sess-1" {
		t.Fatalf("CreateSession() = %q, %v", id, err)
	}

	req := f.last()
	if req.Method != "createSession" {
		t.Errorf("Method = %q, want createSession", req.Method)
	}
	var params map[string]any
	if err := json.Unmarshal(req.Params, &params); err != nil {
		t.Fatalf("params unmarshal error: %v", err)
	}
	if params["headset"] != "headset-1" {
		t.Errorf("params[headset] = %v, want headset-1", params["headset"])
	}
	if params["status"] != "active" {
		t.Errorf("params[status] = %v, want active", params["status"])
	}
}

func TestQueryHeadsets_NoParamsWhenEmpty(t *testing.T) {
	srv, f := newFakeCortex(t, map[string]string{
		"queryHeadsets": `{"id":$ID,"result":[]}`,
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	headsets, err := c.QueryHeadsets(context.Background(), "")
	if err != nil {
		t.Fatalf("QueryHeadsets() error = %v", err)
	}
	if len(headsets) != 0 {
		t.Errorf("len(headsets) = %d, want 0", len(headsets))
	}

	req := f.last()
	var params map[string]any
	_ = json.Unmarshal(req.Params, &params)
	if _, ok := params["id"]; ok {
		t.Errorf("expected empty id field to be omitted, got %v", params)
	}
}

func TestSubscribe_PartialSuccess(t *testing.T) {
	srv, _ := newFakeCortex(t, map[string]string{
		"subscribe": `{"id":$ID,"result":{"success":[{"streamName":"eeg"}],"failure":[{"streamName":"pow","code":-32,"message":"no license"}]}}`,
	})
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.Subscribe(context.Background(), "tok-A", "sess-1", []string{"eeg", "pow"})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if len(res.Success) != 1 || res.Success[0].StreamName != "eeg" {
		t.Errorf("Success = %+v", res.Success)
	}
	if len(res.Failure) != 1 || res.Failure[0].StreamName != "pow" {
		t.Errorf("Failure = %+v", res.Failure)
	}
}
