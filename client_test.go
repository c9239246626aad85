package cortex

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emotiv-community/cortex-go/cortexerr"
	"github.com/emotiv-community/cortex-go/cortextest"
)

func baseConfig(url string) Config {
	return Config{
		ClientID:     "id",
		ClientSecret: "secret",
		CortexURL:    url,
		RPCTimeout:   2 * time.Second,
	}
}

func scriptHandshake(srv *cortextest.Server, token string) {
	srv.Reply("getCortexInfo", `{"id":$ID,"result":{"version":"mock"}}`)
	srv.Reply("requestAccess", `{"id":$ID,"result":{"accessGranted":true}}`)
	srv.Reply("authorize", `{"id":$ID,"result":{"cortexToken":"`+token+`"}}`)
}

func TestConnect_HappyHandshake(t *testing.T) {
	srv := cortextest.New()
	defer srv.Close()
	scriptHandshake(srv, "tok-A")

	c, err := New(baseConfig(srv.URL()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	_, token, _ := c.state.snapshot()
	if token != "tok-A" {
		t.Errorf("token = %q, want tok-A", token)
	}
	if c.State() != StateConnected {
		t.Errorf("State() = %v, want Connected", c.State())
	}
}

func TestConnect_AccessDenied(t *testing.T) {
	srv := cortextest.New()
	defer srv.Close()
	srv.Reply("getCortexInfo", `{"id":$ID,"result":{"version":"mock"}}`)
	srv.Reply("requestAccess", `{"id":$ID,"result":{"accessGranted":false}}`)

	c, err := New(baseConfig(srv.URL()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	err = c.Connect(context.Background())
	if err == nil {
		t.Fatal("expected an AuthError")
	}
}

func TestGenerateNewToken_UpdatesState(t *testing.T) {
	srv := cortextest.New()
	defer srv.Close()
	scriptHandshake(srv, "token-initial")
	srv.Reply("generateNewToken", `{"id":$ID,"result":{"cortexToken":"token-updated"}}`)

	c, err := New(baseConfig(srv.URL()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	c.state.mu.Lock()
	c.state.tokenObtained = time.Now().Add(-7 * time.Hour)
	c.state.mu.Unlock()

	if err := c.refreshTokenIfStale(context.Background()); err != nil {
		t.Fatalf("refreshTokenIfStale() error = %v", err)
	}

	_, token, _ := c.state.snapshot()
	if token != "token-updated" {
		t.Errorf("token = %q, want token-updated", token)
	}
}

func TestReconnect_ReconnectDisabled(t *testing.T) {
	srv := cortextest.New()
	defer srv.Close()
	scriptHandshake(srv, "token-initial")

	cfg := baseConfig(srv.URL())
	cfg.Reconnect = ReconnectConfig{Enabled: false}

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	srv.WaitConnected()
	srv.ForceClose()
	time.Sleep(100 * time.Millisecond)

	before := len(srv.Requests())
	_, err = c.Headsets(context.Background())
	if err == nil {
		t.Fatal("expected an error after the connection was force-closed")
	}
	var connErr *cortexerr.ConnectionError
	if !errors.As(err, &connErr) {
		t.Errorf("error = %v (%T), want *cortexerr.ConnectionError", err, err)
	}

	time.Sleep(500 * time.Millisecond)
	if got := len(srv.Requests()); got != before {
		t.Errorf("server saw %d new requests after reconnect-disabled failure, want 0", got-before)
	}
	if c.State() == StateConnected {
		t.Error("State() = Connected, want non-Connected after an unrecovered drop")
	}
}

func TestReconnect_RetriesAndResumes(t *testing.T) {
	srv := cortextest.New()
	defer srv.Close()
	scriptHandshake(srv, "token-before")

	cfg := baseConfig(srv.URL())
	cfg.Reconnect = ReconnectConfig{Enabled: true, BaseDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond, MaxAttempts: 5}

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	srv.WaitConnected()

	events, cancel := c.Events(8)
	defer cancel()

	scriptHandshake(srv, "token-after")
	srv.ForceClose()

	if err := c.reconnect(context.Background()); err != nil {
		t.Fatalf("reconnect() error = %v", err)
	}

	_, token, _ := c.state.snapshot()
	if token != "token-after" {
		t.Errorf("token after reconnect = %q, want token-after", token)
	}
	if c.State() != StateConnected {
		t.Errorf("State() = %v, want Connected", c.State())
	}

	var sawReconnected bool
	for {
		select {
		case ev := <-events:
			if ev.Kind == EventReconnected {
				sawReconnected = true
			}
		default:
			if !sawReconnected {
				t.Error("did not observe a Reconnected event")
			}
			return
		}
	}
}

func TestStreamRouting_EEGAndMotionInterleavedWithRPC(t *testing.T) {
	srv := cortextest.New()
	defer srv.Close()
	scriptHandshake(srv, "token-stream")
	srv.Reply("queryHeadsets", `{"id":$ID,"result":[{"id":"EPOCX-1","status":"connected","firmware":"1.0"}]}`)

	c, err := New(baseConfig(srv.URL()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	c.state.setSession("sess-1", "EPOCX-1")

	eeg, cancelEEG := c.SubscribeEEG(4)
	defer cancelEEG()
	motion, cancelMotion := c.SubscribeMotion(4)
	defer cancelMotion()

	srv.Push(`{"eeg":[0,0,1.0,2.0,3.0,4.0,5.0,6.0,7.0,8.0,9.0,10.0,11.0,12.0,13.0,14.0,99,0],"sid":"sess-1","time":1.0}`)
	srv.Push(`{"mot":[0,0,0,0,0,0,0,0,0,0],"sid":"sess-1","time":1.0}`)

	headsets, err := c.Headsets(context.Background())
	if err != nil {
		t.Fatalf("Headsets() error = %v", err)
	}
	if len(headsets) != 1 || headsets[0].ID != "EPOCX-1" {
		t.Errorf("Headsets() = %+v, want one EPOCX-1 entry", headsets)
	}

	select {
	case s := <-eeg:
		if len(s.Channels) != 14 {
			t.Errorf("eeg sample has %d channels, want 14", len(s.Channels))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for eeg sample")
	}

	select {
	case <-motion:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for motion sample")
	}
}

func TestBackoffDelay_WithinBounds(t *testing.T) {
	cfg := ReconnectConfig{Enabled: true, BaseDelay: 100 * time.Millisecond, MaxDelay: 2 * time.Second, MaxAttempts: 6}
	for attempt := 1; attempt <= 6; attempt++ {
		base := cfg.BaseDelay * time.Duration(1<<uint(attempt-1))
		if base > cfg.MaxDelay {
			base = cfg.MaxDelay
		}
		lo := time.Duration(float64(base) * 0.8)
		hi := time.Duration(float64(base) * 1.2)

		for i := 0; i < 20; i++ {
			d := backoffDelay(cfg, attempt)
			if d < lo || d > hi {
				t.Errorf("attempt %d: backoffDelay() = %v, want within [%v, %v]", attempt, d, lo, hi)
			}
		}
	}
}
