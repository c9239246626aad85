package streamrouter

import (
	"testing"
	"time"

	"github.com/emotiv-community/cortex-go/wire"
)

func TestRouter_DispatchToSubscriber(t *testing.T) {
	r := NewRouter(nil)
	ch, cancel := r.Subscribe(wire.StreamEEG, 4)
	defer cancel()

	r.Dispatch(wire.StreamEnvelope{Key: wire.StreamEEG, SID: "s1"})

	select {
	case env := <-ch:
		if env.SID != "s1" {
			t.Errorf("SID = %q, want %q", env.SID, "s1")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for dispatch")
	}
}

func TestRouter_DispatchIgnoresOtherKeys(t *testing.T) {
	r := NewRouter(nil)
	ch, cancel := r.Subscribe(wire.StreamEEG, 4)
	defer cancel()

	r.Dispatch(wire.StreamEnvelope{Key: wire.StreamMotion})

	select {
	case env := <-ch:
		t.Fatalf("unexpected delivery for non-subscribed key: %+v", env)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRouter_LagPolicyDropsOldest(t *testing.T) {
	r := NewRouter(nil)
	ch, cancel := r.Subscribe(wire.StreamEEG, 1)
	defer cancel()

	r.Dispatch(wire.StreamEnvelope{Key: wire.StreamEEG, Time: 1})
	r.Dispatch(wire.StreamEnvelope{Key: wire.StreamEEG, Time: 2})

	env := <-ch
	if env.Time != 2 {
		t.Errorf("Time = %v, want newest sample (2)", env.Time)
	}
}

func TestRouter_CancelClosesChannel(t *testing.T) {
	r := NewRouter(nil)
	ch, cancel := r.Subscribe(wire.StreamEEG, 1)
	cancel()

	_, ok := <-ch
	if ok {
		t.Error("expected channel to be closed after cancel")
	}
}

func TestRouter_MultipleSubscribersSameKey(t *testing.T) {
	r := NewRouter(nil)
	ch1, cancel1 := r.Subscribe(wire.StreamEEG, 1)
	defer cancel1()
	ch2, cancel2 := r.Subscribe(wire.StreamEEG, 1)
	defer cancel2()

	r.Dispatch(wire.StreamEnvelope{Key: wire.StreamEEG, SID: "broadcast"})

	for _, ch := range []<-chan wire.StreamEnvelope{ch1, ch2} {
		select {
		case env := <-ch:
			if env.SID != "broadcast" {
				t.Errorf("SID = %q, want broadcast", env.SID)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for dispatch to one subscriber")
		}
	}
}
