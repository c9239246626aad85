package cortex

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/emotiv-community/cortex-go/cortexapi"
	"github.com/emotiv-community/cortex-go/cortexerr"
	"github.com/emotiv-community/cortex-go/headset"
	"github.com/emotiv-community/cortex-go/streamrouter/decode"
	"github.com/emotiv-community/cortex-go/wire"
)

// Headsets lists connected headsets.
func (c *Client) Headsets(ctx context.Context) ([]cortexapi.Headset, error) {
	var out []cortexapi.Headset
	err := c.exec(ctx, func(low *cortexapi.Client) error {
		var err error
		out, err = low.QueryHeadsets(ctx, "")
		return err
	})
	return out, err
}

// CreateSession opens a session on headsetID and remembers it as the
// client's active session for subsequent Subscribe calls.
func (c *Client) CreateSession(ctx context.Context, headsetID string) (string, error) {
	var sessionID string
	err := c.execWithToken(ctx, func(low *cortexapi.Client, token string) error {
		var err error
		sessionID, err = low.CreateSession(ctx, token, headsetID)
		return err
	})
	if err != nil {
		return "", err
	}
	c.state.setSession(sessionID, headsetID)
	return sessionID, nil
}

// CloseSession ends the client's active session.
func (c *Client) CloseSession(ctx context.Context) error {
	sessionID, _ := c.state.getSession()
	if sessionID == "" {
		return nil
	}
	return c.execWithToken(ctx, func(low *cortexapi.Client, token string) error {
		return low.CloseSession(ctx, token, sessionID)
	})
}

// Subscribe requests streamNames on the active session from Cortex and
// returns the server's per-stream success/failure report. It does not
// itself hand back a typed channel; pair it with SubscribeEEG /
// SubscribeMotion / etc. (or streamrouter directly) to consume data.
func (c *Client) Subscribe(ctx context.Context, streamNames []string) (cortexapi.StreamResult, error) {
	sessionID, _ := c.state.getSession()
	var res cortexapi.StreamResult
	err := c.execWithToken(ctx, func(low *cortexapi.Client, token string) error {
		var err error
		res, err = low.Subscribe(ctx, token, sessionID, streamNames)
		return err
	})
	return res, err
}

// Unsubscribe stops streamNames on the active session.
func (c *Client) Unsubscribe(ctx context.Context, streamNames []string) (cortexapi.StreamResult, error) {
	sessionID, _ := c.state.getSession()
	var res cortexapi.StreamResult
	err := c.execWithToken(ctx, func(low *cortexapi.Client, token string) error {
		var err error
		res, err = low.Unsubscribe(ctx, token, sessionID, streamNames)
		return err
	})
	return res, err
}

// headsetModel resolves the active session's headset to a channel
// layout; typed decoders that depend on channel count call this once
// per subscription, not per sample.
func (c *Client) headsetModel() headset.Model {
	_, headsetID := c.state.getSession()
	return headset.Lookup(headsetID)
}

// typedSubscribe subscribes to key on the router and runs decode on
// every envelope in a background goroutine, forwarding successfully
// decoded samples to the returned channel. Decode failures are logged
// and dropped rather than surfaced, since one malformed sample must not
// stop the stream; callers wanting stricter handling can call the
// decode package's functions directly instead.
func typedSubscribe[T any](c *Client, key wire.StreamKey, buffer int, decodeFn func(wire.StreamEnvelope) (T, error)) (<-chan T, func()) {
	raw, cancelRaw := c.router.Subscribe(key, buffer)
	out := make(chan T, buffer)

	done := make(chan struct{})
	go func() {
		defer close(out)
		for env := range raw {
			sample, err := decodeFn(env)
			if err != nil {
				c.log.Warn("dropping undecodable stream sample", "key", key, "error", err)
				continue
			}
			select {
			case out <- sample:
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			cancelRaw()
			close(done)
		})
	}
	return out, cancel
}

// decodeArray unmarshals env's payload as a JSON array and hands it to
// decodeFn, the shape every stream-sample decoder in package decode
// expects.
func decodeArray[T any](env wire.StreamEnvelope, decodeFn func([]json.RawMessage) (T, error)) (T, error) {
	var zero T
	var arr []json.RawMessage
	if err := json.Unmarshal(env.Payload, &arr); err != nil {
		return zero, cortexerr.NewProtocolError("stream payload is not an array: " + err.Error())
	}
	return decodeFn(arr)
}

// SubscribeEEG subscribes to decoded raw-EEG samples.
func (c *Client) SubscribeEEG(buffer int) (<-chan decode.EEGSample, func()) {
	model := c.headsetModel()
	return typedSubscribe(c, wire.StreamEEG, buffer, func(env wire.StreamEnvelope) (decode.EEGSample, error) {
		return decodeArray(env, func(arr []json.RawMessage) (decode.EEGSample, error) { return decode.DecodeEEG(arr, model) })
	})
}

// SubscribeMotion subscribes to decoded motion samples.
func (c *Client) SubscribeMotion(buffer int) (<-chan decode.MotionSample, func()) {
	return typedSubscribe(c, wire.StreamMotion, buffer, func(env wire.StreamEnvelope) (decode.MotionSample, error) {
		return decodeArray(env, decode.DecodeMotion)
	})
}

// SubscribeDevice subscribes to decoded device/contact-quality samples.
func (c *Client) SubscribeDevice(buffer int) (<-chan decode.DeviceSample, func()) {
	model := c.headsetModel()
	return typedSubscribe(c, wire.StreamDevice, buffer, func(env wire.StreamEnvelope) (decode.DeviceSample, error) {
		return decodeArray(env, func(arr []json.RawMessage) (decode.DeviceSample, error) { return decode.DecodeDevice(arr, model) })
	})
}

// SubscribePower subscribes to decoded band-power samples.
func (c *Client) SubscribePower(buffer int) (<-chan decode.PowerSample, func()) {
	model := c.headsetModel()
	return typedSubscribe(c, wire.StreamPower, buffer, func(env wire.StreamEnvelope) (decode.PowerSample, error) {
		return decodeArray(env, func(arr []json.RawMessage) (decode.PowerSample, error) { return decode.DecodePower(arr, model) })
	})
}

// SubscribeMetrics subscribes to decoded performance-metrics samples.
func (c *Client) SubscribeMetrics(buffer int) (<-chan decode.MetricsSample, func()) {
	return typedSubscribe(c, wire.StreamMetrics, buffer, func(env wire.StreamEnvelope) (decode.MetricsSample, error) {
		return decodeArray(env, decode.DecodeMetrics)
	})
}

// SubscribeCommand subscribes to decoded mental-command samples.
func (c *Client) SubscribeCommand(buffer int) (<-chan decode.CommandSample, func()) {
	return typedSubscribe(c, wire.StreamCommand, buffer, func(env wire.StreamEnvelope) (decode.CommandSample, error) {
		return decodeArray(env, decode.DecodeCommand)
	})
}

// SubscribeFacial subscribes to decoded facial-expression samples.
func (c *Client) SubscribeFacial(buffer int) (<-chan decode.FacialSample, func()) {
	return typedSubscribe(c, wire.StreamFacial, buffer, func(env wire.StreamEnvelope) (decode.FacialSample, error) {
		return decodeArray(env, decode.DecodeFacial)
	})
}

// SubscribeQuality subscribes to decoded per-sensor signal-quality samples.
func (c *Client) SubscribeQuality(buffer int) (<-chan decode.QualitySample, func()) {
	model := c.headsetModel()
	return typedSubscribe(c, wire.StreamQuality, buffer, func(env wire.StreamEnvelope) (decode.QualitySample, error) {
		return decodeArray(env, func(arr []json.RawMessage) (decode.QualitySample, error) { return decode.DecodeQuality(arr, model) })
	})
}
