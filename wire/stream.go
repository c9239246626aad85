package wire

import (
	"encoding/json"
	"errors"
)

// StreamKey identifies one of Cortex's real-time data streams. Each
// subscribed stream shows up as its own top-level key of the event
// frame (e.g. {"eeg":[...], "sid":"...", "time":...}).
type StreamKey string

const (
	StreamEEG     StreamKey = "eeg"
	StreamMotion  StreamKey = "mot"
	StreamDevice  StreamKey = "dev"
	StreamPower   StreamKey = "pow"
	StreamMetrics StreamKey = "met"
	StreamCommand StreamKey = "com"
	StreamFacial  StreamKey = "fac"
	StreamQuality StreamKey = "eq"
)

// KnownStreamKeys lists every stream key this client can decode.
var KnownStreamKeys = []StreamKey{
	StreamEEG, StreamMotion, StreamDevice, StreamPower,
	StreamMetrics, StreamCommand, StreamFacial, StreamQuality,
}

// StreamEnvelope is the outer shape of a stream-push frame: one data
// field under the stream's own key, plus the session id and a
// Cortex-assigned timestamp shared by every stream type.
type StreamEnvelope struct {
	Key     StreamKey
	Payload json.RawMessage
	SID     string
	Time    float64
}

// eventProbe peels off the envelope fields common to every stream
// frame; the stream payload itself is found by matching the frame's
// fields against the known keys.
type eventProbe struct {
	SID  string  `json:"sid"`
	Time float64 `json:"time"`
}

// DecodeStreamEnvelope identifies which stream key raw carries and
// extracts its payload plus the shared sid/time fields. raw must
// already be known (via Classify) to be a KindEvent frame.
func DecodeStreamEnvelope(raw []byte) (StreamEnvelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return StreamEnvelope{}, err
	}

	var probe eventProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return StreamEnvelope{}, err
	}

	for _, key := range KnownStreamKeys {
		if payload, ok := fields[string(key)]; ok {
			return StreamEnvelope{Key: key, Payload: payload, SID: probe.SID, Time: probe.Time}, nil
		}
	}
	return StreamEnvelope{}, errUnknownStreamKey
}

var errUnknownStreamKey = errors.New("stream event carries no known stream key")
