package cortexapi

import (
	"context"
	"encoding/json"
)

// createRecordParams mirrors createRecord's documented fields; beyond
// these, record/marker payloads are opaque JSON to the core, so callers
// pass and receive json.RawMessage.
type createRecordParams struct {
	CortexToken string `json:"cortexToken"`
	SessionID   string `json:"session"`
	Title       string `json:"title"`
}

// CreateRecord starts a new record on sessionID, returning the opaque
// record object Cortex assigns.
func (c *Client) CreateRecord(ctx context.Context, token, sessionID, title string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.call(ctx, "createRecord", createRecordParams{CortexToken: token, SessionID: sessionID, Title: title}, &raw)
	return raw, err
}

type stopRecordParams struct {
	CortexToken string `json:"cortexToken"`
	SessionID   string `json:"session"`
}

// StopRecord ends the active record on sessionID.
func (c *Client) StopRecord(ctx context.Context, token, sessionID string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.call(ctx, "stopRecord", stopRecordParams{CortexToken: token, SessionID: sessionID}, &raw)
	return raw, err
}

type injectMarkerParams struct {
	CortexToken string          `json:"cortexToken"`
	SessionID   string          `json:"session"`
	Label       string          `json:"label"`
	Value       string          `json:"value"`
	Time        float64         `json:"time"`
	Extras      json.RawMessage `json:"extras,omitempty"`
}

// InjectMarker injects a timestamped marker into the active record.
func (c *Client) InjectMarker(ctx context.Context, token, sessionID, label, value string, time float64, extras json.RawMessage) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.call(ctx, "injectMarker", injectMarkerParams{
		CortexToken: token, SessionID: sessionID, Label: label, Value: value, Time: time, Extras: extras,
	}, &raw)
	return raw, err
}
