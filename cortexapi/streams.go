package cortexapi

import "context"

type subscribeParams struct {
	CortexToken string   `json:"cortexToken"`
	SessionID   string   `json:"session"`
	Streams     []string `json:"streams"`
}

// StreamResult reports per-stream subscribe/unsubscribe outcomes.
// Cortex allows partial success (some streams fail, e.g. a stream the
// license doesn't cover); this is surfaced as data, not an error.
type StreamResult struct {
	Success []StreamOutcome `json:"success"`
	Failure []StreamOutcome `json:"failure"`
}

// StreamOutcome names one stream and, for failures, why it failed.
type StreamOutcome struct {
	StreamName string `json:"streamName"`
	Message    string `json:"message,omitempty"`
	Code       int64  `json:"code,omitempty"`
}

// Subscribe requests the named streams for sessionID.
func (c *Client) Subscribe(ctx context.Context, token, sessionID string, streams []string) (StreamResult, error) {
	var res StreamResult
	err := c.call(ctx, "subscribe", subscribeParams{
		CortexToken: token, SessionID: sessionID, Streams: streams,
	}, &res)
	return res, err
}

// Unsubscribe stops the named streams for sessionID.
func (c *Client) Unsubscribe(ctx context.Context, token, sessionID string, streams []string) (StreamResult, error) {
	var res StreamResult
	err := c.call(ctx, "unsubscribe", subscribeParams{
		CortexToken: token, SessionID: sessionID, Streams: streams,
	}, &res)
	return res, err
}
