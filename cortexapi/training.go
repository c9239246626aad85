package cortexapi

import (
	"context"
	"encoding/json"
)

type trainingParams struct {
	CortexToken string `json:"cortexToken"`
	SessionID   string `json:"session"`
	Detection   string `json:"detection"`
	Action      string `json:"action"`
	Status      string `json:"status"`
}

// Training drives the mental-command / facial-expression training
// state machine: action names a trained label, status is one of
// Cortex's documented training verbs ("start", "accept", "reject",
// "reset", "erase"). The result shape is opaque to the core.
func (c *Client) Training(ctx context.Context, token, sessionID, detection, action, status string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.call(ctx, "training", trainingParams{
		CortexToken: token, SessionID: sessionID, Detection: detection, Action: action, Status: status,
	}, &raw)
	return raw, err
}
