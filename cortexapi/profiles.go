package cortexapi

import (
	"context"
	"encoding/json"
)

type profileParams struct {
	CortexToken string `json:"cortexToken"`
	Profile     string `json:"profile"`
	Status      string `json:"status"`
	HeadsetID   string `json:"headset,omitempty"`
}

// QueryProfiles lists the training profiles stored against token's
// account. The result shape is opaque beyond being a JSON array.
func (c *Client) QueryProfiles(ctx context.Context, token string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.call(ctx, "queryProfile", struct {
		CortexToken string `json:"cortexToken"`
	}{CortexToken: token}, &raw)
	return raw, err
}

// SetupProfile creates, loads, unloads, saves, renames, or deletes a
// profile depending on status ("create", "load", "unload", "save",
// "rename", "delete" are Cortex's documented values); the core does
// not validate status, it passes it through.
func (c *Client) SetupProfile(ctx context.Context, token, profile, status, headsetID string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.call(ctx, "setupProfile", profileParams{
		CortexToken: token, Profile: profile, Status: status, HeadsetID: headsetID,
	}, &raw)
	return raw, err
}
