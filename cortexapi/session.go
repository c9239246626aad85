package cortexapi

import "context"

// SessionStatus is the status value Cortex's session RPCs accept.
type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionClosed SessionStatus = "closed"
)

type createSessionParams struct {
	CortexToken string        `json:"cortexToken"`
	HeadsetID   string        `json:"headset"`
	Status      SessionStatus `json:"status"`
}

type sessionResult struct {
	ID string `json:"id"`
}

// CreateSession opens a session against headsetID and returns its id.
func (c *Client) CreateSession(ctx context.Context, token, headsetID string) (string, error) {
	var res sessionResult
	err := c.call(ctx, "createSession", createSessionParams{
		CortexToken: token, HeadsetID: headsetID, Status: SessionActive,
	}, &res)
	if err != nil {
		return "", err
	}
	return res.ID, nil
}

type updateSessionParams struct {
	CortexToken string        `json:"cortexToken"`
	SessionID   string        `json:"session"`
	Status      SessionStatus `json:"status"`
}

// UpdateSession transitions sessionID to status (e.g. re-activating a
// paused session).
func (c *Client) UpdateSession(ctx context.Context, token, sessionID string, status SessionStatus) error {
	return c.call(ctx, "updateSession", updateSessionParams{
		CortexToken: token, SessionID: sessionID, Status: status,
	}, nil)
}

// CloseSession ends sessionID.
func (c *Client) CloseSession(ctx context.Context, token, sessionID string) error {
	return c.call(ctx, "updateSession", updateSessionParams{
		CortexToken: token, SessionID: sessionID, Status: SessionClosed,
	}, nil)
}
