package cortexapi

import "context"

// CortexInfo is the result of getCortexInfo: a liveness probe that also
// reports the running Cortex service's version.
type CortexInfo struct {
	Version string `json:"version"`
}

// GetCortexInfo checks that Cortex is reachable and returns its version.
// It takes no params and requires no prior authentication; the health
// probe in package cortex uses it as its liveness check.
func (c *Client) GetCortexInfo(ctx context.Context) (CortexInfo, error) {
	var info CortexInfo
	if err := c.call(ctx, "getCortexInfo", nil, &info); err != nil {
		return CortexInfo{}, err
	}
	return info, nil
}

type requestAccessParams struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// AccessRequest is the result of requestAccess.
type AccessRequest struct {
	AccessGranted bool   `json:"accessGranted"`
	Message       string `json:"message"`
}

// RequestAccess asks Cortex whether the application has been approved
// in the vendor launcher. A false AccessGranted means the user must
// approve the app before authorize will succeed; package cortex
// surfaces that as an AuthError.
func (c *Client) RequestAccess(ctx context.Context, clientID, clientSecret string) (AccessRequest, error) {
	var res AccessRequest
	err := c.call(ctx, "requestAccess", requestAccessParams{ClientID: clientID, ClientSecret: clientSecret}, &res)
	return res, err
}

type authorizeParams struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	License      string `json:"license,omitempty"`
	Debit        int    `json:"debit,omitempty"`
}

type authorizeResult struct {
	CortexToken string `json:"cortexToken"`
}

// Authorize completes the handshake and returns a fresh Cortex auth
// token. license and debit are optional; pass "" and 0 to omit them.
func (c *Client) Authorize(ctx context.Context, clientID, clientSecret, license string, debit int) (string, error) {
	var res authorizeResult
	err := c.call(ctx, "authorize", authorizeParams{
		ClientID: clientID, ClientSecret: clientSecret, License: license, Debit: debit,
	}, &res)
	if err != nil {
		return "", err
	}
	return res.CortexToken, nil
}

type generateNewTokenParams struct {
	CortexToken string `json:"cortexToken"`
}

type generateNewTokenResult struct {
	CortexToken string `json:"cortexToken"`
}

// GenerateNewToken extends the session lifetime of an existing token,
// returning a replacement. The resilient wrapper calls this on its
// proactive token-refresh schedule instead of re-running the full
// handshake.
func (c *Client) GenerateNewToken(ctx context.Context, token string) (string, error) {
	var res generateNewTokenResult
	err := c.call(ctx, "generateNewToken", generateNewTokenParams{CortexToken: token}, &res)
	if err != nil {
		return "", err
	}
	return res.CortexToken, nil
}
