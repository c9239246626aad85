package cortexapi

import (
	"context"
	"encoding/json"
)

type createSubjectParams struct {
	CortexToken string          `json:"cortexToken"`
	Subject     string          `json:"subjectName"`
	Attributes  json.RawMessage `json:"attributes,omitempty"`
}

// CreateSubject registers a subject name for use in future records.
// Subject metadata shapes are opaque to the core.
func (c *Client) CreateSubject(ctx context.Context, token, subject string, attributes json.RawMessage) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.call(ctx, "createSubject", createSubjectParams{
		CortexToken: token, Subject: subject, Attributes: attributes,
	}, &raw)
	return raw, err
}

type querySubjectsParams struct {
	CortexToken string `json:"cortexToken"`
}

// QuerySubjects lists subjects registered against token's account.
func (c *Client) QuerySubjects(ctx context.Context, token string) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.call(ctx, "querySubjects", querySubjectsParams{CortexToken: token}, &raw)
	return raw, err
}
