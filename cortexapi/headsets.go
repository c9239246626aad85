package cortexapi

import "context"

// Headset is opaque to the core beyond the fields it needs: id, status,
// and an optional model/firmware hint used to pick the channel-count
// table in package headset.
type Headset struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Firmware string `json:"firmware,omitempty"`
}

type queryHeadsetsParams struct {
	ID string `json:"id,omitempty"`
}

// QueryHeadsets lists connected headsets, optionally filtered to one id.
func (c *Client) QueryHeadsets(ctx context.Context, id string) ([]Headset, error) {
	var res []Headset
	err := c.call(ctx, "queryHeadsets", queryHeadsetsParams{ID: id}, &res)
	return res, err
}

type controlDeviceParams struct {
	Command   string `json:"command"`
	HeadsetID string `json:"headset,omitempty"`
}

// ControlDevice issues a device-control command (e.g. "connect",
// "disconnect", "refresh") to the headset daemon.
func (c *Client) ControlDevice(ctx context.Context, command, headsetID string) error {
	return c.call(ctx, "controlDevice", controlDeviceParams{Command: command, HeadsetID: headsetID}, nil)
}
