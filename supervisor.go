package cortex

import (
	"context"
	"time"
)

// healthLoop is the health-probe supervisor task: on each tick it calls
// getCortexInfo on the current client. Failures increment a consecutive
// counter; success resets it. At MaxConsecutiveFailures it triggers a
// reconnect directly rather than through a separate unhealthy signal,
// since reconnect is already idempotent/coalesced.
func (c *Client) healthLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.Health.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.healthCtx.Done():
			return
		case <-ticker.C:
			c.probeOnce()
		}
	}
}

func (c *Client) probeOnce() {
	low, _, _ := c.state.snapshot()
	if low == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Health.Interval)
	defer cancel()

	_, err := low.GetCortexInfo(ctx)

	c.state.mu.Lock()
	if err != nil {
		c.state.consecutiveHealthFailures++
	} else {
		c.state.consecutiveHealthFailures = 0
	}
	unhealthy := c.state.consecutiveHealthFailures >= c.cfg.Health.MaxConsecutiveFailures
	c.state.mu.Unlock()

	if !unhealthy || !c.cfg.Reconnect.Enabled {
		return
	}
	if c.metrics != nil {
		c.metrics.ConnectionState.Set(float64(StateReconnecting))
	}

	// Health-triggered reconnect runs in the background: the probe
	// loop must not block on a full reconnect cycle before its next
	// tick, and concurrent exec()-triggered reconnects coalesce with
	// this one via the same singleflight group.
	go func() {
		_ = c.reconnect(context.Background())
	}()
}
