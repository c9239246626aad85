// Package metrics exposes the resilient wrapper's internal health as
// Prometheus collectors: pending-RPC count, reconnect attempts, token
// refreshes, and dropped stream samples. Registration is left to the
// caller (via Registry, or prometheus.DefaultRegisterer) so embedding
// applications control their own metrics namespace.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors groups every metric the resilient wrapper updates. Create
// one with New and pass it to cortex.Config.Metrics; a nil Collectors
// in Config disables metrics entirely.
type Collectors struct {
	PendingRequests prometheus.Gauge
	Reconnects      *prometheus.CounterVec
	TokenRefreshes  prometheus.Counter
	StreamDropped   *prometheus.CounterVec
	ConnectionState prometheus.Gauge
}

// New builds a Collectors with the given namespace (e.g. "cortex")
// applied as a metric name prefix, and registers them all with reg.
// Pass prometheus.DefaultRegisterer for the global registry, or a
// fresh prometheus.NewRegistry() for test isolation.
func New(namespace string, reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		PendingRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "pending_requests",
			Help: "Number of RPC calls awaiting a response.",
		}),
		Reconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "reconnects_total",
			Help: "Reconnect attempts, labeled by outcome.",
		}, []string{"outcome"}),
		TokenRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "token_refreshes_total",
			Help: "Proactive auth token refreshes performed.",
		}),
		StreamDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "stream_samples_dropped_total",
			Help: "Stream samples dropped due to a full subscriber channel, by stream key.",
		}, []string{"stream"}),
		ConnectionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "connection_state",
			Help: "Current connection state as an integer (see cortex.State).",
		}),
	}

	reg.MustRegister(c.PendingRequests, c.Reconnects, c.TokenRefreshes, c.StreamDropped, c.ConnectionState)
	return c
}
