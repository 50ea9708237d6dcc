// Package metrics exposes prometheus collectors for a session service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pushchain/push-wallet-connect/walletClient/types"
)

const namespace = "pwallet"

// Outcomes recorded for dispatches.
const (
	OutcomeComplete = "complete"
	OutcomeFailed   = "failed"
	OutcomeStale    = "stale"
)

// Disconnect reasons.
const (
	ReasonExplicit  = "explicit"
	ReasonTimeout   = "timeout"
	ReasonTransport = "transport"
	ReasonStorage   = "storage"
)

// Metrics holds the collectors of one service on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	dispatches  *prometheus.CounterVec
	rederives   *prometheus.CounterVec
	status      prometheus.Gauge
	disconnects *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Wallet method dispatches by method and outcome.",
		}, []string{"method", "outcome"}),
		rederives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_rederive_total",
			Help:      "State re-derivations triggered by foreign storage writes.",
		}, []string{"namespace"}),
		status: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_status",
			Help:      "Session status: 0 disconnected, 1 pending, 2 connected.",
		}),
		disconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disconnect_total",
			Help:      "Session disconnects by reason.",
		}, []string{"reason"}),
	}
	m.registry.MustRegister(
		m.dispatches,
		m.rederives,
		m.status,
		m.disconnects,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Dispatch(method, outcome string) {
	m.dispatches.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) Rederive(namespace string) {
	m.rederives.WithLabelValues(namespace).Inc()
}

func (m *Metrics) Disconnect(reason string) {
	m.disconnects.WithLabelValues(reason).Inc()
}

func (m *Metrics) Status(s types.Status) {
	switch s {
	case types.StatusConnected:
		m.status.Set(2)
	case types.StatusPending:
		m.status.Set(1)
	default:
		m.status.Set(0)
	}
}
