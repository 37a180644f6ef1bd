// Package metrics collects Prometheus metrics for gateway calls, session
// transitions and route guard decisions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "swiftchat_web"

// Recorder is what the gateway, session and server packages record into
type Recorder interface {
	RecordGatewayCall(operation, outcome string, duration time.Duration)
	RecordSessionTransition(from, to string)
	RecordGuardDecision(decision string)
	RecordRateLimited(route string)
	SetActiveSessions(n int)
}

// Collector is the Prometheus implementation of Recorder
type Collector struct {
	gatewayCalls   *prometheus.CounterVec
	gatewayLatency *prometheus.HistogramVec
	transitions    *prometheus.CounterVec
	guardDecisions *prometheus.CounterVec
	rateLimited    *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers it with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_calls_total",
			Help:      "Backend API calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_call_duration_seconds",
			Help:      "Backend API call latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_transitions_total",
			Help:      "Session state transitions",
		}, []string{"from", "to"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_decisions_total",
			Help:      "Route guard decisions",
		}, []string{"decision"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}, []string{"route"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Browser contexts with a live session controller",
		}),
	}

	reg.MustRegister(
		c.gatewayCalls,
		c.gatewayLatency,
		c.transitions,
		c.guardDecisions,
		c.rateLimited,
		c.activeSessions,
	)
	return c
}

func (c *Collector) RecordGatewayCall(operation, outcome string, duration time.Duration) {
	c.gatewayCalls.WithLabelValues(operation, outcome).Inc()
	c.gatewayLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

func (c *Collector) RecordSessionTransition(from, to string) {
	c.transitions.WithLabelValues(from, to).Inc()
}

func (c *Collector) RecordGuardDecision(decision string) {
	c.guardDecisions.WithLabelValues(decision).Inc()
}

func (c *Collector) RecordRateLimited(route string) {
	c.rateLimited.WithLabelValues(route).Inc()
}

func (c *Collector) SetActiveSessions(n int) {
	c.activeSessions.Set(float64(n))
}

// Handler returns the scrape handler for gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop discards everything; used when metrics are not wired
type Noop struct{}

var _ Recorder = Noop{}

func (Noop) RecordGatewayCall(string, string, time.Duration) {}
func (Noop) RecordSessionTransition(string, string)          {}
func (Noop) RecordGuardDecision(string)                      {}
func (Noop) RecordRateLimited(string)                        {}
func (Noop) SetActiveSessions(int)                           {}
