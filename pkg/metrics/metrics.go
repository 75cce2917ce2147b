// Package metrics collects and exposes Prometheus metrics for the demo
// client.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface handlers use to record events. A nil-safe no-op
// implementation is available for tests.
type Recorder interface {
	RecordLogin()
	RecordLoginFailure(reason string)
	RecordLogout()
	RecordProxyRequest(route, outcome string)
	RecordProxyLatency(route string, duration time.Duration)
}

// Collector implements Recorder backed by Prometheus metrics.
type Collector struct {
	logins        prometheus.Counter
	loginFailures *prometheus.CounterVec
	logouts       prometheus.Counter
	proxyRequests *prometheus.CounterVec
	proxyLatency  *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with the given
// registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "streamme_demo_logins_total",
			Help: "Total number of successful logins.",
		}),
		loginFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "streamme_demo_login_failures_total",
			Help: "Total number of failed login attempts by reason.",
		}, []string{"reason"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "streamme_demo_logouts_total",
			Help: "Total number of logouts.",
		}),
		proxyRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "streamme_demo_proxy_requests_total",
			Help: "Total number of proxied API calls by route and outcome.",
		}, []string{"route", "outcome"}),
		proxyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "streamme_demo_proxy_latency_seconds",
			Help:    "Latency of proxied API calls in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(c.logins, c.loginFailures, c.logouts, c.proxyRequests, c.proxyLatency)
	return c
}

func (c *Collector) RecordLogin() {
	c.logins.Inc()
}

func (c *Collector) RecordLoginFailure(reason string) {
	c.loginFailures.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordLogout() {
	c.logouts.Inc()
}

func (c *Collector) RecordProxyRequest(route, outcome string) {
	c.proxyRequests.WithLabelValues(route, outcome).Inc()
}

func (c *Collector) RecordProxyLatency(route string, duration time.Duration) {
	c.proxyLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// Handler returns the HTTP handler exposing the registry's metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// NopRecorder discards all events. Useful in tests.
type NopRecorder struct{}

func (NopRecorder) RecordLogin()                             {}
func (NopRecorder) RecordLoginFailure(string)                {}
func (NopRecorder) RecordLogout()                            {}
func (NopRecorder) RecordProxyRequest(string, string)        {}
func (NopRecorder) RecordProxyLatency(string, time.Duration) {}
