// Package metrics collects and exposes Prometheus metrics for the login flow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes.
const (
	OutcomeSuccess          = "success"
	OutcomeMalformedProfile = "malformed_profile"
	OutcomeTokenSigning     = "token_signing"
	OutcomeStorage          = "storage"
	OutcomeProvider         = "provider"
)

// Collector is the Prometheus implementation of the login recorder.
type Collector struct {
	logins       *prometheus.CounterVec
	tokensIssued prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saju_auth_logins_total",
			Help: "Social login attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "saju_auth_tokens_issued_total",
			Help: "Bearer tokens issued after a successful login.",
		}),
	}
	reg.MustRegister(c.logins, c.tokensIssued)
	return c
}

// RecordLogin counts one login attempt.
func (c *Collector) RecordLogin(provider, outcome string) {
	c.logins.WithLabelValues(provider, outcome).Inc()
}

// RecordTokenIssued counts one issued token.
func (c *Collector) RecordTokenIssued() {
	c.tokensIssued.Inc()
}

// NewRegistry returns a registry with the Go runtime and process collectors attached.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the metrics gathered by reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordLogin(string, string) {}
func (Nop) RecordTokenIssued()         {}
