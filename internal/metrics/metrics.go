// Package metrics exposes Prometheus counters for the resolution engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors. Register the set on a
// registry of your choosing; tests use a fresh one per instance.
type Metrics struct {
	LookupsTotal   *prometheus.CounterVec
	CacheHitsTotal prometheus.Counter
	ProviderErrors *prometheus.CounterVec
}

// New creates the collector set and registers it with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "whoisintel_lookups_total",
			Help: "Total number of lookups by outcome",
		}, []string{"outcome"}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "whoisintel_cache_hits_total",
			Help: "Total number of lookups served from cache",
		}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "whoisintel_provider_errors_total",
			Help: "Total number of failed provider attempts",
		}, []string{"provider"}),
	}
	reg.MustRegister(m.LookupsTotal, m.CacheHitsTotal, m.ProviderErrors)
	return m
}

// ObserveLookup records one completed lookup under its outcome label.
func (m *Metrics) ObserveLookup(outcome string) {
	m.LookupsTotal.WithLabelValues(outcome).Inc()
}

// ObserveCacheHit records a lookup served from cache.
func (m *Metrics) ObserveCacheHit() {
	m.CacheHitsTotal.Inc()
}

// ObserveProviderError records one failed provider attempt.
func (m *Metrics) ObserveProviderError(provider string) {
	m.ProviderErrors.WithLabelValues(provider).Inc()
}
