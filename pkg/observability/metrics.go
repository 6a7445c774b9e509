// Package observability exposes the Prometheus collectors shared across the
// engine and the HTTP layer. Counters are registered on the default registry
// and served by promhttp on /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts resilient-call cache hits per operation.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripflow_engine_cache_hits_total",
		Help: "Resilient call results served from the result cache.",
	}, []string{"operation"})

	// CacheMisses counts resilient-call cache misses per operation.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripflow_engine_cache_misses_total",
		Help: "Resilient call lookups that had to invoke the operation.",
	}, []string{"operation"})

	// RetryAttempts counts every attempt made inside the retry loop,
	// including the first one.
	RetryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripflow_engine_retry_attempts_total",
		Help: "Attempts performed by the retry loop, per operation.",
	}, []string{"operation"})

	// ExternalFailures counts classified failures surfaced by external calls.
	ExternalFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripflow_external_failures_total",
		Help: "Failures from external travel APIs by failure class.",
	}, []string{"operation", "class"})

	// BreakerTransitions counts circuit breaker state changes per upstream.
	BreakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripflow_breaker_transitions_total",
		Help: "Circuit breaker state transitions per external API.",
	}, []string{"name", "to"})
)
