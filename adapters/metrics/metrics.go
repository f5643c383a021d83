// Package metrics provides Prometheus metrics collection for the guard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/slavayosome/seriously-ai-sub000/ports"
)

// Collector holds all Prometheus metrics for the request guard.
type Collector struct {
	// Gate metrics
	DecisionsTotal  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActiveRequests  prometheus.Gauge

	// Redirect metrics
	RedirectsTotal *prometheus.CounterVec

	// Credit metrics
	CreditChecks *prometheus.CounterVec

	// Plan metrics
	PlanChecks *prometheus.CounterVec

	// Cache metrics
	CacheOps *prometheus.CounterVec

	// Error metrics
	ErrorsTotal *prometheus.CounterVec

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
}

// New creates a new metrics collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global registry conflicts.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		DecisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "seriouslyai",
				Subsystem: "guard",
				Name:      "decisions_total",
				Help:      "Gate decisions by protection level and outcome",
			},
			[]string{"level", "outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "seriouslyai",
				Subsystem: "guard",
				Name:      "request_duration_seconds",
				Help:      "Guard evaluation duration in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"level"},
		),
		ActiveRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "seriouslyai",
				Subsystem: "guard",
				Name:      "active_requests",
				Help:      "Requests currently being evaluated",
			},
		),
		RedirectsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "seriouslyai",
				Subsystem: "guard",
				Name:      "redirects_total",
				Help:      "Protective redirects by reason",
			},
			[]string{"reason"},
		),
		CreditChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "seriouslyai",
				Subsystem: "guard",
				Name:      "credit_checks_total",
				Help:      "Credit ledger checks by outcome",
			},
			[]string{"outcome"},
		),
		PlanChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "seriouslyai",
				Subsystem: "guard",
				Name:      "plan_checks_total",
				Help:      "Plan entitlement checks by outcome",
			},
			[]string{"outcome"},
		),
		CacheOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "seriouslyai",
				Subsystem: "guard",
				Name:      "cache_ops_total",
				Help:      "Cache operations by cache name and result",
			},
			[]string{"cache", "result"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "seriouslyai",
				Subsystem: "guard",
				Name:      "errors_total",
				Help:      "Categorized failures by category and severity",
			},
			[]string{"category", "severity"},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "seriouslyai",
				Subsystem: "guard",
				Name:      "config_reloads_total",
				Help:      "Successful configuration reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "seriouslyai",
				Subsystem: "guard",
				Name:      "config_reload_errors_total",
				Help:      "Failed configuration reloads",
			},
		),
	}
}

// RecordCreditCheck counts one credit ledger check by outcome.
func (c *Collector) RecordCreditCheck(allowed bool) {
	c.CreditChecks.WithLabelValues(outcomeLabel(allowed)).Inc()
}

// RecordPlanCheck counts one plan entitlement check by outcome.
func (c *Collector) RecordPlanCheck(allowed bool) {
	c.PlanChecks.WithLabelValues(outcomeLabel(allowed)).Inc()
}

// RecordFault counts one categorized failure.
func (c *Collector) RecordFault(category, severity string) {
	c.ErrorsTotal.WithLabelValues(category, severity).Inc()
}

func outcomeLabel(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}

// Ensure interface compliance.
var _ ports.OutcomeRecorder = (*Collector)(nil)

// CacheRecorder bridges cache hit/miss events into Prometheus, fanning out
// to an optional secondary recorder (the in-process monitor).
type CacheRecorder struct {
	collector *Collector
	next      interface {
		RecordCacheHit(cache string)
		RecordCacheMiss(cache string)
	}
}

// NewCacheRecorder creates a recorder that feeds the collector and,
// if next is non-nil, forwards every event to it.
func NewCacheRecorder(c *Collector, next interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}) *CacheRecorder {
	return &CacheRecorder{collector: c, next: next}
}

// RecordCacheHit counts a hit.
func (r *CacheRecorder) RecordCacheHit(cache string) {
	r.collector.CacheOps.WithLabelValues(cache, "hit").Inc()
	if r.next != nil {
		r.next.RecordCacheHit(cache)
	}
}

// RecordCacheMiss counts a miss.
func (r *CacheRecorder) RecordCacheMiss(cache string) {
	r.collector.CacheOps.WithLabelValues(cache, "miss").Inc()
	if r.next != nil {
		r.next.RecordCacheMiss(cache)
	}
}
