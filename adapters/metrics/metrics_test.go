package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/slavayosome/seriously-ai-sub000/adapters/metrics"
)

func gatherCount(t *testing.T, reg *prometheus.Registry, name string) int {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	for _, f := range families {
		if f.GetName() == name {
			return len(f.GetMetric())
		}
	}
	return -1
}

func TestNew(t *testing.T) {
	// Use a new registry to avoid conflicts with other tests
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}

	if m.DecisionsTotal == nil {
		t.Error("DecisionsTotal is nil")
	}
	if m.RequestDuration == nil {
		t.Error("RequestDuration is nil")
	}
	if m.CreditChecks == nil {
		t.Error("CreditChecks is nil")
	}
	if m.PlanChecks == nil {
		t.Error("PlanChecks is nil")
	}
	if m.ErrorsTotal == nil {
		t.Error("ErrorsTotal is nil")
	}
	if m.ConfigReloads == nil {
		t.Error("ConfigReloads is nil")
	}
	if m.ConfigReloadErrors == nil {
		t.Error("ConfigReloadErrors is nil")
	}
}

func TestRecordCreditCheck(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.RecordCreditCheck(true)
	m.RecordCreditCheck(true)
	m.RecordCreditCheck(false)

	if got := gatherCount(t, reg, "seriouslyai_guard_credit_checks_total"); got != 2 {
		t.Errorf("expected 2 outcome series (allowed, denied), got %d", got)
	}
}

func TestRecordPlanCheck(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.RecordPlanCheck(false)

	if got := gatherCount(t, reg, "seriouslyai_guard_plan_checks_total"); got != 1 {
		t.Errorf("expected 1 outcome series, got %d", got)
	}
}

func TestRecordFault(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.RecordFault("database_connection", "high")
	m.RecordFault("timeout_error", "medium")

	if got := gatherCount(t, reg, "seriouslyai_guard_errors_total"); got != 2 {
		t.Errorf("expected 2 category series, got %d", got)
	}
}

// countingRecorder tallies forwarded cache events.
type countingRecorder struct {
	hits, misses int
}

func (r *countingRecorder) RecordCacheHit(string)  { r.hits++ }
func (r *countingRecorder) RecordCacheMiss(string) { r.misses++ }

func TestCacheRecorder_FansOut(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	next := &countingRecorder{}
	rec := metrics.NewCacheRecorder(m, next)

	rec.RecordCacheHit("route_classification")
	rec.RecordCacheMiss("route_classification")
	rec.RecordCacheMiss("credit_wallet")

	if got := gatherCount(t, reg, "seriouslyai_guard_cache_ops_total"); got != 3 {
		t.Errorf("expected 3 cache/result series, got %d", got)
	}
	if next.hits != 1 || next.misses != 2 {
		t.Errorf("forwarded hits/misses = %d/%d, want 1/2", next.hits, next.misses)
	}
}

func TestCacheRecorder_NilNext(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	rec := metrics.NewCacheRecorder(m, nil)

	// Must not panic without a secondary recorder.
	rec.RecordCacheHit("route_classification")
	rec.RecordCacheMiss("route_classification")
}
