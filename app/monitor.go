package app

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/slavayosome/seriously-ai-sub000/ports"
)

// MetricType names one series of recorded measurements.
type MetricType string

const (
	MetricRequestDuration MetricType = "request_duration"
	MetricAuthCheck       MetricType = "auth_check"
	MetricCreditCheck     MetricType = "credit_check"
	MetricPlanCheck       MetricType = "plan_check"
	MetricRouteMatch      MetricType = "route_match"
	MetricErrorCount      MetricType = "error_count"
)

// checkpointMetrics maps checkpoint names to their metric series.
// Checkpoints outside this table are recorded on the request context but
// emit no series.
var checkpointMetrics = map[string]MetricType{
	"auth_check":   MetricAuthCheck,
	"credit_check": MetricCreditCheck,
	"plan_check":   MetricPlanCheck,
	"route_match":  MetricRouteMatch,
}

// Metric is one recorded measurement (value type).
type Metric struct {
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// RequestContext tracks one in-flight request, alive from StartRequest to
// CompleteRequest.
type RequestContext struct {
	ID          string
	Path        string
	StartTime   time.Time
	Checkpoints map[string]float64 // name -> elapsed ms since start
}

// Thresholds configure alert evaluation.
type Thresholds struct {
	SlowRequestMs     float64 // Per-request WARNING threshold
	CriticalRequestMs float64 // Per-request CRITICAL threshold
	MaxErrorRate      float64 // Aggregate CRITICAL above this (fraction)
	MinCacheHitRate   float64 // Aggregate WARNING below this (fraction)
	MemoryCeilingMB   float64 // Aggregate WARNING above this
}

// DefaultThresholds returns the built-in alert thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SlowRequestMs:     1000,
		CriticalRequestMs: 3000,
		MaxErrorRate:      0.05,
		MinCacheHitRate:   0.70,
		MemoryCeilingMB:   512,
	}
}

// Stats is an aggregate view over all recorded metrics. Every figure is
// zero when nothing has been recorded, never NaN.
type Stats struct {
	TotalRequests int64   `json:"totalRequests"`
	AvgDurationMs float64 `json:"avgDurationMs"`
	P95DurationMs float64 `json:"p95DurationMs"`
	ErrorRate     float64 `json:"errorRate"`
	CacheHitRate  float64 `json:"cacheHitRate"`
	MemoryMB      float64 `json:"memoryMb"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

// Alert is one threshold violation.
type Alert struct {
	Level   string `json:"level"` // "warning" or "critical"
	Message string `json:"message"`
}

// SystemInfo describes the running process for the monitoring snapshot.
type SystemInfo struct {
	GoVersion  string `json:"goVersion"`
	Goroutines int    `json:"goroutines"`
	PID        int    `json:"pid"`
}

// Snapshot is the exported monitoring document.
type Snapshot struct {
	Timestamp      time.Time  `json:"timestamp"`
	Stats          Stats      `json:"stats"`
	ActiveRequests int        `json:"activeRequests"`
	Alerts         []Alert    `json:"alerts"`
	SystemInfo     SystemInfo `json:"systemInfo"`
}

// metricListCap bounds each metric series; oldest entries drop first.
const metricListCap = 1000

// Monitor times request phases, aggregates statistics and evaluates alert
// thresholds. It also implements ports.CacheRecorder so caches can report
// hits and misses without depending on this package's consumers.
// Safe for concurrent use.
type Monitor struct {
	clock      ports.Clock
	logger     zerolog.Logger
	thresholds Thresholds
	proc       *process.Process

	mu          sync.Mutex
	active      map[string]*RequestContext
	metrics     map[MetricType][]Metric
	requests    int64
	errored     int64
	cacheHits   map[string]int64
	cacheMisses map[string]int64
	startedAt   time.Time
}

// NewMonitor creates a performance monitor.
func NewMonitor(thresholds Thresholds, clock ports.Clock, logger zerolog.Logger) *Monitor {
	proc, _ := process.NewProcess(int32(os.Getpid()))
	return &Monitor{
		clock:       clock,
		logger:      logger.With().Str("component", "monitor").Logger(),
		thresholds:  thresholds,
		proc:        proc,
		active:      make(map[string]*RequestContext),
		metrics:     make(map[MetricType][]Metric),
		cacheHits:   make(map[string]int64),
		cacheMisses: make(map[string]int64),
		startedAt:   clock.Now(),
	}
}

// StartRequest opens a request context.
func (m *Monitor) StartRequest(id, path string) *RequestContext {
	ctx := &RequestContext{
		ID:          id,
		Path:        path,
		StartTime:   m.clock.Now(),
		Checkpoints: make(map[string]float64),
	}
	m.mu.Lock()
	m.active[id] = ctx
	m.mu.Unlock()
	return ctx
}

// Checkpoint records the elapsed milliseconds since request start under a
// named key. Unknown request ids are ignored.
func (m *Monitor) Checkpoint(id, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctx, ok := m.active[id]
	if !ok {
		return
	}
	ctx.Checkpoints[name] = float64(m.clock.Now().Sub(ctx.StartTime).Microseconds()) / 1000
}

// CompleteRequest closes a request context, emitting one overall duration
// metric, one metric per known checkpoint and an error count on failure.
// The context is discarded afterwards.
func (m *Monitor) CompleteRequest(id, level string, success bool, errorCategory string) {
	now := m.clock.Now()

	m.mu.Lock()
	ctx, ok := m.active[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.active, id)

	durationMs := float64(now.Sub(ctx.StartTime).Microseconds()) / 1000
	m.requests++
	if !success {
		m.errored++
	}

	meta := map[string]string{"path": ctx.Path, "level": level}
	m.record(Metric{Type: MetricRequestDuration, Value: durationMs, Timestamp: now, Metadata: meta})
	for name, elapsed := range ctx.Checkpoints {
		mt, known := checkpointMetrics[name]
		if !known {
			continue
		}
		m.record(Metric{Type: mt, Value: elapsed, Timestamp: now})
	}
	if !success {
		m.record(Metric{Type: MetricErrorCount, Value: 1, Timestamp: now,
			Metadata: map[string]string{"category": errorCategory}})
	}
	m.mu.Unlock()

	switch {
	case durationMs > m.thresholds.CriticalRequestMs:
		m.logger.Error().Str("request_id", id).Str("path", ctx.Path).
			Float64("duration_ms", durationMs).Msg("CRITICAL: request exceeded critical latency threshold")
	case durationMs > m.thresholds.SlowRequestMs:
		m.logger.Warn().Str("request_id", id).Str("path", ctx.Path).
			Float64("duration_ms", durationMs).Msg("WARNING: slow request")
	}
}

// record appends to a bounded series, dropping the oldest entry when full.
// Caller holds m.mu.
func (m *Monitor) record(metric Metric) {
	list := m.metrics[metric.Type]
	if len(list) >= metricListCap {
		list = list[1:]
	}
	m.metrics[metric.Type] = append(list, metric)
}

// RecordCacheHit implements ports.CacheRecorder.
func (m *Monitor) RecordCacheHit(cache string) {
	m.mu.Lock()
	m.cacheHits[cache]++
	m.mu.Unlock()
}

// RecordCacheMiss implements ports.CacheRecorder.
func (m *Monitor) RecordCacheMiss(cache string) {
	m.mu.Lock()
	m.cacheMisses[cache]++
	m.mu.Unlock()
}

// ActiveRequests returns the number of in-flight request contexts.
func (m *Monitor) ActiveRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Stats computes the aggregate statistics.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statsLocked()
}

func (m *Monitor) statsLocked() Stats {
	stats := Stats{
		TotalRequests: m.requests,
		MemoryMB:      m.memoryMB(),
		UptimeSeconds: m.clock.Now().Sub(m.startedAt).Seconds(),
	}

	durations := m.metrics[MetricRequestDuration]
	if len(durations) > 0 {
		values := make([]float64, len(durations))
		var sum float64
		for i, d := range durations {
			values[i] = d.Value
			sum += d.Value
		}
		sort.Float64s(values)
		stats.AvgDurationMs = sum / float64(len(values))
		stats.P95DurationMs = values[int(float64(len(values))*0.95)]
	}

	if m.requests > 0 {
		stats.ErrorRate = float64(m.errored) / float64(m.requests)
	}

	var hits, misses int64
	for _, h := range m.cacheHits {
		hits += h
	}
	for _, miss := range m.cacheMisses {
		misses += miss
	}
	if hits+misses > 0 {
		stats.CacheHitRate = float64(hits) / float64(hits+misses)
	}

	return stats
}

// memoryMB returns the process resident set size, best effort.
func (m *Monitor) memoryMB() float64 {
	if m.proc != nil {
		if info, err := m.proc.MemoryInfo(); err == nil && info != nil {
			return float64(info.RSS) / (1 << 20)
		}
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return float64(ms.Alloc) / (1 << 20)
}

// Export produces the monitoring snapshot with aggregate alerts evaluated.
func (m *Monitor) Export() Snapshot {
	m.mu.Lock()
	stats := m.statsLocked()
	activeCount := len(m.active)
	hadCacheTraffic := false
	for _, h := range m.cacheHits {
		if h > 0 {
			hadCacheTraffic = true
		}
	}
	for _, miss := range m.cacheMisses {
		if miss > 0 {
			hadCacheTraffic = true
		}
	}
	m.mu.Unlock()

	var alerts []Alert
	if stats.TotalRequests > 0 && stats.ErrorRate > m.thresholds.MaxErrorRate {
		alerts = append(alerts, Alert{
			Level:   "critical",
			Message: fmt.Sprintf("High error rate: %.1f%%", stats.ErrorRate*100),
		})
	}
	if hadCacheTraffic && stats.CacheHitRate < m.thresholds.MinCacheHitRate {
		alerts = append(alerts, Alert{
			Level:   "warning",
			Message: fmt.Sprintf("Low cache hit rate: %.1f%%", stats.CacheHitRate*100),
		})
	}
	if stats.MemoryMB > m.thresholds.MemoryCeilingMB {
		alerts = append(alerts, Alert{
			Level:   "warning",
			Message: fmt.Sprintf("High memory usage: %.0f MB", stats.MemoryMB),
		})
	}

	return Snapshot{
		Timestamp:      m.clock.Now(),
		Stats:          stats,
		ActiveRequests: activeCount,
		Alerts:         alerts,
		SystemInfo: SystemInfo{
			GoVersion:  runtime.Version(),
			Goroutines: runtime.NumGoroutine(),
			PID:        os.Getpid(),
		},
	}
}

// Reset clears all recorded metrics and restarts the uptime clock.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = make(map[string]*RequestContext)
	m.metrics = make(map[MetricType][]Metric)
	m.cacheHits = make(map[string]int64)
	m.cacheMisses = make(map[string]int64)
	m.requests = 0
	m.errored = 0
	m.startedAt = m.clock.Now()
}

// Ensure interface compliance.
var _ ports.CacheRecorder = (*Monitor)(nil)
