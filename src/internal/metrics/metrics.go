package metrics

import (
	"context"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/casapps/tasktracker/src/internal/repositories"
)

// maxSamples bounds the values kept per histogram
const maxSamples = 1000

// Metrics holds in-process counters, gauges and histograms
type Metrics struct {
	mu         sync.RWMutex
	db         *gorm.DB
	startTime  time.Time
	counters   map[string]int64
	gauges     map[string]float64
	histograms map[string]*Histogram
}

// Histogram keeps a bounded window of samples plus running totals
type Histogram struct {
	values []float64
	sum    float64
	count  int64
}

// MetricsSnapshot represents a point-in-time view of metrics
type MetricsSnapshot struct {
	Timestamp  time.Time                 `json:"timestamp"`
	Uptime     string                    `json:"uptime"`
	UptimeSecs float64                   `json:"uptime_seconds"`
	Version    string                    `json:"version"`
	GoVersion  string                    `json:"go_version"`
	Counters   map[string]int64          `json:"counters"`
	Gauges     map[string]float64        `json:"gauges"`
	Histograms map[string]HistogramStats `json:"histograms"`
	System     SystemMetrics             `json:"system"`
	Database   DatabaseMetrics           `json:"database"`
}

// HistogramStats represents histogram statistics
type HistogramStats struct {
	Count   int64   `json:"count"`
	Sum     float64 `json:"sum"`
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	P50     float64 `json:"p50"`
	P95     float64 `json:"p95"`
	P99     float64 `json:"p99"`
}

// SystemMetrics represents runtime metrics
type SystemMetrics struct {
	GoRoutines  int    `json:"goroutines"`
	MemoryUsed  uint64 `json:"memory_used"`
	HeapObjects uint64 `json:"heap_objects"`
	NumGC       uint32 `json:"num_gc"`
}

// DatabaseMetrics holds row counts per table
type DatabaseMetrics struct {
	Users    int64 `json:"users"`
	Tasks    int64 `json:"tasks"`
	Comments int64 `json:"comments"`
	Tags     int64 `json:"tags"`
	TaskTags int64 `json:"task_tags"`
}

// NewMetrics creates a new metrics instance. db may be nil, in which case
// snapshots carry zero row counts.
func NewMetrics(db *gorm.DB) *Metrics {
	return &Metrics{
		db:         db,
		startTime:  time.Now(),
		counters:   make(map[string]int64),
		gauges:     make(map[string]float64),
		histograms: make(map[string]*Histogram),
	}
}

// IncrementCounter increments a counter metric
func (m *Metrics) IncrementCounter(name string) {
	m.IncrementCounterBy(name, 1)
}

// IncrementCounterBy increments a counter metric by a specific value
func (m *Metrics) IncrementCounterBy(name string, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += value
}

// Counter returns the current value of a counter
func (m *Metrics) Counter(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[name]
}

// SetGauge sets a gauge metric value
func (m *Metrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

// RecordHistogram records a value in a histogram
func (m *Metrics) RecordHistogram(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hist, exists := m.histograms[name]
	if !exists {
		hist = &Histogram{values: make([]float64, 0, 64)}
		m.histograms[name] = hist
	}

	hist.values = append(hist.values, value)
	hist.sum += value
	hist.count++

	if len(hist.values) > maxSamples {
		hist.values = hist.values[len(hist.values)-maxSamples:]
	}
}

// RequestMetrics tracks one HTTP request against its route pattern
func (m *Metrics) RequestMetrics(method, route string, statusCode int, duration time.Duration) {
	class := strconv.Itoa(statusCode/100) + "xx"

	m.IncrementCounter("http.requests.total")
	m.IncrementCounter("http.requests." + method)
	m.IncrementCounter("http.requests.status." + class)
	m.IncrementCounter("http.route." + method + "." + route + "." + strconv.Itoa(statusCode))

	m.RecordHistogram("http.request.duration", duration.Seconds())
	m.RecordHistogram("http.route.duration."+method+"."+route, duration.Seconds())
}

// GetSnapshot returns a snapshot of current metrics including table row counts
func (m *Metrics) GetSnapshot(ctx context.Context, version string) MetricsSnapshot {
	m.recordPoolStats()

	m.mu.RLock()
	counters := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}
	gauges := make(map[string]float64, len(m.gauges))
	for k, v := range m.gauges {
		gauges[k] = v
	}
	histograms := make(map[string]HistogramStats, len(m.histograms))
	for name, hist := range m.histograms {
		histograms[name] = hist.getStats()
	}
	m.mu.RUnlock()

	uptime := time.Since(m.startTime)
	return MetricsSnapshot{
		Timestamp:  time.Now().UTC(),
		Uptime:     uptime.String(),
		UptimeSecs: uptime.Seconds(),
		Version:    version,
		GoVersion:  runtime.Version(),
		Counters:   counters,
		Gauges:     gauges,
		Histograms: histograms,
		System:     systemMetrics(),
		Database:   m.databaseMetrics(ctx),
	}
}

func (h *Histogram) getStats() HistogramStats {
	if h.count == 0 {
		return HistogramStats{}
	}

	stats := HistogramStats{
		Count:   h.count,
		Sum:     h.sum,
		Average: h.sum / float64(h.count),
	}

	if len(h.values) > 0 {
		sorted := make([]float64, len(h.values))
		copy(sorted, h.values)
		sort.Float64s(sorted)

		stats.Min = sorted[0]
		stats.Max = sorted[len(sorted)-1]
		stats.P50 = percentile(sorted, 0.5)
		stats.P95 = percentile(sorted, 0.95)
		stats.P99 = percentile(sorted, 0.99)
	}

	return stats
}

// percentile interpolates the p-th percentile of a sorted slice
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

func systemMetrics() SystemMetrics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return SystemMetrics{
		GoRoutines:  runtime.NumGoroutine(),
		MemoryUsed:  mem.Alloc,
		HeapObjects: mem.HeapObjects,
		NumGC:       mem.NumGC,
	}
}

// recordPoolStats publishes the connection pool state as gauges
func (m *Metrics) recordPoolStats() {
	if m.db == nil {
		return
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return
	}

	stats := sqlDB.Stats()
	m.SetGauge("db.connections.max_open", float64(stats.MaxOpenConnections))
	m.SetGauge("db.connections.open", float64(stats.OpenConnections))
	m.SetGauge("db.connections.in_use", float64(stats.InUse))
	m.SetGauge("db.connections.idle", float64(stats.Idle))
	m.SetGauge("db.connections.wait_count", float64(stats.WaitCount))
}

// databaseMetrics counts rows per table; a failed count is reported as zero
func (m *Metrics) databaseMetrics(ctx context.Context) DatabaseMetrics {
	var metrics DatabaseMetrics
	if m.db == nil {
		return metrics
	}

	metrics.Users, _ = repositories.NewUserRepository(m.db).Count(ctx)
	metrics.Tasks, _ = repositories.NewTaskRepository(m.db).Count(ctx)
	metrics.Comments, _ = repositories.NewCommentRepository(m.db).Count(ctx)

	tags := repositories.NewTagRepository(m.db)
	metrics.Tags, _ = tags.Count(ctx)
	metrics.TaskTags, _ = tags.CountLinks(ctx)

	return metrics
}
