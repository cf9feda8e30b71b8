package monitoring

import (
	"math"
	"runtime"
	"sync"
	"time"
)

// Health limits for a single editor process
const (
	maxMemoryBytes = 500 * 1024 * 1024
	maxGoroutines  = 1000
)

// Metrics is a point-in-time copy of the editor counters
type Metrics struct {
	StartTime time.Time

	// Runtime
	MemoryUsage    int64
	HeapSize       int64
	GoroutineCount int
	GCCount        uint32

	// Operation counters
	HTTPRequests         int64
	WebSocketConnections int64
	DeckChanges          int64
	Exports              int64
	Imports              int64
	FailedImports        int64

	AverageExportTime time.Duration
	LastChange        time.Time
}

// Monitor counts what the editor server does and reports process health
type Monitor struct {
	mu      sync.RWMutex
	metrics Metrics
	now     func() time.Time
}

// NewMonitor creates a monitor whose uptime starts now
func NewMonitor() *Monitor {
	return &Monitor{
		metrics: Metrics{StartTime: time.Now()},
		now:     time.Now,
	}
}

// RecordHTTPRequest counts one served request
func (m *Monitor) RecordHTTPRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.HTTPRequests++
}

// RecordWebSocketConnection counts one accepted live-update client
func (m *Monitor) RecordWebSocketConnection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.WebSocketConnections++
}

// RecordDeckChange counts one store notification
func (m *Monitor) RecordDeckChange() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.DeckChanges++
	m.metrics.LastChange = m.now()
}

// RecordExport counts one exported document and folds its duration into an
// exponential moving average
func (m *Monitor) RecordExport(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.Exports++
	if m.metrics.AverageExportTime == 0 {
		m.metrics.AverageExportTime = duration
		return
	}
	const alpha = 0.1
	m.metrics.AverageExportTime = time.Duration(
		float64(m.metrics.AverageExportTime)*(1-alpha) + float64(duration)*alpha,
	)
}

// RecordImport counts one import attempt
func (m *Monitor) RecordImport(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.Imports++
	if err != nil {
		m.metrics.FailedImports++
	}
}

// Snapshot samples the runtime and returns a copy of the counters
func (m *Monitor) Snapshot() Metrics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.metrics
	out.MemoryUsage = safeUint64ToInt64(mem.Alloc)
	out.HeapSize = safeUint64ToInt64(mem.HeapAlloc)
	out.GCCount = mem.NumGC
	out.GoroutineCount = runtime.NumGoroutine()
	return out
}

// Uptime returns how long the monitor has been running
func (m *Monitor) Uptime() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now().Sub(m.metrics.StartTime)
}

// IsHealthy reports whether memory and goroutine usage are within limits
func (m Metrics) IsHealthy() bool {
	return m.MemoryUsage < maxMemoryBytes && m.GoroutineCount < maxGoroutines
}

// HealthStatus returns the health report served by the editor
func (m *Monitor) HealthStatus() map[string]interface{} {
	metrics := m.Snapshot()

	status := map[string]interface{}{
		"healthy":    metrics.IsHealthy(),
		"uptime":     m.Uptime().Round(time.Second).String(),
		"memory_mb":  metrics.MemoryUsage / (1024 * 1024),
		"heap_mb":    metrics.HeapSize / (1024 * 1024),
		"goroutines": metrics.GoroutineCount,
		"gc_cycles":  metrics.GCCount,
		"operations": map[string]interface{}{
			"http_requests":         metrics.HTTPRequests,
			"websocket_connections": metrics.WebSocketConnections,
			"deck_changes":          metrics.DeckChanges,
			"exports":               metrics.Exports,
			"imports":               metrics.Imports,
			"failed_imports":        metrics.FailedImports,
		},
		"performance": map[string]interface{}{
			"avg_export_time_ms": metrics.AverageExportTime.Milliseconds(),
		},
	}
	if !metrics.LastChange.IsZero() {
		status["last_change"] = metrics.LastChange.UTC().Format(time.RFC3339)
	}
	return status
}

// safeUint64ToInt64 converts val, capping at the max int64 value
func safeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(val)
}
