package monitoring

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMonitor(t *testing.T) {
	m := NewMonitor()

	snap := m.Snapshot()
	assert.NotZero(t, snap.StartTime)
	assert.Zero(t, snap.HTTPRequests)
	assert.Positive(t, snap.GoroutineCount)
	assert.Positive(t, snap.MemoryUsage)
}

func TestMonitor_Counters(t *testing.T) {
	m := NewMonitor()
	changed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return changed }

	m.RecordHTTPRequest()
	m.RecordHTTPRequest()
	m.RecordWebSocketConnection()
	m.RecordDeckChange()
	m.RecordImport(nil)
	m.RecordImport(errors.New("no slides"))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.HTTPRequests)
	assert.Equal(t, int64(1), snap.WebSocketConnections)
	assert.Equal(t, int64(1), snap.DeckChanges)
	assert.Equal(t, changed, snap.LastChange)
	assert.Equal(t, int64(2), snap.Imports)
	assert.Equal(t, int64(1), snap.FailedImports)
}

func TestMonitor_RecordExport(t *testing.T) {
	m := NewMonitor()

	m.RecordExport(100 * time.Millisecond)
	assert.Equal(t, 100*time.Millisecond, m.Snapshot().AverageExportTime)

	m.RecordExport(200 * time.Millisecond)
	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Exports)
	assert.InDelta(t, float64(110*time.Millisecond), float64(snap.AverageExportTime), float64(time.Microsecond))
}

func TestMonitor_Concurrent(t *testing.T) {
	m := NewMonitor()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.RecordHTTPRequest()
				m.RecordDeckChange()
				_ = m.Snapshot()
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, int64(1000), snap.HTTPRequests)
	assert.Equal(t, int64(1000), snap.DeckChanges)
}

func TestMetrics_IsHealthy(t *testing.T) {
	tests := []struct {
		name    string
		metrics Metrics
		healthy bool
	}{
		{name: "within limits", metrics: Metrics{MemoryUsage: 10 << 20, GoroutineCount: 12}, healthy: true},
		{name: "too much memory", metrics: Metrics{MemoryUsage: maxMemoryBytes, GoroutineCount: 12}},
		{name: "too many goroutines", metrics: Metrics{MemoryUsage: 10 << 20, GoroutineCount: maxGoroutines}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.healthy, tt.metrics.IsHealthy())
		})
	}
}

func TestMonitor_HealthStatus(t *testing.T) {
	m := NewMonitor()

	status := m.HealthStatus()
	assert.Contains(t, status, "healthy")
	assert.Contains(t, status, "uptime")
	assert.NotContains(t, status, "last_change")

	m.RecordDeckChange()
	m.RecordExport(5 * time.Millisecond)

	status = m.HealthStatus()
	assert.Contains(t, status, "last_change")
	ops, ok := status["operations"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, int64(1), ops["deck_changes"])
	assert.Equal(t, int64(1), ops["exports"])

	perf, ok := status["performance"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, int64(5), perf["avg_export_time_ms"])
}

func TestMonitor_Uptime(t *testing.T) {
	m := NewMonitor()
	start := m.Snapshot().StartTime
	m.now = func() time.Time { return start.Add(90 * time.Second) }

	assert.Equal(t, 90*time.Second, m.Uptime())
}

func TestSafeUint64ToInt64(t *testing.T) {
	assert.Equal(t, int64(42), safeUint64ToInt64(42))
	assert.Equal(t, int64(math.MaxInt64), safeUint64ToInt64(math.MaxUint64))
}
