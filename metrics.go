package qsim

import (
	"sort"
	"sync"
	"time"
)

type timeWindow struct {
	duration time.Duration
	count    int
}

/*
Metrics aggregates engine-wide counters across runs. All methods are safe for
concurrent use; a nil *Metrics silently drops every record.
*/
type Metrics struct {
	mu sync.RWMutex

	Runs               int64
	FailedRuns         int64
	Gates              int64
	SliceDispatches    int64
	ParallelDispatches int64
	Slices             int64
	Shots              int64
	DegradedWorkers    int64

	TotalRunTime      time.Duration
	AverageRunLatency time.Duration
	P95RunLatency     time.Duration
	P99RunLatency     time.Duration

	latencyWindows []timeWindow
	windowSize     int
}

func NewMetrics() *Metrics {
	return &Metrics{
		latencyWindows: make([]timeWindow, 0, 1000),
		windowSize:     1000,
	}
}

func (m *Metrics) recordDispatch(slices int) {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.SliceDispatches++
	m.Slices += int64(slices)
	if slices > 1 {
		m.ParallelDispatches++
	}
}

func (m *Metrics) recordGate() {
	if m == nil {
		return
	}

	m.mu.Lock()
	m.Gates++
	m.mu.Unlock()
}

func (m *Metrics) recordShots(n int) {
	if m == nil {
		return
	}

	m.mu.Lock()
	m.Shots += int64(n)
	m.mu.Unlock()
}

func (m *Metrics) recordDegraded(dropped int) {
	if m == nil {
		return
	}

	m.mu.Lock()
	m.DegradedWorkers += int64(dropped)
	m.mu.Unlock()
}

func (m *Metrics) recordRun(startTime time.Time, success bool) {
	if m == nil {
		return
	}

	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Runs++
	if !success {
		m.FailedRuns++
	}

	m.TotalRunTime += duration
	m.updateLatencyPercentiles(duration)
}

func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.AverageRunLatency = m.TotalRunTime / time.Duration(m.Runs)

	m.latencyWindows = append(m.latencyWindows, timeWindow{
		duration: duration,
		count:    1,
	})

	if len(m.latencyWindows) > m.windowSize {
		m.latencyWindows = m.latencyWindows[1:]
	}

	sorted := make([]time.Duration, 0, len(m.latencyWindows))
	for _, w := range m.latencyWindows {
		for i := 0; i < w.count; i++ {
			sorted = append(sorted, w.duration)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	if len(sorted) > 0 {
		p95Index := min(int(float64(len(sorted))*0.95), len(sorted)-1)
		p99Index := min(int(float64(len(sorted))*0.99), len(sorted)-1)

		m.P95RunLatency = sorted[p95Index]
		m.P99RunLatency = sorted[p99Index]
	}
}

// ExportMetrics snapshots the counters under stable keys.
func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := 0.0
	if m.Runs > 0 {
		successRate = float64(m.Runs-m.FailedRuns) / float64(m.Runs)
	}

	return map[string]interface{}{
		"runs":                m.Runs,
		"success_rate":        successRate,
		"gates":               m.Gates,
		"slice_dispatches":    m.SliceDispatches,
		"parallel_dispatches": m.ParallelDispatches,
		"slices":              m.Slices,
		"shots":               m.Shots,
		"degraded_workers":    m.DegradedWorkers,
		"avg_latency":         m.AverageRunLatency.Milliseconds(),
		"p95_latency":         m.P95RunLatency.Milliseconds(),
		"p99_latency":         m.P99RunLatency.Milliseconds(),
	}
}
