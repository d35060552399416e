// Package monitoring keeps in-process prediction metrics.
package monitoring

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/montanaflynn/stats"

	"cancerdetect/ml"
	"cancerdetect/pipeline"
)

// latencyWindow is how many recent latencies feed the percentiles.
const latencyWindow = 1000

// Snapshot is the JSON view served on /api/metrics.
type Snapshot struct {
	Predictions map[string]int64 `json:"predictions"`
	Errors      map[string]int64 `json:"errors"`
	Latency     LatencySummary   `json:"latency_ms"`
	Goroutines  int              `json:"goroutines"`
	HeapAlloc   uint64           `json:"heap_alloc_bytes"`
	Uptime      string           `json:"uptime"`
	Timestamp   time.Time        `json:"timestamp"`
}

type LatencySummary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Max   float64 `json:"max"`
}

// MetricsCollector implements pipeline.Observer.
type MetricsCollector struct {
	mu          sync.Mutex
	predictions map[ml.Label]int64
	errors      map[string]int64
	latencies   []float64
	next        int
	startTime   time.Time
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		predictions: make(map[ml.Label]int64),
		errors:      make(map[string]int64),
		latencies:   make([]float64, 0, latencyWindow),
		startTime:   time.Now(),
	}
}

func (mc *MetricsCollector) ObservePrediction(label ml.Label, elapsed time.Duration, err error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if err != nil {
		mc.errors[errorKind(err)]++
		return
	}
	mc.predictions[label]++

	ms := float64(elapsed) / float64(time.Millisecond)
	if len(mc.latencies) < latencyWindow {
		mc.latencies = append(mc.latencies, ms)
		return
	}
	mc.latencies[mc.next] = ms
	mc.next = (mc.next + 1) % latencyWindow
}

// RecordError counts a failure that happened outside the pipeline, such as
// a form value that could not be parsed.
func (mc *MetricsCollector) RecordError(kind string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.errors[kind]++
}

func (mc *MetricsCollector) Snapshot() Snapshot {
	mc.mu.Lock()
	predictions := map[string]int64{
		ml.Benign.String():    mc.predictions[ml.Benign],
		ml.Malignant.String(): mc.predictions[ml.Malignant],
	}
	errs := make(map[string]int64, len(mc.errors))
	for kind, n := range mc.errors {
		errs[kind] = n
	}
	latencies := append([]float64(nil), mc.latencies...)
	started := mc.startTime
	mc.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return Snapshot{
		Predictions: predictions,
		Errors:      errs,
		Latency:     summarize(latencies),
		Goroutines:  runtime.NumGoroutine(),
		HeapAlloc:   m.HeapAlloc,
		Uptime:      time.Since(started).Round(time.Second).String(),
		Timestamp:   time.Now(),
	}
}

func summarize(latencies []float64) LatencySummary {
	if len(latencies) == 0 {
		return LatencySummary{}
	}
	data := stats.Float64Data(latencies)
	summary := LatencySummary{Count: len(latencies)}
	summary.Mean, _ = data.Mean()
	summary.P50, _ = data.Percentile(50)
	summary.P95, _ = data.Percentile(95)
	summary.P99, _ = data.Percentile(99)
	summary.Max, _ = data.Max()
	return summary
}

func errorKind(err error) string {
	switch {
	case pipeline.IsInvalidInput(err):
		return "invalid_input"
	case errors.Is(err, pipeline.ErrDegenerateOutput):
		return "degenerate_output"
	case errors.Is(err, pipeline.ErrNotReady):
		return "not_ready"
	default:
		return "internal"
	}
}
