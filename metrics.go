package geodist

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordCompute is called after each single computation.
	// nan reports whether the result was a NaN sentinel.
	RecordCompute(f Formula, duration time.Duration, nan bool)

	// RecordBatch is called after each batch computation.
	// count is the number of argument sets, nan the number of NaN results.
	RecordBatch(f Formula, count, nan int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCompute(Formula, time.Duration, bool)   {}
func (NoopMetricsCollector) RecordBatch(Formula, int, int, time.Duration) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ComputeCount      atomic.Int64
	ComputeNaN        atomic.Int64
	ComputeTotalNanos atomic.Int64
	BatchCount        atomic.Int64
	BatchItems        atomic.Int64
	BatchNaN          atomic.Int64
}

// RecordCompute implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompute(_ Formula, duration time.Duration, nan bool) {
	b.ComputeCount.Add(1)
	b.ComputeTotalNanos.Add(duration.Nanoseconds())
	if nan {
		b.ComputeNaN.Add(1)
	}
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(_ Formula, count, nan int, _ time.Duration) {
	b.BatchCount.Add(1)
	b.BatchItems.Add(int64(count))
	b.BatchNaN.Add(int64(nan))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ComputeCount:    b.ComputeCount.Load(),
		ComputeNaN:      b.ComputeNaN.Load(),
		ComputeAvgNanos: b.getAvgComputeNanos(),
		BatchCount:      b.BatchCount.Load(),
		BatchItems:      b.BatchItems.Load(),
		BatchNaN:        b.BatchNaN.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgComputeNanos() int64 {
	count := b.ComputeCount.Load()
	if count == 0 {
		return 0
	}
	return b.ComputeTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ComputeCount    int64
	ComputeNaN      int64
	ComputeAvgNanos int64
	BatchCount      int64
	BatchItems      int64
	BatchNaN        int64
}
