package codebook

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting pipeline metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordLoad is called after the corpus has been read.
	RecordLoad(rows, skipped int, duration time.Duration)

	// RecordReduce is called after dimensionality reduction.
	// explained is the fraction of variance retained by the projection.
	RecordReduce(explained float64, duration time.Duration)

	// RecordCluster is called after clustering finishes.
	RecordCluster(epochs int, converged bool, inertia float64, duration time.Duration)

	// RecordSave is called after the codebook file has been written.
	// size is the file size in bytes, err is nil on success.
	RecordSave(size int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, int, time.Duration)              {}
func (NoopMetricsCollector) RecordReduce(float64, time.Duration)             {}
func (NoopMetricsCollector) RecordCluster(int, bool, float64, time.Duration) {}
func (NoopMetricsCollector) RecordSave(int64, time.Duration, error)          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadRows     atomic.Int64
	LoadSkipped  atomic.Int64
	LoadNanos    atomic.Int64
	ReduceNanos  atomic.Int64
	ClusterNanos atomic.Int64
	Epochs       atomic.Int64
	SaveBytes    atomic.Int64
	SaveErrors   atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(rows, skipped int, duration time.Duration) {
	b.LoadRows.Add(int64(rows))
	b.LoadSkipped.Add(int64(skipped))
	b.LoadNanos.Add(duration.Nanoseconds())
}

// RecordReduce implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReduce(_ float64, duration time.Duration) {
	b.ReduceNanos.Add(duration.Nanoseconds())
}

// RecordCluster implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCluster(epochs int, _ bool, _ float64, duration time.Duration) {
	b.Epochs.Add(int64(epochs))
	b.ClusterNanos.Add(duration.Nanoseconds())
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(size int64, _ time.Duration, err error) {
	b.SaveBytes.Add(size)
	if err != nil {
		b.SaveErrors.Add(1)
	}
}
