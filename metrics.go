package wikiflow

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus; metrics/prom provides one.
type MetricsCollector interface {
	// RecordMaterialize is called after a plan node has been drained into
	// memory. op is the operator name.
	RecordMaterialize(op string, elements int, duration time.Duration)

	// RecordCacheHit is called when a memoized result served a node.
	RecordCacheHit(op string)

	// RecordClosure is called when a transitive closure reached its fixpoint.
	RecordClosure(op string, seeds, results int, duration time.Duration)

	// RecordPartitionWrite is called once per partition blob written.
	RecordPartitionWrite(key string, statements, bytes int64)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordMaterialize(string, int, time.Duration)  {}
func (NoopMetricsCollector) RecordCacheHit(string)                         {}
func (NoopMetricsCollector) RecordClosure(string, int, int, time.Duration) {}
func (NoopMetricsCollector) RecordPartitionWrite(string, int64, int64)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	MaterializeCount    atomic.Int64
	MaterializeElements atomic.Int64
	MaterializeNanos    atomic.Int64
	CacheHits           atomic.Int64
	ClosureCount        atomic.Int64
	ClosureResults      atomic.Int64
	ClosureNanos        atomic.Int64
	PartitionWrites     atomic.Int64
	PartitionStatements atomic.Int64
	PartitionBytes      atomic.Int64
}

// RecordMaterialize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMaterialize(_ string, elements int, duration time.Duration) {
	b.MaterializeCount.Add(1)
	b.MaterializeElements.Add(int64(elements))
	b.MaterializeNanos.Add(duration.Nanoseconds())
}

// RecordCacheHit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheHit(string) {
	b.CacheHits.Add(1)
}

// RecordClosure implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClosure(_ string, _, results int, duration time.Duration) {
	b.ClosureCount.Add(1)
	b.ClosureResults.Add(int64(results))
	b.ClosureNanos.Add(duration.Nanoseconds())
}

// RecordPartitionWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPartitionWrite(_ string, statements, bytes int64) {
	b.PartitionWrites.Add(1)
	b.PartitionStatements.Add(statements)
	b.PartitionBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		MaterializeCount:    b.MaterializeCount.Load(),
		MaterializeElements: b.MaterializeElements.Load(),
		MaterializeAvgNanos: avg(b.MaterializeNanos.Load(), b.MaterializeCount.Load()),
		CacheHits:           b.CacheHits.Load(),
		ClosureCount:        b.ClosureCount.Load(),
		ClosureResults:      b.ClosureResults.Load(),
		ClosureAvgNanos:     avg(b.ClosureNanos.Load(), b.ClosureCount.Load()),
		PartitionWrites:     b.PartitionWrites.Load(),
		PartitionStatements: b.PartitionStatements.Load(),
		PartitionBytes:      b.PartitionBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	MaterializeCount    int64
	MaterializeElements int64
	MaterializeAvgNanos int64
	CacheHits           int64
	ClosureCount        int64
	ClosureResults      int64
	ClosureAvgNanos     int64
	PartitionWrites     int64
	PartitionStatements int64
	PartitionBytes      int64
}

// observer adapts a MetricsCollector to the engine and partition observer
// interfaces.
type observer struct {
	c MetricsCollector
}

func (o observer) OnMaterialize(op string, elements int, d time.Duration) {
	o.c.RecordMaterialize(op, elements, d)
}

func (o observer) OnCacheHit(op string) { o.c.RecordCacheHit(op) }

func (o observer) OnClosure(op string, seeds, results int, d time.Duration) {
	o.c.RecordClosure(op, seeds, results, d)
}

func (o observer) OnPartitionWrite(key string, statements, bytes int64) {
	o.c.RecordPartitionWrite(key, statements, bytes)
}
