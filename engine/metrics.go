package engine

import "time"

// MetricsObserver defines the interface for observing evaluation events.
type MetricsObserver interface {
	// OnMaterialize is called when a node has been drained into memory.
	OnMaterialize(op string, elements int, duration time.Duration)

	// OnCacheHit is called when a memo table served a node.
	OnCacheHit(op string)

	// OnClosure is called when a closure reached its fixpoint.
	OnClosure(op string, seeds, results int, duration time.Duration)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnMaterialize(string, int, time.Duration)  {}
func (NoopMetricsObserver) OnCacheHit(string)                         {}
func (NoopMetricsObserver) OnClosure(string, int, int, time.Duration) {}
