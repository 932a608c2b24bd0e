// Package prom exports wikiflow metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	flow, err := wikiflow.Open(ctx, wikiflow.WithMetricsCollector(prom.New(reg)))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prom

import (
	"time"

	"github.com/hupe1980/wikiflow"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wikiflow"

// Collector implements wikiflow.MetricsCollector with Prometheus metrics.
type Collector struct {
	materializeLatency  *prometheus.HistogramVec
	materializeElements *prometheus.CounterVec
	cacheHits           *prometheus.CounterVec
	closureLatency      *prometheus.HistogramVec
	closureResults      *prometheus.CounterVec
	partitionWrites     prometheus.Counter
	partitionStatements prometheus.Counter
	partitionBytes      prometheus.Counter
}

var _ wikiflow.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg. A nil reg
// uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		materializeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "materialize_duration_seconds",
			Help:      "Time to drain a plan node into memory",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		materializeElements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "materialized_elements_total",
			Help:      "Elements held by materialized plan nodes",
		}, []string{"op"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Plan nodes served from memoized results",
		}, []string{"op"}),
		closureLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "closure_duration_seconds",
			Help:      "Time to reach a transitive closure fixpoint",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"op"}),
		closureResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "closure_results_total",
			Help:      "Elements produced by transitive closures",
		}, []string{"op"}),
		partitionWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partition_writes_total",
			Help:      "Partition blobs written",
		}),
		partitionStatements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partition_statements_total",
			Help:      "Statements written to partitions",
		}),
		partitionBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partition_bytes_total",
			Help:      "Encoded bytes written to partitions",
		}),
	}

	reg.MustRegister(
		c.materializeLatency,
		c.materializeElements,
		c.cacheHits,
		c.closureLatency,
		c.closureResults,
		c.partitionWrites,
		c.partitionStatements,
		c.partitionBytes,
	)
	return c
}

// RecordMaterialize implements wikiflow.MetricsCollector.
func (c *Collector) RecordMaterialize(op string, elements int, d time.Duration) {
	c.materializeLatency.WithLabelValues(op).Observe(d.Seconds())
	c.materializeElements.WithLabelValues(op).Add(float64(elements))
}

// RecordCacheHit implements wikiflow.MetricsCollector.
func (c *Collector) RecordCacheHit(op string) {
	c.cacheHits.WithLabelValues(op).Inc()
}

// RecordClosure implements wikiflow.MetricsCollector.
func (c *Collector) RecordClosure(op string, _, results int, d time.Duration) {
	c.closureLatency.WithLabelValues(op).Observe(d.Seconds())
	c.closureResults.WithLabelValues(op).Add(float64(results))
}

// RecordPartitionWrite implements wikiflow.MetricsCollector. Keys are not
// used as labels; a dump has thousands of predicates.
func (c *Collector) RecordPartitionWrite(_ string, statements, bytes int64) {
	c.partitionWrites.Inc()
	c.partitionStatements.Add(float64(statements))
	c.partitionBytes.Add(float64(bytes))
}
