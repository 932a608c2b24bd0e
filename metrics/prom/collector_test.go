package prom

import (
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/wikiflow"
	"github.com/hupe1980/wikiflow/engine"
	"github.com/hupe1980/wikiflow/plan"
	"github.com/hupe1980/wikiflow/rdf/ntriples"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	out := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func counter(mf *dto.MetricFamily) float64 {
	var sum float64
	for _, m := range mf.GetMetric() {
		sum += m.GetCounter().GetValue()
	}
	return sum
}

func TestCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.RecordMaterialize("Map", 10, time.Millisecond)
	c.RecordMaterialize("Map", 5, time.Millisecond)
	c.RecordCacheHit("Cache")
	c.RecordClosure("Closure", 1, 7, time.Millisecond)
	c.RecordPartitionWrite("http://www.wikidata.org/prop/direct/P31", 3, 120)

	got := gather(t, reg)
	assert.Equal(t, 15.0, counter(got["wikiflow_materialized_elements_total"]))
	assert.Equal(t, 1.0, counter(got["wikiflow_cache_hits_total"]))
	assert.Equal(t, 7.0, counter(got["wikiflow_closure_results_total"]))
	assert.Equal(t, 1.0, counter(got["wikiflow_partition_writes_total"]))
	assert.Equal(t, 3.0, counter(got["wikiflow_partition_statements_total"]))
	assert.Equal(t, 120.0, counter(got["wikiflow_partition_bytes_total"]))

	hist := got["wikiflow_materialize_duration_seconds"].GetMetric()
	require.Len(t, hist, 1)
	assert.Equal(t, uint64(2), hist[0].GetHistogram().GetSampleCount())
	assert.Equal(t, "Map", hist[0].GetLabel()[0].GetValue())
}

func TestCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestCollector_WithFlow(t *testing.T) {
	reg := prometheus.NewRegistry()
	flow, err := wikiflow.Open(t.Context(), wikiflow.WithMetricsCollector(New(reg)))
	require.NoError(t, err)
	defer flow.Close()

	dump := `<http://example.org/a> <http://example.org/knows> <http://example.org/b> .
<http://example.org/b> <http://example.org/knows> <http://example.org/c> .
`
	_, err = flow.Partition(t.Context(), ntriples.NewReader(strings.NewReader(dump), flow.Vocabulary()).All())
	require.NoError(t, err)

	n, err := engine.Count(t.Context(), flow, plan.Partition("http://example.org/knows").Cache())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got := gather(t, reg)
	assert.Equal(t, 2.0, counter(got["wikiflow_partition_statements_total"]))
	assert.Equal(t, 1.0, counter(got["wikiflow_partition_writes_total"]))
}
