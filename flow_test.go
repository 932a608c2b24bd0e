package wikiflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hupe1980/wikiflow/blobstore"
	"github.com/hupe1980/wikiflow/codec"
	"github.com/hupe1980/wikiflow/engine"
	"github.com/hupe1980/wikiflow/plan"
	"github.com/hupe1980/wikiflow/rdf"
	"github.com/hupe1980/wikiflow/rdf/ntriples"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dump = `<http://www.wikidata.org/entity/Q42> <http://www.wikidata.org/prop/direct/P31> <http://www.wikidata.org/entity/Q5> .
<http://www.wikidata.org/entity/Q5> <http://www.wikidata.org/prop/direct/P279> <http://www.wikidata.org/entity/Q215627> .
<http://www.wikidata.org/entity/Q215627> <http://www.wikidata.org/prop/direct/P279> <http://www.wikidata.org/entity/Q35120> .
<http://www.wikidata.org/entity/Q1> <http://www.wikidata.org/prop/direct/P31> <http://www.wikidata.org/entity/Q35120> .
<http://www.wikidata.org/entity/Q42> <http://www.w3.org/2000/01/rdf-schema#label> "Douglas Adams"@en .
`

var (
	instanceOf = rdf.NamespaceDirect + "P31"
	subclassOf = rdf.NamespaceDirect + "P279"
)

func backends() map[string][]Option {
	return map[string][]Option{
		"local":   {WithParallelism(4)},
		"cluster": {WithCluster(3), WithParallelism(2)},
	}
}

func openFlow(t *testing.T, opts ...Option) *Flow {
	t.Helper()
	f, err := Open(t.Context(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func load(t *testing.T, f *Flow) []string {
	t.Helper()
	keys, err := f.Partition(t.Context(), ntriples.NewReader(strings.NewReader(dump), f.Vocabulary()).All())
	require.NoError(t, err)
	return keys
}

func subjectObject(t rdf.Triple) (rdf.Term, rdf.Term) { return t.Subject, t.Object }

// classesOf returns the transitive classes of every instance.
func classesOf() plan.PairPlan[rdf.Term, rdf.Term] {
	types := plan.KeyBy(plan.Partition(instanceOf), plan.KeyFn("subject-object", subjectObject))
	sub := plan.KeyBy(plan.Partition(subclassOf), plan.KeyFn("subject-object", subjectObject))
	return types.Closure(sub)
}

func TestFlow_PartitionAndEvaluate(t *testing.T) {
	for name, opts := range backends() {
		t.Run(name, func(t *testing.T) {
			f := openFlow(t, opts...)
			assert.Equal(t, name, f.Backend())

			keys := load(t, f)
			assert.Equal(t, []string{
				rdf.NamespaceRDFS + "label",
				subclassOf,
				instanceOf,
			}, keys)

			stored, err := f.Keys(t.Context())
			require.NoError(t, err)
			assert.Equal(t, keys, stored)

			n, err := engine.Count(t.Context(), f, plan.Partition(instanceOf))
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			pairs, err := engine.CollectPairs(t.Context(), f, classesOf())
			require.NoError(t, err)

			v := f.Vocabulary()
			got := map[string][]string{}
			for _, p := range pairs {
				got[p.Key.String()] = append(got[p.Key.String()], p.Value.String())
			}
			assert.ElementsMatch(t, []string{
				v.IRI(rdf.NamespaceEntity + "Q5").String(),
				v.IRI(rdf.NamespaceEntity + "Q215627").String(),
				v.IRI(rdf.NamespaceEntity + "Q35120").String(),
			}, got[v.IRI(rdf.NamespaceEntity+"Q42").String()])
			assert.Len(t, got[v.IRI(rdf.NamespaceEntity+"Q1").String()], 1)
		})
	}
}

func TestFlow_MissingPartitionIsEmpty(t *testing.T) {
	for name, opts := range backends() {
		t.Run(name, func(t *testing.T) {
			f := openFlow(t, opts...)

			got, err := engine.Collect(t.Context(), f, plan.Partition(rdf.NamespaceDirect+"P999"))
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestFlow_Local(t *testing.T) {
	dir := t.TempDir()

	f, err := Open(t.Context(), Local(dir), WithPartitionPrefix("dumps/latest"), WithCompression(codec.LZ4{}))
	require.NoError(t, err)
	keys := load(t, f)
	require.NoError(t, f.Close())

	// Reopen with a block cache over the same directory.
	f = openFlow(t, Local(dir), WithPartitionPrefix("dumps/latest"), WithBlockCache(1<<20))
	stored, err := f.Keys(t.Context())
	require.NoError(t, err)
	assert.Equal(t, keys, stored)

	n, err := engine.Count(t.Context(), f, plan.Partition(subclassOf))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Second read is served from the block cache.
	n, err = engine.Count(t.Context(), f, plan.Partition(subclassOf))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestFlow_Remote(t *testing.T) {
	store := blobstore.NewMemoryStore()
	f := openFlow(t, Remote(store), WithPartitionPrefix("kb"))
	load(t, f)

	names, err := store.List(t.Context(), "kb")
	require.NoError(t, err)
	assert.Len(t, names, 3)
}

func TestFlow_Metrics(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	f := openFlow(t, WithMetricsCollector(metrics))
	load(t, f)

	cached := classesOf().Cache()
	_, err := engine.CollectPairs(t.Context(), f, cached)
	require.NoError(t, err)
	_, err = engine.CollectPairs(t.Context(), f, cached)
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(3), stats.PartitionWrites)
	assert.Equal(t, int64(5), stats.PartitionStatements)
	assert.Positive(t, stats.PartitionBytes)
	assert.Equal(t, int64(1), stats.ClosureCount)
	assert.Equal(t, int64(4), stats.ClosureResults)
	assert.Positive(t, stats.CacheHits)
	assert.Positive(t, f.MemoryUsage())
}

func TestFlow_MemoryLimit(t *testing.T) {
	f := openFlow(t, WithMemoryLimit(16))

	_, err := engine.Collect(t.Context(), f, plan.From(1, 2, 3).Cache())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMemoryLimit)

	var ee *EvaluationError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, plan.OpCache, ee.Op)
}

func TestFlow_MalformedInput(t *testing.T) {
	f := openFlow(t)

	bad := "<http://example.org/a> <http://example.org/b> .\n"
	_, err := f.Partition(t.Context(), ntriples.NewReader(strings.NewReader(bad), f.Vocabulary()).All())
	assert.ErrorIs(t, err, ErrMalformedInput)

	var se *ntriples.SyntaxError
	assert.ErrorAs(t, err, &se)
}

func TestFlow_Closed(t *testing.T) {
	f, err := Open(t.Context())
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	_, err = engine.Collect(t.Context(), f, plan.From(1))
	assert.ErrorIs(t, err, ErrClosed)

	_, err = f.Keys(t.Context())
	assert.ErrorIs(t, err, ErrClosed)

	_, err = f.NewPartitionWriter()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFlow_Cancelled(t *testing.T) {
	f := openFlow(t)
	load(t, f)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := engine.CollectPairs(ctx, f, classesOf())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
