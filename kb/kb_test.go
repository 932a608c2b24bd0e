package kb

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/hupe1980/wikiflow/cluster"
	"github.com/hupe1980/wikiflow/engine"
	"github.com/hupe1980/wikiflow/plan"
	"github.com/hupe1980/wikiflow/rdf"
	"github.com/hupe1980/wikiflow/rdf/ntriples"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dump = `<http://www.wikidata.org/entity/Q42> <http://www.wikidata.org/prop/direct/P31> <http://www.wikidata.org/entity/Q5> .
<http://www.wikidata.org/entity/Q5> <http://www.wikidata.org/prop/direct/P279> <http://www.wikidata.org/entity/Q215627> .
<http://www.wikidata.org/entity/Q42> <http://www.w3.org/2000/01/rdf-schema#label> "Douglas Adams"@en .
<http://www.wikidata.org/entity/Q42> <http://www.w3.org/2000/01/rdf-schema#label> "Douglas Adams"@de .
<http://www.wikidata.org/entity/Q42> <http://www.wikidata.org/prop/direct/P569> "1952-03-11"^^<http://www.w3.org/2001/XMLSchema#date> .
<http://www.wikidata.org/entity/Q42> <http://www.wikidata.org/prop/direct/P19> <http://www.wikidata.org/entity/Q350> .
<http://www.wikidata.org/entity/Q350> <http://www.wikidata.org/prop/direct/P31> <http://www.wikidata.org/entity/Q515> .
<http://www.wikidata.org/entity/Q515> <http://www.wikidata.org/prop/direct/P279> <http://www.wikidata.org/entity/Q486972> .
<http://www.wikidata.org/entity/Q350> <http://www.w3.org/2000/01/rdf-schema#label> "Cambridge"@en .
<http://www.wikidata.org/entity/Q1> <http://www.wikidata.org/prop/direct/P31> <http://www.wikidata.org/entity/Q4167410> .
<http://www.wikidata.org/entity/Q1> <http://www.wikidata.org/prop/direct/P31> <http://www.wikidata.org/entity/Q5> .
<http://www.wikidata.org/entity/Q1> <http://www.w3.org/2000/01/rdf-schema#label> "Foo"@en .
<http://www.wikidata.org/entity/Q7> <http://www.w3.org/2000/01/rdf-schema#label> "Untyped"@en .
`

// memorySource serves the statements of dump from in-memory collections
// keyed by predicate.
func memorySource(t *testing.T, vocab *rdf.Vocabulary) Source {
	t.Helper()
	byPred := map[string][]rdf.Triple{}
	for tr, err := range ntriples.NewReader(strings.NewReader(dump), vocab).All() {
		require.NoError(t, err)
		key := tr.Predicate.Value()
		byPred[key] = append(byPred[key], tr)
	}
	return func(key string) plan.Plan[rdf.Triple] {
		return plan.From(byPred[key]...)
	}
}

func backends(t *testing.T) map[string]engine.Backend {
	local := engine.New(engine.WithParallelism(4))
	t.Cleanup(func() { _ = local.Close() })
	return map[string]engine.Backend{
		"local":   local,
		"cluster": cluster.New(cluster.WithBuckets(3)),
	}
}

func sortedLines(b []byte) []byte {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	slices.Sort(lines)
	return []byte(strings.Join(lines, "\n") + "\n")
}

func TestWrite_Golden(t *testing.T) {
	vocab := rdf.DefaultVocabulary()
	b := NewBuilder(DefaultMapping(vocab), WithSource(memorySource(t, vocab)), WithLanguages("EN"))

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			stats, err := b.Write(t.Context(), backend, &buf, true)
			require.NoError(t, err)
			assert.Equal(t, Stats{Statements: 7, Annotations: 7}, stats)

			g := goldie.New(t)
			g.Assert(t, "kb", sortedLines(buf.Bytes()))
		})
	}
}

func TestBuilder_Entities(t *testing.T) {
	vocab := rdf.DefaultVocabulary()
	b := NewBuilder(DefaultMapping(vocab), WithSource(memorySource(t, vocab)))

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := engine.Collect(t.Context(), backend, b.Entities())
			require.NoError(t, err)
			assert.ElementsMatch(t, []rdf.Term{
				vocab.IRI(rdf.NamespaceEntity + "Q42"),
				vocab.IRI(rdf.NamespaceEntity + "Q350"),
			}, got)

			excluded, err := engine.Collect(t.Context(), backend, b.Excluded())
			require.NoError(t, err)
			assert.Equal(t, []rdf.Term{vocab.IRI(rdf.NamespaceEntity + "Q1")}, excluded)
		})
	}
}

func TestBuilder_Classes(t *testing.T) {
	vocab := rdf.DefaultVocabulary()
	b := NewBuilder(DefaultMapping(vocab), WithSource(memorySource(t, vocab)))
	e := engine.New()
	defer e.Close()

	pairs, err := engine.CollectPairs(t.Context(), e, b.Classes())
	require.NoError(t, err)

	q := func(id string) rdf.Term { return vocab.IRI(rdf.NamespaceEntity + id) }
	assert.ElementsMatch(t, []plan.Pair[rdf.Term, rdf.Term]{
		{Key: q("Q42"), Value: q("Q5")},
		{Key: q("Q42"), Value: q("Q215627")},
		{Key: q("Q350"), Value: q("Q515")},
		{Key: q("Q350"), Value: q("Q486972")},
		{Key: q("Q1"), Value: q("Q4167410")},
		{Key: q("Q1"), Value: q("Q5")},
		{Key: q("Q1"), Value: q("Q215627")},
	}, pairs)
}

func TestBuilder_LanguagesKeepAll(t *testing.T) {
	vocab := rdf.DefaultVocabulary()
	b := NewBuilder(DefaultMapping(vocab), WithSource(memorySource(t, vocab)))
	e := engine.New()
	defer e.Close()

	n, err := engine.Count(t.Context(), e, b.Triples())
	require.NoError(t, err)
	assert.Equal(t, 8, n, "both labels of Q42 are kept")
}

func TestBuilder_PlansAreStructurallyEqual(t *testing.T) {
	vocab := rdf.DefaultVocabulary()
	m := DefaultMapping(vocab)

	a := NewBuilder(m).Triples()
	b := NewBuilder(m).Triples()
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Node().Digest(), b.Node().Digest())
}

func TestBuilder_Keys(t *testing.T) {
	m := NewMapping(nil)
	m.AddProperty("P569", "birthDate")
	m.AddProperty(rdf.NamespaceDirect+"P31", "additionalType")

	assert.Equal(t, []string{
		rdf.NamespaceDirect + "P279",
		rdf.NamespaceDirect + "P31",
		rdf.NamespaceDirect + "P569",
	}, NewBuilder(m).Keys())
}

func TestMapping_Read(t *testing.T) {
	m := NewMapping(nil)
	require.NoError(t, m.ReadClasses(strings.NewReader("Q5\tPerson\n<http://www.wikidata.org/entity/Q4167410>\t-\n")))
	require.NoError(t, m.ReadProperties(strings.NewReader("P569\t<http://schema.org/birthDate>\n")))

	prop, ok := m.Property(rdf.NamespaceDirect + "P569")
	require.True(t, ok)
	assert.Equal(t, rdf.NamespaceSchema+"birthDate", prop.Value())

	assert.Len(t, m.classes, 1)
	assert.Contains(t, m.excluded, rdf.NamespaceEntity+"Q4167410")

	err := m.ReadClasses(strings.NewReader("Q5\tPerson\tExtra\n"))
	var se *ntriples.SyntaxError
	assert.ErrorAs(t, err, &se)
}

func TestDefaultMapping(t *testing.T) {
	m := DefaultMapping(nil)
	assert.NotEmpty(t, m.Predicates())

	name, ok := m.Property(rdf.NamespaceRDFS + "label")
	require.True(t, ok)
	assert.Equal(t, rdf.NamespaceSchema+"name", name.Value())
}
