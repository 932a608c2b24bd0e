package keyset

import (
	"testing"

	"github.com/hupe1980/wikiflow/rdf"
	"github.com/stretchr/testify/assert"
)

func TestKeySet_MixedKeys(t *testing.T) {
	vocab := rdf.DefaultVocabulary()
	q1 := vocab.IRI("http://www.wikidata.org/entity/Q1")
	p1 := vocab.IRI("http://www.wikidata.org/entity/P1")
	direct := vocab.IRI("http://www.wikidata.org/prop/direct/P1")

	s := New(0)
	assert.True(t, s.Add(q1))
	assert.False(t, s.Add(q1))
	assert.True(t, s.Add(p1))
	assert.True(t, s.Add(direct))
	assert.True(t, s.Add(rdf.PlainLiteral("x")))
	assert.True(t, s.Add(42))

	assert.Equal(t, 5, s.Len())
	assert.True(t, s.Contains(vocab.IRI("http://www.wikidata.org/entity/Q1")))
	assert.False(t, s.Contains(vocab.IRI("http://www.wikidata.org/entity/Q2")))
	assert.True(t, s.Contains(rdf.PlainLiteral("x")))
	assert.True(t, s.Contains(42))
	assert.False(t, s.Contains(43))
}

func TestKeySet_Merge(t *testing.T) {
	vocab := rdf.DefaultVocabulary()

	a := New(0)
	a.Add(vocab.IRI("http://www.wikidata.org/entity/Q1"))
	a.Add("x")

	b := New(0)
	b.Add(vocab.IRI("http://www.wikidata.org/entity/Q1"))
	b.Add(vocab.IRI("http://www.wikidata.org/entity/Q2"))
	b.Add(vocab.IRI("http://www.wikidata.org/entity/Q3"))

	m := a.Merge(b)
	assert.Same(t, b, m)
	assert.Equal(t, 4, m.Len())
	assert.True(t, m.Contains("x"))
	assert.True(t, m.Contains(vocab.IRI("http://www.wikidata.org/entity/Q3")))
}
