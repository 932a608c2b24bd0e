package codec

import (
	"bytes"
	"io"
	"testing"

	"github.com/hupe1980/wikiflow/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTriples(vocab *rdf.Vocabulary) []rdf.Triple {
	q42 := vocab.IRI("http://www.wikidata.org/entity/Q42")
	return []rdf.Triple{
		{Subject: q42, Predicate: vocab.IRI(rdf.NamespaceRDF + "type"), Object: vocab.IRI(rdf.NamespaceWikibase + "Item")},
		{Subject: q42, Predicate: vocab.IRI("http://www.wikidata.org/prop/direct/P31"), Object: vocab.IRI("http://www.wikidata.org/entity/Q5")},
		{Subject: q42, Predicate: vocab.IRI("http://example.org/plain"), Object: rdf.IRI("http://example.org/other")},
		{Subject: rdf.BlankNode("b0"), Predicate: vocab.IRI(rdf.NamespaceSchema + "name"), Object: rdf.PlainLiteral("Douglas Adams")},
		{Subject: q42, Predicate: vocab.IRI(rdf.NamespaceRDFS + "label"), Object: rdf.LangLiteral("Douglas Adams", "en-GB")},
		{Subject: q42, Predicate: vocab.IRI(rdf.NamespaceSchema + "description"), Object: rdf.LangLiteral("", "de")},
		{Subject: q42, Predicate: vocab.IRI("http://www.wikidata.org/prop/direct/P569"), Object: vocab.TypedLiteral("1952-03-11T00:00:00Z", rdf.NamespaceXSD+"dateTime")},
		{Subject: q42, Predicate: vocab.IRI("http://www.wikidata.org/prop/direct/P1"), Object: vocab.TypedLiteral("x", "http://example.org/customType")},
		{Subject: q42, Predicate: vocab.IRI("http://www.wikidata.org/prop/direct/P2"), Object: vocab.TypedLiteral("Q1", "http://www.wikidata.org/entity/Q7")},
		{Subject: q42, Predicate: vocab.IRI(rdf.NamespaceSchema + "name"), Object: rdf.PlainLiteral("ünïcødé ✓")},
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	vocab := rdf.DefaultVocabulary()
	in := sampleTriples(vocab)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, tr := range in {
		require.NoError(t, w.Write(tr))
	}
	require.NoError(t, w.Flush())
	assert.Equal(t, int64(len(in)), w.Count())

	r := NewReader(&buf, vocab)
	var out []rdf.Triple
	for tr, err := range r.All() {
		require.NoError(t, err)
		out = append(out, tr)
	}
	assert.Equal(t, in, out)
}

func TestCodec_CompactEncodings(t *testing.T) {
	vocab := rdf.DefaultVocabulary()

	b, err := AppendTerm(nil, vocab.IRI(rdf.NamespaceRDF+"type"))
	require.NoError(t, err)
	assert.Equal(t, []byte{TagConstantIRI, 0}, b)

	b, err = AppendTerm(nil, vocab.IRI("http://www.wikidata.org/entity/Q42"))
	require.NoError(t, err)
	assert.Equal(t, []byte{TagNumericIRI, 0, 0, 'Q', 0, 0, 0, 42}, b)

	b, err = AppendTerm(nil, rdf.LangLiteral("a", "en"))
	require.NoError(t, err)
	assert.Equal(t, []byte{TagLangString, 1, 'a', 2, 'e', 'n'}, b)
}

func TestReader_EOFHandling(t *testing.T) {
	vocab := rdf.DefaultVocabulary()

	_, err := NewReader(bytes.NewReader(nil), vocab).Read()
	assert.Equal(t, io.EOF, err)

	full, err := AppendTriple(nil, sampleTriples(vocab)[3])
	require.NoError(t, err)

	for cut := 1; cut < len(full); cut++ {
		_, err := NewReader(bytes.NewReader(full[:cut]), vocab).Read()
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "cut at %d", cut)
	}
}

func TestReader_FormatErrors(t *testing.T) {
	vocab := rdf.DefaultVocabulary()

	tests := []struct {
		name string
		data []byte
	}{
		{"unknown tag", []byte{99}},
		{"zero tag", []byte{0}},
		{"unknown constant", []byte{TagConstantIRI, 250}},
		{"unknown prefix", []byte{TagNumericIRI, 200, 0, 'Q', 0, 0, 0, 1}},
		{"literal datatype", []byte{TagTyped, 1, 'x', TagPlain, 1, 'y'}},
		{"literal subject", []byte{TagPlain, 1, 'x', TagIRI, 1, 'p', TagPlain, 1, 'o'}},
		{"blank predicate", []byte{TagIRI, 1, 's', TagBlankNode, 1, 'p', TagPlain, 1, 'o'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(bytes.NewReader(tt.data), vocab).Read()
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
		})
	}
}

func TestAppendTerm_Nil(t *testing.T) {
	_, err := AppendTerm(nil, nil)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
}
