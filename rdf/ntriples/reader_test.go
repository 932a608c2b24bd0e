package ntriples

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/hupe1980/wikiflow/rdf"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# a comment
<http://www.wikidata.org/entity/Q42> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://wikiba.se/ontology#Item> .
<http://www.wikidata.org/entity/Q42> <http://www.w3.org/2000/01/rdf-schema#label> "Douglas Adams"@en .

_:b1 <http://schema.org/name> "tab\there \"quoted\" \u00e9" .
<http://www.wikidata.org/entity/Q42> <http://www.wikidata.org/prop/direct/P569> "1952-03-11T00:00:00Z"^^<http://www.w3.org/2001/XMLSchema#dateTime> .
<http://www.wikidata.org/entity/Q42> <http://schema.org/description> "plain"^^<http://www.w3.org/2001/XMLSchema#string> .
`

func readAll(t *testing.T, r *Reader) []rdf.Triple {
	t.Helper()
	var out []rdf.Triple
	for tr, err := range r.All() {
		require.NoError(t, err)
		out = append(out, tr)
	}
	return out
}

func TestReader_Parse(t *testing.T) {
	vocab := rdf.DefaultVocabulary()
	triples := readAll(t, NewReader(strings.NewReader(sample), vocab))
	require.Len(t, triples, 5)

	q42 := vocab.IRI("http://www.wikidata.org/entity/Q42")
	assert.Equal(t, q42, triples[0].Subject)
	assert.IsType(t, rdf.NumericIRI{}, triples[0].Subject)
	assert.IsType(t, rdf.ConstIRI{}, triples[0].Predicate)

	assert.Equal(t, rdf.LangLiteral("Douglas Adams", "en"), triples[1].Object)

	assert.Equal(t, rdf.BlankNode("b1"), triples[2].Subject)
	assert.Equal(t, rdf.PlainLiteral("tab\there \"quoted\" é"), triples[2].Object)

	lit, ok := triples[3].Object.(rdf.Literal)
	require.True(t, ok)
	assert.Equal(t, "1952-03-11T00:00:00Z", lit.Value())
	assert.Equal(t, rdf.NamespaceXSD+"dateTime", lit.Datatype().Value())

	assert.Equal(t, rdf.PlainLiteral("plain"), triples[4].Object)
}

func TestReader_SyntaxErrors(t *testing.T) {
	vocab := rdf.DefaultVocabulary()

	tests := []struct {
		name string
		line string
	}{
		{"missing dot", `<http://a> <http://b> <http://c>`},
		{"literal subject", `"x" <http://b> <http://c> .`},
		{"blank predicate", `<http://a> _:p <http://c> .`},
		{"unterminated iri", `<http://a <http://b> <http://c> .`},
		{"unterminated literal", `<http://a> <http://b> "abc .`},
		{"bad escape", `<http://a> <http://b> "a\qb" .`},
		{"trailing garbage", `<http://a> <http://b> <http://c> . x`},
		{"two statements", `<http://a> <http://b> <http://c> . <http://a> <http://b> <http://d> .`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader("\n"+tt.line+"\n"), vocab)
			_, err := r.Read()
			var se *SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, 2, se.Line)
		})
	}
}

func TestReader_EOF(t *testing.T) {
	r := NewReader(strings.NewReader("# only comments\n\n"), rdf.DefaultVocabulary())
	_, err := r.Read()
	require.ErrorIs(t, err, io.EOF)
}

func TestWriter_RoundTrip(t *testing.T) {
	vocab := rdf.DefaultVocabulary()
	in := readAll(t, NewReader(strings.NewReader(sample), vocab))

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, tr := range in {
		require.NoError(t, w.WriteTriple(tr))
	}
	require.NoError(t, w.Flush())
	assert.Equal(t, int64(len(in)), w.Count())

	out := readAll(t, NewReader(&buf, vocab))
	assert.Equal(t, in, out)
}

func TestWriter_Golden(t *testing.T) {
	vocab := rdf.DefaultVocabulary()
	q42 := vocab.IRI("http://www.wikidata.org/entity/Q42")
	label := rdf.Triple{
		Subject:   q42,
		Predicate: vocab.IRI(rdf.NamespaceSchema + "name"),
		Object:    rdf.LangLiteral("Douglas Adams", "en"),
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteTriple(rdf.Triple{
		Subject:   q42,
		Predicate: vocab.IRI(rdf.NamespaceRDF + "type"),
		Object:    vocab.IRI(rdf.NamespaceSchema + "Person"),
	}))
	require.NoError(t, w.WriteTriple(label))
	require.NoError(t, w.WriteTriple(rdf.Triple{
		Subject:   rdf.BlankNode("b0"),
		Predicate: vocab.IRI(rdf.NamespaceSchema + "description"),
		Object:    rdf.PlainLiteral("line\nbreak"),
	}))
	require.NoError(t, w.WriteAnnotated(rdf.AnnotatedTriple{
		Subject:   label,
		Predicate: vocab.IRI(rdf.NamespaceProv + "wasDerivedFrom"),
		Object:    vocab.IRI("http://www.wikidata.org/entity/P1476"),
	}))
	require.NoError(t, w.Flush())

	g := goldie.New(t)
	g.Assert(t, "writer", buf.Bytes())
}

func TestTSVReader(t *testing.T) {
	in := "# class mapping\nQ5\t<http://schema.org/Person>\n\nQ515\thttp://schema.org/City\r\n"
	r := NewTSVReader(strings.NewReader(in))

	var rows [][2]string
	for row, err := range r.All() {
		require.NoError(t, err)
		rows = append(rows, row)
	}
	assert.Equal(t, [][2]string{
		{"Q5", "http://schema.org/Person"},
		{"Q515", "http://schema.org/City"},
	}, rows)

	_, _, err := NewTSVReader(strings.NewReader("a\tb\tc\n")).Read()
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
}
