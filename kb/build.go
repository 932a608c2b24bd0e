package kb

import (
	"context"
	"io"

	"github.com/hupe1980/wikiflow/engine"
	"github.com/hupe1980/wikiflow/rdf"
	"github.com/hupe1980/wikiflow/rdf/ntriples"
)

// Stats counts the lines written by Write.
type Stats struct {
	Statements  int64
	Annotations int64
}

// Write evaluates the knowledge base on b and writes it to w as N-Triples.
// With provenance, the prov:wasDerivedFrom annotations follow the
// statements in N-Triples-star form.
func (bld *Builder) Write(ctx context.Context, b engine.Backend, w io.Writer, provenance bool) (Stats, error) {
	var stats Stats
	nw := ntriples.NewWriter(w)

	err := engine.ForEach(ctx, b, bld.Triples(), func(t rdf.Triple) error {
		return nw.WriteTriple(t)
	})
	if err != nil {
		return stats, err
	}
	stats.Statements = nw.Count()

	if provenance {
		err = engine.ForEach(ctx, b, bld.Provenance(), func(a rdf.AnnotatedTriple) error {
			return nw.WriteAnnotated(a)
		})
		if err != nil {
			return stats, err
		}
		stats.Annotations = nw.Count() - stats.Statements
	}

	return stats, nw.Flush()
}
