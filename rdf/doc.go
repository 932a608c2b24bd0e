// Package rdf defines the RDF term model used throughout wikiflow.
//
// Terms are small comparable values: they can be used as map keys and
// compared with ==. Every IRI is created through a Vocabulary, which is the
// explicit interning context of a process:
//
//   - IRIs listed in the vocabulary's constants table become a ConstIRI.
//   - IRIs of the form prefix + letter + decimal id (for a known prefix, e.g.
//     http://www.wikidata.org/entity/Q42) become a NumericIRI.
//   - Everything else stays a plain IRI string.
//
// Because construction is canonical, two IRIs built from the same string by
// the same Vocabulary are always ==, whichever representation they use.
//
// # Quick Start
//
//	vocab := rdf.DefaultVocabulary()
//	t := rdf.Triple{
//	    Subject:   vocab.IRI("http://www.wikidata.org/entity/Q42"),
//	    Predicate: vocab.IRI("http://www.w3.org/2000/01/rdf-schema#label"),
//	    Object:    rdf.LangLiteral("Douglas Adams", "en"),
//	}
//	fmt.Println(t) // N-Triples form
package rdf
