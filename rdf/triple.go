package rdf

// Triple is an RDF statement.
//
// Subject is a NamedNode or BlankNode, Predicate a NamedNode and Object any
// Term. Triples are comparable.
type Triple struct {
	Subject   Term
	Predicate NamedNode
	Object    Term
}

// String returns the N-Triples line for t, without the trailing newline.
func (t Triple) String() string {
	return t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String() + " ."
}

// AnnotatedTriple is a statement about a statement, used for provenance.
type AnnotatedTriple struct {
	Subject   Triple
	Predicate NamedNode
	Object    Term
}

// String returns the N-Triples-star line for a.
func (a AnnotatedTriple) String() string {
	s := a.Subject
	return "<< " + s.Subject.String() + " " + s.Predicate.String() + " " + s.Object.String() + " >> " +
		a.Predicate.String() + " " + a.Object.String() + " ."
}
