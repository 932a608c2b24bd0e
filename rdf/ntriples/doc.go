// Package ntriples reads and writes line-delimited RDF.
//
// Reader parses N-Triples (one statement per line, '#' comments allowed).
// Writer emits N-Triples and, for annotated statements, the
// N-Triples-star form "<< s p o >> p o .". TSVReader reads the two-column
// tab-separated mapping tables.
package ntriples
