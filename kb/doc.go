// Package kb derives a schema.org knowledge base from a predicate-partitioned
// Wikidata dump.
//
// The derivation is an ordinary plan graph:
//
//   - every entity's classes are the transitive closure of its P31
//     (instance of) values over P279 (subclass of);
//   - classes found in the class mapping become rdf:type schema.org types,
//     and instances of excluded classes are dropped;
//   - statements of mapped properties are renamed to their schema.org
//     property and kept for typed entities only;
//   - optionally, every derived statement is annotated with the Wikidata
//     class or property it came from (prov:wasDerivedFrom).
//
// The mapping tables are plain in-memory seed collections; DefaultMapping
// carries a small built-in table.
package kb
