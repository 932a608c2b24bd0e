// Package multimap provides key to many-values maps backing hash joins and
// transitive closures.
//
// Two variants exist:
//   - Bag keeps every inserted pair, duplicates included.
//   - Set ignores a Put of a pair that is already present.
//
// Both support splitting iteration into disjoint key ranges so that several
// goroutines can consume a multimap without building a combined collection.
// Multimaps are not safe for concurrent mutation; concurrent reads are fine.
package multimap
