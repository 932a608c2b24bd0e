// Package plan describes dataflow computations as immutable operator graphs.
//
// A plan is built bottom-up from sources (in-memory collections, N-Triples
// files, binary partitions, TSV mapping tables) with a fluent API. Building
// never executes anything:
//
//	classes := plan.FromPairs(mapping...)
//	instances := plan.KeyBy(triples.Filter(isInstanceOf), plan.KeyFn("object-subject", objectSubject))
//	typed := instances.JoinKeys(classes.Keys())
//
// Two families of plans exist: Plan[T] is an unordered multiset of T and
// PairPlan[K, V] an unordered multiset of (K, V) pairs. Both wrap a *Node.
//
// Nodes are compared structurally: two independently built subtrees with the
// same operators, parameters and sources are Equal and share a Digest. The
// evaluators use this as their memoization key, so a repeated subtree is
// computed once.
//
// Functions are plan parameters with a stable name. Two function parameters
// are considered equal iff their names are equal, which lets any back end
// identify behavior without serializing closures. A function with an empty
// name is never equal to another function.
package plan
