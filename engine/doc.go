// Package engine evaluates plan graphs on the local machine.
//
// An Engine turns a plan node into a list of Parts: independent cursors that
// can be consumed concurrently. Filters, maps and projections wrap the parts
// of their input; unions concatenate them. Operators that need random access
// by key (joins, intersections, anti-joins, closures, distinct) first drain
// one input into a multimap or key set on the shared WorkerPool and then
// stream the other input against it.
//
// # Memoization
//
// The engine keeps two memo tables keyed by structural node identity (see
// plan.Node.Equal): materialized value multisets and materialized multimaps.
// A Cache node publishes its result under itself and under its parent, so
// re-deriving the unmarked parent elsewhere still hits the cache.
//
// # Ordering
//
// Results are unordered multisets. ForEach visits parts sequentially and in
// order, so a deterministic input yields deterministic output.
//
// # Errors
//
// Every failure is fatal for the evaluation and is reported as an
// *EvaluationError naming the failing operator. Missing partitions are not a
// failure: they are logged and contribute no statements.
package engine
