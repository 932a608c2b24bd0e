// Package cluster is a second interpreter of plan graphs that evaluates them
// the way a shuffle-based distributed engine does.
//
// Every intermediate result is a dataset of N buckets. Element-wise
// operators run per bucket. Keyed operators (joins, intersections,
// anti-joins, distinct, aggregation) first shuffle their inputs so that
// equal keys land in the same bucket and then run bucket-locally. Closures
// are computed by semi-naive iteration: each round joins only the newly
// derived facts (the delta) with the relation, until a round derives
// nothing new.
//
// The results are equal, as unordered multisets, to those of the local
// engine; the two back ends are interchangeable behind engine.Backend.
package cluster
