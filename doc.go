// Package wikiflow evaluates lazy dataflow plans over RDF knowledge graphs.
//
// Plans are built with package plan: typed, structurally deduplicated DAGs of
// operators (sources, map, filter, union, joins, anti-joins, transitive
// closure, grouping, cache). A Flow evaluates them on a local parallel engine
// or on the shuffle-partitioned cluster engine; both produce the same
// multisets.
//
// # Quick Start
//
//	ctx := context.Background()
//	flow, err := wikiflow.Open(ctx, wikiflow.Local("./partitions"))
//	if err != nil {
//	    return err
//	}
//	defer flow.Close()
//
//	// Bucket a dump by predicate once.
//	keys, err := flow.Partition(ctx, ntriples.NewReader(dump, flow.Vocabulary()).All())
//
//	// Then load only the predicates a derivation needs.
//	instanceOf := plan.Partition(rdf.NamespaceDirect + "P31")
//	humans, err := engine.Count(ctx, flow, instanceOf.Filter(isHuman))
//
// # Storage
//
// Partitions live in a blobstore.BlobStore: Local (filesystem, mmap reads),
// Remote (any store, e.g. s3.Store or minio.Store) or the in-memory default.
// WithBlockCache puts an LRU block cache in front of remote stores.
//
// # Resources
//
// WithMemoryLimit bounds the bytes held by cached results, WithIOLimit
// rate-limits partition writes and WithMaxConcurrentLoads bounds the number
// of partitions read at once.
//
// # Observability
//
// WithLogger takes a *Logger (log/slog); WithMetricsCollector receives
// materialization, cache, closure and partition events. See metrics/prom for
// a Prometheus collector.
package wikiflow
