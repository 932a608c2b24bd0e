package wikiflow

import (
	"context"
	"errors"
	"iter"
	"os"
	"sync/atomic"
	"time"

	"github.com/hupe1980/wikiflow/blobstore"
	"github.com/hupe1980/wikiflow/cluster"
	"github.com/hupe1980/wikiflow/engine"
	"github.com/hupe1980/wikiflow/internal/cache"
	"github.com/hupe1980/wikiflow/internal/resource"
	"github.com/hupe1980/wikiflow/partition"
	"github.com/hupe1980/wikiflow/plan"
	"github.com/hupe1980/wikiflow/rdf"
)

// backend is an evaluator owned by a Flow.
type backend interface {
	engine.Backend
	Reset()
}

// Flow couples a partition store with an evaluation engine.
//
// Flow implements engine.Backend, so the engine helpers (engine.Collect,
// engine.Count, engine.Groups, ...) accept it directly. Errors are
// translated to the sentinels of this package.
//
// Flow is safe for concurrent use.
type Flow struct {
	opts     options
	store    blobstore.BlobStore
	cache    cache.BlockCache
	rc       *resource.Controller
	resolver *partition.Resolver
	backend  backend
	name     string
	logger   *Logger
	closed   atomic.Bool
}

var _ engine.Backend = (*Flow)(nil)

// Open creates a Flow. Without a Local or Remote option partitions are
// kept in memory.
func Open(ctx context.Context, optFns ...Option) (*Flow, error) {
	opts := applyOptions(optFns)

	store := opts.store
	switch {
	case opts.localDir != "":
		if err := os.MkdirAll(opts.localDir, 0o755); err != nil {
			return nil, err
		}
		store = blobstore.NewLocalStore(opts.localDir)
	case store == nil:
		store = blobstore.NewMemoryStore()
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   opts.memoryLimit,
		MaxConcurrentLoads: opts.maxLoads,
		IOLimitBytesPerSec: opts.ioLimit,
	})

	f := &Flow{opts: opts, rc: rc}

	if opts.blockCacheBytes > 0 {
		f.cache = cache.NewShardedLRUBlockCache(opts.blockCacheBytes, nil)
		store = blobstore.NewCachingStore(store, f.cache, blobstore.DefaultBlockSize)
	}
	f.store = store

	obs := observer{c: opts.metricsCollector}
	f.resolver = partition.NewResolver(store, f.partitionOptions(obs)...)

	if opts.buckets > 0 {
		f.name = "cluster"
		f.backend = cluster.New(
			cluster.WithBuckets(opts.buckets),
			cluster.WithParallelism(opts.parallelism),
			cluster.WithLogger(opts.logger.Logger),
			cluster.WithVocabulary(opts.vocab),
			cluster.WithPartitions(f.resolver),
		)
	} else {
		f.name = "local"
		f.backend = engine.New(
			engine.WithParallelism(opts.parallelism),
			engine.WithLogger(opts.logger.Logger),
			engine.WithMetrics(obs),
			engine.WithVocabulary(opts.vocab),
			engine.WithPartitions(f.resolver),
			engine.WithResourceController(rc),
		)
	}
	f.logger = opts.logger.WithBackend(f.name)

	keys, err := f.resolver.Keys(ctx)
	if err != nil {
		_ = f.Close()
		return nil, translateError(err)
	}
	f.logger.DebugContext(ctx, "flow opened", "partitions", len(keys))

	return f, nil
}

func (f *Flow) partitionOptions(obs observer) []partition.Option {
	return []partition.Option{
		partition.WithPrefix(f.opts.prefix),
		partition.WithCompression(f.opts.compression),
		partition.WithVocabulary(f.opts.vocab),
		partition.WithResourceController(f.rc),
		partition.WithLogger(f.opts.logger.Logger),
		partition.WithMetrics(obs),
	}
}

// Store returns the blob store holding the partitions.
func (f *Flow) Store() blobstore.BlobStore { return f.store }

// Vocabulary returns the IRI interning context.
func (f *Flow) Vocabulary() *rdf.Vocabulary { return f.opts.vocab }

// Backend returns "local" or "cluster".
func (f *Flow) Backend() string { return f.name }

// Parts implements engine.Backend.
func (f *Flow) Parts(ctx context.Context, n *plan.Node) ([]engine.Part, error) {
	if f.closed.Load() {
		return nil, ErrClosed
	}
	parts, err := f.backend.Parts(ctx, n)
	return parts, translateError(err)
}

// Collect implements engine.Backend.
func (f *Flow) Collect(ctx context.Context, n *plan.Node) ([]any, error) {
	if f.closed.Load() {
		return nil, ErrClosed
	}
	start := time.Now()
	items, err := f.backend.Collect(ctx, n)
	err = translateError(err)
	f.logger.LogEvaluate(ctx, n.Op().String(), len(items), time.Since(start), err)
	return items, err
}

// Groups implements engine.Backend.
func (f *Flow) Groups(ctx context.Context, n *plan.Node) (engine.GroupView, error) {
	if f.closed.Load() {
		return nil, ErrClosed
	}
	g, err := f.backend.Groups(ctx, n)
	return g, translateError(err)
}

// Reset drops every memoized result.
func (f *Flow) Reset() {
	f.backend.Reset()
}

// NewPartitionWriter returns a writer into the flow's store using the
// flow's prefix, compression and IO limit. Call Reset after closing it if
// plans already read the affected partitions.
func (f *Flow) NewPartitionWriter(optFns ...partition.Option) (*partition.Writer, error) {
	if f.closed.Load() {
		return nil, ErrClosed
	}
	opts := append(f.partitionOptions(observer{c: f.opts.metricsCollector}), optFns...)
	return partition.NewWriter(f.store, opts...), nil
}

// Partition buckets statements by predicate into the store and returns the
// keys written. Memoized results are dropped afterwards.
func (f *Flow) Partition(ctx context.Context, seq iter.Seq2[rdf.Triple, error], optFns ...partition.Option) ([]string, error) {
	w, err := f.NewPartitionWriter(optFns...)
	if err != nil {
		return nil, err
	}

	var n int64
	counted := func(yield func(rdf.Triple, error) bool) {
		for t, err := range seq {
			if err == nil {
				n++
			}
			if !yield(t, err) {
				return
			}
		}
	}

	err = w.WriteAll(ctx, counted)
	err = errors.Join(err, w.Close())
	keys := w.Keys()
	f.Reset()

	err = translateError(err)
	f.logger.LogPartition(ctx, n, len(keys), err)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Keys lists the stored partition keys in ascending order.
func (f *Flow) Keys(ctx context.Context) ([]string, error) {
	if f.closed.Load() {
		return nil, ErrClosed
	}
	keys, err := f.resolver.Keys(ctx)
	return keys, translateError(err)
}

// MemoryUsage returns the bytes currently reserved by memoized results.
func (f *Flow) MemoryUsage() int64 { return f.rc.MemoryUsage() }

// Close releases memoized results, the engine's workers and the block cache.
// Close is idempotent.
func (f *Flow) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if c, ok := f.backend.(interface{ Close() error }); ok {
		err = c.Close()
	} else {
		f.backend.Reset()
	}
	if f.cache != nil {
		err = errors.Join(err, f.cache.Close())
	}
	f.logger.LogClose(context.Background(), err)
	return err
}
