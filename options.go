package wikiflow

import (
	"log/slog"

	"github.com/hupe1980/wikiflow/blobstore"
	"github.com/hupe1980/wikiflow/codec"
	"github.com/hupe1980/wikiflow/rdf"
)

type options struct {
	store            blobstore.BlobStore
	localDir         string
	buckets          int
	parallelism      int
	metricsCollector MetricsCollector
	logger           *Logger
	vocab            *rdf.Vocabulary
	memoryLimit      int64
	ioLimit          int64
	maxLoads         int64
	prefix           string
	compression      codec.Compression
	blockCacheBytes  int64
}

// Option configures Open.
type Option func(*options)

// Local stores partitions as files under dir. Blobs are memory-mapped for
// reading.
func Local(dir string) Option {
	return func(o *options) {
		o.localDir = dir
		o.store = nil
	}
}

// Remote stores partitions in an existing store, e.g. an s3.Store or a
// minio.Store.
func Remote(store blobstore.BlobStore) Option {
	return func(o *options) {
		o.store = store
		o.localDir = ""
	}
}

// WithCluster evaluates plans on the shuffle-partitioned engine with the
// given number of buckets. Zero or less keeps the local engine.
func WithCluster(buckets int) Option {
	return func(o *options) {
		o.buckets = buckets
	}
}

// WithParallelism sets the number of workers (local) or concurrently
// processed buckets (cluster). Defaults to GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// evaluation and partitioning.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &wikiflow.BasicMetricsCollector{}
//	flow, _ := wikiflow.Open(ctx, wikiflow.WithMetricsCollector(metrics))
//	// ... evaluate plans ...
//	stats := metrics.GetStats()
//	fmt.Printf("Materialized: %d, Cache hits: %d\n", stats.MaterializeCount, stats.CacheHits)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := wikiflow.NewJSONLogger(slog.LevelInfo)
//	flow, _ := wikiflow.Open(ctx, wikiflow.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithVocabulary sets the IRI interning context. Partitions must be read
// with the vocabulary they were written with.
func WithVocabulary(v *rdf.Vocabulary) Option {
	return func(o *options) {
		if v != nil {
			o.vocab = v
		}
	}
}

// WithMemoryLimit bounds the bytes held by memoized results. Exceeding it
// fails evaluation with ErrMemoryLimit.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit rate-limits partition writes to bytesPerSec.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithMaxConcurrentLoads bounds the number of partitions read at once.
func WithMaxConcurrentLoads(n int64) Option {
	return func(o *options) {
		o.maxLoads = n
	}
}

// WithPartitionPrefix places partition blobs under prefix.
func WithPartitionPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithCompression sets the compression of newly written partitions.
// Readers detect it from the file header.
func WithCompression(c codec.Compression) Option {
	return func(o *options) {
		if c != nil {
			o.compression = c
		}
	}
}

// WithBlockCache caches partition reads in an LRU of the given capacity.
// Useful in front of remote stores.
func WithBlockCache(bytes int64) Option {
	return func(o *options) {
		o.blockCacheBytes = bytes
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		vocab:            rdf.DefaultVocabulary(),
		compression:      codec.Zstd{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
