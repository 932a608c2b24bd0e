package engine

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"os"
	"runtime"

	"github.com/hupe1980/wikiflow/internal/resource"
	"github.com/hupe1980/wikiflow/rdf"
)

// FileOpener opens the text file behind an NTriples or TSV source.
type FileOpener func(ctx context.Context, path string) (io.ReadCloser, error)

// Partitions resolves the statements stored under a partition key.
// A key without a stored partition yields an empty sequence.
type Partitions interface {
	Open(ctx context.Context, key string) iter.Seq2[rdf.Triple, error]
}

type options struct {
	parallelism int
	pool        *WorkerPool
	logger      *slog.Logger
	metrics     MetricsObserver
	vocab       *rdf.Vocabulary
	files       FileOpener
	partitions  Partitions
	rc          *resource.Controller
}

// Option configures an Engine.
type Option func(*options)

func defaultOptions() options {
	return options{
		parallelism: runtime.GOMAXPROCS(0),
		logger:      slog.New(slog.DiscardHandler),
		metrics:     NoopMetricsObserver{},
		vocab:       rdf.DefaultVocabulary(),
		files:       openFile,
	}
}

func openFile(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// WithParallelism sets the number of parts sources are split into and, unless
// WithWorkerPool is given, the size of the engine's pool.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// WithWorkerPool shares an existing pool. The engine does not close it.
func WithWorkerPool(wp *WorkerPool) Option {
	return func(o *options) {
		o.pool = wp
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics observer.
func WithMetrics(m MetricsObserver) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithVocabulary sets the interning context used by file sources.
func WithVocabulary(v *rdf.Vocabulary) Option {
	return func(o *options) {
		if v != nil {
			o.vocab = v
		}
	}
}

// WithFileOpener replaces os.Open for NTriples and TSV sources.
func WithFileOpener(f FileOpener) Option {
	return func(o *options) {
		if f != nil {
			o.files = f
		}
	}
}

// WithPartitions sets the resolver for Partition sources. Without one every
// partition is missing.
func WithPartitions(p Partitions) Option {
	return func(o *options) {
		o.partitions = p
	}
}

// WithResourceController bounds memo memory and concurrent partition loads.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}
