package cluster

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/wikiflow/engine"
	"github.com/hupe1980/wikiflow/rdf"
)

type options struct {
	buckets     int
	parallelism int
	logger      *slog.Logger
	vocab       *rdf.Vocabulary
	files       engine.FileOpener
	partitions  engine.Partitions
}

// Option configures an Engine.
type Option func(*options)

// WithBuckets sets the number of shuffle buckets.
func WithBuckets(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.buckets = n
		}
	}
}

// WithParallelism bounds the number of buckets processed at once.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
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

// WithVocabulary sets the interning context used by file sources.
func WithVocabulary(v *rdf.Vocabulary) Option {
	return func(o *options) {
		if v != nil {
			o.vocab = v
		}
	}
}

// WithFileOpener replaces os.Open for NTriples and TSV sources.
func WithFileOpener(f engine.FileOpener) Option {
	return func(o *options) {
		if f != nil {
			o.files = f
		}
	}
}

// WithPartitions sets the resolver for Partition sources.
func WithPartitions(p engine.Partitions) Option {
	return func(o *options) {
		o.partitions = p
	}
}

func defaultOptions() options {
	return options{
		buckets:     8,
		parallelism: runtime.GOMAXPROCS(0),
		logger:      slog.New(slog.DiscardHandler),
		vocab:       rdf.DefaultVocabulary(),
	}
}
