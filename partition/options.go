package partition

import (
	"log/slog"

	"github.com/hupe1980/wikiflow/codec"
	"github.com/hupe1980/wikiflow/internal/resource"
	"github.com/hupe1980/wikiflow/rdf"
)

// MetricsObserver receives one event per partition written.
type MetricsObserver interface {
	OnPartitionWrite(key string, statements, bytes int64)
}

// NoopMetricsObserver discards events.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnPartitionWrite(string, int64, int64) {}

type options struct {
	prefix      string
	keyFn       KeyFunc
	compression codec.Compression
	vocab       *rdf.Vocabulary
	rc          *resource.Controller
	logger      *slog.Logger
	metrics     MetricsObserver
}

// Option configures a Writer or Resolver.
type Option func(*options)

func defaultOptions() options {
	return options{
		keyFn:       ByPredicate,
		compression: codec.Default,
		vocab:       rdf.DefaultVocabulary(),
		logger:      slog.New(slog.DiscardHandler),
		metrics:     NoopMetricsObserver{},
	}
}

func applyOptions(optFns []Option) options {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// WithPrefix places partition blobs under prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithKeyFunc replaces ByPredicate.
func WithKeyFunc(fn KeyFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.keyFn = fn
		}
	}
}

// WithCompression sets the compression of new partitions. Readers detect
// the compression from the file header.
func WithCompression(c codec.Compression) Option {
	return func(o *options) {
		if c != nil {
			o.compression = c
		}
	}
}

// WithVocabulary sets the vocabulary used to decode numeric and constant
// IRIs. It must match the vocabulary used when writing.
func WithVocabulary(v *rdf.Vocabulary) Option {
	return func(o *options) {
		if v != nil {
			o.vocab = v
		}
	}
}

// WithResourceController rate-limits blob writes.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) { o.rc = rc }
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
