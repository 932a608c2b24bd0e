package partition

import (
	"context"
	"errors"
	"io"
	"iter"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/wikiflow/blobstore"
	"github.com/hupe1980/wikiflow/codec"
	"github.com/hupe1980/wikiflow/internal/resource"
	"github.com/hupe1980/wikiflow/rdf"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("partition: writer closed")

// Writer routes statements to one codec writer per key.
//
// Writer is safe for concurrent use.
type Writer struct {
	store blobstore.BlobStore
	opts  options

	mu     sync.Mutex
	parts  map[string]*part
	closed bool
}

// part owns the single codec writer of one key.
type part struct {
	mu    sync.Mutex
	key   string
	blob  blobstore.WritableBlob
	bytes *countingWriter
	fw    *codec.FileWriter
	err   error
}

// NewWriter creates a writer storing partitions in store.
func NewWriter(store blobstore.BlobStore, optFns ...Option) *Writer {
	return &Writer{
		store: store,
		opts:  applyOptions(optFns),
		parts: make(map[string]*part),
	}
}

func (w *Writer) part(key string) (*part, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrClosed
	}
	p, ok := w.parts[key]
	if !ok {
		p = &part{key: key}
		w.parts[key] = p
	}
	return p, nil
}

// Write appends t to the partition of its key. The blob of a key is
// created on its first statement.
func (w *Writer) Write(ctx context.Context, t rdf.Triple) error {
	p, err := w.part(w.opts.keyFn(t))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	if p.fw == nil {
		if p.err = w.open(ctx, p); p.err != nil {
			return p.err
		}
	}
	if p.err = p.fw.Write(t); p.err != nil {
		return p.err
	}
	return nil
}

func (w *Writer) open(ctx context.Context, p *part) error {
	blob, err := w.store.Create(ctx, BlobName(w.opts.prefix, p.key))
	if err != nil {
		return err
	}
	p.blob = blob
	p.bytes = &countingWriter{w: resource.NewRateLimitedWriter(ctx, blob, w.opts.rc)}
	p.fw, err = codec.NewFileWriter(p.bytes, w.opts.compression)
	return err
}

// WriteAll writes every statement of seq and stops at the first error.
func (w *Writer) WriteAll(ctx context.Context, seq iter.Seq2[rdf.Triple, error]) error {
	i := 0
	for t, err := range seq {
		if err != nil {
			return err
		}
		if i++; i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := w.Write(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns the sorted keys written so far.
func (w *Writer) Keys() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Sorted(maps.Keys(w.parts))
}

// Close flushes and closes every partition concurrently and returns the
// first error. Close is idempotent.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	parts := slices.Collect(maps.Values(w.parts))
	w.mu.Unlock()

	var g errgroup.Group
	for _, p := range parts {
		g.Go(func() error { return w.finish(p) })
	}
	return g.Wait()
}

func (w *Writer) finish(p *part) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.blob == nil {
		return p.err
	}
	err := p.err
	if err == nil {
		err = p.fw.Close()
	}
	if err == nil {
		err = p.blob.Close()
	} else {
		// A failed partition is never published.
		err = errors.Join(err, p.blob.Abort())
	}
	if err != nil {
		w.opts.logger.Error("partition write failed", "key", p.key, "error", err)
		return err
	}

	n, size := p.fw.Count(), p.bytes.n.Load()
	w.opts.metrics.OnPartitionWrite(p.key, n, size)
	w.opts.logger.Debug("partition written", "key", p.key, "statements", n, "bytes", size)
	return nil
}

type countingWriter struct {
	w io.Writer
	n atomic.Int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n.Add(int64(n))
	return n, err
}
