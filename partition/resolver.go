package partition

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/hupe1980/wikiflow/blobstore"
	"github.com/hupe1980/wikiflow/codec"
	"github.com/hupe1980/wikiflow/rdf"
)

// Resolver reads partitions written by a Writer with the same prefix.
type Resolver struct {
	store blobstore.BlobStore
	opts  options
}

// NewResolver creates a resolver over store.
func NewResolver(store blobstore.BlobStore, optFns ...Option) *Resolver {
	return &Resolver{store: store, opts: applyOptions(optFns)}
}

// Open returns the statements stored under key in write order.
//
// A missing partition is logged at warn level and yields nothing.
func (r *Resolver) Open(ctx context.Context, key string) iter.Seq2[rdf.Triple, error] {
	return func(yield func(rdf.Triple, error) bool) {
		name := BlobName(r.opts.prefix, key)
		blob, err := r.store.Open(ctx, name)
		if errors.Is(err, blobstore.ErrNotFound) {
			r.opts.logger.Warn("partition missing", "key", key, "blob", name)
			return
		}
		if err != nil {
			yield(rdf.Triple{}, err)
			return
		}
		defer blob.Close()

		fr, err := codec.NewFileReader(reader(ctx, blob), r.opts.vocab)
		if err != nil {
			yield(rdf.Triple{}, err)
			return
		}
		defer fr.Close()

		for t, err := range fr.All() {
			if !yield(t, err) || err != nil {
				return
			}
		}
	}
}

// reader prefers the zero-copy view of memory-mapped blobs.
func reader(ctx context.Context, blob blobstore.Blob) io.Reader {
	if m, ok := blob.(blobstore.Mappable); ok {
		if data, err := m.Bytes(); err == nil {
			return bytes.NewReader(data)
		}
	}
	return blobstore.NewReader(ctx, blob)
}

// Keys lists the keys that have a stored partition.
func (r *Resolver) Keys(ctx context.Context) ([]string, error) {
	names, err := r.store.List(ctx, strings.Trim(r.opts.prefix, "/"))
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, name := range names {
		if key, ok := keyOf(r.opts.prefix, name); ok {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}
