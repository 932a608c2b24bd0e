package blobstore

import (
	"bytes"
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/wikiflow/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts backend reads issued through its blobs.
type countingStore struct {
	*MemoryStore
	reads atomic.Int64
}

func (s *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.MemoryStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingBlob{Blob: b, reads: &s.reads}, nil
}

type countingBlob struct {
	Blob
	reads *atomic.Int64
}

func (b *countingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	b.reads.Add(1)
	return b.Blob.ReadAt(ctx, p, off)
}

func TestCachingStore_ReadThrough(t *testing.T) {
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	data := bytes.Repeat([]byte("0123456789"), 10)
	require.NoError(t, inner.Put(t.Context(), "p", data))

	store := NewCachingStore(inner, cache.NewLRUBlockCache(1<<10, nil), 16)
	ctx := t.Context()

	blob, err := store.Open(ctx, "p")
	require.NoError(t, err)
	defer blob.Close()

	buf := make([]byte, 40)
	n, err := blob.ReadAt(ctx, buf, 5)
	require.NoError(t, err)
	assert.Equal(t, data[5:45], buf[:n])
	assert.Equal(t, int64(1), inner.reads.Load(), "one run fetches all missing blocks")

	n, err = blob.ReadAt(ctx, buf, 5)
	require.NoError(t, err)
	assert.Equal(t, data[5:45], buf[:n])
	assert.Equal(t, int64(1), inner.reads.Load(), "second read is served from cache")

	tail := make([]byte, 10)
	n, err = blob.ReadAt(ctx, tail, 95)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, data[95:], tail[:n])

	_, err = blob.ReadAt(ctx, tail, 100)
	assert.ErrorIs(t, err, io.EOF)

	all, err := io.ReadAll(NewReader(ctx, blob))
	require.NoError(t, err)
	assert.Equal(t, data, all)

	rc, err := blob.ReadRange(ctx, 90, 50)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data[90:], got)
}

func TestCachingStore_Invalidates(t *testing.T) {
	inner := NewMemoryStore()
	c := cache.NewLRUBlockCache(1<<10, nil)
	store := NewCachingStore(inner, c, 4)
	ctx := t.Context()

	read := func() string {
		b, err := store.Open(ctx, "k")
		require.NoError(t, err)
		defer b.Close()
		out, err := io.ReadAll(NewReader(ctx, b))
		require.NoError(t, err)
		return string(out)
	}

	require.NoError(t, store.Put(ctx, "k", []byte("old value")))
	assert.Equal(t, "old value", read())
	assert.Positive(t, c.Len())

	w, err := store.Create(ctx, "k")
	require.NoError(t, err)
	_, err = w.Write([]byte("new value"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, "new value", read())

	require.NoError(t, store.Delete(ctx, "k"))
	assert.Zero(t, c.Len())
	_, err = store.Open(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
