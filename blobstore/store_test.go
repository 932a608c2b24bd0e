package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/wikiflow/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]BlobStore {
	return map[string]BlobStore{
		"local":  NewLocalStore(t.TempDir()),
		"memory": NewMemoryStore(),
	}
}

func TestStore_Lifecycle(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			data := []byte("<http://example.org/s> <http://example.org/p> \"o\" .")

			w, err := store.Create(ctx, "parts/P31.wkf")
			require.NoError(t, err)
			n, err := w.Write(data)
			require.NoError(t, err)
			require.Equal(t, len(data), n)
			require.NoError(t, w.Sync())
			require.NoError(t, w.Close())

			blob, err := store.Open(ctx, "parts/P31.wkf")
			require.NoError(t, err)
			defer blob.Close()
			require.Equal(t, int64(len(data)), blob.Size())

			buf := make([]byte, 4)
			n, err = blob.ReadAt(ctx, buf, 1)
			require.NoError(t, err)
			assert.Equal(t, "http", string(buf[:n]))

			tail := make([]byte, 10)
			n, err = blob.ReadAt(ctx, tail, int64(len(data)-3))
			assert.ErrorIs(t, err, io.EOF)
			assert.Equal(t, "\" .", string(tail[:n]))

			rc, err := blob.ReadRange(ctx, 1, 4)
			require.NoError(t, err)
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, "http", string(got))

			all, err := io.ReadAll(NewReader(ctx, blob))
			require.NoError(t, err)
			assert.Equal(t, data, all)
		})
	}
}

func TestStore_AbortDiscardsBlob(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			require.NoError(t, store.Put(ctx, "parts/P279.wkf", []byte("old")))

			w, err := store.Create(ctx, "parts/P31.wkf")
			require.NoError(t, err)
			_, err = w.Write([]byte("partial"))
			require.NoError(t, err)
			require.NoError(t, w.Abort())

			_, err = store.Open(ctx, "parts/P31.wkf")
			assert.ErrorIs(t, err, ErrNotFound)

			w, err = store.Create(ctx, "parts/P279.wkf")
			require.NoError(t, err)
			_, err = w.Write([]byte("new"))
			require.NoError(t, err)
			require.NoError(t, w.Abort())

			names, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []string{"parts/P279.wkf"}, names)

			blob, err := store.Open(ctx, "parts/P279.wkf")
			require.NoError(t, err)
			defer blob.Close()
			got, err := io.ReadAll(NewReader(ctx, blob))
			require.NoError(t, err)
			assert.Equal(t, "old", string(got), "an aborted overwrite keeps the previous blob")
		})
	}
}

func TestStore_PutListDelete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()
			require.NoError(t, store.Put(ctx, "b/P279.wkf", []byte("x")))
			require.NoError(t, store.Put(ctx, "b/P31.wkf", []byte("y")))
			require.NoError(t, store.Put(ctx, "c/other", nil))

			names, err := store.List(ctx, "b/")
			require.NoError(t, err)
			assert.Equal(t, []string{"b/P279.wkf", "b/P31.wkf"}, names)

			names, err = store.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, names, 3)

			empty, err := store.Open(ctx, "c/other")
			require.NoError(t, err)
			assert.Zero(t, empty.Size())
			require.NoError(t, empty.Close())

			require.NoError(t, store.Delete(ctx, "b/P31.wkf"))
			require.NoError(t, store.Delete(ctx, "b/P31.wkf"))

			_, err = store.Open(ctx, "b/P31.wkf")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLocalStore_NoPartialBlobs(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	ctx := t.Context()

	w, err := store.Create(ctx, "parts/P31.wkf")
	require.NoError(t, err)
	_, err = w.Write([]byte("half"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "parts", "P31.wkf"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, w.Close())
	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"parts/P31.wkf"}, names)
}

func TestLocalStore_FailedWriteLeavesNoBlob(t *testing.T) {
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("P31", fs.Fault{FailAfterBytes: 4})
	ffs.AddRule("P279", fs.Fault{FailAfterBytes: -1, FailOnRename: true})

	store := NewLocalStore(t.TempDir(), WithFileSystem(ffs))
	ctx := t.Context()

	err := store.Put(ctx, "parts/P31.wkf", []byte("too long"))
	require.ErrorIs(t, err, fs.ErrInjected)

	w, err := store.Create(ctx, "parts/P279.wkf")
	require.NoError(t, err)
	_, err = w.Write([]byte("complete"))
	require.NoError(t, err)
	require.ErrorIs(t, w.Close(), fs.ErrInjected)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names, "temporary files must be removed")

	require.NoError(t, store.Put(ctx, "parts/P17.wkf", []byte("ok")))
	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"parts/P17.wkf"}, names)
}

func TestLocalStore_Mappable(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := t.Context()
	require.NoError(t, store.Put(ctx, "m", []byte("mapped")))

	blob, err := store.Open(ctx, "m")
	require.NoError(t, err)
	m, ok := blob.(Mappable)
	require.True(t, ok)
	data, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "mapped", string(data))
	require.NoError(t, blob.Close())
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "absent"))
	names, err := store.List(t.Context(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := NewLocalStore(t.TempDir()).Open(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
