package minio

import (
	"io"
	"os"
	"testing"

	"github.com/hupe1980/wikiflow/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStore_Integration needs a MinIO server; set MINIO_ENDPOINT to run it.
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_ENDPOINT not set")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4("minioadmin", "minioadmin", ""),
	})
	require.NoError(t, err)

	ctx := t.Context()
	const bucket = "wikiflow-test"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "/it/")

	require.NoError(t, store.Put(ctx, "P31.wkf", []byte("hello minio world")))

	blob, err := store.Open(ctx, "P31.wkf")
	require.NoError(t, err)
	assert.Equal(t, int64(17), blob.Size())

	all, err := io.ReadAll(blobstore.NewReader(ctx, blob))
	require.NoError(t, err)
	assert.Equal(t, "hello minio world", string(all))

	rc, err := blob.ReadRange(ctx, 6, 5)
	require.NoError(t, err)
	part, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(part))
	require.NoError(t, blob.Close())

	w, err := store.Create(ctx, "P279.wkf")
	require.NoError(t, err)
	_, err = w.Write([]byte("streamed"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	names, err := store.List(ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, []string{"P279.wkf", "P31.wkf"}, names)

	require.NoError(t, store.Delete(ctx, "P31.wkf"))
	require.NoError(t, store.Delete(ctx, "P279.wkf"))
	_, err = store.Open(ctx, "P31.wkf")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestNewStore_Prefix(t *testing.T) {
	assert.Equal(t, "a/b/x", NewStore(nil, "b", "/a/b/").key("x"))
	assert.Equal(t, "x", NewStore(nil, "b", "").key("x"))
}
