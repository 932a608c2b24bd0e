// Package blobstore is the storage boundary for partition files.
//
// A BlobStore holds named, write-once blobs. The partition writer creates one
// blob per key and the partition resolver opens them for streaming reads.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, reads are memory-mapped
//   - MemoryStore: in-process map, for tests and small jobs
//   - CachingStore: block cache in front of another store
//   - minio.Store and s3.Store: object storage backends
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Open must return an error satisfying errors.Is(err, ErrNotFound) for
// missing blobs; the partition resolver treats those as empty partitions.
//
// Blob names use forward slashes regardless of the platform.
package blobstore
