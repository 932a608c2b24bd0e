package cache

import "context"

// CacheKey identifies one block of one blob.
type CacheKey struct {
	// Path is the blob name inside its store.
	Path string
	// Block is the block index (byte offset / block size).
	Block uint64
}

// BlockCache is a byte-oriented cache for immutable blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok=false if missing.
	Get(ctx context.Context, key CacheKey) (b []byte, ok bool)
	// Set caches a block. The cache retains b; callers must not modify it.
	Set(ctx context.Context, key CacheKey, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key CacheKey) bool)
	Close() error
	Stats() (hits, misses int64)
}

// ForPath returns a predicate selecting every block of the named blob.
func ForPath(path string) func(CacheKey) bool {
	return func(k CacheKey) bool { return k.Path == path }
}
