// Package cache provides in-memory LRU caches for immutable blob blocks.
//
// Partition blobs are write-once, so a block cached under its blob name and
// block index stays valid until the blob is deleted or replaced; the caching
// blob store invalidates by name on Put and Delete.
//
// ShardedLRUBlockCache spreads keys over 64 LRU shards to keep lock
// contention low when many partition loads read concurrently. Both caches
// charge their bytes to an optional resource.Controller and skip caching
// when the controller refuses.
package cache
