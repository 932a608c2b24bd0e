// Package resource implements the Controller for global limits.
//
// The Controller manages three resource types:
//
//   - Memory: accounting for memoized results (non-blocking, fail-fast)
//   - Loads: bound on concurrently open partition reads
//   - IO: rate limit for partition blob writes
//
// # Memory Management
//
// AcquireMemory is non-blocking and returns ErrMemoryLimitExceeded if the
// limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 8 << 30,
//	})
//
//	if err := rc.AcquireMemory(estimate); err != nil {
//	    return err
//	}
//	defer rc.ReleaseMemory(estimate)
//
// # Partition Loads
//
//	if err := rc.AcquireLoad(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseLoad()
//
// # IO Rate Limiting
//
//	w := resource.NewRateLimitedWriter(ctx, blob, rc)
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
