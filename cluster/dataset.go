package cluster

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/wikiflow/plan"
)

// dataset is a bucketed multiset. Pair datasets hold plan.KV values.
type dataset [][]any

func (d dataset) len() int {
	n := 0
	for _, b := range d {
		n += len(b)
	}
	return n
}

func (d dataset) flatten() []any {
	out := make([]any, 0, d.len())
	for _, b := range d {
		out = append(out, b...)
	}
	return out
}

// hashOf hashes a comparable value by its dynamic type and printed form.
// Equal values print equally, so they land in the same bucket.
func hashOf(v any) uint64 {
	h := xxhash.New()
	fmt.Fprintf(h, "%T\x00%v", v, v)
	return h.Sum64()
}

// scatter distributes items round-robin over n buckets.
func scatter(items []any, n int) dataset {
	d := make(dataset, n)
	for i, v := range items {
		d[i%n] = append(d[i%n], v)
	}
	return d
}

// shuffle repartitions d so that elements with equal keys share a bucket.
func shuffle(d dataset, n int, key func(any) any) dataset {
	out := make(dataset, n)
	for _, b := range d {
		for _, v := range b {
			i := hashOf(key(v)) % uint64(n)
			out[i] = append(out[i], v)
		}
	}
	return out
}

func identity(v any) any { return v }

func pairKey(v any) any { return v.(plan.KV).Key }

func pairValue(v any) any { return v.(plan.KV).Value }

// perBucket runs f for every bucket index concurrently, bounded by limit.
func perBucket(ctx context.Context, n, limit int, f func(i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return f(i)
		})
	}
	return g.Wait()
}

// mapBuckets applies f to every element bucket by bucket.
func (e *Engine) mapBuckets(ctx context.Context, d dataset, f func(v any, emit func(any))) (dataset, error) {
	out := make(dataset, len(d))
	err := perBucket(ctx, len(d), e.opts.parallelism, func(i int) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		var b []any
		emit := func(v any) { b = append(b, v) }
		for _, v := range d[i] {
			f(v, emit)
		}
		out[i] = b
		return nil
	})
	return out, err
}

// zipBuckets runs f over matching buckets of co-partitioned datasets.
func (e *Engine) zipBuckets(ctx context.Context, left, right dataset, f func(l, r []any) []any) (dataset, error) {
	out := make(dataset, len(left))
	err := perBucket(ctx, len(left), e.opts.parallelism, func(i int) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		out[i] = f(left[i], right[i])
		return nil
	})
	return out, err
}
