package engine

import (
	"context"
	"iter"
	"time"

	"github.com/hupe1980/wikiflow/internal/keyset"
	"github.com/hupe1980/wikiflow/internal/multimap"
	"github.com/hupe1980/wikiflow/plan"
)

// Part is an independent cursor over a share of a stream. It calls yield for
// every element until yield returns false or the input is exhausted. Pair
// streams yield plan.KV values.
type Part func(yield func(any) bool) error

// transform wraps every part with f. f returns false to stop the part.
func transform(parts []Part, f func(v any, yield func(any) bool) bool) []Part {
	out := make([]Part, len(parts))
	for i, p := range parts {
		out[i] = func(yield func(any) bool) error {
			return p(func(v any) bool { return f(v, yield) })
		}
	}
	return out
}

func sliceParts(items []any, n int) []Part {
	if len(items) == 0 {
		return nil
	}
	n = max(1, min(n, len(items)))
	size := (len(items) + n - 1) / n
	parts := make([]Part, 0, n)
	for start := 0; start < len(items); start += size {
		chunk := items[start:min(start+size, len(items))]
		parts = append(parts, func(yield func(any) bool) error {
			for _, v := range chunk {
				if !yield(v) {
					return nil
				}
			}
			return nil
		})
	}
	return parts
}

func multimapParts(mm multimap.Multimap[any, any], n int) []Part {
	splits := mm.Split(n)
	parts := make([]Part, len(splits))
	for i, seq := range splits {
		parts[i] = func(yield func(any) bool) error {
			for k, v := range seq {
				if !yield(plan.KV{Key: k, Value: v}) {
					return nil
				}
			}
			return nil
		}
	}
	return parts
}

func keyParts(keys []iter.Seq[any], f func(k any, yield func(any) bool) bool) []Part {
	parts := make([]Part, len(keys))
	for i, seq := range keys {
		parts[i] = func(yield func(any) bool) error {
			for k := range seq {
				if !f(k, yield) {
					return nil
				}
			}
			return nil
		}
	}
	return parts
}

// drainParts consumes every part as a pool task, each into its own
// accumulator, and returns the accumulators in part order.
func drainParts[A any](ctx context.Context, pool *WorkerPool, parts []Part, newAcc func() A, add func(A, any) A) ([]A, error) {
	accs := make([]A, len(parts))
	err := pool.Run(ctx, len(parts), func(i int) error {
		acc := newAcc()
		err := parts[i](func(v any) bool {
			acc = add(acc, v)
			return true
		})
		accs[i] = acc
		return err
	})
	if err != nil {
		return nil, err
	}
	return accs, nil
}

// reduce drains parts and folds the partial results with merge.
func reduce[A any](ctx context.Context, pool *WorkerPool, parts []Part, newAcc func() A, add func(A, any) A, merge func(a, b A) A) (A, error) {
	accs, err := drainParts(ctx, pool, parts, newAcc, add)
	if err != nil {
		var zero A
		return zero, err
	}
	if len(accs) == 0 {
		return newAcc(), nil
	}
	acc := accs[0]
	for _, other := range accs[1:] {
		acc = merge(acc, other)
	}
	return acc, nil
}

func appendAny(acc []any, v any) []any { return append(acc, v) }

// mergeSlices appends the shorter slice to the longer one.
func mergeSlices(a, b []any) []any {
	if len(b) > len(a) {
		a, b = b, a
	}
	return append(a, b...)
}

func newBag() *multimap.Bag[any, any] { return multimap.NewBag[any, any](0) }

func putBag(b *multimap.Bag[any, any], v any) *multimap.Bag[any, any] {
	kv := v.(plan.KV)
	b.Put(kv.Key, kv.Value)
	return b
}

func mergeBags(a, b *multimap.Bag[any, any]) *multimap.Bag[any, any] { return a.PutAll(b) }

func newSet() *multimap.Set[any, any] { return multimap.NewSet[any, any](0) }

func putSet(s *multimap.Set[any, any], v any) *multimap.Set[any, any] {
	kv := v.(plan.KV)
	s.Put(kv.Key, kv.Value)
	return s
}

func mergeSets(a, b *multimap.Set[any, any]) *multimap.Set[any, any] { return a.PutAll(b) }

type valueSet map[any]struct{}

func addValue(s valueSet, v any) valueSet {
	s[v] = struct{}{}
	return s
}

func mergeValueSets(a, b valueSet) valueSet {
	if len(b) > len(a) {
		a, b = b, a
	}
	for v := range b {
		a[v] = struct{}{}
	}
	return a
}

func (s valueSet) items() []any {
	out := make([]any, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return out
}

func newKeySet() *keyset.KeySet { return keyset.New(0) }

func addKey(s *keyset.KeySet, v any) *keyset.KeySet {
	s.Add(v)
	return s
}

func mergeKeySets(a, b *keyset.KeySet) *keyset.KeySet { return a.Merge(b) }

// materializeBag returns the elements of a value plan, preferring a memoized
// result.
func (e *Engine) materializeBag(ctx context.Context, n *plan.Node) ([]any, error) {
	if items, ok := e.lookupBag(n); ok {
		e.opts.metrics.OnCacheHit(n.Op().String())
		return items, nil
	}
	start := time.Now()
	parts, err := e.eval(ctx, n)
	if err != nil {
		return nil, err
	}
	items, err := reduce(ctx, e.pool, parts, func() []any { return nil }, appendAny, mergeSlices)
	if err != nil {
		return nil, wrapErr(n.Op(), err)
	}
	e.observe(n, len(items), start)
	return items, nil
}

// materializeMap returns the pairs of a pair plan as a multimap, preferring
// a memoized result.
func (e *Engine) materializeMap(ctx context.Context, n *plan.Node) (multimap.Multimap[any, any], error) {
	if mm, ok := e.lookupMap(n); ok {
		e.opts.metrics.OnCacheHit(n.Op().String())
		return mm, nil
	}
	start := time.Now()
	parts, err := e.eval(ctx, n)
	if err != nil {
		return nil, err
	}
	bag, err := reduce(ctx, e.pool, parts, newBag, putBag, mergeBags)
	if err != nil {
		return nil, wrapErr(n.Op(), err)
	}
	e.observe(n, bag.Len(), start)
	return bag, nil
}

// materializeKeys returns the distinct elements of a value plan as a key
// set.
func (e *Engine) materializeKeys(ctx context.Context, n *plan.Node) (*keyset.KeySet, error) {
	if items, ok := e.lookupBag(n); ok {
		e.opts.metrics.OnCacheHit(n.Op().String())
		ks := keyset.New(len(items))
		for _, v := range items {
			ks.Add(v)
		}
		return ks, nil
	}
	start := time.Now()
	parts, err := e.eval(ctx, n)
	if err != nil {
		return nil, err
	}
	ks, err := reduce(ctx, e.pool, parts, newKeySet, addKey, mergeKeySets)
	if err != nil {
		return nil, wrapErr(n.Op(), err)
	}
	e.observe(n, ks.Len(), start)
	return ks, nil
}

func (e *Engine) observe(n *plan.Node, elements int, start time.Time) {
	d := time.Since(start)
	e.opts.metrics.OnMaterialize(n.Op().String(), elements, d)
	e.opts.logger.Debug("materialized", "op", n.Op().String(), "elements", elements, "duration", d)
}
