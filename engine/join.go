package engine

import (
	"context"

	"github.com/hupe1980/wikiflow/plan"
)

// semiJoin keeps the elements of the first parent whose key (as extracted by
// key) is present (keep == true) or absent (keep == false) in the second
// parent.
func (e *Engine) semiJoin(ctx context.Context, n *plan.Node, keep bool, key func(any) any) ([]Part, error) {
	ks, err := e.materializeKeys(ctx, n.Parent(1))
	if err != nil {
		return nil, err
	}
	parts, err := e.eval(ctx, n.Parent(0))
	if err != nil {
		return nil, err
	}
	return transform(parts, func(v any, yield func(any) bool) bool {
		if ks.Contains(key(v)) != keep {
			return true
		}
		return yield(v)
	}), nil
}

// join is the pair/pair hash join. The right side is built into a multimap
// unless only the left side is already memoized.
func (e *Engine) join(ctx context.Context, n *plan.Node) ([]Part, error) {
	combine, ok := n.Fn().(plan.PairMapFn)
	if !ok {
		return nil, badFn(n)
	}
	left, right := n.Parent(0), n.Parent(1)

	if e.isCached(left) && !e.isCached(right) {
		build, err := e.materializeMap(ctx, left)
		if err != nil {
			return nil, err
		}
		probe, err := e.eval(ctx, right)
		if err != nil {
			return nil, err
		}
		return transform(probe, func(v any, yield func(any) bool) bool {
			kv := v.(plan.KV)
			for _, a := range build.Get(kv.Key) {
				if !yield(plan.KV{Key: kv.Key, Value: combine(a, kv.Value)}) {
					return false
				}
			}
			return true
		}), nil
	}

	build, err := e.materializeMap(ctx, right)
	if err != nil {
		return nil, err
	}
	probe, err := e.eval(ctx, left)
	if err != nil {
		return nil, err
	}
	return transform(probe, func(v any, yield func(any) bool) bool {
		kv := v.(plan.KV)
		for _, b := range build.Get(kv.Key) {
			if !yield(plan.KV{Key: kv.Key, Value: combine(kv.Value, b)}) {
				return false
			}
		}
		return true
	}), nil
}

type keyCounts map[any]int

func countKey(c keyCounts, v any) keyCounts {
	c[v]++
	return c
}

func mergeCounts(a, b keyCounts) keyCounts {
	if len(b) > len(a) {
		a, b = b, a
	}
	for k, n := range b {
		a[k] += n
	}
	return a
}

// joinKeys is the value/pair join: every key occurrence is paired with every
// value of the pair side. The pair side is built unless only the key side is
// already memoized, in which case the keys are counted and the pairs
// streamed.
func (e *Engine) joinKeys(ctx context.Context, n *plan.Node) ([]Part, error) {
	keys, pairs := n.Parent(0), n.Parent(1)

	if e.isCached(keys) && !e.isCached(pairs) {
		keyParts, err := e.eval(ctx, keys)
		if err != nil {
			return nil, err
		}
		counts, err := reduce(ctx, e.pool, keyParts, func() keyCounts { return keyCounts{} }, countKey, mergeCounts)
		if err != nil {
			return nil, wrapErr(n.Op(), err)
		}
		probe, err := e.eval(ctx, pairs)
		if err != nil {
			return nil, err
		}
		return transform(probe, func(v any, yield func(any) bool) bool {
			for range counts[v.(plan.KV).Key] {
				if !yield(v) {
					return false
				}
			}
			return true
		}), nil
	}

	build, err := e.materializeMap(ctx, pairs)
	if err != nil {
		return nil, err
	}
	probe, err := e.eval(ctx, keys)
	if err != nil {
		return nil, err
	}
	return transform(probe, func(k any, yield func(any) bool) bool {
		for _, v := range build.Get(k) {
			if !yield(plan.KV{Key: k, Value: v}) {
				return false
			}
		}
		return true
	}), nil
}
