package engine

import (
	"context"
	"iter"

	"github.com/hupe1980/wikiflow/plan"
)

// Backend evaluates plan nodes. The local Engine and the cluster engine both
// implement it, so the helpers below work with either.
type Backend interface {
	// Parts returns the parts of n.
	Parts(ctx context.Context, n *plan.Node) ([]Part, error)
	// Collect returns every element of n. Pair nodes yield plan.KV.
	Collect(ctx context.Context, n *plan.Node) ([]any, error)
	// Groups returns the grouped pairs of an Aggregate node.
	Groups(ctx context.Context, n *plan.Node) (GroupView, error)
}

// GroupView is a read-only key to values view.
type GroupView interface {
	Get(k any) []any
	Keys() iter.Seq[any]
	NumKeys() int
	Len() int
}

// Collect evaluates p and returns its elements.
func Collect[T comparable](ctx context.Context, b Backend, p plan.Plan[T]) ([]T, error) {
	items, err := b.Collect(ctx, p.Node())
	if err != nil {
		return nil, err
	}
	out := make([]T, len(items))
	for i, v := range items {
		out[i] = v.(T)
	}
	return out, nil
}

// CollectPairs evaluates p and returns its pairs.
func CollectPairs[K, V comparable](ctx context.Context, b Backend, p plan.PairPlan[K, V]) ([]plan.Pair[K, V], error) {
	items, err := b.Collect(ctx, p.Node())
	if err != nil {
		return nil, err
	}
	out := make([]plan.Pair[K, V], len(items))
	for i, v := range items {
		kv := v.(plan.KV)
		out[i] = plan.Pair[K, V]{Key: kv.Key.(K), Value: kv.Value.(V)}
	}
	return out, nil
}

// Count evaluates p and returns its multiset cardinality.
func Count[T comparable](ctx context.Context, b Backend, p plan.Plan[T]) (int, error) {
	parts, err := b.Parts(ctx, p.Node())
	if err != nil {
		return 0, err
	}
	n := 0
	for _, part := range parts {
		if err := part(func(any) bool { n++; return true }); err != nil {
			return 0, wrapErr(p.Node().Op(), err)
		}
	}
	return n, nil
}

// ForEach calls fn for every element of p. Parts are visited sequentially and
// in order; the first error from fn stops the iteration and is returned.
func ForEach[T comparable](ctx context.Context, b Backend, p plan.Plan[T], fn func(T) error) error {
	parts, err := b.Parts(ctx, p.Node())
	if err != nil {
		return err
	}
	var fnErr error
	for _, part := range parts {
		err := part(func(v any) bool {
			fnErr = fn(v.(T))
			return fnErr == nil
		})
		if fnErr != nil {
			return fnErr
		}
		if err != nil {
			return wrapErr(p.Node().Op(), err)
		}
	}
	return nil
}

// ForEachPair is ForEach for pair plans.
func ForEachPair[K, V comparable](ctx context.Context, b Backend, p plan.PairPlan[K, V], fn func(K, V) error) error {
	parts, err := b.Parts(ctx, p.Node())
	if err != nil {
		return err
	}
	var fnErr error
	for _, part := range parts {
		err := part(func(v any) bool {
			kv := v.(plan.KV)
			fnErr = fn(kv.Key.(K), kv.Value.(V))
			return fnErr == nil
		})
		if fnErr != nil {
			return fnErr
		}
		if err != nil {
			return wrapErr(p.Node().Op(), err)
		}
	}
	return nil
}

// Grouping is the typed view of an aggregate.
type Grouping[K, V comparable] struct {
	view GroupView
}

// Groups evaluates an aggregate into a key to values view. The groups are
// not enumerated until the view is read.
func Groups[K, V comparable](ctx context.Context, b Backend, g plan.Grouped[K, V]) (Grouping[K, V], error) {
	view, err := b.Groups(ctx, g.Node())
	if err != nil {
		return Grouping[K, V]{}, err
	}
	return Grouping[K, V]{view: view}, nil
}

// Get returns the values of k, or nil.
func (g Grouping[K, V]) Get(k K) []V {
	vs := g.view.Get(k)
	if len(vs) == 0 {
		return nil
	}
	out := make([]V, len(vs))
	for i, v := range vs {
		out[i] = v.(V)
	}
	return out
}

// Keys iterates over the distinct keys.
func (g Grouping[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range g.view.Keys() {
			if !yield(k.(K)) {
				return
			}
		}
	}
}

// All iterates over every group.
func (g Grouping[K, V]) All() iter.Seq2[K, []V] {
	return func(yield func(K, []V) bool) {
		for k := range g.Keys() {
			if !yield(k, g.Get(k)) {
				return
			}
		}
	}
}

// NumKeys returns the number of groups.
func (g Grouping[K, V]) NumKeys() int { return g.view.NumKeys() }

// Len returns the number of pairs over all groups.
func (g Grouping[K, V]) Len() int { return g.view.Len() }
