package engine

import (
	"context"
	"fmt"

	"github.com/hupe1980/wikiflow/plan"
)

// eval dispatches on the operator of n. Memoized results short-circuit every
// operator.
func (e *Engine) eval(ctx context.Context, n *plan.Node) ([]Part, error) {
	if items, ok := e.lookupBag(n); ok {
		e.opts.metrics.OnCacheHit(n.Op().String())
		return sliceParts(items, e.opts.parallelism), nil
	}
	if mm, ok := e.lookupMap(n); ok {
		e.opts.metrics.OnCacheHit(n.Op().String())
		return multimapParts(mm, e.opts.parallelism), nil
	}

	switch n.Op() {
	case plan.OpFrom, plan.OpFromPairs:
		return sliceParts(n.Items(), e.opts.parallelism), nil
	case plan.OpNTriples:
		return []Part{e.ntriplesPart(ctx, n.Name())}, nil
	case plan.OpTSV:
		return []Part{e.tsvPart(ctx, n.Name())}, nil
	case plan.OpPartition:
		return []Part{e.partitionPart(ctx, n.Name())}, nil

	case plan.OpFilter:
		fn, ok := n.Fn().(plan.FilterFn)
		if !ok {
			return nil, badFn(n)
		}
		return e.unary(ctx, n, func(v any, yield func(any) bool) bool {
			return !fn(v) || yield(v)
		})
	case plan.OpMap:
		fn, ok := n.Fn().(plan.MapFn)
		if !ok {
			return nil, badFn(n)
		}
		return e.unary(ctx, n, func(v any, yield func(any) bool) bool {
			return yield(fn(v))
		})
	case plan.OpFlatMap:
		fn, ok := n.Fn().(plan.FlatMapFn)
		if !ok {
			return nil, badFn(n)
		}
		return e.unary(ctx, n, fn)
	case plan.OpKeyBy:
		fn, ok := n.Fn().(plan.KeyByFn)
		if !ok {
			return nil, badFn(n)
		}
		return e.unary(ctx, n, func(v any, yield func(any) bool) bool {
			k, val := fn(v)
			return yield(plan.KV{Key: k, Value: val})
		})
	case plan.OpFilterPairs:
		fn, ok := n.Fn().(plan.PairFilterFn)
		if !ok {
			return nil, badFn(n)
		}
		return e.unary(ctx, n, func(v any, yield func(any) bool) bool {
			kv := v.(plan.KV)
			return !fn(kv.Key, kv.Value) || yield(kv)
		})
	case plan.OpMapValues:
		fn, ok := n.Fn().(plan.MapFn)
		if !ok {
			return nil, badFn(n)
		}
		return e.unary(ctx, n, func(v any, yield func(any) bool) bool {
			kv := v.(plan.KV)
			return yield(plan.KV{Key: kv.Key, Value: fn(kv.Value)})
		})
	case plan.OpEntries, plan.OpMapPairs:
		fn, ok := n.Fn().(plan.PairMapFn)
		if !ok {
			return nil, badFn(n)
		}
		return e.unary(ctx, n, func(v any, yield func(any) bool) bool {
			kv := v.(plan.KV)
			return yield(fn(kv.Key, kv.Value))
		})
	case plan.OpKeys:
		return e.project(ctx, n, func(kv plan.KV) any { return kv.Key })
	case plan.OpValues:
		return e.project(ctx, n, func(kv plan.KV) any { return kv.Value })

	case plan.OpUnion, plan.OpUnionPairs:
		var parts []Part
		for _, p := range n.Parents() {
			pp, err := e.eval(ctx, p)
			if err != nil {
				return nil, err
			}
			parts = append(parts, pp...)
		}
		return parts, nil

	case plan.OpIntersect:
		return e.semiJoin(ctx, n, true, func(v any) any { return v })
	case plan.OpSubtract:
		return e.semiJoin(ctx, n, false, func(v any) any { return v })
	case plan.OpIntersectKeys:
		return e.semiJoin(ctx, n, true, func(v any) any { return v.(plan.KV).Key })
	case plan.OpSubtractKeys:
		return e.semiJoin(ctx, n, false, func(v any) any { return v.(plan.KV).Key })
	case plan.OpJoin:
		return e.join(ctx, n)
	case plan.OpJoinKeys:
		return e.joinKeys(ctx, n)

	case plan.OpDistinct:
		return e.distinct(ctx, n)
	case plan.OpDistinctPairs:
		return e.distinctPairs(ctx, n)
	case plan.OpCache:
		return e.cache(ctx, n)
	case plan.OpCachePairs:
		return e.cachePairs(ctx, n)

	case plan.OpClosure:
		return e.closure(ctx, n)
	case plan.OpKeyedClosure:
		return e.keyedClosure(ctx, n)

	case plan.OpAggregate:
		return nil, wrapErr(n.Op(), ErrNotGrouped)
	case plan.OpMapGroups:
		return e.mapGroups(ctx, n)

	default:
		return nil, wrapErr(n.Op(), ErrUnknownOperator)
	}
}

// unary evaluates the single parent of n and wraps its parts with f.
func (e *Engine) unary(ctx context.Context, n *plan.Node, f func(any, func(any) bool) bool) ([]Part, error) {
	parts, err := e.eval(ctx, n.Parent(0))
	if err != nil {
		return nil, err
	}
	return transform(parts, f), nil
}

// badFn reports a node whose function does not match its operator.
func badFn(n *plan.Node) error {
	return wrapErr(n.Op(), fmt.Errorf("%w: function %T", ErrUnknownOperator, n.Fn()))
}

func (e *Engine) project(ctx context.Context, n *plan.Node, f func(plan.KV) any) ([]Part, error) {
	parts, err := e.eval(ctx, n.Parent(0))
	if err != nil {
		return nil, err
	}
	return transform(parts, func(v any, yield func(any) bool) bool {
		return yield(f(v.(plan.KV)))
	}), nil
}

func (e *Engine) distinct(ctx context.Context, n *plan.Node) ([]Part, error) {
	parts, err := e.eval(ctx, n.Parent(0))
	if err != nil {
		return nil, err
	}
	set, err := reduce(ctx, e.pool, parts, func() valueSet { return valueSet{} }, addValue, mergeValueSets)
	if err != nil {
		return nil, wrapErr(n.Op(), err)
	}
	return sliceParts(set.items(), e.opts.parallelism), nil
}

func (e *Engine) distinctPairs(ctx context.Context, n *plan.Node) ([]Part, error) {
	parts, err := e.eval(ctx, n.Parent(0))
	if err != nil {
		return nil, err
	}
	set, err := reduce(ctx, e.pool, parts, newSet, putSet, mergeSets)
	if err != nil {
		return nil, wrapErr(n.Op(), err)
	}
	return multimapParts(set, e.opts.parallelism), nil
}

func (e *Engine) cache(ctx context.Context, n *plan.Node) ([]Part, error) {
	parent := n.Parent(0)
	items, err := e.materializeBag(ctx, parent)
	if err != nil {
		return nil, err
	}
	items, err = e.publishBag(items, n, parent)
	if err != nil {
		return nil, wrapErr(n.Op(), err)
	}
	return sliceParts(items, e.opts.parallelism), nil
}

func (e *Engine) cachePairs(ctx context.Context, n *plan.Node) ([]Part, error) {
	parent := n.Parent(0)
	mm, err := e.materializeMap(ctx, parent)
	if err != nil {
		return nil, err
	}
	mm, err = e.publishMap(mm, n, parent)
	if err != nil {
		return nil, wrapErr(n.Op(), err)
	}
	return multimapParts(mm, e.opts.parallelism), nil
}

func (e *Engine) mapGroups(ctx context.Context, n *plan.Node) ([]Part, error) {
	agg := n.Parent(0)
	if agg.Op() != plan.OpAggregate {
		return nil, wrapErr(n.Op(), ErrUnknownOperator)
	}
	fn, ok := n.Fn().(plan.GroupMapFn)
	if !ok {
		return nil, badFn(n)
	}
	mm, err := e.materializeMap(ctx, agg.Parent(0))
	if err != nil {
		return nil, err
	}
	return keyParts(mm.SplitKeys(e.opts.parallelism), func(k any, yield func(any) bool) bool {
		return yield(fn(k, mm.Get(k)))
	}), nil
}
