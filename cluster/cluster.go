package cluster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hupe1980/wikiflow/engine"
	"github.com/hupe1980/wikiflow/internal/multimap"
	"github.com/hupe1980/wikiflow/plan"
	"github.com/hupe1980/wikiflow/rdf/ntriples"
)

type memoEntry struct {
	node *plan.Node
	data dataset
}

// Engine is the shuffle-partitioned plan interpreter.
type Engine struct {
	opts options

	mu   sync.Mutex
	memo map[uint64][]memoEntry
}

var _ engine.Backend = (*Engine)(nil)

// New returns an Engine.
func New(optFns ...Option) *Engine {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.files == nil {
		opts.files = func(_ context.Context, path string) (io.ReadCloser, error) { return os.Open(path) }
	}
	return &Engine{opts: opts, memo: make(map[uint64][]memoEntry)}
}

// Parts returns one part per bucket.
func (e *Engine) Parts(ctx context.Context, n *plan.Node) ([]engine.Part, error) {
	d, err := e.eval(ctx, n)
	if err != nil {
		return nil, err
	}
	parts := make([]engine.Part, 0, len(d))
	for _, b := range d {
		parts = append(parts, func(yield func(any) bool) error {
			for _, v := range b {
				if !yield(v) {
					return nil
				}
			}
			return nil
		})
	}
	return parts, nil
}

// Collect returns every element of n.
func (e *Engine) Collect(ctx context.Context, n *plan.Node) ([]any, error) {
	d, err := e.eval(ctx, n)
	if err != nil {
		return nil, err
	}
	return d.flatten(), nil
}

// Groups returns the grouped pairs of an Aggregate node.
func (e *Engine) Groups(ctx context.Context, n *plan.Node) (engine.GroupView, error) {
	if n.Op() != plan.OpAggregate {
		return nil, fail(n, engine.ErrNotGrouped)
	}
	d, err := e.eval(ctx, n.Parent(0))
	if err != nil {
		return nil, err
	}
	bag := multimap.NewBag[any, any](d.len())
	for _, b := range d {
		for _, v := range b {
			kv := v.(plan.KV)
			bag.Put(kv.Key, kv.Value)
		}
	}
	return bag, nil
}

// Reset drops every cached dataset.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.memo = make(map[uint64][]memoEntry)
}

func (e *Engine) lookup(n *plan.Node) (dataset, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ent := range e.memo[n.Digest()] {
		if ent.node.Equal(n) {
			return ent.data, true
		}
	}
	return nil, false
}

func (e *Engine) publish(d dataset, nodes ...*plan.Node) dataset {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ent := range e.memo[nodes[0].Digest()] {
		if ent.node.Equal(nodes[0]) {
			return ent.data
		}
	}
	for _, n := range nodes {
		e.memo[n.Digest()] = append(e.memo[n.Digest()], memoEntry{node: n, data: d})
	}
	return d
}

func fail(n *plan.Node, err error) error {
	if err == nil {
		return nil
	}
	var ee *engine.EvaluationError
	if errors.As(err, &ee) {
		return err
	}
	return &engine.EvaluationError{Op: n.Op(), Err: err}
}

func badFn(n *plan.Node) error {
	return fail(n, fmt.Errorf("%w: function %T", engine.ErrUnknownOperator, n.Fn()))
}

func (e *Engine) eval(ctx context.Context, n *plan.Node) (dataset, error) {
	if d, ok := e.lookup(n); ok {
		return d, nil
	}
	d, err := e.dispatch(ctx, n)
	if err != nil {
		return nil, fail(n, err)
	}
	return d, nil
}

func (e *Engine) dispatch(ctx context.Context, n *plan.Node) (dataset, error) {
	buckets := e.opts.buckets

	switch n.Op() {
	case plan.OpFrom, plan.OpFromPairs:
		return scatter(n.Items(), buckets), nil
	case plan.OpNTriples:
		return e.readNTriples(ctx, n.Name())
	case plan.OpTSV:
		return e.readTSV(ctx, n.Name())
	case plan.OpPartition:
		return e.readPartition(ctx, n.Name())

	case plan.OpFilter:
		fn, ok := n.Fn().(plan.FilterFn)
		if !ok {
			return nil, badFn(n)
		}
		return e.unary(ctx, n, func(v any, emit func(any)) {
			if fn(v) {
				emit(v)
			}
		})
	case plan.OpMap:
		fn, ok := n.Fn().(plan.MapFn)
		if !ok {
			return nil, badFn(n)
		}
		return e.unary(ctx, n, func(v any, emit func(any)) { emit(fn(v)) })
	case plan.OpFlatMap:
		fn, ok := n.Fn().(plan.FlatMapFn)
		if !ok {
			return nil, badFn(n)
		}
		return e.unary(ctx, n, func(v any, emit func(any)) {
			fn(v, func(u any) bool { emit(u); return true })
		})
	case plan.OpKeyBy:
		fn, ok := n.Fn().(plan.KeyByFn)
		if !ok {
			return nil, badFn(n)
		}
		return e.unary(ctx, n, func(v any, emit func(any)) {
			k, val := fn(v)
			emit(plan.KV{Key: k, Value: val})
		})
	case plan.OpFilterPairs:
		fn, ok := n.Fn().(plan.PairFilterFn)
		if !ok {
			return nil, badFn(n)
		}
		return e.unary(ctx, n, func(v any, emit func(any)) {
			if kv := v.(plan.KV); fn(kv.Key, kv.Value) {
				emit(kv)
			}
		})
	case plan.OpMapValues:
		fn, ok := n.Fn().(plan.MapFn)
		if !ok {
			return nil, badFn(n)
		}
		return e.unary(ctx, n, func(v any, emit func(any)) {
			kv := v.(plan.KV)
			emit(plan.KV{Key: kv.Key, Value: fn(kv.Value)})
		})
	case plan.OpEntries, plan.OpMapPairs:
		fn, ok := n.Fn().(plan.PairMapFn)
		if !ok {
			return nil, badFn(n)
		}
		return e.unary(ctx, n, func(v any, emit func(any)) {
			kv := v.(plan.KV)
			emit(fn(kv.Key, kv.Value))
		})
	case plan.OpKeys:
		return e.unary(ctx, n, func(v any, emit func(any)) { emit(pairKey(v)) })
	case plan.OpValues:
		return e.unary(ctx, n, func(v any, emit func(any)) { emit(pairValue(v)) })

	case plan.OpUnion, plan.OpUnionPairs:
		out := make(dataset, buckets)
		for _, p := range n.Parents() {
			d, err := e.eval(ctx, p)
			if err != nil {
				return nil, err
			}
			for i, b := range d {
				out[i] = append(out[i], b...)
			}
		}
		return out, nil

	case plan.OpIntersect:
		return e.semiJoin(ctx, n, true, identity)
	case plan.OpSubtract:
		return e.semiJoin(ctx, n, false, identity)
	case plan.OpIntersectKeys:
		return e.semiJoin(ctx, n, true, pairKey)
	case plan.OpSubtractKeys:
		return e.semiJoin(ctx, n, false, pairKey)
	case plan.OpJoin:
		return e.join(ctx, n)
	case plan.OpJoinKeys:
		return e.joinKeys(ctx, n)

	case plan.OpDistinct, plan.OpDistinctPairs:
		d, err := e.eval(ctx, n.Parent(0))
		if err != nil {
			return nil, err
		}
		return e.distinct(ctx, shuffle(d, buckets, identity))
	case plan.OpCache, plan.OpCachePairs:
		parent := n.Parent(0)
		d, err := e.eval(ctx, parent)
		if err != nil {
			return nil, err
		}
		return e.publish(d, n, parent), nil

	case plan.OpClosure:
		return e.closure(ctx, n)
	case plan.OpKeyedClosure:
		return e.keyedClosure(ctx, n)

	case plan.OpAggregate:
		return nil, engine.ErrNotGrouped
	case plan.OpMapGroups:
		return e.mapGroups(ctx, n)

	default:
		return nil, engine.ErrUnknownOperator
	}
}

func (e *Engine) unary(ctx context.Context, n *plan.Node, f func(v any, emit func(any))) (dataset, error) {
	d, err := e.eval(ctx, n.Parent(0))
	if err != nil {
		return nil, err
	}
	return e.mapBuckets(ctx, d, f)
}

func (e *Engine) distinct(ctx context.Context, d dataset) (dataset, error) {
	return e.mapBucketsWhole(ctx, d, func(b []any) []any {
		seen := make(map[any]struct{}, len(b))
		out := make([]any, 0, len(b))
		for _, v := range b {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
		return out
	})
}

func (e *Engine) mapBucketsWhole(ctx context.Context, d dataset, f func([]any) []any) (dataset, error) {
	return e.zipBuckets(ctx, d, d, func(l, _ []any) []any { return f(l) })
}

func (e *Engine) semiJoin(ctx context.Context, n *plan.Node, keep bool, key func(any) any) (dataset, error) {
	left, err := e.eval(ctx, n.Parent(0))
	if err != nil {
		return nil, err
	}
	right, err := e.eval(ctx, n.Parent(1))
	if err != nil {
		return nil, err
	}
	b := e.opts.buckets
	return e.zipBuckets(ctx, shuffle(left, b, key), shuffle(right, b, identity), func(l, r []any) []any {
		set := make(map[any]struct{}, len(r))
		for _, v := range r {
			set[v] = struct{}{}
		}
		var out []any
		for _, v := range l {
			if _, ok := set[key(v)]; ok == keep {
				out = append(out, v)
			}
		}
		return out
	})
}

func (e *Engine) join(ctx context.Context, n *plan.Node) (dataset, error) {
	combine, ok := n.Fn().(plan.PairMapFn)
	if !ok {
		return nil, badFn(n)
	}
	left, err := e.eval(ctx, n.Parent(0))
	if err != nil {
		return nil, err
	}
	right, err := e.eval(ctx, n.Parent(1))
	if err != nil {
		return nil, err
	}
	b := e.opts.buckets
	return e.zipBuckets(ctx, shuffle(left, b, pairKey), shuffle(right, b, pairKey), func(l, r []any) []any {
		index := multimap.NewBag[any, any](len(r))
		for _, v := range r {
			kv := v.(plan.KV)
			index.Put(kv.Key, kv.Value)
		}
		var out []any
		for _, v := range l {
			kv := v.(plan.KV)
			for _, rv := range index.Get(kv.Key) {
				out = append(out, plan.KV{Key: kv.Key, Value: combine(kv.Value, rv)})
			}
		}
		return out
	})
}

func (e *Engine) joinKeys(ctx context.Context, n *plan.Node) (dataset, error) {
	keys, err := e.eval(ctx, n.Parent(0))
	if err != nil {
		return nil, err
	}
	pairs, err := e.eval(ctx, n.Parent(1))
	if err != nil {
		return nil, err
	}
	b := e.opts.buckets
	return e.zipBuckets(ctx, shuffle(keys, b, identity), shuffle(pairs, b, pairKey), func(l, r []any) []any {
		index := multimap.NewBag[any, any](len(r))
		for _, v := range r {
			kv := v.(plan.KV)
			index.Put(kv.Key, kv.Value)
		}
		var out []any
		for _, k := range l {
			for _, v := range index.Get(k) {
				out = append(out, plan.KV{Key: k, Value: v})
			}
		}
		return out
	})
}

func (e *Engine) mapGroups(ctx context.Context, n *plan.Node) (dataset, error) {
	agg := n.Parent(0)
	if agg.Op() != plan.OpAggregate {
		return nil, engine.ErrUnknownOperator
	}
	fn, ok := n.Fn().(plan.GroupMapFn)
	if !ok {
		return nil, badFn(n)
	}
	d, err := e.eval(ctx, agg.Parent(0))
	if err != nil {
		return nil, err
	}
	return e.mapBucketsWhole(ctx, shuffle(d, e.opts.buckets, pairKey), func(b []any) []any {
		groups := multimap.NewBag[any, any](len(b))
		for _, v := range b {
			kv := v.(plan.KV)
			groups.Put(kv.Key, kv.Value)
		}
		out := make([]any, 0, groups.NumKeys())
		for k := range groups.Keys() {
			out = append(out, fn(k, groups.Get(k)))
		}
		return out
	})
}

func (e *Engine) readNTriples(ctx context.Context, path string) (dataset, error) {
	f, err := e.opts.files(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var items []any
	for t, err := range ntriples.NewReader(f, e.opts.vocab).All() {
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return scatter(items, e.opts.buckets), nil
}

func (e *Engine) readTSV(ctx context.Context, path string) (dataset, error) {
	f, err := e.opts.files(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var items []any
	for row, err := range ntriples.NewTSVReader(f).All() {
		if err != nil {
			return nil, err
		}
		items = append(items, plan.KV{Key: row[0], Value: row[1]})
	}
	return scatter(items, e.opts.buckets), nil
}

func (e *Engine) readPartition(ctx context.Context, key string) (dataset, error) {
	if e.opts.partitions == nil {
		e.opts.logger.Warn("partition missing", "key", key, "reason", "no partition resolver")
		return make(dataset, e.opts.buckets), nil
	}
	var items []any
	for t, err := range e.opts.partitions.Open(ctx, key) {
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return scatter(items, e.opts.buckets), nil
}
