package engine

import (
	"context"
	"time"

	"github.com/hupe1980/wikiflow/internal/multimap"
	"github.com/hupe1980/wikiflow/plan"
)

// closure computes every element reachable from the seed through the
// relation. Seeding runs in parallel; the worklist loop is sequential.
func (e *Engine) closure(ctx context.Context, n *plan.Node) ([]Part, error) {
	start := time.Now()

	rel, err := e.materializeMap(ctx, n.Parent(1))
	if err != nil {
		return nil, err
	}
	seedParts, err := e.eval(ctx, n.Parent(0))
	if err != nil {
		return nil, err
	}
	result, err := reduce(ctx, e.pool, seedParts, func() valueSet { return valueSet{} }, addValue, mergeValueSets)
	if err != nil {
		return nil, wrapErr(n.Op(), err)
	}
	seeds := len(result)

	work := result.items()
	for len(work) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, wrapErr(n.Op(), err)
		}
		v := work[len(work)-1]
		work = work[:len(work)-1]
		for _, next := range rel.Get(v) {
			if _, ok := result[next]; ok {
				continue
			}
			result[next] = struct{}{}
			work = append(work, next)
		}
	}

	e.observeClosure(n, seeds, len(result), start)
	return sliceParts(result.items(), e.opts.parallelism), nil
}

// keyedClosure computes, per seed pair (k, v0), every (k, v) with v
// reachable from v0. Membership is tested per pair.
func (e *Engine) keyedClosure(ctx context.Context, n *plan.Node) ([]Part, error) {
	start := time.Now()

	rel, err := e.materializeMap(ctx, n.Parent(1))
	if err != nil {
		return nil, err
	}
	seedParts, err := e.eval(ctx, n.Parent(0))
	if err != nil {
		return nil, err
	}
	result, err := reduce(ctx, e.pool, seedParts, newSet, putSet, mergeSets)
	if err != nil {
		return nil, wrapErr(n.Op(), err)
	}
	seeds := result.Len()

	work := make([]plan.KV, 0, seeds)
	for k, v := range result.All() {
		work = append(work, plan.KV{Key: k, Value: v})
	}
	for len(work) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, wrapErr(n.Op(), err)
		}
		kv := work[len(work)-1]
		work = work[:len(work)-1]
		for _, next := range rel.Get(kv.Value) {
			if result.Put(kv.Key, next) {
				work = append(work, plan.KV{Key: kv.Key, Value: next})
			}
		}
	}

	e.observeClosure(n, seeds, result.Len(), start)
	return multimapParts(multimap.Multimap[any, any](result), e.opts.parallelism), nil
}

func (e *Engine) observeClosure(n *plan.Node, seeds, results int, start time.Time) {
	d := time.Since(start)
	e.opts.metrics.OnClosure(n.Op().String(), seeds, results, d)
	e.opts.logger.Info("closure fixpoint reached",
		"op", n.Op().String(),
		"seeds", seeds,
		"results", results,
		"duration", d,
	)
}
