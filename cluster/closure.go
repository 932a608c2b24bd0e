package cluster

import (
	"context"
	"time"

	"github.com/hupe1980/wikiflow/internal/multimap"
	"github.com/hupe1980/wikiflow/plan"
)

// relationIndex shuffles a relation by source and indexes every bucket.
func (e *Engine) relationIndex(ctx context.Context, rel dataset) ([]*multimap.Bag[any, any], error) {
	shuffled := shuffle(rel, e.opts.buckets, pairKey)
	index := make([]*multimap.Bag[any, any], len(shuffled))
	err := perBucket(ctx, len(shuffled), e.opts.parallelism, func(i int) error {
		bag := multimap.NewBag[any, any](len(shuffled[i]))
		for _, v := range shuffled[i] {
			kv := v.(plan.KV)
			bag.Put(kv.Key, kv.Value)
		}
		index[i] = bag
		return nil
	})
	return index, err
}

// fixpoint runs semi-naive rounds. step derives the candidates of one delta
// bucket; absorb keeps the candidates of one bucket that are new. Candidates
// are shuffled by part before being absorbed. It returns the number of
// rounds.
func (e *Engine) fixpoint(ctx context.Context, delta dataset, part func(any) any,
	step func(i int, v any, emit func(any)), absorb func(i int, candidates []any) []any,
) (int, error) {
	rounds := 0
	for delta.len() > 0 {
		rounds++
		derived := make(dataset, len(delta))
		err := perBucket(ctx, len(delta), e.opts.parallelism, func(i int) error {
			var out []any
			for _, v := range delta[i] {
				step(i, v, func(u any) { out = append(out, u) })
			}
			derived[i] = out
			return nil
		})
		if err != nil {
			return rounds, err
		}

		candidates := shuffle(derived, e.opts.buckets, part)
		next := make(dataset, len(candidates))
		err = perBucket(ctx, len(candidates), e.opts.parallelism, func(i int) error {
			next[i] = absorb(i, candidates[i])
			return nil
		})
		if err != nil {
			return rounds, err
		}
		delta = next
	}
	return rounds, nil
}

// closure is the unkeyed transitive closure. The result is partitioned by
// element.
func (e *Engine) closure(ctx context.Context, n *plan.Node) (dataset, error) {
	start := time.Now()

	seed, err := e.eval(ctx, n.Parent(0))
	if err != nil {
		return nil, err
	}
	rel, err := e.eval(ctx, n.Parent(1))
	if err != nil {
		return nil, err
	}
	index, err := e.relationIndex(ctx, rel)
	if err != nil {
		return nil, err
	}

	result, err := e.distinct(ctx, shuffle(seed, e.opts.buckets, identity))
	if err != nil {
		return nil, err
	}
	seen := make([]map[any]struct{}, len(result))
	for i, b := range result {
		seen[i] = make(map[any]struct{}, len(b))
		for _, v := range b {
			seen[i][v] = struct{}{}
		}
	}
	seeds := result.len()

	rounds, err := e.fixpoint(ctx, result, identity,
		func(i int, v any, emit func(any)) {
			for _, w := range index[i].Get(v) {
				emit(w)
			}
		},
		func(i int, candidates []any) []any {
			var fresh []any
			for _, v := range candidates {
				if _, ok := seen[i][v]; ok {
					continue
				}
				seen[i][v] = struct{}{}
				fresh = append(fresh, v)
				result[i] = append(result[i], v)
			}
			return fresh
		},
	)
	if err != nil {
		return nil, err
	}

	e.opts.logger.Info("closure fixpoint reached",
		"op", n.Op().String(),
		"seeds", seeds,
		"results", result.len(),
		"rounds", rounds,
		"duration", time.Since(start),
	)
	return result, nil
}

// keyedClosure is the per-key closure. Pairs are partitioned by value so that
// they meet the relation bucket holding their successors.
func (e *Engine) keyedClosure(ctx context.Context, n *plan.Node) (dataset, error) {
	start := time.Now()

	seed, err := e.eval(ctx, n.Parent(0))
	if err != nil {
		return nil, err
	}
	rel, err := e.eval(ctx, n.Parent(1))
	if err != nil {
		return nil, err
	}
	index, err := e.relationIndex(ctx, rel)
	if err != nil {
		return nil, err
	}

	result, err := e.distinct(ctx, shuffle(seed, e.opts.buckets, pairValue))
	if err != nil {
		return nil, err
	}
	seen := make([]map[plan.KV]struct{}, len(result))
	for i, b := range result {
		seen[i] = make(map[plan.KV]struct{}, len(b))
		for _, v := range b {
			seen[i][v.(plan.KV)] = struct{}{}
		}
	}
	seeds := result.len()

	rounds, err := e.fixpoint(ctx, result, pairValue,
		func(i int, v any, emit func(any)) {
			kv := v.(plan.KV)
			for _, w := range index[i].Get(kv.Value) {
				emit(plan.KV{Key: kv.Key, Value: w})
			}
		},
		func(i int, candidates []any) []any {
			var fresh []any
			for _, v := range candidates {
				kv := v.(plan.KV)
				if _, ok := seen[i][kv]; ok {
					continue
				}
				seen[i][kv] = struct{}{}
				fresh = append(fresh, v)
				result[i] = append(result[i], v)
			}
			return fresh
		},
	)
	if err != nil {
		return nil, err
	}

	e.opts.logger.Info("closure fixpoint reached",
		"op", n.Op().String(),
		"seeds", seeds,
		"results", result.len(),
		"rounds", rounds,
		"duration", time.Since(start),
	)
	return result, nil
}
