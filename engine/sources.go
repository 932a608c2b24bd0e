package engine

import (
	"context"

	"github.com/hupe1980/wikiflow/plan"
	"github.com/hupe1980/wikiflow/rdf/ntriples"
)

// ctxCheckInterval is the number of records read between context checks.
const ctxCheckInterval = 4096

func (e *Engine) ntriplesPart(ctx context.Context, path string) Part {
	return func(yield func(any) bool) error {
		f, err := e.opts.files(ctx, path)
		if err != nil {
			return wrapErr(plan.OpNTriples, err)
		}
		defer f.Close()

		i := 0
		for t, err := range ntriples.NewReader(f, e.opts.vocab).All() {
			if err != nil {
				return wrapErr(plan.OpNTriples, err)
			}
			if i++; i%ctxCheckInterval == 0 && ctx.Err() != nil {
				return wrapErr(plan.OpNTriples, ctx.Err())
			}
			if !yield(t) {
				return nil
			}
		}
		return nil
	}
}

func (e *Engine) tsvPart(ctx context.Context, path string) Part {
	return func(yield func(any) bool) error {
		f, err := e.opts.files(ctx, path)
		if err != nil {
			return wrapErr(plan.OpTSV, err)
		}
		defer f.Close()

		for row, err := range ntriples.NewTSVReader(f).All() {
			if err != nil {
				return wrapErr(plan.OpTSV, err)
			}
			if !yield(plan.KV{Key: row[0], Value: row[1]}) {
				return nil
			}
		}
		return nil
	}
}

func (e *Engine) partitionPart(ctx context.Context, key string) Part {
	return func(yield func(any) bool) error {
		if e.opts.partitions == nil {
			e.opts.logger.Warn("partition missing", "key", key, "reason", "no partition resolver")
			return nil
		}
		if err := e.opts.rc.AcquireLoad(ctx); err != nil {
			return wrapErr(plan.OpPartition, err)
		}
		defer e.opts.rc.ReleaseLoad()

		i := 0
		for t, err := range e.opts.partitions.Open(ctx, key) {
			if err != nil {
				return wrapErr(plan.OpPartition, err)
			}
			if i++; i%ctxCheckInterval == 0 && ctx.Err() != nil {
				return wrapErr(plan.OpPartition, ctx.Err())
			}
			if !yield(t) {
				return nil
			}
		}
		return nil
	}
}
