package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/wikiflow/internal/multimap"
	"github.com/hupe1980/wikiflow/plan"
)

// Estimated heap cost of one memoized element, used for memory accounting.
const (
	elementBytes = 48
	pairBytes    = 80
)

type bagEntry struct {
	node  *plan.Node
	items []any
}

type mapEntry struct {
	node *plan.Node
	mm   multimap.Multimap[any, any]
}

// Engine is the local, parallel plan evaluator. It is safe for concurrent
// use.
type Engine struct {
	opts    options
	pool    *WorkerPool
	ownPool bool

	mu       sync.Mutex
	bags     map[uint64][]bagEntry
	maps     map[uint64][]mapEntry
	reserved int64

	closed atomic.Bool
}

var _ Backend = (*Engine)(nil)

// New returns an Engine.
func New(optFns ...Option) *Engine {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	e := &Engine{
		opts: opts,
		bags: make(map[uint64][]bagEntry),
		maps: make(map[uint64][]mapEntry),
	}
	if opts.pool != nil {
		e.pool = opts.pool
	} else {
		e.pool = NewWorkerPool(opts.parallelism)
		e.ownPool = true
	}
	return e
}

// Close drops the memo tables and stops the engine's own pool.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	e.Reset()
	if e.ownPool {
		e.pool.Close()
	}
	return nil
}

// Reset drops every memoized result.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.bags = make(map[uint64][]bagEntry)
	e.maps = make(map[uint64][]mapEntry)
	e.opts.rc.ReleaseMemory(e.reserved)
	e.reserved = 0
}

func (e *Engine) lookupBag(n *plan.Node) ([]any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, ent := range e.bags[n.Digest()] {
		if ent.node.Equal(n) {
			return ent.items, true
		}
	}
	return nil, false
}

func (e *Engine) lookupMap(n *plan.Node) (multimap.Multimap[any, any], bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, ent := range e.maps[n.Digest()] {
		if ent.node.Equal(n) {
			return ent.mm, true
		}
	}
	return nil, false
}

func (e *Engine) isCached(n *plan.Node) bool {
	if _, ok := e.lookupBag(n); ok {
		return true
	}
	_, ok := e.lookupMap(n)
	return ok
}

// publishBag stores a finished result under every given node. If another
// evaluation published first, its result wins and is returned.
func (e *Engine) publishBag(items []any, nodes ...*plan.Node) ([]any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, ent := range e.bags[nodes[0].Digest()] {
		if ent.node.Equal(nodes[0]) {
			return ent.items, nil
		}
	}
	cost := int64(len(items)) * elementBytes
	if err := e.opts.rc.AcquireMemory(cost); err != nil {
		return nil, err
	}
	e.reserved += cost
	for _, n := range nodes {
		e.bags[n.Digest()] = append(e.bags[n.Digest()], bagEntry{node: n, items: items})
	}
	return items, nil
}

func (e *Engine) publishMap(mm multimap.Multimap[any, any], nodes ...*plan.Node) (multimap.Multimap[any, any], error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, ent := range e.maps[nodes[0].Digest()] {
		if ent.node.Equal(nodes[0]) {
			return ent.mm, nil
		}
	}
	cost := int64(mm.Len()) * pairBytes
	if err := e.opts.rc.AcquireMemory(cost); err != nil {
		return nil, err
	}
	e.reserved += cost
	for _, n := range nodes {
		e.maps[n.Digest()] = append(e.maps[n.Digest()], mapEntry{node: n, mm: mm})
	}
	return mm, nil
}

// Parts returns the parts of n. Inputs that need random access are
// materialized before Parts returns.
func (e *Engine) Parts(ctx context.Context, n *plan.Node) ([]Part, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	return e.eval(ctx, n)
}

// Collect drains n on the pool and returns its elements in part order.
func (e *Engine) Collect(ctx context.Context, n *plan.Node) ([]any, error) {
	parts, err := e.Parts(ctx, n)
	if err != nil {
		return nil, err
	}
	chunks, err := drainParts(ctx, e.pool, parts, func() []any { return nil }, appendAny)
	if err != nil {
		return nil, wrapErr(n.Op(), err)
	}
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	out := make([]any, 0, total)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out, nil
}

// Groups materializes the input of an Aggregate node.
func (e *Engine) Groups(ctx context.Context, n *plan.Node) (GroupView, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	if n.Op() != plan.OpAggregate {
		return nil, wrapErr(n.Op(), ErrNotGrouped)
	}
	return e.materializeMap(ctx, n.Parent(0))
}
