package plan

import "fmt"

// Pair is a key/value pair of a PairPlan.
type Pair[K, V any] struct {
	Key   K
	Value V
}

func (p Pair[K, V]) String() string { return fmt.Sprintf("(%v, %v)", p.Key, p.Value) }

// PairPlan is an unordered multiset of (K, V) pairs.
type PairPlan[K, V comparable] struct {
	n *Node
}

// WrapPairs returns the pair plan rooted at n. It panics if n produces
// values.
func WrapPairs[K, V comparable](n *Node) PairPlan[K, V] {
	if !n.op.IsPair() {
		panic(fmt.Sprintf("plan: %s node is not a pair plan", n.op))
	}
	return PairPlan[K, V]{n: n}
}

// Node returns the root node.
func (p PairPlan[K, V]) Node() *Node { return p.n }

// Equal reports whether p and o describe the same computation.
func (p PairPlan[K, V]) Equal(o PairPlan[K, V]) bool { return p.n.Equal(o.n) }

func (p PairPlan[K, V]) String() string { return p.n.String() }

func pairTypeName[K, V any]() string {
	return typeName[K]() + "," + typeName[V]()
}

// FromPairs returns a plan over the given pairs.
func FromPairs[K, V comparable](pairs ...Pair[K, V]) PairPlan[K, V] {
	erased := make([]any, len(pairs))
	for i, p := range pairs {
		erased[i] = KV{Key: p.Key, Value: p.Value}
	}
	return PairPlan[K, V]{n: newNode(OpFromPairs, pairTypeName[K, V](), "", nil, erased)}
}

// FromMap returns a plan over the entries of m.
func FromMap[K, V comparable](m map[K]V) PairPlan[K, V] {
	pairs := make([]Pair[K, V], 0, len(m))
	for _, k := range sortedItems(m) {
		pairs = append(pairs, Pair[K, V]{Key: k, Value: m[k]})
	}
	return FromPairs(pairs...)
}

// TSV reads a two-column tab-separated file as (first, second) pairs.
func TSV(path string) PairPlan[string, string] {
	return PairPlan[string, string]{n: newNode(OpTSV, pairTypeName[string, string](), path, nil, nil)}
}

// Filter keeps the pairs matching pred.
func (p PairPlan[K, V]) Filter(pred PairPred[K, V]) PairPlan[K, V] {
	fn := pred.Fn
	erased := PairFilterFn(func(k, v any) bool { return fn(k.(K), v.(V)) })
	return PairPlan[K, V]{n: newNode(OpFilterPairs, p.n.typ, fnName(pred.Name), erased, nil, p.n)}
}

// Union returns the multiset union of p and others.
func (p PairPlan[K, V]) Union(others ...PairPlan[K, V]) PairPlan[K, V] {
	if len(others) == 0 {
		return p
	}
	nodes := make([]*Node, 0, len(others)+1)
	nodes = append(nodes, p.n)
	for _, o := range others {
		nodes = append(nodes, o.n)
	}
	return PairPlan[K, V]{n: newNode(OpUnionPairs, p.n.typ, "", nil, nil, flatten(OpUnionPairs, nodes)...)}
}

// JoinKeys is JoinKeys(keys, p).
func (p PairPlan[K, V]) JoinKeys(keys Plan[K]) PairPlan[K, V] {
	return JoinKeys(keys, p)
}

// IntersectKeys keeps the pairs whose key occurs in keys.
func (p PairPlan[K, V]) IntersectKeys(keys Plan[K]) PairPlan[K, V] {
	return PairPlan[K, V]{n: newNode(OpIntersectKeys, p.n.typ, "", nil, nil, p.n, keys.n)}
}

// SubtractKeys keeps the pairs whose key does not occur in keys.
func (p PairPlan[K, V]) SubtractKeys(keys Plan[K]) PairPlan[K, V] {
	return PairPlan[K, V]{n: newNode(OpSubtractKeys, p.n.typ, "", nil, nil, p.n, keys.n)}
}

// Distinct removes duplicate pairs.
func (p PairPlan[K, V]) Distinct() PairPlan[K, V] {
	if p.n.op == OpDistinctPairs {
		return p
	}
	return PairPlan[K, V]{n: newNode(OpDistinctPairs, p.n.typ, "", nil, nil, p.n)}
}

// Cache marks p to be materialized once and shared by every consumer.
func (p PairPlan[K, V]) Cache() PairPlan[K, V] {
	if p.n.op == OpCachePairs {
		return p
	}
	return PairPlan[K, V]{n: newNode(OpCachePairs, p.n.typ, "", nil, nil, p.n)}
}

// Closure returns, for every seed pair (k, v0), the pairs (k, v) for every v
// reachable from v0 through rel, including v0 itself. The result has no
// duplicates.
func (p PairPlan[K, V]) Closure(rel PairPlan[V, V]) PairPlan[K, V] {
	return PairPlan[K, V]{n: newNode(OpKeyedClosure, p.n.typ, "", nil, nil, p.n, rel.n)}
}

// Keys projects the keys.
func (p PairPlan[K, V]) Keys() Plan[K] {
	return Plan[K]{n: newNode(OpKeys, typeName[K](), "", nil, nil, p.n)}
}

// Values projects the values.
func (p PairPlan[K, V]) Values() Plan[V] {
	return Plan[V]{n: newNode(OpValues, typeName[V](), "", nil, nil, p.n)}
}

// Entries turns every pair of p into a Pair value.
func Entries[K, V comparable](p PairPlan[K, V]) Plan[Pair[K, V]] {
	erased := PairMapFn(func(k, v any) any { return Pair[K, V]{Key: k.(K), Value: v.(V)} })
	return Plan[Pair[K, V]]{n: newNode(OpEntries, typeName[Pair[K, V]](), "", erased, nil, p.n)}
}

// Join pairs every (k, a) of left with every (k, b) of right. A key with n
// left and m right values yields n*m pairs.
func Join[K, V1, V2 comparable](left PairPlan[K, V1], right PairPlan[K, V2]) PairPlan[K, Pair[V1, V2]] {
	erased := PairMapFn(func(a, b any) any { return Pair[V1, V2]{Key: a.(V1), Value: b.(V2)} })
	return PairPlan[K, Pair[V1, V2]]{
		n: newNode(OpJoin, pairTypeName[K, Pair[V1, V2]](), "", erased, nil, left.n, right.n),
	}
}

// MapPairs turns every pair into a value.
func MapPairs[K, V, U comparable](p PairPlan[K, V], f PairFunc[K, V, U]) Plan[U] {
	fn := f.Fn
	erased := PairMapFn(func(k, v any) any { return fn(k.(K), v.(V)) })
	return Plan[U]{n: newNode(OpMapPairs, typeName[U](), fnName(f.Name), erased, nil, p.n)}
}

// MapValues applies f to every value and keeps the keys.
func MapValues[K, V, U comparable](p PairPlan[K, V], f Func[V, U]) PairPlan[K, U] {
	fn := f.Fn
	erased := MapFn(func(v any) any { return fn(v.(V)) })
	return PairPlan[K, U]{n: newNode(OpMapValues, pairTypeName[K, U](), fnName(f.Name), erased, nil, p.n)}
}

// Grouped is a PairPlan grouped by key.
type Grouped[K, V comparable] struct {
	n *Node
}

// Node returns the root node.
func (g Grouped[K, V]) Node() *Node { return g.n }

// Aggregate groups p by key.
func Aggregate[K, V comparable](p PairPlan[K, V]) Grouped[K, V] {
	return Grouped[K, V]{n: newNode(OpAggregate, p.n.typ, "", nil, nil, p.n)}
}

// MapGroups turns every group into a value.
func MapGroups[K, V, U comparable](g Grouped[K, V], f GroupFunc[K, V, U]) Plan[U] {
	fn := f.Fn
	erased := GroupMapFn(func(k any, vs []any) any {
		typed := make([]V, len(vs))
		for i, v := range vs {
			typed[i] = v.(V)
		}
		return fn(k.(K), typed)
	})
	return Plan[U]{n: newNode(OpMapGroups, typeName[U](), fnName(f.Name), erased, nil, g.n)}
}
