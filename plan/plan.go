package plan

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/hupe1980/wikiflow/rdf"
)

// Plan is an unordered multiset of T.
type Plan[T comparable] struct {
	n *Node
}

// Wrap returns the value plan rooted at n. It panics if n produces pairs.
func Wrap[T comparable](n *Node) Plan[T] {
	if n.op.IsPair() {
		panic(fmt.Sprintf("plan: %s node is not a value plan", n.op))
	}
	return Plan[T]{n: n}
}

// Node returns the root node.
func (p Plan[T]) Node() *Node { return p.n }

// Equal reports whether p and o describe the same computation.
func (p Plan[T]) Equal(o Plan[T]) bool { return p.n.Equal(o.n) }

func (p Plan[T]) String() string { return p.n.String() }

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

// From returns a plan over the given elements.
func From[T comparable](items ...T) Plan[T] {
	erased := make([]any, len(items))
	for i, it := range items {
		erased[i] = it
	}
	return Plan[T]{n: newNode(OpFrom, typeName[T](), "", nil, erased)}
}

// Empty returns a plan with no elements.
func Empty[T comparable]() Plan[T] {
	return From[T]()
}

// NTriples reads the statements of an N-Triples file.
func NTriples(path string) Plan[rdf.Triple] {
	return Plan[rdf.Triple]{n: newNode(OpNTriples, typeName[rdf.Triple](), path, nil, nil)}
}

// Partition reads the statements stored under one partition key. A key
// without a partition yields no statements.
func Partition(key string) Plan[rdf.Triple] {
	return Plan[rdf.Triple]{n: newNode(OpPartition, typeName[rdf.Triple](), key, nil, nil)}
}

// Filter keeps the elements matching pred.
func (p Plan[T]) Filter(pred Pred[T]) Plan[T] {
	fn := pred.Fn
	erased := FilterFn(func(v any) bool { return fn(v.(T)) })
	return Plan[T]{n: newNode(OpFilter, p.n.typ, fnName(pred.Name), erased, nil, p.n)}
}

// Map applies f to every element.
func Map[T, U comparable](p Plan[T], f Func[T, U]) Plan[U] {
	fn := f.Fn
	erased := MapFn(func(v any) any { return fn(v.(T)) })
	return Plan[U]{n: newNode(OpMap, typeName[U](), fnName(f.Name), erased, nil, p.n)}
}

// FlatMap replaces every element by the elements f returns for it.
func FlatMap[T, U comparable](p Plan[T], f FlatFunc[T, U]) Plan[U] {
	fn := f.Fn
	erased := FlatMapFn(func(v any, yield func(any) bool) bool {
		for _, u := range fn(v.(T)) {
			if !yield(u) {
				return false
			}
		}
		return true
	})
	return Plan[U]{n: newNode(OpFlatMap, typeName[U](), fnName(f.Name), erased, nil, p.n)}
}

// Union returns the multiset union of p and others. Nested unions are
// flattened into a single node.
func (p Plan[T]) Union(others ...Plan[T]) Plan[T] {
	if len(others) == 0 {
		return p
	}
	nodes := make([]*Node, 0, len(others)+1)
	nodes = append(nodes, p.n)
	for _, o := range others {
		nodes = append(nodes, o.n)
	}
	return Plan[T]{n: newNode(OpUnion, p.n.typ, "", nil, nil, flatten(OpUnion, nodes)...)}
}

func flatten(op Op, nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.op == op {
			out = append(out, n.parents...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// Intersect keeps the elements of p that also occur in o. Multiplicity of p
// is preserved.
func (p Plan[T]) Intersect(o Plan[T]) Plan[T] {
	return Plan[T]{n: newNode(OpIntersect, p.n.typ, "", nil, nil, p.n, o.n)}
}

// Subtract keeps the elements of p that do not occur in o.
func (p Plan[T]) Subtract(o Plan[T]) Plan[T] {
	return Plan[T]{n: newNode(OpSubtract, p.n.typ, "", nil, nil, p.n, o.n)}
}

// Distinct removes duplicate elements.
func (p Plan[T]) Distinct() Plan[T] {
	if p.n.op == OpDistinct {
		return p
	}
	return Plan[T]{n: newNode(OpDistinct, p.n.typ, "", nil, nil, p.n)}
}

// Cache marks p to be materialized once and shared by every consumer.
func (p Plan[T]) Cache() Plan[T] {
	if p.n.op == OpCache {
		return p
	}
	return Plan[T]{n: newNode(OpCache, p.n.typ, "", nil, nil, p.n)}
}

// Closure returns every element reachable from p through rel, including p
// itself. The result has no duplicates.
func (p Plan[T]) Closure(rel PairPlan[T, T]) Plan[T] {
	return Plan[T]{n: newNode(OpClosure, p.n.typ, "", nil, nil, p.n, rel.n)}
}

// KeyBy turns every element into a pair.
func KeyBy[T, K, V comparable](p Plan[T], f KeyFunc[T, K, V]) PairPlan[K, V] {
	fn := f.Fn
	erased := KeyByFn(func(v any) (any, any) { return fn(v.(T)) })
	return PairPlan[K, V]{n: newNode(OpKeyBy, pairTypeName[K, V](), fnName(f.Name), erased, nil, p.n)}
}

// JoinKeys pairs every element of keys with every value pp holds for it.
// A key occurring n times in keys contributes its values n times.
func JoinKeys[K, V comparable](keys Plan[K], pp PairPlan[K, V]) PairPlan[K, V] {
	return PairPlan[K, V]{n: newNode(OpJoinKeys, pp.n.typ, "", nil, nil, keys.n, pp.n)}
}

// sortedItems orders a map's entries by their printed key so that two equal
// maps yield equal sources.
func sortedItems[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b K) int {
		return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
	})
	return keys
}
