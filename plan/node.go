package plan

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// KV is the type-erased pair flowing through pair plans.
type KV struct {
	Key   any
	Value any
}

// Erased function signatures stored on nodes. Evaluators call these; the
// typed builders create them.
type (
	FilterFn     = func(any) bool
	MapFn        = func(any) any
	FlatMapFn    = func(v any, yield func(any) bool) bool
	KeyByFn      = func(any) (any, any)
	PairFilterFn = func(k, v any) bool
	PairMapFn    = func(k, v any) any
	GroupMapFn   = func(k any, vs []any) any
)

// Node is an immutable operator node.
type Node struct {
	op      Op
	typ     string
	name    string
	parents []*Node
	items   []any
	fn      any
	digest  uint64
}

var anonCounter atomic.Uint64

// anonName returns a name unique to this process for unnamed functions.
func anonName() string {
	return fmt.Sprintf("\x00anon#%d", anonCounter.Add(1))
}

func newNode(op Op, typ, name string, fn any, items []any, parents ...*Node) *Node {
	n := &Node{
		op:      op,
		typ:     typ,
		name:    name,
		parents: parents,
		items:   items,
		fn:      fn,
	}
	n.digest = n.computeDigest()
	return n
}

func (n *Node) computeDigest() uint64 {
	h := xxhash.New()
	var buf [8]byte
	buf[0] = byte(n.op)
	_, _ = h.Write(buf[:1])
	_, _ = h.WriteString(n.typ)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(n.name)
	_, _ = h.WriteString("\x00")
	for _, it := range n.items {
		fmt.Fprintf(h, "%T=%v\x00", it, it)
	}
	for _, p := range n.parents {
		binary.LittleEndian.PutUint64(buf[:], p.digest)
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// Op returns the operator kind.
func (n *Node) Op() Op { return n.op }

// Type returns the element type the node produces.
func (n *Node) Type() string { return n.typ }

// Name returns the node parameter name: a function name, a file path or a
// partition key.
func (n *Node) Name() string { return n.name }

// Parents returns the input nodes. The slice must not be modified.
func (n *Node) Parents() []*Node { return n.parents }

// Parent returns the i-th input node.
func (n *Node) Parent(i int) *Node { return n.parents[i] }

// Items returns the elements of a collection source. The slice must not be
// modified.
func (n *Node) Items() []any { return n.items }

// Fn returns the erased function parameter, or nil.
func (n *Node) Fn() any { return n.fn }

// Digest returns the structural hash of the subtree rooted at n.
func (n *Node) Digest() uint64 { return n.digest }

// Equal reports whether n and o describe the same computation.
func (n *Node) Equal(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	if n.digest != o.digest || n.op != o.op || n.typ != o.typ || n.name != o.name {
		return false
	}
	if len(n.items) != len(o.items) || len(n.parents) != len(o.parents) {
		return false
	}
	for i := range n.items {
		if n.items[i] != o.items[i] {
			return false
		}
	}
	for i := range n.parents {
		if !n.parents[i].Equal(o.parents[i]) {
			return false
		}
	}
	return true
}

// String renders the subtree in a compact, human readable form.
func (n *Node) String() string {
	var sb strings.Builder
	n.render(&sb)
	return sb.String()
}

func (n *Node) render(sb *strings.Builder) {
	sb.WriteString(n.op.String())
	switch {
	case n.op == OpFrom || n.op == OpFromPairs:
		fmt.Fprintf(sb, "[%d]", len(n.items))
	case n.name != "" && !strings.HasPrefix(n.name, "\x00"):
		fmt.Fprintf(sb, "[%s]", n.name)
	}
	if len(n.parents) == 0 {
		return
	}
	sb.WriteByte('(')
	for i, p := range n.parents {
		if i > 0 {
			sb.WriteString(", ")
		}
		p.render(sb)
	}
	sb.WriteByte(')')
}

// Walk calls fn for every node of the subtree in depth-first post-order.
// Shared subtrees are visited once.
func (n *Node) Walk(fn func(*Node)) {
	seen := make(map[*Node]bool)
	var visit func(*Node)
	visit = func(x *Node) {
		if seen[x] {
			return
		}
		seen[x] = true
		for _, p := range x.parents {
			visit(p)
		}
		fn(x)
	}
	visit(n)
}
