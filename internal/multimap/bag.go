package multimap

import (
	"iter"
	"maps"
	"slices"
)

// Bag is a multimap that keeps duplicate pairs.
type Bag[K, V comparable] struct {
	m    map[K][]V
	size int
}

// NewBag returns an empty Bag with room for hint keys.
func NewBag[K, V comparable](hint int) *Bag[K, V] {
	return &Bag[K, V]{m: make(map[K][]V, hint)}
}

// Put always inserts and therefore always returns true.
func (b *Bag[K, V]) Put(k K, v V) bool {
	b.m[k] = append(b.m[k], v)
	b.size++
	return true
}

func (b *Bag[K, V]) Get(k K) []V       { return b.m[k] }
func (b *Bag[K, V]) Has(k K) bool      { return len(b.m[k]) > 0 }
func (b *Bag[K, V]) Len() int          { return b.size }
func (b *Bag[K, V]) NumKeys() int      { return len(b.m) }
func (b *Bag[K, V]) Keys() iter.Seq[K] { return maps.Keys(b.m) }

func (b *Bag[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for k, vs := range b.m {
			for _, v := range vs {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

func (b *Bag[K, V]) Split(n int) []iter.Seq2[K, V] {
	return splitBy(slices.Collect(maps.Keys(b.m)), n, b.Get)
}

// PutAll merges b and o. The larger of the two absorbs the smaller and is
// returned; the other one must not be used afterwards.
func (b *Bag[K, V]) PutAll(o *Bag[K, V]) *Bag[K, V] {
	dst, src := b, o
	if o.size > b.size {
		dst, src = o, b
	}
	for k, vs := range src.m {
		dst.m[k] = append(dst.m[k], vs...)
		dst.size += len(vs)
	}
	return dst
}

func (b *Bag[K, V]) SplitKeys(n int) []iter.Seq[K] {
	return splitKeySeqs(slices.Collect(maps.Keys(b.m)), n)
}
