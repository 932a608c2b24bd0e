package multimap

import (
	"iter"
	"maps"
	"slices"
)

// linearLimit is the value count below which membership is a linear scan.
const linearLimit = 16

type setEntry[V comparable] struct {
	vals  []V
	index map[V]struct{}
}

func (e *setEntry[V]) contains(v V) bool {
	if e.index != nil {
		_, ok := e.index[v]
		return ok
	}
	return slices.Contains(e.vals, v)
}

func (e *setEntry[V]) add(v V) {
	e.vals = append(e.vals, v)
	if e.index != nil {
		e.index[v] = struct{}{}
		return
	}
	if len(e.vals) > linearLimit {
		e.index = make(map[V]struct{}, len(e.vals)*2)
		for _, x := range e.vals {
			e.index[x] = struct{}{}
		}
	}
}

// Set is a multimap that stores each (key, value) pair at most once.
type Set[K, V comparable] struct {
	m    map[K]*setEntry[V]
	size int
}

// NewSet returns an empty Set with room for hint keys.
func NewSet[K, V comparable](hint int) *Set[K, V] {
	return &Set[K, V]{m: make(map[K]*setEntry[V], hint)}
}

// Put inserts (k, v) unless it is already present.
func (s *Set[K, V]) Put(k K, v V) bool {
	e, ok := s.m[k]
	if !ok {
		e = &setEntry[V]{}
		s.m[k] = e
	} else if e.contains(v) {
		return false
	}
	e.add(v)
	s.size++
	return true
}

// Contains reports whether (k, v) is present.
func (s *Set[K, V]) Contains(k K, v V) bool {
	e, ok := s.m[k]
	return ok && e.contains(v)
}

func (s *Set[K, V]) Get(k K) []V {
	if e, ok := s.m[k]; ok {
		return e.vals
	}
	return nil
}

func (s *Set[K, V]) Has(k K) bool      { return s.m[k] != nil }
func (s *Set[K, V]) Len() int          { return s.size }
func (s *Set[K, V]) NumKeys() int      { return len(s.m) }
func (s *Set[K, V]) Keys() iter.Seq[K] { return maps.Keys(s.m) }

func (s *Set[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for k, e := range s.m {
			for _, v := range e.vals {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

func (s *Set[K, V]) Split(n int) []iter.Seq2[K, V] {
	return splitBy(slices.Collect(maps.Keys(s.m)), n, s.Get)
}

// PutAll merges s and o, deduplicating pairs. The larger of the two absorbs
// the smaller and is returned.
func (s *Set[K, V]) PutAll(o *Set[K, V]) *Set[K, V] {
	dst, src := s, o
	if o.size > s.size {
		dst, src = o, s
	}
	for k, e := range src.m {
		for _, v := range e.vals {
			dst.Put(k, v)
		}
	}
	return dst
}

func (s *Set[K, V]) SplitKeys(n int) []iter.Seq[K] {
	return splitKeySeqs(slices.Collect(maps.Keys(s.m)), n)
}
