package multimap

import (
	"iter"
	"slices"
)

// Multimap maps a key to a collection of values.
type Multimap[K, V comparable] interface {
	// Put inserts (k, v) and reports whether the size changed.
	Put(k K, v V) bool
	// Get returns the values of k. The slice is a read-only view and is
	// empty (nil) for a missing key.
	Get(k K) []V
	// Has reports whether k has at least one value.
	Has(k K) bool
	// Len returns the number of (key, value) pairs.
	Len() int
	// NumKeys returns the number of distinct keys.
	NumKeys() int
	// All iterates over every pair.
	All() iter.Seq2[K, V]
	// Keys iterates over distinct keys.
	Keys() iter.Seq[K]
	// Split partitions the pairs into at most n disjoint sequences.
	Split(n int) []iter.Seq2[K, V]
	// SplitKeys partitions the distinct keys into at most n disjoint
	// sequences.
	SplitKeys(n int) []iter.Seq[K]
}

var (
	_ Multimap[int, int] = (*Bag[int, int])(nil)
	_ Multimap[int, int] = (*Set[int, int])(nil)
)

// splitKeys cuts keys into at most n contiguous chunks.
func splitKeys[K any](keys []K, n int) [][]K {
	if n <= 0 {
		n = 1
	}
	if len(keys) == 0 {
		return nil
	}
	if n > len(keys) {
		n = len(keys)
	}
	chunks := make([][]K, 0, n)
	size := (len(keys) + n - 1) / n
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		chunks = append(chunks, keys[start:end])
	}
	return chunks
}

func splitBy[K comparable, V any](keys []K, n int, get func(K) []V) []iter.Seq2[K, V] {
	chunks := splitKeys(keys, n)
	out := make([]iter.Seq2[K, V], len(chunks))
	for i, chunk := range chunks {
		out[i] = func(yield func(K, V) bool) {
			for _, k := range chunk {
				for _, v := range get(k) {
					if !yield(k, v) {
						return
					}
				}
			}
		}
	}
	return out
}

func splitKeySeqs[K any](keys []K, n int) []iter.Seq[K] {
	chunks := splitKeys(keys, n)
	out := make([]iter.Seq[K], len(chunks))
	for i, chunk := range chunks {
		out[i] = slices.Values(chunk)
	}
	return out
}
