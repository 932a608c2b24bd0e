package multimap

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect[K, V comparable](m Multimap[K, V]) map[K][]V {
	out := map[K][]V{}
	for k, v := range m.All() {
		out[k] = append(out[k], v)
	}
	return out
}

func TestBag_KeepsDuplicates(t *testing.T) {
	b := NewBag[string, int](0)
	assert.True(t, b.Put("a", 1))
	assert.True(t, b.Put("a", 1))
	assert.True(t, b.Put("b", 2))

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, 2, b.NumKeys())
	assert.Equal(t, []int{1, 1}, b.Get("a"))
	assert.Empty(t, b.Get("missing"))
	assert.False(t, b.Has("missing"))
}

func TestSet_Deduplicates(t *testing.T) {
	s := NewSet[string, int](0)
	assert.True(t, s.Put("a", 1))
	assert.False(t, s.Put("a", 1), "repeated put must be a no-op")
	assert.True(t, s.Put("a", 2))

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("a", 2))
	assert.False(t, s.Contains("a", 3))
	assert.False(t, s.Contains("b", 1))
}

func TestSet_IndexPromotion(t *testing.T) {
	s := NewSet[int, int](0)
	for i := 0; i < 3*linearLimit; i++ {
		require.True(t, s.Put(0, i))
	}
	for i := 0; i < 3*linearLimit; i++ {
		require.False(t, s.Put(0, i))
	}
	assert.Equal(t, 3*linearLimit, s.Len())
	assert.Len(t, s.Get(0), 3*linearLimit)
}

func TestBag_PutAllLargerAbsorbs(t *testing.T) {
	small := NewBag[int, int](0)
	small.Put(1, 1)

	large := NewBag[int, int](0)
	large.Put(1, 2)
	large.Put(2, 3)
	large.Put(3, 4)

	merged := small.PutAll(large)
	assert.Same(t, large, merged)
	assert.Equal(t, 4, merged.Len())
	assert.ElementsMatch(t, []int{2, 1}, merged.Get(1))
}

func TestSet_PutAll(t *testing.T) {
	a := NewSet[int, int](0)
	a.Put(1, 1)
	a.Put(1, 2)

	b := NewSet[int, int](0)
	b.Put(1, 2)
	b.Put(2, 2)

	merged := a.PutAll(b)
	assert.Equal(t, 3, merged.Len())
	assert.ElementsMatch(t, []int{1, 2}, merged.Get(1))
}

func TestSplit_DisjointAndComplete(t *testing.T) {
	for _, m := range []Multimap[int, int]{NewBag[int, int](0), NewSet[int, int](0)} {
		for k := 0; k < 100; k++ {
			m.Put(k, k*2)
			m.Put(k, k*2+1)
		}

		for _, n := range []int{0, 1, 3, 8, 500} {
			parts := m.Split(n)
			if n > 0 {
				assert.LessOrEqual(t, len(parts), n)
			}

			var (
				mu   sync.Mutex
				seen []int
				wg   sync.WaitGroup
			)
			for _, part := range parts {
				wg.Add(1)
				go func() {
					defer wg.Done()
					var local []int
					for _, v := range part {
						local = append(local, v)
					}
					mu.Lock()
					seen = append(seen, local...)
					mu.Unlock()
				}()
			}
			wg.Wait()

			sort.Ints(seen)
			require.Len(t, seen, 200)
			for i, v := range seen {
				require.Equal(t, i, v)
			}
		}
	}
}

func TestSplit_Empty(t *testing.T) {
	assert.Empty(t, NewBag[int, int](0).Split(4))
	assert.Empty(t, collect[int, int](NewSet[int, int](0)))
}

func TestSplitKeys(t *testing.T) {
	s := NewSet[int, string](0)
	for k := range 10 {
		s.Put(k, "a")
		s.Put(k, "b")
	}

	parts := s.SplitKeys(3)
	require.Len(t, parts, 3)

	var keys []int
	for _, p := range parts {
		for k := range p {
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, keys)
	assert.Empty(t, NewBag[int, int](0).SplitKeys(2))
}
