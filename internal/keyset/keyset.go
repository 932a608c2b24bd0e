// Package keyset implements the membership sets built by intersections,
// anti-joins and semi-joins.
//
// Numeric IRIs (e.g. wd:Q42) are stored in one roaring bitmap per
// (prefix, char) pair; all other keys go to a hash set. Wikidata key sets are
// dominated by numeric IRIs, so this keeps large key sets compact.
package keyset

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/wikiflow/rdf"
)

// KeySet is a set of arbitrary comparable keys.
//
// Add is not safe for concurrent use; Contains is safe once building is done.
type KeySet struct {
	numeric map[uint32]*roaring.Bitmap
	other   map[any]struct{}
	size    int
}

// New returns an empty KeySet.
func New(hint int) *KeySet {
	return &KeySet{other: make(map[any]struct{}, hint)}
}

func numericSlot(n rdf.NumericIRI) uint32 {
	return uint32(n.Prefix())<<16 | uint32(n.Char())
}

// Add inserts k and reports whether it was absent.
func (s *KeySet) Add(k any) bool {
	if n, ok := k.(rdf.NumericIRI); ok {
		if s.numeric == nil {
			s.numeric = make(map[uint32]*roaring.Bitmap)
		}
		slot := numericSlot(n)
		bm, ok := s.numeric[slot]
		if !ok {
			bm = roaring.New()
			s.numeric[slot] = bm
		}
		if bm.CheckedAdd(n.ID()) {
			s.size++
			return true
		}
		return false
	}
	if _, ok := s.other[k]; ok {
		return false
	}
	s.other[k] = struct{}{}
	s.size++
	return true
}

// Contains reports whether k is in the set.
func (s *KeySet) Contains(k any) bool {
	if n, ok := k.(rdf.NumericIRI); ok {
		bm, ok := s.numeric[numericSlot(n)]
		return ok && bm.Contains(n.ID())
	}
	_, ok := s.other[k]
	return ok
}

// Len returns the number of keys.
func (s *KeySet) Len() int { return s.size }

// Merge unions s and o. The larger set absorbs the smaller one and is
// returned.
func (s *KeySet) Merge(o *KeySet) *KeySet {
	dst, src := s, o
	if o.size > s.size {
		dst, src = o, s
	}
	for slot, bm := range src.numeric {
		if dst.numeric == nil {
			dst.numeric = make(map[uint32]*roaring.Bitmap)
		}
		if existing, ok := dst.numeric[slot]; ok {
			existing.Or(bm)
		} else {
			dst.numeric[slot] = bm
		}
	}
	for k := range src.other {
		dst.other[k] = struct{}{}
	}
	dst.size = len(dst.other)
	for _, bm := range dst.numeric {
		dst.size += int(bm.GetCardinality())
	}
	return dst
}
