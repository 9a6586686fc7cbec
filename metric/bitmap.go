package metric

import "github.com/RoaringBitmap/roaring/v2"

// Set is a compressed set of uint32 elements for batch set-distance
// workloads, where the two-element coordinate sets of Jaccard and
// SorensenDice are too small. It wraps a Roaring Bitmap.
//
// A Set is not safe for concurrent mutation.
type Set struct {
	rb *roaring.Bitmap
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{rb: roaring.New()}
}

// SetOf creates a Set holding the given elements.
func SetOf(elements ...uint32) *Set {
	s := NewSet()
	for _, e := range elements {
		s.rb.Add(e)
	}
	return s
}

// Add adds an element to the set.
func (s *Set) Add(e uint32) {
	s.rb.Add(e)
}

// Remove removes an element from the set.
func (s *Set) Remove(e uint32) {
	s.rb.Remove(e)
}

// Contains reports whether e is in the set.
func (s *Set) Contains(e uint32) bool {
	return s.rb.Contains(e)
}

// Cardinality returns the number of elements in the set.
func (s *Set) Cardinality() uint64 {
	return s.rb.GetCardinality()
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	return &Set{rb: s.rb.Clone()}
}

// JaccardSets returns the Jaccard distance between two sets:
// 1 - |A∩B| / |A∪B|. Two empty sets have distance 0.
func JaccardSets(a, b *Set) float64 {
	inter := a.rb.AndCardinality(b.rb)
	union := a.rb.GetCardinality() + b.rb.GetCardinality() - inter
	if union == 0 {
		return 0
	}
	return 1 - float64(inter)/float64(union)
}

// DiceSets returns the Sørensen–Dice distance between two sets:
// 1 - 2|A∩B| / (|A|+|B|). Two empty sets have distance 0.
func DiceSets(a, b *Set) float64 {
	total := a.rb.GetCardinality() + b.rb.GetCardinality()
	if total == 0 {
		return 0
	}
	inter := a.rb.AndCardinality(b.rb)
	return 1 - 2*float64(inter)/float64(total)
}
