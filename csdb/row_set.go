package csdb

import (
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// RowSet represents a lockable bitmap of row ids.
type RowSet struct {
	sync.RWMutex
	bitmap *roaring.Bitmap
}

// NewRowSet returns a new RowSet containing the given ids.
func NewRowSet(a ...RowID) *RowSet {
	s := &RowSet{bitmap: roaring.NewBitmap()}
	for _, id := range a {
		s.AddNoLock(id)
	}
	return s
}

// Add adds the id to the set. Add is safe for use by multiple goroutines.
func (s *RowSet) Add(id RowID) {
	s.Lock()
	defer s.Unlock()
	s.AddNoLock(id)
}

// AddNoLock adds the id to the set. It is not safe for concurrent use.
func (s *RowSet) AddNoLock(id RowID) {
	// Row ids are currently limited to 32 bits.
	s.bitmap.Add(uint32(id))
}

// Contains returns true if the id exists in the set.
func (s *RowSet) Contains(id RowID) bool {
	s.RLock()
	defer s.RUnlock()
	return s.ContainsNoLock(id)
}

// ContainsNoLock returns true if the id exists in the set. It is not safe
// for concurrent use.
func (s *RowSet) ContainsNoLock(id RowID) bool {
	return s.bitmap.Contains(uint32(id))
}

// Remove removes the id from the set.
func (s *RowSet) Remove(id RowID) {
	s.Lock()
	defer s.Unlock()
	s.RemoveNoLock(id)
}

// RemoveNoLock removes the id from the set. It is not safe for concurrent
// use.
func (s *RowSet) RemoveNoLock(id RowID) {
	s.bitmap.Remove(uint32(id))
}

// Cardinality returns the number of ids in the set.
func (s *RowSet) Cardinality() uint64 {
	s.RLock()
	defer s.RUnlock()
	return s.bitmap.GetCardinality()
}

// Merge merges the contents of others into s.
func (s *RowSet) Merge(others ...*RowSet) {
	bms := make([]*roaring.Bitmap, 0, len(others)+1)

	s.RLock()
	bms = append(bms, s.bitmap)

	for _, other := range others {
		other.RLock()
		defer other.RUnlock() // Hold until the union is built.
		bms = append(bms, other.bitmap)
	}

	result := roaring.FastOr(bms...)
	s.RUnlock()

	s.Lock()
	defer s.Unlock()
	s.bitmap = result
}

// Clone returns a copy of the set.
func (s *RowSet) Clone() *RowSet {
	s.RLock()
	defer s.RUnlock()
	return s.CloneNoLock()
}

// CloneNoLock returns a copy of the set. It is not safe for concurrent use.
func (s *RowSet) CloneNoLock() *RowSet {
	return &RowSet{bitmap: s.bitmap.Clone()}
}

// ForEach calls fn for each id in the set, in ascending order.
func (s *RowSet) ForEach(fn func(id RowID)) {
	s.RLock()
	defer s.RUnlock()
	itr := s.bitmap.Iterator()
	for itr.HasNext() {
		fn(RowID(itr.Next()))
	}
}

// Slice returns the ids in the set as a sorted slice.
func (s *RowSet) Slice() []RowID {
	s.RLock()
	defer s.RUnlock()

	out := make([]RowID, 0, s.bitmap.GetCardinality())
	itr := s.bitmap.Iterator()
	for itr.HasNext() {
		out = append(out, RowID(itr.Next()))
	}
	return out
}

// Iterator returns a RowIDIterator over the set in ascending order. The
// iterator reads the set without locking; clone the set first when it may be
// mutated concurrently.
func (s *RowSet) Iterator() RowIDIterator {
	return &rowSetIterator{itr: s.bitmap.Iterator()}
}

type rowSetIterator struct {
	itr roaring.IntIterable
}

func (itr *rowSetIterator) Next() (RowID, error) {
	if !itr.itr.HasNext() {
		return 0, nil
	}
	return RowID(itr.itr.Next()), nil
}

func (itr *rowSetIterator) Close() error { return nil }
