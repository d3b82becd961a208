package csdb

import (
	"sync"

	"go.uber.org/multierr"
)

// MergeRowIDIterators returns an iterator over the deduplicated union of
// itrs. Every input must produce ids in ascending order. Returns nil when
// itrs is empty; a single input is returned unwrapped. Closing the returned
// iterator closes the inputs.
func MergeRowIDIterators(itrs ...RowIDIterator) RowIDIterator {
	if n := len(itrs); n == 0 {
		return nil
	} else if n == 1 {
		return itrs[0]
	}
	return &rowIDMergeIterator{itrs: itrs, buf: make([]RowID, len(itrs))}
}

// rowIDMergeIterator merges many ascending iterators into one deduplicated
// ascending stream.
type rowIDMergeIterator struct {
	itrs []RowIDIterator
	buf  []RowID
	once sync.Once
}

func (itr *rowIDMergeIterator) Next() (RowID, error) {
	// Find the lowest id amongst the buffers.
	var min RowID
	for i := range itr.itrs {
		// Refill the buffer.
		if itr.buf[i].IsZero() {
			id, err := itr.itrs[i].Next()
			if err != nil {
				return 0, err
			} else if id.IsZero() {
				continue
			}
			itr.buf[i] = id
		}

		if min.IsZero() || itr.buf[i] < min {
			min = itr.buf[i]
		}
	}

	// Every input is exhausted.
	if min.IsZero() {
		return 0, nil
	}

	// Clear the chosen id from every buffer so duplicates collapse.
	for i := range itr.buf {
		if itr.buf[i] == min {
			itr.buf[i] = 0
		}
	}
	return min, nil
}

func (itr *rowIDMergeIterator) Close() (err error) {
	itr.once.Do(func() { err = closeIterators(itr.itrs) })
	return err
}

// IntersectRowIDIterators returns an iterator over the ids present in every
// input. Every input must produce ids in ascending order. Returns nil when
// itrs is empty; a single input is returned unwrapped. Closing the returned
// iterator closes the inputs.
func IntersectRowIDIterators(itrs ...RowIDIterator) RowIDIterator {
	if n := len(itrs); n == 0 {
		return nil
	} else if n == 1 {
		return itrs[0]
	}
	return &rowIDIntersectIterator{itrs: itrs, buf: make([]RowID, len(itrs))}
}

type rowIDIntersectIterator struct {
	itrs []RowIDIterator
	buf  []RowID
	once sync.Once
}

func (itr *rowIDIntersectIterator) Next() (RowID, error) {
	for {
		// Fill the buffers. Once any input runs out the intersection is
		// complete.
		var max RowID
		for i := range itr.itrs {
			if itr.buf[i].IsZero() {
				id, err := itr.itrs[i].Next()
				if err != nil {
					return 0, err
				} else if id.IsZero() {
					return 0, nil
				}
				itr.buf[i] = id
			}

			if itr.buf[i] > max {
				max = itr.buf[i]
			}
		}

		// All buffers agree on max.
		agreed := true
		for i := range itr.buf {
			if itr.buf[i] != max {
				agreed = false
				break
			}
		}
		if agreed {
			for i := range itr.buf {
				itr.buf[i] = 0
			}
			return max, nil
		}

		// Drop everything below max and refill.
		for i := range itr.buf {
			if itr.buf[i] < max {
				itr.buf[i] = 0
			}
		}
	}
}

func (itr *rowIDIntersectIterator) Close() (err error) {
	itr.once.Do(func() { err = closeIterators(itr.itrs) })
	return err
}

// NewRowIDSliceIterator returns an iterator over a slice of ids. The slice
// must be sorted ascending.
func NewRowIDSliceIterator(ids []RowID) RowIDIterator {
	return &rowIDSliceIterator{ids: ids}
}

type rowIDSliceIterator struct {
	ids []RowID
}

func (itr *rowIDSliceIterator) Next() (RowID, error) {
	if len(itr.ids) == 0 {
		return 0, nil
	}
	id := itr.ids[0]
	itr.ids = itr.ids[1:]
	return id, nil
}

func (itr *rowIDSliceIterator) Close() error { return nil }

// IteratorBuilder accumulates child iterators and combines them with a set
// operation.
type IteratorBuilder struct {
	combine func(...RowIDIterator) RowIDIterator
	itrs    []RowIDIterator
}

// NewUnionBuilder returns a builder whose result is the union of its
// children.
func NewUnionBuilder() *IteratorBuilder {
	return &IteratorBuilder{combine: MergeRowIDIterators}
}

// NewIntersectionBuilder returns a builder whose result is the intersection
// of its children.
func NewIntersectionBuilder() *IteratorBuilder {
	return &IteratorBuilder{combine: IntersectRowIDIterators}
}

// Add appends a child iterator. Nil iterators are ignored.
func (b *IteratorBuilder) Add(itr RowIDIterator) {
	if itr != nil {
		b.itrs = append(b.itrs, itr)
	}
}

// N returns the number of children added so far.
func (b *IteratorBuilder) N() int { return len(b.itrs) }

// Iterator combines the children into a single iterator and hands ownership
// of them to it. Returns nil when no children were added.
func (b *IteratorBuilder) Iterator() RowIDIterator {
	itrs := b.itrs
	b.itrs = nil
	return b.combine(itrs...)
}

// Close closes any children that have not been handed off via Iterator.
func (b *IteratorBuilder) Close() error {
	err := closeIterators(b.itrs)
	b.itrs = nil
	return err
}

func closeIterators(itrs []RowIDIterator) error {
	var err error
	for _, itr := range itrs {
		err = multierr.Append(err, itr.Close())
	}
	return err
}
