package csi1

import (
	"sync/atomic"

	"github.com/corvusdb/corvus/csdb"
)

// SegmentData searches the on-disk index structure built for one data file.
// Implementations own the open file resources behind it.
type SegmentData interface {
	// Search returns an iterator over the row ids within the segment that
	// may satisfy expr. A nil iterator means nothing matches.
	Search(expr *Expression) (csdb.RowIDIterator, error)

	// Close releases the open resources.
	Close() error
}

// Segment is a reference-counted handle to one data file's index segment.
// The zero reference point closes the segment's data and releases the
// owning file, so a segment must not be used after its last Release.
type Segment struct {
	ref int32 // accessed atomically

	file    csdb.DataFile
	data    SegmentData
	minTerm []byte
	maxTerm []byte
}

// NewSegment returns a segment over file's index data covering the terms
// [minTerm, maxTerm]. The segment starts with one reference and holds one
// reference to file until its own count drains.
func NewSegment(file csdb.DataFile, data SegmentData, minTerm, maxTerm []byte) *Segment {
	file.Retain()
	return &Segment{
		ref:     1,
		file:    file,
		data:    data,
		minTerm: minTerm,
		maxTerm: maxTerm,
	}
}

// File returns the owning data file.
func (s *Segment) File() csdb.DataFile { return s.file }

// Path returns the owning data file's path. Paths identify segments within
// a view.
func (s *Segment) Path() string { return s.file.Path() }

// MinKey returns the smallest row key covered by the owning data file.
func (s *Segment) MinKey() []byte { return s.file.MinKey() }

// MaxKey returns the largest row key covered by the owning data file.
func (s *Segment) MaxKey() []byte { return s.file.MaxKey() }

// MinTerm returns the smallest indexed term, or nil when the segment
// carries no term metadata.
func (s *Segment) MinTerm() []byte { return s.minTerm }

// MaxTerm returns the largest indexed term, or nil when the segment carries
// no term metadata.
func (s *Segment) MaxTerm() []byte { return s.maxTerm }

// Search returns an iterator over the row ids within the segment that may
// satisfy expr.
func (s *Segment) Search(expr *Expression) (csdb.RowIDIterator, error) {
	return s.data.Search(expr)
}

// Retain acquires a reference to the segment.
func (s *Segment) Retain() { atomic.AddInt32(&s.ref, 1) }

// Release drops one reference. At zero the segment's data is closed, close
// errors are discarded, and the owning file reference is released.
// Releasing below zero panics: a double release is a programmer error.
func (s *Segment) Release() {
	switch n := atomic.AddInt32(&s.ref, -1); {
	case n < 0:
		panic("csi1: segment released more times than retained")
	case n == 0:
		closeQuietly(s.data)
		s.file.Release()
	}
}
