package csi1

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/corvusdb/corvus/csdb"
	"github.com/corvusdb/corvus/pkg/interval"
)

// View is an immutable snapshot of the index segments visible for one
// column. A view is safe for unsynchronized concurrent reads; updates build
// a replacement snapshot instead of mutating in place.
type View struct {
	typ      csdb.ValueType
	segments map[string]*Segment // keyed by data file path
	terms    termTree
	keys     *interval.Tree[*Segment]
}

// NewView builds a snapshot from the previous snapshot's segments, the data
// files dropped since it was taken, and newly available segments. The result
// contains the previous and added segments minus the dropped and compacted
// ones, de-duplicated by data file path with the first occurrence winning.
// Every excluded segment, whether superseded, compacted, or a duplicate, is
// released exactly once.
//
// Construction aborts with ErrInconsistentView when the term and key
// structures disagree on interval counts, which happens when a kept segment
// carries no term metadata. No snapshot is published on that path; the
// excluded segments have already been released.
func NewView(typ csdb.ValueType, prev []*Segment, dropped []csdb.DataFile, added []*Segment) (*View, error) {
	drop := make(map[string]struct{}, len(dropped))
	for _, f := range dropped {
		drop[f.Path()] = struct{}{}
	}

	segments := make(map[string]*Segment, len(prev)+len(added))
	for _, list := range [][]*Segment{prev, added} {
		for _, s := range list {
			path := s.Path()
			_, dup := segments[path]
			if _, ok := drop[path]; ok || s.File().Compacted() || dup {
				s.Release()
				continue
			}
			segments[path] = s
		}
	}

	kept := make([]*Segment, 0, len(segments))
	ivs := make([]interval.Interval[*Segment], 0, len(segments))
	for _, s := range segments {
		kept = append(kept, s)
		ivs = append(ivs, interval.Interval[*Segment]{Min: s.MinKey(), Max: s.MaxKey(), Value: s})
	}

	v := &View{
		typ:      typ,
		segments: segments,
		terms:    newTermTree(typ, kept),
		keys:     interval.NewTree(ivs, bytes.Compare),
	}

	if tc, kc := v.terms.count(), v.keys.Count(); tc != kc {
		return nil, errors.Wrapf(ErrInconsistentView, "term intervals %d, key intervals %d", tc, kc)
	}
	return v, nil
}

// Type returns the comparison semantics the view was built for.
func (v *View) Type() csdb.ValueType { return v.typ }

// Len returns the number of segments in the snapshot.
func (v *View) Len() int { return len(v.segments) }

// Segment returns the segment indexing the data file at path, or nil.
func (v *View) Segment(path string) *Segment { return v.segments[path] }

// Segments returns the snapshot's segments in no particular order.
func (v *View) Segments() []*Segment {
	segments := make([]*Segment, 0, len(v.segments))
	for _, s := range v.segments {
		segments = append(segments, s)
	}
	return segments
}

// Match returns the segments that may satisfy expr, restricted to segments
// whose data file is pinned by scope. The restriction keeps a query inside
// its consistent read footprint even after the live view has moved on. A
// nil scope matches nothing.
func (v *View) Match(scope *csdb.FileScope, expr *Expression) []*Segment {
	if scope == nil {
		return nil
	}

	var matched []*Segment
	for _, s := range v.terms.search(expr) {
		if scope.Contains(s.Path()) {
			matched = append(matched, s)
		}
	}
	return matched
}

// MatchKeyRange returns every segment whose key interval overlaps
// [min, max], both bounds inclusive, regardless of scope.
func (v *View) MatchKeyRange(min, max []byte) []*Segment {
	return v.keys.Search(min, max)
}
