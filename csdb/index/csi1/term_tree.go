package csi1

import (
	"bytes"

	"github.com/corvusdb/corvus/csdb"
	"github.com/corvusdb/corvus/pkg/interval"
)

// termTree maps a predicate to the segments whose term range could contain
// a match. Results are candidates: the segment search and the row-level
// post-filter trim them to actual matches.
type termTree interface {
	search(expr *Expression) []*Segment
	count() int
}

// newTermTree picks the structure for a column's comparison semantics.
func newTermTree(typ csdb.ValueType, segments []*Segment) termTree {
	if typ.Textual() {
		return newPrefixTermTree(segments)
	}
	return newRangeTermTree(segments)
}

// rangeTermTree serves ordered comparison semantics: equality stabs the
// interval set, ranges overlap it. Segments without term metadata are left
// out; the view's consistency check rejects such snapshots.
type rangeTermTree struct {
	tree             *interval.Tree[*Segment]
	minTerm, maxTerm []byte
}

func newRangeTermTree(segments []*Segment) *rangeTermTree {
	t := &rangeTermTree{}

	ivs := make([]interval.Interval[*Segment], 0, len(segments))
	for _, s := range segments {
		if s.MinTerm() == nil || s.MaxTerm() == nil {
			continue
		}
		if t.minTerm == nil || bytes.Compare(s.MinTerm(), t.minTerm) < 0 {
			t.minTerm = s.MinTerm()
		}
		if t.maxTerm == nil || bytes.Compare(s.MaxTerm(), t.maxTerm) > 0 {
			t.maxTerm = s.MaxTerm()
		}
		ivs = append(ivs, interval.Interval[*Segment]{Min: s.MinTerm(), Max: s.MaxTerm(), Value: s})
	}
	t.tree = interval.NewTree(ivs, bytes.Compare)

	return t
}

func (t *rangeTermTree) count() int { return t.tree.Count() }

func (t *rangeTermTree) search(expr *Expression) []*Segment {
	if t.tree.Count() == 0 {
		return nil
	}

	switch expr.Op {
	case OpEqual, OpNotEqual:
		return t.tree.Search(expr.Lower.Value, expr.Lower.Value)
	case OpRange:
		// Open ends fall back to the tree's global term bounds. Bound
		// inclusivity is ignored here; over-approximation only widens the
		// candidate set.
		min, max := t.minTerm, t.maxTerm
		if expr.Lower != nil {
			min = expr.Lower.Value
		}
		if expr.Upper != nil {
			max = expr.Upper.Value
		}
		return t.tree.Search(min, max)
	case OpPrefix, OpContains:
		// Term bounds cannot rule out substring matches.
		return t.tree.Search(t.minTerm, t.maxTerm)
	default:
		return nil
	}
}

// prefixTermTree serves textual semantics. Prefix predicates search only
// the term range the prefix spans; everything else keeps the ordered
// behavior.
type prefixTermTree struct {
	rangeTermTree
}

func newPrefixTermTree(segments []*Segment) *prefixTermTree {
	return &prefixTermTree{rangeTermTree: *newRangeTermTree(segments)}
}

func (t *prefixTermTree) search(expr *Expression) []*Segment {
	if t.tree.Count() == 0 {
		return nil
	}

	if expr.Op == OpPrefix {
		p := expr.Lower.Value
		if upper := prefixUpperBound(p); upper != nil {
			return t.tree.Search(p, upper)
		}
		// No finite successor exists (all 0xff); everything at or past the
		// prefix stays a candidate.
		if bytes.Compare(p, t.maxTerm) > 0 {
			return nil
		}
		return t.tree.Search(p, t.maxTerm)
	}
	return t.rangeTermTree.search(expr)
}

// prefixUpperBound returns the smallest byte string greater than every
// string prefixed by p, or nil when no such bound exists.
func prefixUpperBound(p []byte) []byte {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] != 0xff {
			upper := make([]byte, i+1)
			copy(upper, p[:i+1])
			upper[i]++
			return upper
		}
	}
	return nil
}
