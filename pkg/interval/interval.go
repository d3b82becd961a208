// Package interval implements a static interval tree over byte-string
// bounds.
//
// The tree is built once and immutable afterwards, so lookups are safe for
// concurrent use without locking. Bounds are compared with a caller-supplied
// comparator; bytes.Compare is the usual choice.
package interval

import "sort"

// Interval is a closed interval [Min, Max] carrying a value.
type Interval[T any] struct {
	Min, Max []byte
	Value    T
}

// Tree is a centered interval tree.
type Tree[T any] struct {
	root  *node[T]
	cmp   func(a, b []byte) int
	count int
}

type node[T any] struct {
	center      []byte
	left, right *node[T]
	byMin       []Interval[T] // intervals crossing center, ascending by Min
	byMax       []Interval[T] // same intervals, descending by Max
}

// NewTree constructs a tree from the given intervals. The input slice is not
// retained.
func NewTree[T any](intervals []Interval[T], cmp func(a, b []byte) int) *Tree[T] {
	ivs := make([]Interval[T], len(intervals))
	copy(ivs, intervals)

	return &Tree[T]{
		root:  build(ivs, cmp),
		cmp:   cmp,
		count: len(ivs),
	}
}

// Count returns the number of intervals in the tree.
func (t *Tree[T]) Count() int { return t.count }

// Search returns the values of all intervals overlapping [min, max]. Both
// bounds are inclusive. Results are in no particular order.
func (t *Tree[T]) Search(min, max []byte) []T {
	var out []T
	t.search(t.root, min, max, &out)
	return out
}

func (t *Tree[T]) search(n *node[T], min, max []byte, out *[]T) {
	if n == nil {
		return
	}

	switch {
	case t.cmp(max, n.center) < 0:
		// Query lies left of the center: a crossing interval overlaps iff
		// its lower bound does not exceed max.
		for _, iv := range n.byMin {
			if t.cmp(iv.Min, max) > 0 {
				break
			}
			*out = append(*out, iv.Value)
		}
	case t.cmp(min, n.center) > 0:
		// Right of the center: overlap iff the upper bound reaches min.
		for _, iv := range n.byMax {
			if t.cmp(iv.Max, min) < 0 {
				break
			}
			*out = append(*out, iv.Value)
		}
	default:
		// Query straddles the center, so every crossing interval overlaps.
		for _, iv := range n.byMin {
			*out = append(*out, iv.Value)
		}
	}

	if t.cmp(min, n.center) < 0 {
		t.search(n.left, min, max, out)
	}
	if t.cmp(max, n.center) > 0 {
		t.search(n.right, min, max, out)
	}
}

func build[T any](ivs []Interval[T], cmp func(a, b []byte) int) *node[T] {
	if len(ivs) == 0 {
		return nil
	}

	center := medianEndpoint(ivs, cmp)

	var left, right, crossing []Interval[T]
	for _, iv := range ivs {
		switch {
		case cmp(iv.Max, center) < 0:
			left = append(left, iv)
		case cmp(iv.Min, center) > 0:
			right = append(right, iv)
		default:
			crossing = append(crossing, iv)
		}
	}

	// The center is an endpoint of at least one interval, and that interval
	// always crosses it, so both partitions shrink and the recursion
	// terminates.
	n := &node[T]{center: center, byMin: crossing}
	n.byMax = append([]Interval[T](nil), crossing...)
	sort.Slice(n.byMin, func(i, j int) bool { return cmp(n.byMin[i].Min, n.byMin[j].Min) < 0 })
	sort.Slice(n.byMax, func(i, j int) bool { return cmp(n.byMax[i].Max, n.byMax[j].Max) > 0 })
	n.left = build(left, cmp)
	n.right = build(right, cmp)

	return n
}

// medianEndpoint returns the median of all interval endpoints.
func medianEndpoint[T any](ivs []Interval[T], cmp func(a, b []byte) int) []byte {
	endpoints := make([][]byte, 0, len(ivs)*2)
	for _, iv := range ivs {
		endpoints = append(endpoints, iv.Min, iv.Max)
	}
	sort.Slice(endpoints, func(i, j int) bool { return cmp(endpoints[i], endpoints[j]) < 0 })
	return endpoints[len(endpoints)/2]
}
