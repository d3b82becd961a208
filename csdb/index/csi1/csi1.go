// Package csi1 implements version 1 of the corvus columnar secondary index.
//
// The index keeps one ColumnIndex per indexed column. A ColumnIndex pairs an
// in-memory term index with a View: an immutable snapshot of the
// reference-counted on-disk segments visible for the column, searchable by
// term predicate and by row key range. Views are replaced wholesale as
// segments are added and dropped, so any number of query sessions can read a
// captured snapshot without coordination.
//
// A QueryController owns one query's planning session. It pins the data
// files overlapping the query's key range, turns each AND/OR predicate group
// into a merged row id iterator, enforces a cooperative wall-clock quota,
// and releases every acquired resource exactly once when the session ends.
package csi1

import (
	"errors"
	"io"
)

// LogicalOp combines the per-expression results of a predicate group.
type LogicalOp int

const (
	// And intersects the group's per-expression results.
	And LogicalOp = iota

	// Or unions them.
	Or
)

// String returns the operator's name.
func (op LogicalOp) String() string {
	switch op {
	case And:
		return "and"
	case Or:
		return "or"
	default:
		return "unknown"
	}
}

var (
	// ErrDuplicateExpressions is returned by Plan when a predicate group
	// has already been planned in the same query session.
	ErrDuplicateExpressions = errors.New("csi1: expressions already planned")

	// ErrTimeQuotaExceeded is returned by Checkpoint once a query session
	// has run past its wall-clock quota.
	ErrTimeQuotaExceeded = errors.New("csi1: query time quota exceeded")

	// ErrInconsistentView is returned when a view's term and key structures
	// disagree on interval counts. The snapshot is not published.
	ErrInconsistentView = errors.New("csi1: inconsistent view")

	// ErrColumnNotFound is returned when an operation names an unregistered
	// column.
	ErrColumnNotFound = errors.New("csi1: column not found")
)

// closeQuietly closes c and discards the error. Release paths are
// best-effort: a close failure must not displace the query outcome.
func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
