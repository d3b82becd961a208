// Package csdb contains the core types shared by the corvus column-oriented
// storage engine: row identifiers, sorted row id iterators and their set
// combinators, and handles to the reference-counted data files an engine
// serves queries from.
package csdb

import "bytes"

// RowID uniquely identifies a row within a store. The zero RowID is never
// assigned to a row; iterators return it to signal exhaustion.
type RowID uint64

// IsZero reports whether id is the unassigned sentinel.
func (id RowID) IsZero() bool { return id == 0 }

// RowIDIterator iterates over a stream of row ids in ascending order.
type RowIDIterator interface {
	// Next returns the next row id, or the zero RowID once the iterator is
	// exhausted. Calling Next after exhaustion keeps returning zero.
	Next() (RowID, error)

	// Close releases the resources backing the iterator. Close is
	// idempotent.
	Close() error
}

// KeyRange is an inclusive range of row keys.
type KeyRange struct {
	Min, Max []byte
}

// Overlaps reports whether the range intersects [min, max]. Empty query
// bounds overlap nothing.
func (r KeyRange) Overlaps(min, max []byte) bool {
	return len(min) != 0 && len(max) != 0 &&
		bytes.Compare(r.Min, max) <= 0 && bytes.Compare(r.Max, min) >= 0
}

// ValueType describes how a column's values are compared and indexed.
type ValueType int

const (
	// BytesType values are opaque and ordered bytewise.
	BytesType ValueType = iota

	// TextType values are human-readable strings. Textual columns are
	// indexed with prefix-capable term structures.
	TextType
)

// Textual reports whether values of this type are human-readable text.
func (t ValueType) Textual() bool { return t == TextType }

// Compare orders two encoded values of this type.
func (t ValueType) Compare(a, b []byte) int { return bytes.Compare(a, b) }

// String returns the name of the type.
func (t ValueType) String() string {
	switch t {
	case TextType:
		return "text"
	default:
		return "bytes"
	}
}
