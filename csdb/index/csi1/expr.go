package csi1

import (
	"bytes"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/corvusdb/corvus/csdb"
)

// Operator identifies the comparison form of an expression.
type Operator int

const (
	// OpEqual matches values equal to the operand.
	OpEqual Operator = iota

	// OpNotEqual matches values different from the operand. Not-equal
	// predicates are never planned against the index; they are evaluated by
	// the row-level post-filter.
	OpNotEqual

	// OpRange matches values between Lower and Upper. A nil bound leaves
	// that end open.
	OpRange

	// OpPrefix matches values beginning with the operand. Textual columns
	// only.
	OpPrefix

	// OpContains matches values containing the operand as a substring.
	OpContains
)

// String returns the operator's name.
func (op Operator) String() string {
	switch op {
	case OpEqual:
		return "eq"
	case OpNotEqual:
		return "ne"
	case OpRange:
		return "range"
	case OpPrefix:
		return "prefix"
	case OpContains:
		return "contains"
	default:
		return "unknown"
	}
}

// Bound is one end of a range predicate.
type Bound struct {
	Value     []byte
	Inclusive bool
}

// Expression is a predicate over a single column. Expressions are immutable
// once constructed; distinct instances with equal contents are
// interchangeable.
//
// Lower carries the operand for the point-wise operators (equal, not-equal,
// prefix, contains) and the lower end for OpRange; Upper is the upper end
// for OpRange and nil otherwise.
type Expression struct {
	Column string
	Type   csdb.ValueType
	Index  *ColumnIndex // nil when the column is not indexed
	Op     Operator
	Lower  *Bound
	Upper  *Bound
}

// Indexed reports whether the expression's column has an index attached.
func (e *Expression) Indexed() bool { return e.Index != nil }

// SatisfiedBy reports whether a single column value satisfies the
// expression. It is the row-level post-filter primitive for predicates that
// stay outside index planning.
func (e *Expression) SatisfiedBy(value []byte) bool {
	switch e.Op {
	case OpEqual:
		return e.Type.Compare(value, e.Lower.Value) == 0
	case OpNotEqual:
		return e.Type.Compare(value, e.Lower.Value) != 0
	case OpPrefix:
		return bytes.HasPrefix(value, e.Lower.Value)
	case OpContains:
		return bytes.Contains(value, e.Lower.Value)
	case OpRange:
		if e.Lower != nil {
			if cmp := e.Type.Compare(value, e.Lower.Value); cmp < 0 || (cmp == 0 && !e.Lower.Inclusive) {
				return false
			}
		}
		if e.Upper != nil {
			if cmp := e.Type.Compare(value, e.Upper.Value); cmp > 0 || (cmp == 0 && !e.Upper.Inclusive) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// fingerprint returns an order-sensitive content hash of a predicate
// collection. It gives collections the value-based identity the controller
// keys its resource map by.
func fingerprint(exprs ...*Expression) uint64 {
	h := xxhash.New()
	var n [4]byte
	for _, e := range exprs {
		binary.BigEndian.PutUint32(n[:], uint32(len(e.Column)))
		h.Write(n[:])
		h.WriteString(e.Column)
		h.Write([]byte{byte(e.Type), byte(e.Op)})
		writeBound(h, e.Lower)
		writeBound(h, e.Upper)
	}
	return h.Sum64()
}

func writeBound(h *xxhash.Digest, b *Bound) {
	if b == nil {
		h.Write([]byte{0})
		return
	}

	flag := byte(2)
	if b.Inclusive {
		flag = 3
	}
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(b.Value)))
	h.Write([]byte{flag})
	h.Write(n[:])
	h.Write(b.Value)
}
