package csi1

import (
	"bytes"
	"sync"

	"github.com/google/btree"

	"github.com/corvusdb/corvus/csdb"
)

// MemSearcher searches a column's in-memory, not-yet-flushed index.
type MemSearcher interface {
	// Search returns an iterator over the row ids matching expr, or nil
	// when nothing matches.
	Search(expr *Expression) csdb.RowIDIterator
}

// MemTable is an ordered in-memory term index implementing MemSearcher. It
// is safe for concurrent use.
type MemTable struct {
	mu    sync.RWMutex
	terms *btree.BTree
}

// memTerm is one term's posting set.
type memTerm struct {
	term []byte
	rows *csdb.RowSet
}

// Less is used to implement btree.Item.
func (t *memTerm) Less(other btree.Item) bool {
	return bytes.Compare(t.term, other.(*memTerm).term) < 0
}

// NewMemTable returns an empty memtable.
func NewMemTable() *MemTable {
	return &MemTable{terms: btree.New(32)}
}

// Add records that the row at id carries term.
func (m *MemTable) Add(term []byte, id csdb.RowID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item := m.terms.Get(&memTerm{term: term}); item != nil {
		item.(*memTerm).rows.AddNoLock(id)
		return
	}

	t := &memTerm{term: append([]byte(nil), term...), rows: csdb.NewRowSet()}
	t.rows.AddNoLock(id)
	m.terms.ReplaceOrInsert(t)
}

// Len returns the number of distinct terms.
func (m *MemTable) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.terms.Len()
}

// Search returns an iterator over the row ids matching expr, or nil when
// nothing matches. The iterator reads a point-in-time copy and stays valid
// while writes continue.
func (m *MemTable) Search(expr *Expression) csdb.RowIDIterator {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*csdb.RowSet
	collect := func(item btree.Item) bool {
		matched = append(matched, item.(*memTerm).rows)
		return true
	}

	switch expr.Op {
	case OpEqual:
		if item := m.terms.Get(&memTerm{term: expr.Lower.Value}); item != nil {
			collect(item)
		}
	case OpNotEqual:
		m.terms.Ascend(func(item btree.Item) bool {
			if !bytes.Equal(item.(*memTerm).term, expr.Lower.Value) {
				collect(item)
			}
			return true
		})
	case OpPrefix:
		m.terms.AscendGreaterOrEqual(&memTerm{term: expr.Lower.Value}, func(item btree.Item) bool {
			if !bytes.HasPrefix(item.(*memTerm).term, expr.Lower.Value) {
				return false
			}
			return collect(item)
		})
	case OpContains:
		m.terms.Ascend(func(item btree.Item) bool {
			if bytes.Contains(item.(*memTerm).term, expr.Lower.Value) {
				collect(item)
			}
			return true
		})
	case OpRange:
		visit := func(item btree.Item) bool {
			t := item.(*memTerm)
			if expr.Lower != nil {
				if cmp := expr.Type.Compare(t.term, expr.Lower.Value); cmp == 0 && !expr.Lower.Inclusive {
					return true
				}
			}
			if expr.Upper != nil {
				if cmp := expr.Type.Compare(t.term, expr.Upper.Value); cmp > 0 || (cmp == 0 && !expr.Upper.Inclusive) {
					return false
				}
			}
			return collect(item)
		}
		if expr.Lower != nil {
			m.terms.AscendGreaterOrEqual(&memTerm{term: expr.Lower.Value}, visit)
		} else {
			m.terms.Ascend(visit)
		}
	}

	if len(matched) == 0 {
		return nil
	}

	// Detach from the live term sets before handing out an iterator.
	merged := csdb.NewRowSet()
	merged.Merge(matched...)
	return merged.Clone().Iterator()
}
