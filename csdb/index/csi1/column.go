package csi1

import (
	"sync"

	"github.com/corvusdb/corvus/csdb"
)

// ColumnIndex carries one column's index state: its comparison semantics,
// its in-memory searcher, and the current on-disk view snapshot.
//
// Snapshot updates are serialized by the column's mutex; reads return the
// current immutable snapshot and never block behind an update.
type ColumnIndex struct {
	mu   sync.RWMutex
	view *View

	name    string
	typ     csdb.ValueType
	mem     MemSearcher
	tracker *indexTracker
}

func newColumnIndex(name string, typ csdb.ValueType, mem MemSearcher, tracker *indexTracker) *ColumnIndex {
	// An empty snapshot cannot violate the structural invariant.
	view, _ := NewView(typ, nil, nil, nil)
	return &ColumnIndex{
		view:    view,
		name:    name,
		typ:     typ,
		mem:     mem,
		tracker: tracker,
	}
}

// Name returns the column's name.
func (c *ColumnIndex) Name() string { return c.name }

// Type returns the column's comparison semantics.
func (c *ColumnIndex) Type() csdb.ValueType { return c.typ }

// View returns the current snapshot. The snapshot is immutable and remains
// valid across later updates; the query scope, not the view, keeps its
// segments' files alive.
func (c *ColumnIndex) View() *View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

// SearchMem returns the in-memory matches for expr, or nil when the column
// has no in-memory searcher or nothing matches.
func (c *ColumnIndex) SearchMem(expr *Expression) csdb.RowIDIterator {
	if c.mem == nil {
		return nil
	}
	return c.mem.Search(expr)
}

// Update replaces the current snapshot with one built from it, minus the
// dropped data files, plus the added segments. On failure the current
// snapshot stays published and the error is returned.
func (c *ColumnIndex) Update(dropped []csdb.DataFile, added []*Segment) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	view, err := NewView(c.typ, c.view.Segments(), dropped, added)
	if err != nil {
		c.tracker.IncViewBuilt(statusError)
		return err
	}
	c.view = view

	c.tracker.IncViewBuilt(statusOK)
	c.tracker.SetViewSegments(c.name, view.Len())
	return nil
}

// Close releases the current snapshot's segments and publishes an empty
// snapshot in its place.
func (c *ColumnIndex) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.view.Segments() {
		s.Release()
	}
	view, _ := NewView(c.typ, nil, nil, nil)
	c.view = view

	c.tracker.SetViewSegments(c.name, 0)
	return nil
}
