package csi1_test

import (
	"sync/atomic"

	"github.com/benbjohnson/clock"

	"github.com/corvusdb/corvus/csdb"
	"github.com/corvusdb/corvus/csdb/index/csi1"
	"github.com/corvusdb/corvus/csdb/index/internal"
)

// Index is a test wrapper for csi1.Index bundling the file store its query
// sessions draw scopes from and the mock clock driving its quota checks.
type Index struct {
	*csi1.Index
	Store *csdb.FileStore
	Clock *clock.Mock
}

// NewIndex returns an index over an empty file store with metrics disabled
// and a mock clock.
func NewIndex() *Index {
	store := csdb.NewFileStore()
	mock := clock.NewMock()
	return &Index{
		Index: csi1.NewIndex(store, csi1.NewConfig(), csi1.WithClock(mock), csi1.DisableMetrics()),
		Store: store,
		Clock: mock,
	}
}

// TestFile is a csdb.DataFile double covering a fixed key range with a live
// reference count.
type TestFile struct {
	internal.File
	refs  int32
	stale bool
}

// NewTestFile returns an uncompacted file covering keys [min, max] with no
// references held.
func NewTestFile(path, min, max string) *TestFile {
	f := &TestFile{}
	f.File = internal.File{
		Pathf:      func() string { return path },
		MinKeyf:    func() []byte { return []byte(min) },
		MaxKeyf:    func() []byte { return []byte(max) },
		Retainf:    func() { atomic.AddInt32(&f.refs, 1) },
		Releasef:   func() { atomic.AddInt32(&f.refs, -1) },
		Compactedf: func() bool { return f.stale },
	}
	return f
}

// Refs returns the current reference count.
func (f *TestFile) Refs() int { return int(atomic.LoadInt32(&f.refs)) }

// MarkCompacted flags the file as superseded by a rewrite.
func (f *TestFile) MarkCompacted() { f.stale = true }

// TestSegment is a segment double whose data serves fixed row ids and
// counts searches and closes.
type TestSegment struct {
	*csi1.Segment

	searched int32
	closed   int32
}

// NewTestSegment returns a one-reference segment over file indexing terms
// [minTerm, maxTerm]. Its data answers every expression with ids, or with
// no iterator when ids is empty.
func NewTestSegment(file *TestFile, minTerm, maxTerm string, ids ...csdb.RowID) *TestSegment {
	s := &TestSegment{}
	data := &internal.SegmentData{
		Searchf: func(*csi1.Expression) (csdb.RowIDIterator, error) {
			atomic.AddInt32(&s.searched, 1)
			if len(ids) == 0 {
				return nil, nil
			}
			return csdb.NewRowIDSliceIterator(ids), nil
		},
		Closef: func() error { atomic.AddInt32(&s.closed, 1); return nil },
	}
	s.Segment = csi1.NewSegment(file, data, []byte(minTerm), []byte(maxTerm))
	return s
}

// Searched returns how many times the segment's data was searched.
func (s *TestSegment) Searched() int { return int(atomic.LoadInt32(&s.searched)) }

// DataClosed returns how many times the segment's data was closed.
func (s *TestSegment) DataClosed() int { return int(atomic.LoadInt32(&s.closed)) }

// Segments unwraps test segments.
func Segments(segs ...*TestSegment) []*csi1.Segment {
	out := make([]*csi1.Segment, len(segs))
	for i, s := range segs {
		out[i] = s.Segment
	}
	return out
}

// Files converts test files to data file handles.
func Files(files ...*TestFile) []csdb.DataFile {
	out := make([]csdb.DataFile, len(files))
	for i, f := range files {
		out[i] = f
	}
	return out
}

// NewScope pins files in a fresh scope. The scope owns one reference per
// file, acquired here.
func NewScope(files ...*TestFile) *csdb.FileScope {
	for _, f := range files {
		f.Retain()
	}
	return csdb.NewFileScope(Files(files...))
}

// MustNewView builds a view from scratch and panics on error.
func MustNewView(typ csdb.ValueType, segs ...*TestSegment) *csi1.View {
	v, err := csi1.NewView(typ, nil, nil, Segments(segs...))
	if err != nil {
		panic(err)
	}
	return v
}

// Expr returns a point predicate over ci's column. A nil ci marks the
// column as not indexed.
func Expr(ci *csi1.ColumnIndex, column string, op csi1.Operator, operand string) *csi1.Expression {
	typ := csdb.TextType
	if ci != nil {
		typ = ci.Type()
	}
	return &csi1.Expression{
		Column: column,
		Type:   typ,
		Index:  ci,
		Op:     op,
		Lower:  &csi1.Bound{Value: []byte(operand), Inclusive: true},
	}
}

// RangeExpr returns an inclusive range predicate over ci's column. An empty
// bound is open.
func RangeExpr(ci *csi1.ColumnIndex, column, lower, upper string) *csi1.Expression {
	typ := csdb.TextType
	if ci != nil {
		typ = ci.Type()
	}
	e := &csi1.Expression{Column: column, Type: typ, Index: ci, Op: csi1.OpRange}
	if lower != "" {
		e.Lower = &csi1.Bound{Value: []byte(lower), Inclusive: true}
	}
	if upper != "" {
		e.Upper = &csi1.Bound{Value: []byte(upper), Inclusive: true}
	}
	return e
}

// MustSlice drains itr into a slice, closes it, and panics on error. A nil
// iterator yields nil.
func MustSlice(itr csdb.RowIDIterator) []csdb.RowID {
	if itr == nil {
		return nil
	}
	defer itr.Close()

	var out []csdb.RowID
	for {
		id, err := itr.Next()
		if err != nil {
			panic(err)
		}
		if id.IsZero() {
			return out
		}
		out = append(out, id)
	}
}
