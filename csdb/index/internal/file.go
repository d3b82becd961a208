package internal

import (
	"github.com/corvusdb/corvus/csdb"
	"github.com/corvusdb/corvus/csdb/index/csi1"
)

// File is a mock implementation of a csdb.DataFile.
type File struct {
	Pathf      func() string
	MinKeyf    func() []byte
	MaxKeyf    func() []byte
	Retainf    func()
	Releasef   func()
	Compactedf func() bool
}

func (f *File) Path() string    { return f.Pathf() }
func (f *File) MinKey() []byte  { return f.MinKeyf() }
func (f *File) MaxKey() []byte  { return f.MaxKeyf() }
func (f *File) Retain()         { f.Retainf() }
func (f *File) Release()        { f.Releasef() }
func (f *File) Compacted() bool { return f.Compactedf() }

// SegmentData is a mock implementation of a csi1.SegmentData.
type SegmentData struct {
	Searchf func(expr *csi1.Expression) (csdb.RowIDIterator, error)
	Closef  func() error
}

func (d *SegmentData) Search(expr *csi1.Expression) (csdb.RowIDIterator, error) {
	return d.Searchf(expr)
}
func (d *SegmentData) Close() error { return d.Closef() }

// MemSearcher is a mock implementation of a csi1.MemSearcher.
type MemSearcher struct {
	Searchf func(expr *csi1.Expression) csdb.RowIDIterator
}

func (m *MemSearcher) Search(expr *csi1.Expression) csdb.RowIDIterator { return m.Searchf(expr) }

// RowIDIterator is a mock implementation of a csdb.RowIDIterator.
type RowIDIterator struct {
	Nextf  func() (csdb.RowID, error)
	Closef func() error
}

func (itr *RowIDIterator) Next() (csdb.RowID, error) { return itr.Nextf() }
func (itr *RowIDIterator) Close() error              { return itr.Closef() }

// FileReferencer is a mock implementation of a csdb.FileReferencer.
type FileReferencer struct {
	RetainOverlappingf func(min, max []byte) *csdb.FileScope
}

func (r *FileReferencer) RetainOverlapping(min, max []byte) *csdb.FileScope {
	return r.RetainOverlappingf(min, max)
}
