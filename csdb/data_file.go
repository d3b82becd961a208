package csdb

import "sync"

// DataFile is a handle to an on-disk data file holding a contiguous range of
// row keys.
type DataFile interface {
	// Path returns the file's location on disk. Paths are unique within a
	// store and identify the file.
	Path() string

	// MinKey returns the smallest row key present in the file.
	MinKey() []byte

	// MaxKey returns the largest row key present in the file.
	MaxKey() []byte

	// Retain acquires a reference to the file, preventing its removal from
	// disk. Release drops the reference.
	Retain()
	Release()

	// Compacted reports whether the file has been superseded by a rewrite
	// and is awaiting removal.
	Compacted() bool
}

// FileReferencer pins data files for the duration of a query.
type FileReferencer interface {
	// RetainOverlapping acquires a reference to every live file whose key
	// range overlaps [min, max] and returns the scope holding them. It may
	// return nil when nothing overlaps.
	RetainOverlapping(min, max []byte) *FileScope
}

// FileScope is the set of data files pinned for one query. The scope owns
// one reference to each file; Release drops them all.
type FileScope struct {
	files map[string]DataFile
	once  sync.Once
}

// NewFileScope returns a scope over files. The scope takes ownership of one
// already-acquired reference per file.
func NewFileScope(files []DataFile) *FileScope {
	m := make(map[string]DataFile, len(files))
	for _, f := range files {
		m[f.Path()] = f
	}
	return &FileScope{files: m}
}

// Contains reports whether the file at path is pinned by the scope.
func (s *FileScope) Contains(path string) bool {
	_, ok := s.files[path]
	return ok
}

// Len returns the number of pinned files.
func (s *FileScope) Len() int { return len(s.files) }

// Files returns the pinned files in no particular order.
func (s *FileScope) Files() []DataFile {
	files := make([]DataFile, 0, len(s.files))
	for _, f := range s.files {
		files = append(files, f)
	}
	return files
}

// Release drops the scope's file references. Only the first call has any
// effect; later calls are no-ops.
func (s *FileScope) Release() {
	s.once.Do(func() {
		for _, f := range s.files {
			f.Release()
		}
	})
}
