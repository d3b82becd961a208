package csdb

import "sync"

// FileStore tracks the live data files of a store and hands out query
// scopes over them.
type FileStore struct {
	mu    sync.RWMutex
	files []DataFile
}

// NewFileStore returns a new instance of FileStore.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Add registers files with the store.
func (fs *FileStore) Add(files ...DataFile) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files = append(fs.files, files...)
}

// Remove unregisters the files at the given paths.
func (fs *FileStore) Remove(paths ...string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	active := fs.files[:0]
	for _, file := range fs.files {
		keep := true
		for _, path := range paths {
			if file.Path() == path {
				keep = false
				break
			}
		}
		if keep {
			active = append(active, file)
		}
	}
	fs.files = active
}

// Count returns the number of registered files.
func (fs *FileStore) Count() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.files)
}

// RetainOverlapping acquires a reference to every live file whose key range
// overlaps [min, max] and returns the scope holding them. Files already
// superseded by compaction are skipped. Empty bounds pin nothing.
func (fs *FileStore) RetainOverlapping(min, max []byte) *FileScope {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	var scoped []DataFile
	for _, f := range fs.files {
		r := KeyRange{Min: f.MinKey(), Max: f.MaxKey()}
		if !r.Overlaps(min, max) || f.Compacted() {
			continue
		}
		f.Retain()
		scoped = append(scoped, f)
	}
	return NewFileScope(scoped)
}
