package csi1

import (
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/corvusdb/corvus/csdb"
)

// An IndexOption is a functional option for changing the configuration of
// an Index.
type IndexOption func(i *Index)

// WithClock sets the clock used for query session timing. Primarily useful
// for tests.
var WithClock = func(c clock.Clock) IndexOption {
	return func(i *Index) {
		i.clock = c
	}
}

// DisableMetrics ensures that activity is not collected via the prometheus
// metrics.
var DisableMetrics = func() IndexOption {
	return func(i *Index) {
		i.metricsEnabled = false
	}
}

// Index is the engine-facing surface of the secondary index: a registry of
// per-column indexes over one store's data files, plus the shared pieces a
// query session needs.
type Index struct {
	mu      sync.RWMutex
	columns map[string]*ColumnIndex

	defaultLabels  prometheus.Labels
	trackerOnce    sync.Once
	tracker        *indexTracker
	metricsEnabled bool

	// The following must be set when initializing an Index.
	store csdb.FileReferencer

	clock  clock.Clock
	config Config
	logger *zap.Logger
}

// NewIndex returns a new instance of Index over store.
func NewIndex(store csdb.FileReferencer, c Config, options ...IndexOption) *Index {
	idx := &Index{
		columns:        make(map[string]*ColumnIndex),
		metricsEnabled: true,
		store:          store,
		clock:          clock.New(),
		config:         c,
		logger:         zap.NewNop(),
	}

	for _, option := range options {
		option(idx)
	}
	return idx
}

// SetDefaultMetricLabels sets the default labels on the metric trackers. It
// must be called before columns or query sessions are created, since the
// package metrics are built once, with the label names fixed at that point.
func (i *Index) SetDefaultMetricLabels(labels prometheus.Labels) {
	i.defaultLabels = make(prometheus.Labels, len(labels))
	for k, v := range labels {
		i.defaultLabels[k] = v
	}
}

// initTracker builds the package metrics singleton and the index's tracker
// the first time a column or query session needs one, so the default labels
// are final. The first index to get here fixes the singleton's label names.
func (i *Index) initTracker() *indexTracker {
	i.trackerOnce.Do(func() {
		mmu.Lock()
		if ims == nil && i.metricsEnabled {
			ims = newIndexMetrics(i.defaultLabels)
		}
		mmu.Unlock()

		i.tracker = newIndexTracker(ims, i.defaultLabels)
		i.tracker.enabled = i.metricsEnabled
	})
	return i.tracker
}

// WithLogger sets the logger on the index after it's been created.
func (i *Index) WithLogger(l *zap.Logger) {
	i.logger = l.With(zap.String("index", "csi1"))
}

// Config returns the index configuration.
func (i *Index) Config() Config { return i.config }

// CreateColumnIndex registers an index for the named column with the given
// comparison semantics and optional in-memory searcher. When the column is
// already registered its existing index is returned unchanged.
func (i *Index) CreateColumnIndex(name string, typ csdb.ValueType, mem MemSearcher) *ColumnIndex {
	i.mu.Lock()
	defer i.mu.Unlock()

	if c, ok := i.columns[name]; ok {
		return c
	}

	c := newColumnIndex(name, typ, mem, i.initTracker())
	i.columns[name] = c

	i.logger.Debug("Column index created",
		zap.String("column", name),
		zap.String("type", typ.String()))
	return c
}

// ColumnIndex returns the registered index for the named column, or nil.
func (i *Index) ColumnIndex(name string) *ColumnIndex {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.columns[name]
}

// UpdateColumn replaces the named column's snapshot with one built from it,
// minus the dropped data files, plus the added segments.
func (i *Index) UpdateColumn(name string, dropped []csdb.DataFile, added []*Segment) error {
	c := i.ColumnIndex(name)
	if c == nil {
		return ErrColumnNotFound
	}
	return c.Update(dropped, added)
}

// Close releases every column's current snapshot.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	var err error
	for _, c := range i.columns {
		err = multierr.Append(err, c.Close())
	}
	i.columns = make(map[string]*ColumnIndex)
	return err
}
