package csi1

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// The following package variables act as singletons, shared by every Index
// instantiated within the process.
var (
	ims *indexMetrics
	mmu sync.RWMutex
)

// PrometheusCollectors returns all prometheus metrics for the csi1 package.
func PrometheusCollectors() []prometheus.Collector {
	mmu.RLock()
	defer mmu.RUnlock()

	var collectors []prometheus.Collector
	if ims != nil {
		collectors = append(collectors, ims.PrometheusCollectors()...)
	}
	return collectors
}

// namespace is the leading part of all published metrics for the Storage service.
const namespace = "storage"

const indexSubsystem = "csi_index" // sub-system associated with the CSI index.

const (
	statusOK    = "ok"
	statusError = "error"
)

type indexMetrics struct {
	Queries       *prometheus.CounterVec // Number of query sessions started.
	QuotaExceeded *prometheus.CounterVec // Number of sessions stopped by the quota.
	Groups        *prometheus.CounterVec // Number of predicate groups planned.
	Segments      *prometheus.CounterVec // Number of candidate segments searched.

	// This metric has an extra label status = {"ok", "error"}.
	ViewsBuilt *prometheus.CounterVec // Number of view snapshots built.

	// This metric has an extra label "column".
	ViewSegments *prometheus.GaugeVec // Segments in the published snapshot.
}

// newIndexMetrics initialises the prometheus metrics for tracking the CSI index.
func newIndexMetrics(labels prometheus.Labels) *indexMetrics {
	var names []string
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)

	statusNames := append(append([]string(nil), names...), "status")
	sort.Strings(statusNames)

	columnNames := append(append([]string(nil), names...), "column")
	sort.Strings(columnNames)

	return &indexMetrics{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: indexSubsystem,
			Name:      "queries_total",
			Help:      "Total number of query sessions started.",
		}, names),
		QuotaExceeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: indexSubsystem,
			Name:      "query_quota_exceeded_total",
			Help:      "Total number of query sessions stopped by the time quota.",
		}, names),
		Groups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: indexSubsystem,
			Name:      "predicate_groups_planned_total",
			Help:      "Total number of predicate groups planned.",
		}, names),
		Segments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: indexSubsystem,
			Name:      "segments_searched_total",
			Help:      "Total number of candidate segments searched.",
		}, names),
		ViewsBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: indexSubsystem,
			Name:      "views_built_total",
			Help:      "Total number of view snapshots built.",
		}, statusNames),
		ViewSegments: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: indexSubsystem,
			Name:      "view_segments",
			Help:      "Number of segments in the published view snapshot.",
		}, columnNames),
	}
}

// PrometheusCollectors satisfies the prom.PrometheusCollector interface.
func (m *indexMetrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Queries,
		m.QuotaExceeded,
		m.Groups,
		m.Segments,
		m.ViewsBuilt,
		m.ViewSegments,
	}
}

// indexTracker translates index activity into metric updates. A disabled
// tracker drops everything on the floor.
type indexTracker struct {
	metrics *indexMetrics
	labels  prometheus.Labels
	enabled bool
}

func newIndexTracker(metrics *indexMetrics, defaultLabels prometheus.Labels) *indexTracker {
	return &indexTracker{metrics: metrics, labels: defaultLabels, enabled: true}
}

// Labels returns a copy of the default labels.
func (t *indexTracker) Labels() prometheus.Labels {
	labels := make(prometheus.Labels, len(t.labels))
	for k, v := range t.labels {
		labels[k] = v
	}
	return labels
}

func (t *indexTracker) IncQueries() {
	if !t.enabled {
		return
	}
	t.metrics.Queries.With(t.Labels()).Inc()
}

func (t *indexTracker) IncQuotaExceeded() {
	if !t.enabled {
		return
	}
	t.metrics.QuotaExceeded.With(t.Labels()).Inc()
}

func (t *indexTracker) IncGroupsPlanned() {
	if !t.enabled {
		return
	}
	t.metrics.Groups.With(t.Labels()).Inc()
}

func (t *indexTracker) AddSegmentsSearched(n int) {
	if !t.enabled {
		return
	}
	t.metrics.Segments.With(t.Labels()).Add(float64(n))
}

func (t *indexTracker) IncViewBuilt(status string) {
	if !t.enabled {
		return
	}
	labels := t.Labels()
	labels["status"] = status
	t.metrics.ViewsBuilt.With(labels).Inc()
}

func (t *indexTracker) SetViewSegments(column string, n int) {
	if !t.enabled {
		return
	}
	labels := t.Labels()
	labels["column"] = column
	t.metrics.ViewSegments.With(labels).Set(float64(n))
}
