package csi1

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/corvusdb/corvus/csdb"
)

// QueryController owns one query's planning session: the pinned file scope,
// the per-group iterator registrations, and the wall-clock quota. A session
// is single-threaded by contract, so the controller takes no locks for its
// own bookkeeping.
type QueryController struct {
	idx   *Index
	scope *csdb.FileScope

	start time.Time
	quota time.Duration

	// Opened per-expression iterators keyed by predicate group
	// fingerprint. Planning a group is single-use; Release and Finish
	// drain the entries.
	resources map[uint64][]csdb.RowIDIterator

	quotaSignaled bool
	logger        *zap.Logger
}

// NewQueryController opens a query session over idx for the key range rng.
// The session pins the data files overlapping rng for its whole lifetime;
// an empty or unmatched range pins nothing, which is a valid session that
// simply finds no on-disk rows. A non-positive quota falls back to the
// configured default.
//
// Callers must call Finish exactly once, on every exit path.
func NewQueryController(idx *Index, rng csdb.KeyRange, quota time.Duration) *QueryController {
	if quota <= 0 {
		quota = time.Duration(idx.config.QueryTimeQuota)
	}

	var scope *csdb.FileScope
	if idx.store != nil {
		scope = idx.store.RetainOverlapping(rng.Min, rng.Max)
	}
	if scope == nil {
		scope = csdb.NewFileScope(nil)
	}

	idx.initTracker().IncQueries()

	return &QueryController{
		idx:       idx,
		scope:     scope,
		start:     idx.clock.Now(),
		quota:     quota,
		resources: make(map[uint64][]csdb.RowIDIterator),
		logger:    idx.logger,
	}
}

// Scope returns the session's pinned file scope.
func (c *QueryController) Scope() *csdb.FileScope { return c.scope }

// Plan turns the predicate group exprs, combined with op, into a merge
// builder over one row id iterator per eligible expression. Expressions
// whose combined in-memory and on-disk result is empty contribute no
// iterator. The opened iterators are recorded under the group until Release
// or Finish.
//
// Planning the same predicate group twice in one session returns
// ErrDuplicateExpressions: the first registration would leak.
func (c *QueryController) Plan(op LogicalOp, exprs []*Expression) (*csdb.IteratorBuilder, error) {
	group := fingerprint(exprs...)
	if _, ok := c.resources[group]; ok {
		return nil, ErrDuplicateExpressions
	}

	var builder *csdb.IteratorBuilder
	if op == Or {
		builder = csdb.NewUnionBuilder()
	} else {
		builder = csdb.NewIntersectionBuilder()
	}

	opened := make([]csdb.RowIDIterator, 0, len(exprs))
	for _, cand := range c.candidates(op, exprs) {
		itr, err := c.expressionIterator(cand.expr, cand.segments)
		if err != nil {
			// Unwind this plan completely; the session stays usable.
			closeQuietly(builder)
			return nil, err
		}
		if itr == nil {
			// Absence, not an empty iterator.
			continue
		}
		builder.Add(itr)
		opened = append(opened, itr)
	}

	c.resources[group] = opened

	c.idx.tracker.IncGroupsPlanned()
	if c.idx.config.QueryLogEnabled {
		c.logger.Debug("Planned predicate group",
			zap.Stringer("op", op),
			zap.Int("expressions", len(exprs)),
			zap.Int("iterators", len(opened)))
	}

	return builder, nil
}

// Checkpoint reports whether the session may keep running, returning
// ErrTimeQuotaExceeded once wall-clock time since construction meets or
// exceeds the quota. The check is cooperative: nothing preempts a session
// that never calls it, so callers should invoke it at batch boundaries
// while consuming results.
func (c *QueryController) Checkpoint() error {
	if c.idx.clock.Now().Sub(c.start) >= c.quota {
		if !c.quotaSignaled {
			c.quotaSignaled = true
			c.idx.tracker.IncQuotaExceeded()
		}
		return ErrTimeQuotaExceeded
	}
	return nil
}

// Release closes every iterator recorded for the exact predicate group
// exprs and removes the record. Unknown or already-released groups are
// no-ops. Close errors are discarded.
func (c *QueryController) Release(exprs []*Expression) {
	group := fingerprint(exprs...)
	releaseIterators(c.resources[group])
	delete(c.resources, group)
}

// Finish ends the session: it releases every remaining resource group,
// best-effort, and afterwards unconditionally releases the pinned file
// scope. The scope release happens exactly once even if a group release
// panics.
func (c *QueryController) Finish() {
	defer c.scope.Release()

	for group, itrs := range c.resources {
		releaseIterators(itrs)
		delete(c.resources, group)
	}
}

func releaseIterators(itrs []csdb.RowIDIterator) {
	for _, itr := range itrs {
		closeQuietly(itr)
	}
}

// expressionCandidates pairs an expression with its candidate segments.
type expressionCandidates struct {
	expr     *Expression
	segments []*Segment
}

// candidates computes the candidate segment set for every eligible
// expression in the group. For And groups the most selective expression
// becomes primary and the others only keep segments overlapping the
// primary's matched key footprint: rows outside it cannot satisfy the
// conjunction, so those segments are never worth opening.
func (c *QueryController) candidates(op LogicalOp, exprs []*Expression) []expressionCandidates {
	var primary *Expression
	var primarySegs []*Segment
	var primaryKey uint64
	if op == And {
		if primary, primarySegs = c.calculatePrimary(exprs); primary != nil {
			primaryKey = fingerprint(primary)
		}
	}

	out := make([]expressionCandidates, 0, len(exprs))
	seen := make(map[uint64]struct{}, len(exprs))

	for _, e := range exprs {
		// Non-indexed and not-equal predicates are post-filter work; they
		// would sweep most of the index for little selectivity.
		if !e.Indexed() || e.Op == OpNotEqual {
			continue
		}

		// Equal predicates within one group collapse into a single entry.
		key := fingerprint(e)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		// The primary's set was computed during selection.
		if primary != nil && key == primaryKey {
			out = append(out, expressionCandidates{expr: primary, segments: primarySegs})
			continue
		}

		view := e.Index.View()

		var segs []*Segment
		if len(primarySegs) > 0 {
			segs = narrowToPrimary(view, primarySegs)
		} else {
			segs = view.Match(c.scope, e)
		}
		out = append(out, expressionCandidates{expr: e, segments: segs})
	}

	return out
}

// calculatePrimary picks the eligible expression with the smallest
// directly-matched segment set under the session scope. Ties keep the first
// found. An empty matched set still wins on size; the other expressions
// then fall back to scope-wide matching.
func (c *QueryController) calculatePrimary(exprs []*Expression) (*Expression, []*Segment) {
	var primary *Expression
	var primarySegs []*Segment

	for _, e := range exprs {
		if !e.Indexed() || e.Op == OpNotEqual {
			continue
		}

		segs := e.Index.View().Match(c.scope, e)
		if primary == nil || len(primarySegs) > len(segs) {
			primary, primarySegs = e, segs
		}
	}
	return primary, primarySegs
}

// narrowToPrimary collects the segments overlapping any of the primary's
// segments' key ranges, de-duplicated.
func narrowToPrimary(view *View, primarySegs []*Segment) []*Segment {
	var out []*Segment
	seen := make(map[*Segment]struct{})
	for _, ps := range primarySegs {
		for _, s := range view.MatchKeyRange(ps.MinKey(), ps.MaxKey()) {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// expressionIterator merges the in-memory and on-disk matches for one
// expression into a single union ordered by row id. Returns nil when every
// source is empty.
func (c *QueryController) expressionIterator(e *Expression, segments []*Segment) (csdb.RowIDIterator, error) {
	builder := csdb.NewUnionBuilder()
	builder.Add(e.Index.SearchMem(e))

	for _, s := range segments {
		itr, err := s.Search(e)
		if err != nil {
			closeQuietly(builder)
			return nil, errors.Wrapf(err, "searching segment %s for column %s", s.Path(), e.Column)
		}
		builder.Add(itr)
	}

	c.idx.tracker.AddSegmentsSearched(len(segments))
	return builder.Iterator(), nil
}
