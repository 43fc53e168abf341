// =============================================================================
// Branch Dashboard - View State
// =============================================================================
//
// A View owns one dataset as the presentation layer sees it: the last good
// result, whether a refresh is running, the last error, and which record is
// selected.
//
// REFRESH RULES:
//   - Concurrent refreshes of one view share a single fetch, which is not
//     cancelled when one of the waiting callers is
//   - Every refresh takes a sequence number; a completion older than the
//     last applied one is dropped
//   - A failed refresh keeps the previous dataset and marks it stale
//
// SELECTION:
//   The selection is a record identity or "all". It defaults to the first
//   record and falls back to it when a refresh removes the selected record.
//
// =============================================================================

package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ginjaninja78/branch-dashboard/internal/metrics"
	"github.com/ginjaninja78/branch-dashboard/internal/pipeline"
	"github.com/ginjaninja78/branch-dashboard/internal/types"
)

// ErrUnknownRecord is returned when selecting an identity that is not loaded.
var ErrUnknownRecord = errors.New("unknown record")

// ErrNotLoaded is returned when a view has no dataset yet.
var ErrNotLoaded = errors.New("dataset not loaded")

// Runner produces a pipeline result. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context) pipeline.Result
	Spec() metrics.DatasetSpec
}

// State is a point-in-time copy of a view.
type State struct {
	Code      string
	Title     string
	Loading   bool
	Err       error
	Stale     bool
	Result    *pipeline.Result
	Selection types.Scope
	Sequence  uint64
	LoadedAt  time.Time
}

// View holds the state of one dataset view.
type View struct {
	runner Runner
	spec   metrics.DatasetSpec
	group  singleflight.Group
	seq    atomic.Uint64

	mu        sync.RWMutex
	applied   uint64
	inflight  int
	last      *pipeline.Result
	err       error
	stale     bool
	selection types.Scope
	loadedAt  time.Time
}

// New creates a View around a runner.
func New(runner Runner) *View {
	return &View{runner: runner, spec: runner.Spec()}
}

// Spec returns the view's catalog entry.
func (v *View) Spec() metrics.DatasetSpec {
	return v.spec
}

// =============================================================================
// REFRESH
// =============================================================================

// Refresh fetches the dataset again. Callers arriving while a fetch is in
// flight share its result.
//
// The shared fetch runs on a context detached from any one caller's
// cancellation, so a caller that gives up does not fail the others. It keeps
// the first caller's values and is bounded by the fetcher's own timeout.
func (v *View) Refresh(ctx context.Context) error {
	seq := v.seq.Add(1)

	v.mu.Lock()
	v.inflight++
	v.mu.Unlock()

	val, _, _ := v.group.Do(v.spec.Code, func() (interface{}, error) {
		return v.runner.Run(context.WithoutCancel(ctx)), nil
	})
	result := val.(pipeline.Result)

	v.mu.Lock()
	v.inflight--
	v.apply(seq, result)
	v.mu.Unlock()

	return result.Error
}

// apply installs a result unless a newer one was already applied. The caller
// holds v.mu.
func (v *View) apply(seq uint64, result pipeline.Result) bool {
	if seq < v.applied {
		return false
	}
	v.applied = seq

	if result.Error != nil || !result.Success {
		v.err = result.Error
		v.stale = v.last != nil
		return true
	}

	v.last = &result
	v.err = nil
	v.stale = false
	v.loadedAt = time.Now()
	v.reconcileSelection()
	return true
}

func (v *View) reconcileSelection() {
	if v.selection.All {
		return
	}
	if _, ok := v.last.Dataset.Find(v.selection.Identity); ok && v.selection.Identity != "" {
		return
	}
	v.selection = types.SingleScope(v.last.Dataset.First().Identity())
}

// =============================================================================
// SELECTION
// =============================================================================

// Select chooses one record by identity.
func (v *View) Select(identity string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.last == nil {
		return ErrNotLoaded
	}
	if _, ok := v.last.Dataset.Find(identity); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRecord, identity)
	}
	v.selection = types.SingleScope(identity)
	return nil
}

// SelectAll chooses the combined scope.
func (v *View) SelectAll() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection = types.CombinedScope()
}

// =============================================================================
// READ ACCESS
// =============================================================================

// State returns a copy of the view's state.
func (v *View) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return State{
		Code:      v.spec.Code,
		Title:     v.spec.Title,
		Loading:   v.inflight > 0,
		Err:       v.err,
		Stale:     v.stale,
		Result:    v.last,
		Selection: v.selection,
		Sequence:  v.applied,
		LoadedAt:  v.loadedAt,
	}
}

// Dataset returns the last successfully loaded dataset.
func (v *View) Dataset() (*types.Dataset, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.last == nil {
		if v.err != nil {
			return nil, v.err
		}
		return nil, ErrNotLoaded
	}
	return v.last.Dataset, nil
}

// Cards aggregates the loaded dataset for a scope.
func (v *View) Cards(scope types.Scope) (metrics.AggregatedMetrics, []metrics.Card, error) {
	ds, err := v.Dataset()
	if err != nil {
		return metrics.AggregatedMetrics{}, nil, err
	}
	if !scope.All {
		if _, ok := ds.Find(scope.Identity); !ok {
			return metrics.AggregatedMetrics{}, nil, fmt.Errorf("%w: %q", ErrUnknownRecord, scope.Identity)
		}
	}
	m, cards := metrics.BuildCards(ds, v.spec, scope)
	return m, cards, nil
}

// Current aggregates the loaded dataset for the current selection.
func (v *View) Current() (metrics.AggregatedMetrics, []metrics.Card, error) {
	v.mu.RLock()
	scope := v.selection
	v.mu.RUnlock()

	ds, err := v.Dataset()
	if err != nil {
		return metrics.AggregatedMetrics{}, nil, err
	}
	m, cards := metrics.BuildCards(ds, v.spec, scope)
	return m, cards, nil
}
