package view

import (
	"context"
	"fmt"
	"sync"

	"github.com/ginjaninja78/branch-dashboard/internal/config"
	"github.com/ginjaninja78/branch-dashboard/internal/fetcher"
	"github.com/ginjaninja78/branch-dashboard/internal/logging"
	"github.com/ginjaninja78/branch-dashboard/internal/metrics"
	"github.com/ginjaninja78/branch-dashboard/internal/pipeline"
)

// Registry holds one independent View per dataset.
type Registry struct {
	views  []*View
	byCode map[string]*View
}

// NewRegistry builds a view for every catalogued dataset using the endpoints
// from cfg.
func NewRegistry(cfg *config.MainConfig, f fetcher.Fetcher, logger logging.Logger) (*Registry, error) {
	r := &Registry{byCode: make(map[string]*View)}
	for _, spec := range metrics.Specs() {
		ds, err := cfg.Dataset(spec.Code)
		if err != nil {
			return nil, fmt.Errorf("failed to configure %s: %w", spec.Code, err)
		}
		r.Add(New(pipeline.New(spec, ds, f, logger)))
	}
	return r, nil
}

// NewRegistryFromViews builds a registry from existing views.
func NewRegistryFromViews(views ...*View) *Registry {
	r := &Registry{byCode: make(map[string]*View)}
	for _, v := range views {
		r.Add(v)
	}
	return r
}

// Add registers a view, replacing any view with the same code.
func (r *Registry) Add(v *View) {
	code := v.Spec().Code
	if existing, ok := r.byCode[code]; ok {
		for i := range r.views {
			if r.views[i] == existing {
				r.views[i] = v
			}
		}
	} else {
		r.views = append(r.views, v)
	}
	r.byCode[code] = v
}

// Get returns the view for a dataset code.
func (r *Registry) Get(code string) (*View, bool) {
	v, ok := r.byCode[code]
	return v, ok
}

// Views returns every view in catalog order.
func (r *Registry) Views() []*View {
	return append([]*View(nil), r.views...)
}

// RefreshOutcome is the result of refreshing one view.
type RefreshOutcome struct {
	Code  string
	State State
	Error error
}

// RefreshAll refreshes the given views (all when codes is empty)
// concurrently. Views are independent: one failing does not affect another.
func (r *Registry) RefreshAll(ctx context.Context, codes ...string) []RefreshOutcome {
	targets := r.views
	if len(codes) > 0 {
		targets = nil
		for _, code := range codes {
			if v, ok := r.byCode[code]; ok {
				targets = append(targets, v)
			}
		}
	}

	var wg sync.WaitGroup
	results := make(chan RefreshOutcome, len(targets))

	for _, v := range targets {
		wg.Add(1)
		go func(v *View) {
			defer wg.Done()
			err := v.Refresh(ctx)
			results <- RefreshOutcome{Code: v.Spec().Code, State: v.State(), Error: err}
		}(v)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	byCode := make(map[string]RefreshOutcome, len(targets))
	for res := range results {
		byCode[res.Code] = res
	}

	outcomes := make([]RefreshOutcome, 0, len(targets))
	for _, v := range targets {
		outcomes = append(outcomes, byCode[v.Spec().Code])
	}
	return outcomes
}
