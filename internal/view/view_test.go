package view

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/branch-dashboard/internal/config"
	"github.com/ginjaninja78/branch-dashboard/internal/fetcher"
	"github.com/ginjaninja78/branch-dashboard/internal/metrics"
	"github.com/ginjaninja78/branch-dashboard/internal/pipeline"
	"github.com/ginjaninja78/branch-dashboard/internal/types"
)

// stubFetcher serves queued responses and counts calls.
type stubFetcher struct {
	mu    sync.Mutex
	texts []string
	errs  []error
	calls atomic.Int32
	gate  chan struct{}
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := int(s.calls.Load()) - 1
	if i >= len(s.texts) {
		i = len(s.texts) - 1
	}
	return s.texts[i], s.errs[i]
}

func newSalesView(f fetcher.Fetcher) *View {
	return New(pipeline.New(metrics.SalesSpec, config.DatasetConfig{Code: "sales", URL: "http://sheet"}, f, nil))
}

const twoBranches = "Branch Name,Total Target,Total Ach\nA,10,10\nB,1000,500"

func TestRefresh_LoadsAndSelectsFirstRecord(t *testing.T) {
	v := newSalesView(&stubFetcher{texts: []string{twoBranches}, errs: []error{nil}})

	require.NoError(t, v.Refresh(context.Background()))

	st := v.State()
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)
	assert.False(t, st.Stale)
	assert.Equal(t, types.SingleScope("A"), st.Selection)
	assert.Equal(t, uint64(1), st.Sequence)

	m, cards, err := v.Current()
	require.NoError(t, err)
	assert.Equal(t, "A", m.Label)
	assert.NotEmpty(t, cards)
}

func TestRefresh_FailureKeepsPreviousDatasetAndMarksStale(t *testing.T) {
	f := &stubFetcher{
		texts: []string{twoBranches, ""},
		errs:  []error{nil, fetcher.ErrFetch},
	}
	v := newSalesView(f)

	require.NoError(t, v.Refresh(context.Background()))
	err := v.Refresh(context.Background())
	assert.ErrorIs(t, err, fetcher.ErrFetch)

	st := v.State()
	assert.True(t, st.Stale)
	assert.ErrorIs(t, st.Err, fetcher.ErrFetch)
	require.NotNil(t, st.Result)
	assert.Equal(t, 2, st.Result.Dataset.Len())
}

func TestRefresh_FailureWithoutPreviousDataset(t *testing.T) {
	v := newSalesView(&stubFetcher{texts: []string{""}, errs: []error{fetcher.ErrFetch}})

	assert.Error(t, v.Refresh(context.Background()))

	st := v.State()
	assert.False(t, st.Stale)
	assert.Nil(t, st.Result)
	_, err := v.Dataset()
	assert.ErrorIs(t, err, fetcher.ErrFetch)
}

func TestRefresh_ConcurrentCallsShareOneFetch(t *testing.T) {
	f := &stubFetcher{texts: []string{twoBranches}, errs: []error{nil}, gate: make(chan struct{})}
	v := newSalesView(f)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, v.Refresh(context.Background()))
		}()
	}

	require.Eventually(t, func() bool {
		v.mu.RLock()
		defer v.mu.RUnlock()
		return v.inflight == 5
	}, time.Second, 5*time.Millisecond)
	assert.True(t, v.State().Loading)
	time.Sleep(20 * time.Millisecond)
	close(f.gate)
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
	assert.False(t, v.State().Loading)
}

// ctxFetcher blocks until released and fails if its context was cancelled.
type ctxFetcher struct {
	once    sync.Once
	started chan struct{}
	gate    chan struct{}
}

func (f *ctxFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.once.Do(func() { close(f.started) })
	<-f.gate
	return twoBranches, ctx.Err()
}

func TestRefresh_CancelledCallerDoesNotFailJoiner(t *testing.T) {
	f := &ctxFetcher{started: make(chan struct{}), gate: make(chan struct{})}
	v := newSalesView(f)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- v.Refresh(ctx) }()
	<-f.started

	second := make(chan error, 1)
	go func() { second <- v.Refresh(context.Background()) }()

	require.Eventually(t, func() bool {
		v.mu.RLock()
		defer v.mu.RUnlock()
		return v.inflight == 2
	}, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	cancel()
	close(f.gate)

	assert.NoError(t, <-first)
	assert.NoError(t, <-second)
	assert.NoError(t, v.State().Err)
}

func TestApply_DropsStaleCompletion(t *testing.T) {
	v := newSalesView(&stubFetcher{})
	p := pipeline.New(metrics.SalesSpec, config.DatasetConfig{Code: "sales"}, nil, nil)

	newer := p.Process(twoBranches)
	older := p.Process("Branch Name,Total Target,Total Ach\nOld,1,1")

	v.mu.Lock()
	assert.True(t, v.apply(2, newer))
	assert.False(t, v.apply(1, older))
	v.mu.Unlock()

	ds, err := v.Dataset()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ds.Identities())
	assert.Equal(t, uint64(2), v.State().Sequence)
}

func TestSelection(t *testing.T) {
	f := &stubFetcher{
		texts: []string{twoBranches, "Branch Name,Total Target,Total Ach\nC,1,1"},
		errs:  []error{nil, nil},
	}
	v := newSalesView(f)

	assert.ErrorIs(t, v.Select("A"), ErrNotLoaded)

	require.NoError(t, v.Refresh(context.Background()))
	require.NoError(t, v.Select("B"))
	assert.ErrorIs(t, v.Select("Z"), ErrUnknownRecord)
	assert.Equal(t, types.SingleScope("B"), v.State().Selection)

	require.NoError(t, v.Refresh(context.Background()))
	assert.Equal(t, types.SingleScope("C"), v.State().Selection)

	v.SelectAll()
	m, _, err := v.Current()
	require.NoError(t, err)
	assert.True(t, m.Scope.All)
}

func TestCards_UnknownRecord(t *testing.T) {
	v := newSalesView(&stubFetcher{texts: []string{twoBranches}, errs: []error{nil}})
	require.NoError(t, v.Refresh(context.Background()))

	_, _, err := v.Cards(types.SingleScope("nope"))
	assert.ErrorIs(t, err, ErrUnknownRecord)

	m, cards, err := v.Cards(types.CombinedScope())
	require.NoError(t, err)
	assert.Len(t, cards, len(metrics.SalesSpec.Groups))
	assert.Equal(t, 50, m.Percent(metrics.PairFields(metrics.SalesSpec)[0]))
}

func TestRegistry_RefreshAllIsolatesFailures(t *testing.T) {
	good := newSalesView(&stubFetcher{texts: []string{twoBranches}, errs: []error{nil}})
	bad := New(pipeline.New(metrics.CollectionSpec, config.DatasetConfig{Code: "collection"}, fetcher.New(time.Second), nil))

	r := NewRegistryFromViews(good, bad)
	outcomes := r.RefreshAll(context.Background())

	require.Len(t, outcomes, 2)
	assert.Equal(t, "sales", outcomes[0].Code)
	assert.NoError(t, outcomes[0].Error)
	assert.Equal(t, "collection", outcomes[1].Code)
	assert.True(t, errors.Is(outcomes[1].Error, fetcher.ErrNotConfigured))

	only := r.RefreshAll(context.Background(), "sales")
	require.Len(t, only, 1)
	assert.Equal(t, "sales", only[0].Code)
}

func TestNewRegistry_FromConfig(t *testing.T) {
	r, err := NewRegistry(config.Default(), fetcher.New(time.Second), nil)
	require.NoError(t, err)

	assert.Len(t, r.Views(), len(metrics.Specs()))
	_, ok := r.Get("dealer-plaza")
	assert.True(t, ok)
}
