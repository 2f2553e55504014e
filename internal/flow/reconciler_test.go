package flow

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	base := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

// fakeSource serves canned histories per identifier and records the calls it
// receives.
type fakeSource struct {
	mu        sync.Mutex
	histories map[string][]Observation
	errs      map[string]error
	calls     []string
}

func (f *fakeSource) History(ctx context.Context, identifier string, from time.Time) ([]Observation, error) {
	f.mu.Lock()
	f.calls = append(f.calls, identifier)
	f.mu.Unlock()

	if err, ok := f.errs[identifier]; ok {
		return nil, err
	}
	return f.histories[identifier], nil
}

func newReconciler(t *testing.T, source HistorySource) *Reconciler {
	t.Helper()
	return NewReconciler(source, Config{
		LookbackDays:  10,
		FetchInterval: time.Microsecond,
		MaxParallel:   4,
	}, nil)
}

func TestObservationStale(t *testing.T) {
	assert.True(t, Observation{Date: day(0)}.Stale())
	assert.False(t, Observation{Date: day(0), ForeignNet: 1}.Stale())
	assert.False(t, Observation{Date: day(0), InstitutionNet: -1}.Stale())
}

func TestReconcileStaleSkip(t *testing.T) {
	// The most recent k days are all-zero placeholders; day k+1 going
	// backward holds the confirmed figures and must win exactly.
	source := &fakeSource{histories: map[string][]Observation{
		"005930": {
			{Date: day(-3), ForeignNet: 150, InstitutionNet: -40},
			{Date: day(-2)},
			{Date: day(-1)},
			{Date: day(0)},
		},
	}}

	outcome := newReconciler(t, source).Reconcile(context.Background(), "005930")

	require.Equal(t, StateResolved, outcome.State)
	assert.Equal(t, day(-3), outcome.Observation.Date)
	assert.Equal(t, int64(150), outcome.Observation.ForeignNet)
	assert.Equal(t, int64(-40), outcome.Observation.InstitutionNet)
}

func TestReconcileScenarioFromRecentHistory(t *testing.T) {
	// History [(-3d: 0,0), (-2d: 0,0), (-1d: 150,-40)] resolves day -1
	// with a positive foreign indicator and a non-positive institution one.
	source := &fakeSource{histories: map[string][]Observation{
		"005930": {
			{Date: day(-3)},
			{Date: day(-2)},
			{Date: day(-1), ForeignNet: 150, InstitutionNet: -40},
		},
	}}

	outcome := newReconciler(t, source).Reconcile(context.Background(), "005930")

	require.Equal(t, StateResolved, outcome.State)
	assert.Equal(t, day(-1), outcome.Observation.Date)
	assert.True(t, outcome.ForeignPositive())
	assert.False(t, outcome.InstitutionPositive())
}

func TestReconcileSkipsNothingWhenLatestIsConfirmed(t *testing.T) {
	source := &fakeSource{histories: map[string][]Observation{
		"005930": {
			{Date: day(-2), ForeignNet: -10, InstitutionNet: 5},
			{Date: day(-1), ForeignNet: 7, InstitutionNet: 0},
		},
	}}

	outcome := newReconciler(t, source).Reconcile(context.Background(), "005930")

	require.Equal(t, StateResolved, outcome.State)
	assert.Equal(t, day(-1), outcome.Observation.Date)
	assert.True(t, outcome.ForeignPositive())
	// The other figure may legitimately be zero on a resolved day and is
	// reported as non-positive.
	assert.False(t, outcome.InstitutionPositive())
}

func TestReconcileAllStale(t *testing.T) {
	source := &fakeSource{histories: map[string][]Observation{
		"005930": {{Date: day(-2)}, {Date: day(-1)}, {Date: day(0)}},
	}}

	outcome := newReconciler(t, source).Reconcile(context.Background(), "005930")

	assert.Equal(t, StateUnavailable, outcome.State)
	assert.False(t, outcome.Resolved())
	assert.False(t, outcome.ForeignPositive())
	assert.False(t, outcome.InstitutionPositive())
}

func TestReconcileEmptyHistory(t *testing.T) {
	source := &fakeSource{histories: map[string][]Observation{}}

	outcome := newReconciler(t, source).Reconcile(context.Background(), "005930")
	assert.Equal(t, StateUnavailable, outcome.State)
}

func TestReconcileFetchFailure(t *testing.T) {
	cause := stderrors.New("upstream 500")
	source := &fakeSource{errs: map[string]error{"005930": cause}}

	outcome := newReconciler(t, source).Reconcile(context.Background(), "005930")

	assert.Equal(t, StateFailed, outcome.State)
	assert.True(t, stderrors.Is(outcome.Err, cause))
}

func TestReconcileAllIsolation(t *testing.T) {
	// A failure fetching stock B must not alter or suppress stock A's
	// already-computed result, nor stock C's after it.
	source := &fakeSource{
		histories: map[string][]Observation{
			"A": {{Date: day(-1), ForeignNet: 100}},
			"C": {{Date: day(-1), InstitutionNet: -5}},
		},
		errs: map[string]error{"B": stderrors.New("malformed response")},
	}

	outcomes := newReconciler(t, source).ReconcileAll(context.Background(), []string{"A", "B", "C"})
	require.Len(t, outcomes, 3)

	assert.Equal(t, StateResolved, outcomes[0].State)
	assert.Equal(t, int64(100), outcomes[0].Observation.ForeignNet)
	assert.Equal(t, StateFailed, outcomes[1].State)
	assert.Equal(t, StateResolved, outcomes[2].State)
	assert.Equal(t, []string{"A", "B", "C"}, source.calls)
}

func TestReconcileAllParallel(t *testing.T) {
	source := &fakeSource{
		histories: map[string][]Observation{
			"A": {{Date: day(-1), ForeignNet: 1}},
			"C": {{Date: day(-1)}},
		},
		errs: map[string]error{"B": stderrors.New("boom")},
	}

	outcomes := newReconciler(t, source).ReconcileAllParallel(context.Background(), []string{"A", "B", "C"})
	require.Len(t, outcomes, 3)

	// Result order matches input order regardless of completion order.
	assert.Equal(t, "A", outcomes[0].Identifier)
	assert.Equal(t, StateResolved, outcomes[0].State)
	assert.Equal(t, "B", outcomes[1].Identifier)
	assert.Equal(t, StateFailed, outcomes[1].State)
	assert.Equal(t, "C", outcomes[2].Identifier)
	assert.Equal(t, StateUnavailable, outcomes[2].State)
}

func TestReconcileUnsortedHistory(t *testing.T) {
	// Providers do not guarantee row order; the scan must still pick the
	// most recent non-stale day.
	source := &fakeSource{histories: map[string][]Observation{
		"005930": {
			{Date: day(-5), ForeignNet: 999},
			{Date: day(-1), ForeignNet: 10},
			{Date: day(-3), ForeignNet: -4},
		},
	}}

	outcome := newReconciler(t, source).Reconcile(context.Background(), "005930")

	require.Equal(t, StateResolved, outcome.State)
	assert.Equal(t, day(-1), outcome.Observation.Date)
	assert.Equal(t, int64(10), outcome.Observation.ForeignNet)
}

func TestReconcileContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &fakeSource{histories: map[string][]Observation{}}
	r := NewReconciler(source, Config{LookbackDays: 5, FetchInterval: time.Hour}, nil)

	outcome := r.Reconcile(ctx, "005930")
	assert.Equal(t, StateFailed, outcome.State)
	assert.Error(t, outcome.Err)
}

func TestReconcileLookbackWindow(t *testing.T) {
	var gotFrom time.Time
	source := historyFunc(func(ctx context.Context, id string, from time.Time) ([]Observation, error) {
		gotFrom = from
		return nil, nil
	})

	r := NewReconciler(source, Config{LookbackDays: 7, FetchInterval: time.Microsecond}, nil)
	r.now = func() time.Time { return day(0) }

	r.Reconcile(context.Background(), "005930")
	assert.Equal(t, day(-7), gotFrom)
}

type historyFunc func(ctx context.Context, identifier string, from time.Time) ([]Observation, error)

func (f historyFunc) History(ctx context.Context, identifier string, from time.Time) ([]Observation, error) {
	return f(ctx, identifier, from)
}
