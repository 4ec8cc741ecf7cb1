package revenue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkazemy/subman/internal/model"
	"github.com/nkazemy/subman/internal/repository"
)

type fakeStats struct {
	economics    []repository.Economics
	activeCount  int64
	activeAt     map[time.Time][]string
	startedIn    []string
	priceSum     float64
	priceCount   int64
	repeats      int64
	distinct     int64
	subscription int64
}

func (f *fakeStats) ActiveEconomics(_ context.Context, _ time.Time) ([]repository.Economics, error) {
	return f.economics, nil
}
func (f *fakeStats) ActiveCustomerCount(_ context.Context, _ time.Time) (int64, error) {
	return f.activeCount, nil
}
func (f *fakeStats) CustomersActiveAt(_ context.Context, t time.Time) ([]string, error) {
	return f.activeAt[t], nil
}
func (f *fakeStats) CustomersStartedBetween(_ context.Context, _, _ time.Time) ([]string, error) {
	return f.startedIn, nil
}
func (f *fakeStats) PriceTotals(_ context.Context) (float64, int64, error) {
	return f.priceSum, f.priceCount, nil
}
func (f *fakeStats) RepeatCustomerCount(_ context.Context) (int64, error)   { return f.repeats, nil }
func (f *fakeStats) DistinctCustomerCount(_ context.Context) (int64, error) { return f.distinct, nil }
func (f *fakeStats) SubscriptionCount(_ context.Context) (int64, error) {
	return f.subscription, nil
}

func econ(price float64, p model.Periodicity) repository.Economics {
	return repository.Economics{Price: &price, Periodicity: &p}
}

func TestMRR(t *testing.T) {
	svc := New(&fakeStats{economics: []repository.Economics{
		econ(100, model.PeriodicityMonthly),
		econ(1200, model.PeriodicityAnnually), // contributes 100/month
	}})

	mrr, err := svc.MRR(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200.00, mrr)
}

func TestMRRSkipsIncompleteSnapshots(t *testing.T) {
	price := 50.0
	svc := New(&fakeStats{economics: []repository.Economics{
		econ(100, model.PeriodicityMonthly),
		{Price: &price, Periodicity: nil},
		{Price: nil},
	}})

	mrr, err := svc.MRR(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100.00, mrr)
}

func TestMRRRounding(t *testing.T) {
	svc := New(&fakeStats{economics: []repository.Economics{
		econ(100, model.PeriodicityAnnually), // 8.333...
	}})

	mrr, err := svc.MRR(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8.33, mrr)
}

func TestARR(t *testing.T) {
	svc := New(&fakeStats{economics: []repository.Economics{
		econ(100, model.PeriodicityMonthly),
	}})

	arr, err := svc.ARR(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1200.00, arr)
}

func TestARPU(t *testing.T) {
	svc := New(&fakeStats{
		economics: []repository.Economics{
			econ(100, model.PeriodicityMonthly),
			econ(50, model.PeriodicityMonthly),
		},
		activeCount: 2,
	})

	arpu, err := svc.ARPU(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 75.00, arpu)
}

func TestARPUNoActiveCustomers(t *testing.T) {
	svc := New(&fakeStats{})

	arpu, err := svc.ARPU(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, arpu)
}

func TestRetentionAndChurn(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)

	// base {A,B}; at end {A,C}; C was acquired during the period.
	// retained = {A} of base 2 -> 50%; lost = {B} of base 2 -> 50%.
	stats := &fakeStats{
		activeAt: map[time.Time][]string{
			start: {"A", "B"},
			end:   {"A", "C"},
		},
		startedIn: []string{"C"},
	}
	svc := New(stats)

	crr, err := svc.RetentionRate(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, 50.00, crr)

	churn, err := svc.ChurnRate(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, 50.00, churn)
}

func TestRetentionAndChurnEmptyBase(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	svc := New(&fakeStats{activeAt: map[time.Time][]string{}})

	crr, err := svc.RetentionRate(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, 0.0, crr)

	churn, err := svc.ChurnRate(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, 0.0, churn)
}

func TestFullRetention(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	svc := New(&fakeStats{
		activeAt: map[time.Time][]string{
			start: {"A", "B"},
			end:   {"A", "B"},
		},
	})

	crr, err := svc.RetentionRate(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, 100.00, crr)

	churn, err := svc.ChurnRate(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, 0.0, churn)
}

func TestAOV(t *testing.T) {
	svc := New(&fakeStats{priceSum: 600, priceCount: 3})

	aov, err := svc.AOV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200.00, aov)
}

func TestAOVNoOrders(t *testing.T) {
	svc := New(&fakeStats{})

	aov, err := svc.AOV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, aov)
}

func TestRPR(t *testing.T) {
	svc := New(&fakeStats{repeats: 1, distinct: 3})

	rpr, err := svc.RPR(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 33.33, rpr)
}

func TestRPRNoCustomers(t *testing.T) {
	svc := New(&fakeStats{})

	rpr, err := svc.RPR(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, rpr)
}

func TestPurchaseFrequency(t *testing.T) {
	svc := New(&fakeStats{subscription: 7, distinct: 2})

	pf, err := svc.PurchaseFrequency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3.5, pf)

	svc = New(&fakeStats{})
	pf, err = svc.PurchaseFrequency(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, pf)
}
