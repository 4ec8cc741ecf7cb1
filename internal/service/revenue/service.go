// Package revenue derives recurring-revenue and retention figures from
// the subscription ledger. Every method is a pure function of the current
// ledger contents (plus, where noted, a caller-supplied period); nothing
// is cached between calls.
package revenue

import (
	"context"
	"math"
	"time"

	"github.com/nkazemy/subman/internal/apperr"
	"github.com/nkazemy/subman/internal/model"
	"github.com/nkazemy/subman/internal/repository"
)

type Service struct {
	stats repository.StatsRepository
	now   func() time.Time
}

func New(stats repository.StatsRepository) *Service {
	return &Service{
		stats: stats,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// MRR sums monthly-normalized snapshot prices of currently active
// subscriptions: monthly price as-is, annual price divided by 12.
// Subscriptions missing either snapshot field are skipped.
func (s *Service) MRR(ctx context.Context) (float64, error) {
	rows, err := s.stats.ActiveEconomics(ctx, s.now())
	if err != nil {
		return 0, apperr.Store("active subscriptions query", err)
	}

	mrr := 0.0
	for _, row := range rows {
		if row.Price == nil || row.Periodicity == nil {
			continue
		}
		switch *row.Periodicity {
		case model.PeriodicityMonthly:
			mrr += *row.Price
		case model.PeriodicityAnnually:
			mrr += *row.Price / 12.0
		}
	}
	return round2(mrr), nil
}

// ARR is MRR annualized.
func (s *Service) ARR(ctx context.Context) (float64, error) {
	mrr, err := s.MRR(ctx)
	if err != nil {
		return 0, err
	}
	return round2(mrr * 12.0), nil
}

// ARPU divides MRR by the count of distinct customers holding an active
// subscription; 0 when nobody is active.
func (s *Service) ARPU(ctx context.Context) (float64, error) {
	mrr, err := s.MRR(ctx)
	if err != nil {
		return 0, err
	}
	n, err := s.stats.ActiveCustomerCount(ctx, s.now())
	if err != nil {
		return 0, apperr.Store("active customer count", err)
	}
	if n == 0 {
		return 0.0, nil
	}
	return round2(mrr / float64(n)), nil
}

// RetentionRate over [start, end]: customers present at period end who
// were not newly acquired during the period, normalized against the
// starting base.
func (s *Service) RetentionRate(ctx context.Context, start, end time.Time) (float64, error) {
	atStart, err := s.stats.CustomersActiveAt(ctx, start)
	if err != nil {
		return 0, apperr.Store("customers at period start", err)
	}
	if len(atStart) == 0 {
		return 0.0, nil
	}

	atEnd, err := s.stats.CustomersActiveAt(ctx, end)
	if err != nil {
		return 0, apperr.Store("customers at period end", err)
	}
	started, err := s.stats.CustomersStartedBetween(ctx, start, end)
	if err != nil {
		return 0, apperr.Store("customers started in period", err)
	}

	newcomers := toSet(started)
	retained := 0
	for _, id := range atEnd {
		if _, isNew := newcomers[id]; !isNew {
			retained++
		}
	}

	return round2(float64(retained) / float64(len(toSet(atStart))) * 100), nil
}

// ChurnRate over [start, end]: share of the starting base absent at
// period end.
func (s *Service) ChurnRate(ctx context.Context, start, end time.Time) (float64, error) {
	atStart, err := s.stats.CustomersActiveAt(ctx, start)
	if err != nil {
		return 0, apperr.Store("customers at period start", err)
	}
	if len(atStart) == 0 {
		return 0.0, nil
	}

	atEnd, err := s.stats.CustomersActiveAt(ctx, end)
	if err != nil {
		return 0, apperr.Store("customers at period end", err)
	}

	endSet := toSet(atEnd)
	startSet := toSet(atStart)
	lost := 0
	for id := range startSet {
		if _, ok := endSet[id]; !ok {
			lost++
		}
	}

	return round2(float64(lost) / float64(len(startSet)) * 100), nil
}

// AOV is the mean snapshot price across all subscriptions ever created.
func (s *Service) AOV(ctx context.Context) (float64, error) {
	sum, count, err := s.stats.PriceTotals(ctx)
	if err != nil {
		return 0, apperr.Store("price totals query", err)
	}
	if count == 0 {
		return 0.0, nil
	}
	return round2(sum / float64(count)), nil
}

// RPR is the share of subscribing customers who subscribed more than once.
func (s *Service) RPR(ctx context.Context) (float64, error) {
	repeats, err := s.stats.RepeatCustomerCount(ctx)
	if err != nil {
		return 0, apperr.Store("repeat customer count", err)
	}
	total, err := s.stats.DistinctCustomerCount(ctx)
	if err != nil {
		return 0, apperr.Store("distinct customer count", err)
	}
	if total == 0 {
		return 0.0, nil
	}
	return round2(float64(repeats) / float64(total) * 100), nil
}

// PurchaseFrequency is the mean number of subscriptions per customer.
func (s *Service) PurchaseFrequency(ctx context.Context) (float64, error) {
	subs, err := s.stats.SubscriptionCount(ctx)
	if err != nil {
		return 0, apperr.Store("subscription count", err)
	}
	customers, err := s.stats.DistinctCustomerCount(ctx)
	if err != nil {
		return 0, apperr.Store("distinct customer count", err)
	}
	if customers == 0 {
		return 0.0, nil
	}
	return round2(float64(subs) / float64(customers)), nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
