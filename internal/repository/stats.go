package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nkazemy/subman/internal/model"
)

// Economics is the price/periodicity snapshot of a single subscription as
// consumed by the revenue engine. Pointers because pre-validation rows may
// miss either field; the engine skips those.
type Economics struct {
	Price       *float64           `db:"price_at_subscription"`
	Periodicity *model.Periodicity `db:"periodicity_at_subscription"`
}

// StatsRepository exposes the aggregate query shapes the revenue engine
// needs: distinct-customer sets at an instant, grouped sums and counts.
// Set arithmetic happens in the engine, not in SQL.
type StatsRepository interface {
	// ActiveEconomics returns snapshots of subscriptions active at now
	// (expiration_date > now).
	ActiveEconomics(ctx context.Context, now time.Time) ([]Economics, error)
	// ActiveCustomerCount counts distinct customers with a subscription
	// active at now.
	ActiveCustomerCount(ctx context.Context, now time.Time) (int64, error)
	// CustomersActiveAt returns distinct customer ids holding a
	// subscription covering instant t (start_date <= t < expiration_date).
	CustomersActiveAt(ctx context.Context, t time.Time) ([]string, error)
	// CustomersStartedBetween returns distinct customer ids with a
	// subscription whose start_date falls within [start, end].
	CustomersStartedBetween(ctx context.Context, start, end time.Time) ([]string, error)
	// PriceTotals sums price_at_subscription over all subscriptions that
	// carry one, together with their count.
	PriceTotals(ctx context.Context) (sum float64, count int64, err error)
	RepeatCustomerCount(ctx context.Context) (int64, error)
	DistinctCustomerCount(ctx context.Context) (int64, error)
	SubscriptionCount(ctx context.Context) (int64, error)
}

type StatsRepositoryImpl struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepositoryImpl {
	return &StatsRepositoryImpl{db: db}
}

var _ StatsRepository = (*StatsRepositoryImpl)(nil)

func (r *StatsRepositoryImpl) ActiveEconomics(ctx context.Context, now time.Time) ([]Economics, error) {
	var rows []Economics
	err := r.db.SelectContext(ctx, &rows, `
		SELECT price_at_subscription, periodicity_at_subscription
		  FROM subscriptions
		 WHERE expiration_date > ?
	`, now)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *StatsRepositoryImpl) ActiveCustomerCount(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `
		SELECT COUNT(DISTINCT customer_id)
		  FROM subscriptions
		 WHERE expiration_date > ?
	`, now)
	return n, err
}

func (r *StatsRepositoryImpl) CustomersActiveAt(ctx context.Context, t time.Time) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT customer_id
		  FROM subscriptions
		 WHERE start_date <= ? AND expiration_date > ?
	`, t, t)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *StatsRepositoryImpl) CustomersStartedBetween(ctx context.Context, start, end time.Time) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT customer_id
		  FROM subscriptions
		 WHERE start_date >= ? AND start_date <= ?
	`, start, end)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *StatsRepositoryImpl) PriceTotals(ctx context.Context) (float64, int64, error) {
	var row struct {
		Sum   sql.NullFloat64 `db:"total_revenue"`
		Count int64           `db:"total_subscriptions"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT COALESCE(SUM(price_at_subscription), 0) AS total_revenue,
		       COUNT(*)                                AS total_subscriptions
		  FROM subscriptions
		 WHERE price_at_subscription IS NOT NULL
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	return row.Sum.Float64, row.Count, nil
}

func (r *StatsRepositoryImpl) RepeatCustomerCount(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM (
			SELECT customer_id
			  FROM subscriptions
			 GROUP BY customer_id
			HAVING COUNT(*) > 1
		) repeats
	`)
	return n, err
}

func (r *StatsRepositoryImpl) DistinctCustomerCount(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(DISTINCT customer_id) FROM subscriptions`)
	return n, err
}

func (r *StatsRepositoryImpl) SubscriptionCount(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM subscriptions`)
	return n, err
}
