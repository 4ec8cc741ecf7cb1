package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nkazemy/subman/internal/model"
)

// SubscriptionsRepository persists the subscription ledger. Mutations that
// must be observable downstream carry a lifecycle event written to the
// outbox inside the same transaction.
type SubscriptionsRepository interface {
	GetByID(ctx context.Context, id string) (*model.Subscription, error)
	// HasActive reports whether the (customer, product) pair holds a
	// subscription whose expiration is strictly after now.
	HasActive(ctx context.Context, customerID, productID string, now time.Time) (bool, error)
	Create(ctx context.Context, sub model.Subscription, ev model.SubscriptionEvent, topic string) error
	SetCustomization(ctx context.Context, id string, c model.CustomizationMap, ev model.SubscriptionEvent, topic string) error
	SetExpiration(ctx context.Context, id string, exp time.Time, ev model.SubscriptionEvent, topic string) error
}

type SubscriptionsRepositoryImpl struct {
	db     *sqlx.DB
	outbox OutboxRepository
}

func NewSubscriptionsRepository(db *sqlx.DB, outbox OutboxRepository) *SubscriptionsRepositoryImpl {
	return &SubscriptionsRepositoryImpl{db: db, outbox: outbox}
}

var _ SubscriptionsRepository = (*SubscriptionsRepositoryImpl)(nil)

func (r *SubscriptionsRepositoryImpl) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SubscriptionsRepositoryImpl) GetByID(ctx context.Context, id string) (*model.Subscription, error) {
	var s model.Subscription
	err := r.db.GetContext(ctx, &s, `
		SELECT id, customer_id, product_id, start_date, expiration_date,
		       customization, price_at_subscription, periodicity_at_subscription,
		       created_at, updated_at
		  FROM subscriptions
		 WHERE id = ? LIMIT 1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubscriptionsRepositoryImpl) HasActive(ctx context.Context, customerID, productID string, now time.Time) (bool, error) {
	var one int
	err := r.db.QueryRowxContext(ctx, `
		SELECT 1
		  FROM subscriptions
		 WHERE customer_id = ? AND product_id = ? AND expiration_date > ?
		 LIMIT 1
	`, customerID, productID, now).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *SubscriptionsRepositoryImpl) Create(ctx context.Context, sub model.Subscription, ev model.SubscriptionEvent, topic string) error {
	const q = `
		INSERT INTO subscriptions
		    (id, customer_id, product_id, start_date, expiration_date,
		     customization, price_at_subscription, periodicity_at_subscription,
		     created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			sub.ID, sub.CustomerID, sub.ProductID, sub.StartDate, sub.ExpirationDate,
			sub.Customization, sub.PriceAtSubscription, sub.PeriodicityAtSubscription,
		)
		if err != nil {
			return fmt.Errorf("insert subscription: %w", err)
		}
		return r.insertEvent(ctx, tx, ev, topic)
	})
}

func (r *SubscriptionsRepositoryImpl) SetCustomization(ctx context.Context, id string, c model.CustomizationMap, ev model.SubscriptionEvent, topic string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE subscriptions SET customization = ?, updated_at = NOW() WHERE id = ?
		`, c, id)
		if err != nil {
			return fmt.Errorf("update customization: %w", err)
		}
		return r.insertEvent(ctx, tx, ev, topic)
	})
}

func (r *SubscriptionsRepositoryImpl) SetExpiration(ctx context.Context, id string, exp time.Time, ev model.SubscriptionEvent, topic string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE subscriptions SET expiration_date = ?, updated_at = NOW() WHERE id = ?
		`, exp, id)
		if err != nil {
			return fmt.Errorf("update expiration: %w", err)
		}
		return r.insertEvent(ctx, tx, ev, topic)
	})
}

func (r *SubscriptionsRepositoryImpl) insertEvent(ctx context.Context, tx *sqlx.Tx, ev model.SubscriptionEvent, topic string) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := r.outbox.Insert(ctx, tx, "subscription", ev.SubscriptionID, topic, payload); err != nil {
		return fmt.Errorf("insert outbox: %w", err)
	}
	return nil
}
