package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nkazemy/subman/internal/model"
)

// CHEventsRepository stores and lists archived subscription events in
// ClickHouse (read side of the event pipeline).
type CHEventsRepository interface {
	InsertBatch(ctx context.Context, events []model.SubscriptionEvent) error
	ListByCustomer(ctx context.Context, customerID, eventType string, limit, offset int) ([]model.SubscriptionEvent, error)
}

type chEventsRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewCHEventsRepository(ch *sqlx.DB) CHEventsRepository {
	return &chEventsRepository{ch: ch}
}

func (r *chEventsRepository) InsertBatch(ctx context.Context, events []model.SubscriptionEvent) error {
	if len(events) == 0 {
		return nil
	}

	var sb strings.Builder
	args := make([]any, 0, len(events)*6)

	sb.WriteString(`
		INSERT INTO subman.subscription_events
		    (event_id, event_type, subscription_id, customer_id, product_id, occurred_at)
		VALUES `)
	for i, ev := range events {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?)")
		args = append(args, ev.EventID, ev.EventType, ev.SubscriptionID, ev.CustomerID, ev.ProductID, ev.OccurredAt)
	}

	_, err := r.ch.ExecContext(ctx, sb.String(), args...)
	return err
}

func (r *chEventsRepository) ListByCustomer(ctx context.Context, customerID, eventType string, limit, offset int) ([]model.SubscriptionEvent, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `
		SELECT event_id, event_type, subscription_id, customer_id, product_id, occurred_at
		FROM subman.subscription_events
		WHERE customer_id = ?
	`
	args := []any{customerID}

	if eventType != "" {
		q += " AND event_type = ?"
		args = append(args, eventType)
	}

	q += " ORDER BY occurred_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []model.SubscriptionEvent
	if err := r.ch.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
