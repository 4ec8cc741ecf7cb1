package model

import "time"

const (
	EventSubscriptionCreated         = "subscription.created"
	EventSubscriptionExtended        = "subscription.extended"
	EventSubscriptionSettingsUpdated = "subscription.settings_updated"
)

// SubscriptionEvent is the payload written to the outbox and published to
// Kafka, then archived into ClickHouse by the archiver worker.
type SubscriptionEvent struct {
	EventID        string    `json:"event_id" db:"event_id"`
	EventType      string    `json:"event_type" db:"event_type"`
	SubscriptionID string    `json:"subscription_id" db:"subscription_id"`
	CustomerID     string    `json:"customer_id" db:"customer_id"`
	ProductID      string    `json:"product_id" db:"product_id"`
	OccurredAt     time.Time `json:"occurred_at" db:"occurred_at"`
}

// OutboxEvent is a pending row in the outbox table.
type OutboxEvent struct {
	ID          int64      `db:"id"`
	Aggregate   string     `db:"aggregate"`
	AggregateID string     `db:"aggregate_id"`
	Topic       string     `db:"topic"`
	Payload     []byte     `db:"payload"`
	Attempts    int        `db:"attempts"`
	PublishedAt *time.Time `db:"published_at"`
	CreatedAt   time.Time  `db:"created_at"`
}
