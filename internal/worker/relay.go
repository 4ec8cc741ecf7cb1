package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nkazemy/subman/internal/kafka"
	"github.com/nkazemy/subman/internal/metrics"
	"github.com/nkazemy/subman/internal/repository"
)

// Relay polls unpublished outbox rows and publishes them to Kafka,
// marking rows published on success. Delivery is at-least-once; the
// archiver deduplicates by event id downstream.
type Relay struct {
	Outbox   repository.OutboxRepository
	Producer *kafka.Producer
	Log      *zap.Logger

	BatchSize    int           // rows fetched per poll
	PollInterval time.Duration // sleep when the outbox is drained
}

func NewRelay(outbox repository.OutboxRepository, producer *kafka.Producer, log *zap.Logger) *Relay {
	return &Relay{
		Outbox:       outbox,
		Producer:     producer,
		Log:          log,
		BatchSize:    100,
		PollInterval: 500 * time.Millisecond,
	}
}

// Run blocks until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	if r.BatchSize <= 0 {
		r.BatchSize = 100
	}
	if r.PollInterval <= 0 {
		r.PollInterval = 500 * time.Millisecond
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := r.drainOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.Log.Error("relay pass failed", zap.Error(err))
		}

		// Poll again immediately while there is backlog.
		if n == r.BatchSize {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.PollInterval):
		}
	}
}

func (r *Relay) drainOnce(ctx context.Context) (int, error) {
	rows, err := r.Outbox.FetchUnpublished(ctx, r.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	published := make([]int64, 0, len(rows))
	failed := make([]int64, 0)
	for _, row := range rows {
		if err := r.Producer.Publish(ctx, row.Topic, []byte(row.AggregateID), row.Payload); err != nil {
			r.Log.Warn("publish failed",
				zap.Int64("outbox_id", row.ID),
				zap.String("topic", row.Topic),
				zap.Error(err))
			failed = append(failed, row.ID)
			continue
		}
		published = append(published, row.ID)
	}

	if err := r.Outbox.MarkPublished(ctx, published, time.Now().UTC()); err != nil {
		return len(rows), err
	}
	if err := r.Outbox.IncrementAttempts(ctx, failed); err != nil {
		return len(rows), err
	}

	metrics.EventsPublished.Add(float64(len(published)))
	if len(published) > 0 {
		r.Log.Info("outbox relayed",
			zap.Int("published", len(published)),
			zap.Int("failed", len(failed)))
	}
	return len(rows), nil
}
