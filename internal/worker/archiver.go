package worker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/nkazemy/subman/internal/kafka"
	"github.com/nkazemy/subman/internal/metrics"
	"github.com/nkazemy/subman/internal/model"
	"github.com/nkazemy/subman/internal/repository"
)

// Archiver consumes subscription events from Kafka and batch-inserts them
// into ClickHouse on size/time-based flushes. Offsets are committed after
// the event is buffered; the events table deduplicates by event_id
// (ReplacingMergeTree), so at-least-once delivery is fine.
type Archiver struct {
	Consumer *kafka.Consumer
	Events   repository.CHEventsRepository
	Log      *zap.Logger

	BatchSize int
	BatchWait time.Duration
}

func NewArchiver(consumer *kafka.Consumer, events repository.CHEventsRepository, log *zap.Logger) *Archiver {
	return &Archiver{
		Consumer:  consumer,
		Events:    events,
		Log:       log,
		BatchSize: 200,
		BatchWait: 300 * time.Millisecond,
	}
}

// Run blocks until ctx is cancelled.
func (a *Archiver) Run(ctx context.Context) error {
	if a.BatchSize <= 0 {
		a.BatchSize = 200
	}
	if a.BatchWait <= 0 {
		a.BatchWait = 300 * time.Millisecond
	}

	msgCh := make(chan kafka.Message, a.BatchSize)

	// Fetcher goroutine
	go func() {
		defer close(msgCh)
		for {
			m, err := a.Consumer.Fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				a.Log.Warn("kafka fetch failed", zap.Error(err))
				time.Sleep(200 * time.Millisecond)
				continue
			}
			select {
			case msgCh <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	tick := time.NewTicker(a.BatchWait)
	defer tick.Stop()

	batch := make([]model.SubscriptionEvent, 0, a.BatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := a.Events.InsertBatch(ctx, batch); err != nil {
			a.Log.Error("clickhouse insert failed", zap.Int("events", len(batch)), zap.Error(err))
			return
		}
		metrics.EventsArchived.Add(float64(len(batch)))
		a.Log.Info("events archived", zap.Int("events", len(batch)))
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return ctx.Err()

		case m, ok := <-msgCh:
			if !ok {
				flush()
				return ctx.Err()
			}

			var ev model.SubscriptionEvent
			if err := json.Unmarshal(m.Value, &ev); err != nil {
				a.Log.Warn("bad event payload, skipping", zap.Error(err))
			} else {
				batch = append(batch, ev)
			}

			if err := a.Consumer.Commit(ctx, m); err != nil {
				a.Log.Warn("kafka commit failed", zap.Error(err))
			}

			if len(batch) >= a.BatchSize {
				flush()
			}

		case <-tick.C:
			flush()
		}
	}
}
