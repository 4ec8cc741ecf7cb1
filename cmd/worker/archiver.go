package worker

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/nkazemy/subman/internal/config"
	"github.com/nkazemy/subman/internal/db"
	"github.com/nkazemy/subman/internal/kafka"
	"github.com/nkazemy/subman/internal/logger"
	"github.com/nkazemy/subman/internal/metrics"
	"github.com/nkazemy/subman/internal/repository"
	"github.com/nkazemy/subman/internal/worker"
)

var archiverCmd = &cobra.Command{
	Use:   "archiver",
	Short: "Run event archiver (Kafka -> ClickHouse)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger.Init(cfg.Log.Level)
		metrics.MustRegister(prometheus.DefaultRegisterer)

		chDB, err := db.NewClickHouseConnection(db.ClickHouseOpts{
			DSN:             cfg.ClickHouse.DSN,
			MaxOpenConns:    cfg.ClickHouse.MaxOpenConns,
			MaxIdleConns:    cfg.ClickHouse.MaxIdleConns,
			ConnMaxLifetime: cfg.ClickHouse.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ClickHouse.ConnMaxIdleTime,
			PingTimeout:     cfg.ClickHouse.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("clickhouse connect: %w", err)
		}
		defer func() { _ = chDB.Close() }()

		consumer := kafka.NewConsumerFromConfig(kafka.ConsumerConfig{
			Brokers:        cfg.Kafka.Brokers,
			Topic:          cfg.Kafka.EventsTopic,
			GroupID:        cfg.Kafka.GroupID,
			MinBytes:       cfg.Kafka.MinBytes,
			MaxBytes:       cfg.Kafka.MaxBytes,
			CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
		})
		defer func() { _ = consumer.Close() }()

		archiver := worker.NewArchiver(consumer, repository.NewCHEventsRepository(chDB), logger.Log)
		if cfg.Archiver.BatchSize > 0 {
			archiver.BatchSize = cfg.Archiver.BatchSize
		}
		if cfg.Archiver.BatchWait > 0 {
			archiver.BatchWait = cfg.Archiver.BatchWait
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		logger.Log.Info("event archiver started")
		if err := archiver.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}

		logger.Log.Info("event archiver stopped")
		return nil
	},
}
