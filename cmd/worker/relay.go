package worker

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

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

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run outbox relay (outbox table -> Kafka)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger.Init(cfg.Log.Level)
		metrics.MustRegister(prometheus.DefaultRegisterer)

		mysqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer mysqlDB.Close()

		producer := kafka.NewProducerFromConfig(kafka.ProducerConfig{
			Brokers: cfg.Kafka.Brokers,
		})
		defer func() { _ = producer.Close() }()

		relay := worker.NewRelay(repository.NewOutboxRepository(mysqlDB), producer, logger.Log)
		if cfg.Relay.BatchSize > 0 {
			relay.BatchSize = cfg.Relay.BatchSize
		}
		if cfg.Relay.PollInterval > 0 {
			relay.PollInterval = cfg.Relay.PollInterval
		}

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		logger.Log.Info("outbox relay started")
		if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}

		logger.Log.Info("outbox relay stopped")
		return nil
	},
}
