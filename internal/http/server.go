package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/nkazemy/subman/internal/config"
	"github.com/nkazemy/subman/internal/http/middleware"
	"github.com/nkazemy/subman/internal/metrics"
	"github.com/nkazemy/subman/internal/repository"
	"github.com/nkazemy/subman/internal/service/auth"
	"github.com/nkazemy/subman/internal/service/catalog"
	"github.com/nkazemy/subman/internal/service/revenue"
	"github.com/nkazemy/subman/internal/service/subscription"
)

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, mysqlDB, clickhouseDB *sqlx.DB, rds *redis.Client) *Server {
	// repos (MySQL)
	customersRepo := repository.NewCustomersRepository(mysqlDB)
	productsRepo := repository.NewProductsRepository(mysqlDB)
	outboxRepo := repository.NewOutboxRepository(mysqlDB)
	subsRepo := repository.NewSubscriptionsRepository(mysqlDB, outboxRepo)
	statsRepo := repository.NewStatsRepository(mysqlDB)

	// repos (ClickHouse)
	chEventsRepo := repository.NewCHEventsRepository(clickhouseDB)

	// services
	authSvc := auth.New(customersRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost)
	catalogSvc := catalog.New(productsRepo)
	subSvc := subscription.New(customersRepo, productsRepo, subsRepo, cfg.Kafka.EventsTopic)
	revSvc := revenue.New(statsRepo)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// public auth routes
	e.POST("/v1/auth/register", registerHandler(authSvc))
	e.POST("/v1/auth/login", loginHandler(authSvc))

	// middlewares
	authMW := middleware.JWTMiddleware(authSvc)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          rds,
		RPS:            cfg.RateLimit.RPS,
		KeyPrefix:      "rl:cust:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	// routes
	v1 := e.Group("/v1", authMW, rlMW)
	v1.POST("/products", addProductHandler(catalogSvc))

	v1.POST("/subscriptions", subscribeHandler(subSvc))
	v1.GET("/subscriptions/:id/status", subscriptionStatusHandler(subSvc))
	v1.GET("/subscriptions/:id/settings", subscriptionSettingsHandler(subSvc))
	v1.PUT("/subscriptions/:id/settings", editSubscriptionSettingsHandler(subSvc))
	v1.PUT("/subscriptions/:id/expiration", extendSubscriptionHandler(subSvc))

	v1.GET("/revenue/mrr", mrrHandler(revSvc))
	v1.GET("/revenue/arr", arrHandler(revSvc))
	v1.GET("/revenue/arpu", arpuHandler(revSvc))
	v1.GET("/revenue/retention", retentionHandler(revSvc))
	v1.GET("/revenue/churn", churnHandler(revSvc))
	v1.GET("/revenue/aov", aovHandler(revSvc))
	v1.GET("/revenue/rpr", rprHandler(revSvc))
	v1.GET("/revenue/purchase_frequency", purchaseFrequencyHandler(revSvc))

	v1.GET("/events", listEventsHandler(chEventsRepo))

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
