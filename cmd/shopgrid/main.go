package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/tair/shopgrid/internal/app"
	"github.com/tair/shopgrid/internal/catalog/usecase/command"
	"github.com/tair/shopgrid/kafka"
	"github.com/tair/shopgrid/pkg/config"
	"github.com/tair/shopgrid/pkg/logger"
	"github.com/tair/shopgrid/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Init("shopgrid", true)
		logger.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.Init(cfg.Service.Name, cfg.Service.IsDevelopment())
	logger.SetLevel(cfg.Log.Level)

	logger.Logger.Info().
		Str("service", cfg.Service.Name).
		Str("environment", cfg.Service.Environment).
		Str("store", cfg.Store.Driver).
		Str("cache", cfg.Cache.Driver).
		Str("log_level", cfg.Log.Level).
		Msg("Starting catalog service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.InitTracer(cfg.Service.Name, cfg.Tracing.JaegerEndpoint)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}
	defer func() {
		if err := tracing.Shutdown(context.Background(), tp); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to flush traces")
		}
	}()

	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to store")
	}
	defer stores.Close(context.Background())

	if err := stores.Migrate(ctx); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	var publisher command.EventPublisher = command.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		kp, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to create Kafka publisher")
		}
		defer kp.Close()
		publisher = kafka.NewBreakingPublisher(kp, 5, 30*time.Second)
	}

	srv, err := app.NewServer(cfg, stores, publisher, app.DefaultMetrics())
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize server")
	}

	if err := srv.Run(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server stopped with error")
	}
	logger.Logger.Info().Msg("Server stopped")
}
