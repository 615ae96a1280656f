package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/field-telemetry-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/field-telemetry-service/internal/adapter/kafka"
	"github.com/couchcryptid/field-telemetry-service/internal/climate"
	"github.com/couchcryptid/field-telemetry-service/internal/config"
	"github.com/couchcryptid/field-telemetry-service/internal/observability"
	"github.com/couchcryptid/field-telemetry-service/internal/pipeline"
	"github.com/couchcryptid/field-telemetry-service/internal/session"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	opts := climate.Options{Latency: cfg.SimulatedLatency, Clock: clock}
	if cfg.RandomSeed != nil {
		opts.Rand = climate.SeededSource(*cfg.RandomSeed)
		logger.Info("deterministic generation enabled", "seed", *cfg.RandomSeed)
	}
	svc := climate.New(opts, logger, metrics)
	catalog := climate.NewCatalog(climate.DefaultFields)

	// The snapshot feed is feature-flagged via FEED_ENABLED. Without it the
	// service is ready as soon as it listens.
	var ready httpadapter.ReadinessChecker = svc
	var feed *pipeline.Feed
	var writer *kafkaadapter.Writer
	if cfg.FeedEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		assembler := pipeline.NewSnapshotAssembler(svc, clock)
		feed = pipeline.New(catalog, assembler, writer, logger, metrics, pipeline.Options{
			Interval:   cfg.FeedInterval,
			WindowDays: cfg.FeedWindowDays,
			Clock:      clock,
		})
		ready = feed
		logger.Info("snapshot feed enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("snapshot feed disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, httpadapter.API{
		Telemetry: svc,
		Fields:    catalog,
		Sessions:  session.NewTracker(cfg.SessionMaxKeys),
		Metrics:   metrics,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start snapshot feed.
	if feed != nil {
		go func() {
			if err := feed.Run(ctx); err != nil {
				logger.Error("feed error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
