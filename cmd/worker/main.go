package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskpilot/taskpilot/internal/allocation/application/consumers"
	"github.com/taskpilot/taskpilot/internal/app"
	"github.com/taskpilot/taskpilot/internal/shared/infrastructure/eventbus"
	"github.com/taskpilot/taskpilot/pkg/config"
	"github.com/taskpilot/taskpilot/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()
	logger.Info("starting taskpilot worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to wire worker", "error", err)
		os.Exit(1)
	}
	defer container.Close()
	logger.Info("worker wired", "local_mode", container.LocalMode())

	consumer, err := startConsumer(ctx, cfg, container, logger)
	if err != nil {
		logger.Error("failed to start event consumer", "error", err)
		os.Exit(1)
	}
	if consumer != nil {
		defer func() { _ = consumer.Close() }()
	}

	go runOutboxCleanup(ctx, cfg, container, logger)
	go runStatsLoop(ctx, cfg, container, logger)

	if cfg.WorkerHealthAddr != "" {
		startHealthServer(ctx, cfg.WorkerHealthAddr, container, logger)
	}

	<-ctx.Done()
	logger.Info("shutting down worker")
}

// startConsumer subscribes the workload invalidator to assignment events.
// With RabbitMQ the worker consumes from the broker queue; without a broker
// the container's in-process bus already dispatches inline.
func startConsumer(ctx context.Context, cfg *config.Config, container *app.Container, logger *slog.Logger) (*eventbus.RabbitMQConsumer, error) {
	if cfg.RabbitMQURL == "" {
		logger.Info("no RABBITMQ_URL, relying on in-process event bus")
		return nil, nil
	}

	registry := eventbus.NewConsumerRegistry(logger)
	registry.Register(consumers.NewWorkloadInvalidator(container.Workload, logger))

	consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:       cfg.RabbitMQURL,
		QueueName: cfg.WorkerQueueName,
		Logger:    logger,
	}, registry)
	if err != nil {
		return nil, err
	}

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("event consumer stopped", "error", err)
		}
	}()
	return consumer, nil
}

func runOutboxCleanup(ctx context.Context, cfg *config.Config, container *app.Container, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.OutboxCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := container.OutboxRepo.DeleteOld(ctx, cfg.OutboxRetentionDays)
			if err != nil {
				logger.Error("outbox cleanup failed", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Info("outbox cleanup completed", "deleted", deleted, "retention_days", cfg.OutboxRetentionDays)
			}
		}
	}
}

func runStatsLoop(ctx context.Context, cfg *config.Config, container *app.Container, logger *slog.Logger) {
	processor := container.OutboxProcessor()
	if processor == nil {
		return
	}
	ticker := time.NewTicker(cfg.OutboxStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := processor.GetStats()
			logger.Info("outbox stats",
				"running", stats.IsRunning,
				"published", stats.PublishedCount,
				"failed", stats.FailedCount,
				"dead", stats.DeadCount,
				"lag_seconds", stats.LagSeconds,
				"last_error", stats.LastError,
			)
		}
	}
}

func startHealthServer(ctx context.Context, addr string, container *app.Container, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancelCheck := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancelCheck()

		health := container.Health.GetOverallHealth(checkCtx)
		w.Header().Set("Content-Type", "application/json")
		if health.Status == observability.HealthStatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		body, err := health.ToJSON()
		if err != nil {
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error"})
			return
		}
		_, _ = w.Write(body)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]any{"status": "ready"}
		if processor := container.OutboxProcessor(); processor != nil && !processor.IsRunning() {
			w.WriteHeader(http.StatusServiceUnavailable)
			response = map[string]any{"status": "not_ready", "reason": "outbox processor stopped"}
		}
		_ = json.NewEncoder(w).Encode(response)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("health server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health server shutdown error", "error", err)
		}
	}()
}
