package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quickcut/backend/internal/app"
	"github.com/quickcut/backend/internal/shared/infrastructure/eventbus"
	"github.com/quickcut/backend/internal/shared/infrastructure/outbox"
	"github.com/quickcut/backend/pkg/config"
	"github.com/quickcut/backend/pkg/observability"
)

// The worker owns everything that runs off the request path: outbox
// publishing, outbox cleanup, payment reconciliation of indeterminate
// intents, and the subscription expiry sweep.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	}
	logCfg.ServiceName = "quickcut-worker"
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logger := observability.NewLogger(logCfg)

	logger.Info("starting quickcut worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	// Event publisher
	var publisher eventbus.Publisher
	rabbitPublisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
			publisher = eventbus.NewNoopPublisher(logger)
		} else {
			logger.Error("failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
	} else {
		publisher = rabbitPublisher
		defer rabbitPublisher.Close()
	}

	// Outbox processor
	processorConfig := outbox.DefaultProcessorConfig()
	processorConfig.PollInterval = cfg.OutboxPollInterval
	processorConfig.BatchSize = cfg.OutboxBatchSize
	processorConfig.MaxRetries = cfg.OutboxMaxRetries
	processor := outbox.NewProcessor(container.OutboxRepo, publisher, processorConfig, logger)

	if err := processor.Start(ctx); err != nil {
		logger.Error("failed to start outbox processor", "error", err)
		os.Exit(1)
	}
	defer processor.Stop()

	// Outbox cleanup
	cleanupTicker := time.NewTicker(cfg.OutboxCleanupInterval)
	defer cleanupTicker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-cleanupTicker.C:
				deleted, err := container.OutboxRepo.DeleteOld(ctx, cfg.OutboxRetentionDays)
				if err != nil {
					logger.Error("outbox cleanup failed", "error", err)
					continue
				}
				if deleted > 0 {
					logger.Info("outbox cleanup completed", "deleted", deleted)
				}
			}
		}
	}()

	// Payment reconciliation sweep
	reconcileTicker := time.NewTicker(cfg.ReconcileSweepInterval)
	defer reconcileTicker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-reconcileTicker.C:
				if err := container.Payments.ResolveIndeterminate(ctx); err != nil {
					logger.Error("payment reconciliation sweep failed", "error", err)
				}
			}
		}
	}()

	// Subscription expiry sweep
	trialTicker := time.NewTicker(cfg.TrialSweepInterval)
	defer trialTicker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-trialTicker.C:
				if _, err := container.Sweeper.ExpireLapsed(ctx, time.Now().UTC()); err != nil {
					logger.Error("subscription expiry sweep failed", "error", err)
				}
			}
		}
	}()

	if cfg.WorkerHealthAddr != "" {
		startHealthServer(ctx, cfg.WorkerHealthAddr, processor, logger)
	}

	logger.Info("worker running",
		"outbox_poll_interval", processorConfig.PollInterval,
		"reconcile_interval", cfg.ReconcileSweepInterval,
		"trial_sweep_interval", cfg.TrialSweepInterval,
	)

	<-ctx.Done()
	logger.Info("worker stopped")
}

func startHealthServer(ctx context.Context, addr string, processor *outbox.Processor, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		stats := processor.GetStats()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":            "ok",
			"running":           stats.IsRunning,
			"published":         stats.PublishedCount,
			"failed":            stats.FailedCount,
			"last_processed_at": stats.LastProcessedAt,
			"last_error_at":     stats.LastErrorAt,
		})
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("health server shutdown error", "error", err)
		}
	}()
}
