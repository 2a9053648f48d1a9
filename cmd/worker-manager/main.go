// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"talentads-workers/internal/common/camunda"
	"talentads-workers/internal/common/config"
	"talentads-workers/internal/common/database"
	"talentads-workers/internal/common/logger"
	"talentads-workers/internal/common/observability"
	"talentads-workers/pkg/registry"

	// Campaign Workers (2)
	co "talentads-workers/internal/workers/campaign/campaign-optimizations"
	rc "talentads-workers/internal/workers/campaign/recommend-campaign"

	// Segmentation Workers (2)
	rsp "talentads-workers/internal/workers/segmentation/refresh-segment-profiles"
	sc "talentads-workers/internal/workers/segmentation/segment-candidates"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = camunda.Connect(cfg.Camunda)
		if err != nil && !camunda.IsRetryable(err) {
			zapLog.Error("zeebe connection error is not transient", zap.Error(err))
		}
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Activity Registry ---
	taskTypes := []string{sc.TaskType, rsp.TaskType, rc.TaskType, co.TaskType}
	if reg, err := registry.LoadRegistry(cfg.Registry.Path); err != nil {
		zapLog.Warn("activity registry not loaded", zap.Error(err), zap.String("path", cfg.Registry.Path))
	} else {
		for _, taskType := range reg.MissingTaskTypes(taskTypes) {
			zapLog.Warn("registry lists an activity with no registered worker",
				zap.String("taskType", taskType))
		}
		for _, taskType := range taskTypes {
			if reg.ByTaskType(taskType) == nil {
				zapLog.Warn("worker task type missing from activity registry",
					zap.String("taskType", taskType))
			}
		}
	}

	var workers []*camunda.Worker

	// --- 1. Segmentation Workers (2) ---
	if cfg.Workers[sc.TaskType].Enabled {
		handler := sc.NewHandler(sc.LoadConfig(cfg), pg.DB, redis.Client, log)
		workers = appendWorker(workers,
			camunda.Start(zeebeClient, sc.TaskType, cfg.Workers[sc.TaskType], handler.Handle, obs, zapLog))
	}

	if cfg.Workers[rsp.TaskType].Enabled {
		handler := rsp.NewHandler(rsp.LoadConfig(cfg), pg.DB, log)
		workers = appendWorker(workers,
			camunda.Start(zeebeClient, rsp.TaskType, cfg.Workers[rsp.TaskType], handler.Handle, obs, zapLog))
	}

	// --- 2. Campaign Workers (2) ---
	if cfg.Workers[rc.TaskType].Enabled {
		handler := rc.NewHandler(rc.LoadConfig(cfg), pg.DB, redis.Client, log)
		workers = appendWorker(workers,
			camunda.Start(zeebeClient, rc.TaskType, cfg.Workers[rc.TaskType], handler.Handle, obs, zapLog))
	}

	if cfg.Workers[co.TaskType].Enabled {
		handler := co.NewHandler(co.LoadConfig(cfg), pg.DB, log)
		workers = appendWorker(workers,
			camunda.Start(zeebeClient, co.TaskType, cfg.Workers[co.TaskType], handler.Handle, obs, zapLog))
	}

	zapLog.Info("All workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Stop()
	}

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func appendWorker(workers []*camunda.Worker, w *camunda.Worker) []*camunda.Worker {
	if w == nil {
		return workers
	}
	return append(workers, w)
}
