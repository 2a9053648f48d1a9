// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"talentads-workers/internal/common/config"
	"talentads-workers/internal/common/observability"
)

// HandlerFunc is the job callback signature the Zeebe client expects.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// Worker is one opened job subscription.
type Worker struct {
	taskType string
	inner    worker.JobWorker
	logger   *zap.Logger
}

// Start opens a job worker for the task type. Returns nil when the worker
// is disabled in config.
func Start(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler HandlerFunc, obs *observability.Observability, log *zap.Logger) *Worker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	inner := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(instrument(obs, taskType, handler))).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return &Worker{taskType: taskType, inner: inner, logger: log}
}

// instrument wraps the job callback so every handled job records otel
// throughput and duration for its task type.
func instrument(obs *observability.Observability, taskType string, handler HandlerFunc) HandlerFunc {
	if obs == nil {
		return handler
	}
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		handler(client, job)

		ctx := context.Background()
		obs.RecordJobProcessed(ctx, taskType)
		obs.RecordJobDuration(ctx, time.Since(start), taskType)
	}
}

// Stop closes the subscription and waits for in-flight jobs to drain.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.inner.Close()
	w.inner.AwaitClose()
}
