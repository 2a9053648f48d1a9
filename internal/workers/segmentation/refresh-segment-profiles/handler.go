// internal/workers/segmentation/refresh-segment-profiles/handler.go
package refreshsegmentprofiles

import (
	"context"
	"database/sql"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	commonerrors "talentads-workers/internal/common/errors"
	"talentads-workers/internal/common/logger"
	"talentads-workers/internal/common/metrics"
	"talentads-workers/internal/segmentation/summary"
)

const (
	TaskType = "refresh-segment-profiles"
)

// Handler recomputes every segment's descriptive statistics and activity
// flag from current data. It never re-clusters and never touches manual
// names or descriptions; that separation keeps the refresh cheap enough
// to run on a timer.
type Handler struct {
	config       *Config
	db           *sql.DB
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	workerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
		logger:       workerLog,
		errorHandler: commonerrors.NewErrorHandler(workerLog),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode(err)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context) (*Output, error) {
	return h.execute(ctx)
}

func (h *Handler) execute(ctx context.Context) (*Output, error) {
	segments, err := h.loadSegments(ctx)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		h.logger.Info("no segments to refresh", nil)
		return &Output{}, nil
	}

	candidates, assignments, assigned, err := h.loadAssignments(ctx, segments)
	if err != nil {
		return nil, err
	}

	profiles, err := summary.Summarize(candidates, assignments, h.config.TopSkills)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("summarize segments", err)
	}

	activeIDs, err := h.loadActiveSegmentIDs(ctx)
	if err != nil {
		return nil, err
	}

	if err := h.storeProfiles(ctx, segments, profiles, activeIDs); err != nil {
		return nil, err
	}

	h.logger.Info("segment profiles refreshed", map[string]interface{}{
		"segments":   len(segments),
		"active":     len(activeIDs),
		"candidates": assigned,
	})

	return &Output{
		SegmentsRefreshed:  len(segments),
		ActiveSegments:     len(activeIDs),
		CandidatesAssigned: assigned,
	}, nil
}

func errorCode(err error) string {
	if stdErr, ok := err.(*commonerrors.StandardError); ok {
		return string(stdErr.Code)
	}
	return "INTERNAL_ERROR"
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}
