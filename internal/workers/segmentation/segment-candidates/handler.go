// internal/workers/segmentation/segment-candidates/handler.go
package segmentcandidates

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	commonerrors "talentads-workers/internal/common/errors"
	"talentads-workers/internal/common/logger"
	"talentads-workers/internal/common/metrics"
	"talentads-workers/internal/models"
	"talentads-workers/internal/segmentation/cluster"
	"talentads-workers/internal/segmentation/features"
	"talentads-workers/internal/segmentation/summary"
)

const (
	TaskType = "segment-candidates"
)

type Handler struct {
	config       *Config
	db           *sql.DB
	redis        *redis.Client
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client, log logger.Logger) *Handler {
	workerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		db:           db,
		redis:        redisClient,
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

	var rawVars map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &rawVars); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job,
			commonerrors.NewInvalidInputError(fmt.Sprintf("parse variables: %v", err)))
		return
	}
	if err := ValidateInput(rawVars); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job,
			commonerrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode(err)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

// Execute exposes the core flow for tests and the registry.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	strategyName := input.Strategy
	if strategyName == "" {
		strategyName = h.config.DefaultStrategy
	}
	strategy, err := cluster.ParseStrategy(strategyName)
	if err != nil {
		return nil, commonerrors.NewInvalidStrategyError(strategyName)
	}

	runID := uuid.New().String()
	acquired, holder, err := h.acquireLock(ctx, runID)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("acquire segmentation lock", err)
	}
	if !acquired {
		return nil, commonerrors.NewSegmentationBusyError(holder)
	}
	defer h.releaseLock(runID)

	candidates, err := h.loadCandidates(ctx)
	if err != nil {
		return nil, err
	}

	params := h.clusterParams(input, len(candidates))
	matrix, err := features.Build(candidates, features.Options{
		OneHotMax:     h.config.OneHotMax,
		MinCandidates: h.config.MinCandidates,
		RequestedK:    requestedK(strategy, params),
	})
	if err != nil {
		metrics.SegmentationRuns.WithLabelValues(string(strategy), models.RunStatusFailed).Inc()
		return nil, err
	}

	assignments, err := cluster.Segment(matrix.Rows, strategy, params)
	if err != nil {
		metrics.SegmentationRuns.WithLabelValues(string(strategy), models.RunStatusFailed).Inc()
		return nil, commonerrors.NewSegmentationFailedError(string(strategy), paramsMetadata(strategy, params), err)
	}

	profiles, err := summary.Summarize(candidates, assignments, h.config.TopSkills)
	if err != nil {
		return nil, commonerrors.NewSegmentationFailedError(string(strategy), paramsMetadata(strategy, params), err)
	}

	noise := 0
	for _, a := range assignments {
		if a < 0 {
			noise++
		}
	}

	run := &models.SegmentationRun{
		ID:                  runID,
		Strategy:            string(strategy),
		K:                   params.K,
		Eps:                 params.Eps,
		MinPoints:           params.MinPoints,
		Status:              models.RunStatusCompleted,
		SegmentCount:        len(profiles),
		CandidatesProcessed: len(candidates),
		CandidatesNoise:     noise,
		RequestedBy:         input.RequestedBy,
		StartedAt:           time.Now().UTC(),
	}

	if err := h.commitRun(ctx, run, profiles, candidates, assignments); err != nil {
		metrics.SegmentationRuns.WithLabelValues(string(strategy), models.RunStatusFailed).Inc()
		return nil, err
	}

	metrics.SegmentationRuns.WithLabelValues(string(strategy), models.RunStatusCompleted).Inc()
	metrics.SegmentationCandidates.Set(float64(len(candidates)))

	h.logger.Info("segmentation run committed", map[string]interface{}{
		"runId":        runID,
		"strategy":     string(strategy),
		"segmentCount": len(profiles),
		"candidates":   len(candidates),
		"noise":        noise,
	})

	return &Output{
		RunID:                 runID,
		Strategy:              string(strategy),
		SegmentCount:          len(profiles),
		CandidatesProcessed:   len(candidates),
		CandidatesUnsegmented: noise,
	}, nil
}

// clusterParams merges request overrides with configured defaults.
func (h *Handler) clusterParams(input *Input, candidateCount int) cluster.Params {
	params := cluster.Params{
		K:             input.K,
		Eps:           input.Eps,
		MinPoints:     input.MinPoints,
		MaxIterations: h.config.MaxIterations,
		Seed:          h.config.Seed,
	}
	if params.K <= 0 {
		params.K = cluster.DefaultK(candidateCount)
	}
	if params.Eps <= 0 {
		params.Eps = h.config.DefaultEps
	}
	if params.MinPoints <= 0 {
		params.MinPoints = h.config.DefaultMinPts
	}
	return params
}

// requestedK only raises the data floor for strategies that honor k.
func requestedK(strategy cluster.Strategy, params cluster.Params) int {
	if strategy == cluster.StrategyDensity {
		return 0
	}
	return params.K
}

func paramsMetadata(strategy cluster.Strategy, params cluster.Params) map[string]interface{} {
	meta := map[string]interface{}{}
	switch strategy {
	case cluster.StrategyDensity:
		meta["eps"] = params.Eps
		meta["minPoints"] = params.MinPoints
	default:
		meta["k"] = params.K
	}
	return meta
}

// acquireLock takes the single-flight segmentation lock. The stored value
// is the run id, so a busy error can report who holds it.
func (h *Handler) acquireLock(ctx context.Context, runID string) (bool, string, error) {
	ok, err := h.redis.SetNX(ctx, h.config.LockKey, runID, h.config.LockTTL).Result()
	if err != nil {
		return false, "", err
	}
	if ok {
		return true, "", nil
	}
	holder, _ := h.redis.Get(ctx, h.config.LockKey).Result()
	return false, holder, nil
}

// releaseLock drops the lock only if this run still owns it; an expired
// lock may have been re-taken by a newer run.
func (h *Handler) releaseLock(runID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	holder, err := h.redis.Get(ctx, h.config.LockKey).Result()
	if err == nil && holder == runID {
		h.redis.Del(ctx, h.config.LockKey)
	}
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
