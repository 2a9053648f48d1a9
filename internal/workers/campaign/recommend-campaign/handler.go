// internal/workers/campaign/recommend-campaign/handler.go
package recommendcampaign

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"

	commonerrors "talentads-workers/internal/common/errors"
	"talentads-workers/internal/common/logger"
	"talentads-workers/internal/common/metrics"
	"talentads-workers/internal/recommend"
)

const (
	TaskType = "recommend-campaign"
)

type Handler struct {
	config       *Config
	db           *sql.DB
	redis        *redis.Client
	engine       *recommend.Engine
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client, log logger.Logger) *Handler {
	workerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		redis:  redisClient,
		engine: recommend.NewEngine(recommend.Config{
			Platforms:         config.Platforms,
			MinSimilarJobs:    config.MinSimilarJobs,
			HistoryWindowDays: config.HistoryWindowDays,
			MinDailyBudget:    config.MinDailyBudget,
		}),
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

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job,
			commonerrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}
	if input.JobID == "" {
		h.errorHandler.HandleJobError(ctx, client, job,
			commonerrors.NewInvalidInputError("jobId is required"))
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if cached := h.cachedRecommendation(ctx, input.JobID); cached != nil {
		h.logger.Debug("serving cached recommendation", map[string]interface{}{
			"jobId": input.JobID,
		})
		return cached, nil
	}

	job, err := h.loadJob(ctx, input.JobID)
	if err != nil {
		return nil, err
	}

	history, err := h.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	profiles, err := h.loadSegmentProfiles(ctx)
	if err != nil {
		return nil, err
	}

	recommendation, err := h.engine.Recommend(*job, history, profiles)
	if err != nil {
		return nil, err
	}

	mode := "exploratory"
	if recommendation.BasedOnHistorical {
		mode = "historical"
	} else if job.IsEmpty() {
		mode = "default"
	}
	metrics.RecommendationsServed.WithLabelValues(mode).Inc()

	h.logger.Info("recommendation produced", map[string]interface{}{
		"jobId":           input.JobID,
		"bestPlatform":    recommendation.BestPlatform,
		"confidence":      recommendation.ConfidenceScore,
		"mode":            mode,
		"similarJobCount": recommendation.SimilarJobCount,
	})

	output := &Output{JobID: input.JobID, Recommendation: *recommendation}
	h.cacheRecommendation(ctx, output)
	return output, nil
}

func cacheKey(jobID string) string {
	return "recommendation:job:" + jobID
}

func (h *Handler) cachedRecommendation(ctx context.Context, jobID string) *Output {
	raw, err := h.redis.Get(ctx, cacheKey(jobID)).Result()
	if err != nil {
		return nil
	}
	var output Output
	if err := json.Unmarshal([]byte(raw), &output); err != nil {
		return nil
	}
	return &output
}

func (h *Handler) cacheRecommendation(ctx context.Context, output *Output) {
	raw, err := json.Marshal(output)
	if err != nil {
		return
	}
	if err := h.redis.Set(ctx, cacheKey(output.JobID), raw, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("failed to cache recommendation", map[string]interface{}{
			"jobId": output.JobID,
			"error": err,
		})
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
