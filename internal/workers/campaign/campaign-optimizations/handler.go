// internal/workers/campaign/campaign-optimizations/handler.go
package campaignoptimizations

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"talentads-workers/internal/advisor"
	commonerrors "talentads-workers/internal/common/errors"
	"talentads-workers/internal/common/logger"
	"talentads-workers/internal/common/metrics"
)

const (
	TaskType = "campaign-optimizations"
)

type Handler struct {
	config       *Config
	db           *sql.DB
	advisor      *advisor.Advisor
	logger       logger.Logger
	errorHandler *commonerrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	workerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		advisor: advisor.New(advisor.Config{
			CTRFloors:       config.CTRFloors,
			ConversionFloor: config.ConversionFloor,
			MinInsightDays:  config.MinInsightDays,
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
	if input.CampaignID == "" {
		h.errorHandler.HandleJobError(ctx, client, job,
			commonerrors.NewInvalidInputError("campaignId is required"))
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
	campaign, err := h.loadCampaign(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}

	insights, err := h.loadInsights(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}

	suggestions := h.advisor.Evaluate(*campaign, insights)

	h.logger.Info("campaign evaluated", map[string]interface{}{
		"campaignId":  input.CampaignID,
		"platform":    campaign.Platform,
		"insightDays": len(insights),
		"suggestions": len(suggestions),
	})

	return &Output{
		CampaignID:  input.CampaignID,
		Suggestions: suggestions,
		InsightDays: len(insights),
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
