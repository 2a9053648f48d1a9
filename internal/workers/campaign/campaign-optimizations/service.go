// internal/workers/campaign/campaign-optimizations/service.go
package campaignoptimizations

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	commonerrors "talentads-workers/internal/common/errors"
	"talentads-workers/internal/models"
)

func (h *Handler) loadCampaign(ctx context.Context, campaignID string) (*models.Campaign, error) {
	row := h.db.QueryRowContext(ctx, `
		SELECT id, job_id, platform, status, daily_budget,
		       COALESCE(total_budget, 0), target_segments, started_at
		FROM campaigns
		WHERE id = $1`, campaignID)

	var campaign models.Campaign
	err := row.Scan(&campaign.ID, &campaign.JobID, &campaign.Platform,
		&campaign.Status, &campaign.DailyBudget, &campaign.TotalBudget,
		pq.Array(&campaign.TargetSegments), &campaign.StartedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, commonerrors.NewCampaignNotFoundError(campaignID)
		}
		return nil, commonerrors.NewQueryExecutionFailedError("load campaign", err)
	}
	return &campaign, nil
}

// loadInsights returns the campaign's daily insight rows inside the
// configured window, oldest first so the advisor can detect fatigue.
func (h *Handler) loadInsights(ctx context.Context, campaignID string) ([]models.Insight, error) {
	since := time.Now().AddDate(0, 0, -h.config.InsightWindowDays)

	rows, err := h.db.QueryContext(ctx, `
		SELECT campaign_id, date, impressions, clicks, spend, conversions
		FROM campaign_insights
		WHERE campaign_id = $1
		  AND date >= $2
		ORDER BY date`, campaignID, since)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("load campaign insights", err)
	}
	defer rows.Close()

	var insights []models.Insight
	for rows.Next() {
		var in models.Insight
		if err := rows.Scan(&in.CampaignID, &in.Date,
			&in.Impressions, &in.Clicks, &in.Spend, &in.Conversions); err != nil {
			return nil, commonerrors.NewQueryExecutionFailedError("scan campaign insight", err)
		}
		insights = append(insights, in)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("load campaign insights", err)
	}
	return insights, nil
}
