// internal/workers/campaign/campaign-optimizations/models.go
package campaignoptimizations

import "talentads-workers/internal/models"

type Input struct {
	CampaignID string `json:"campaignId"`
}

type Output struct {
	CampaignID  string                          `json:"campaignId"`
	Suggestions []models.OptimizationSuggestion `json:"suggestions"`
	InsightDays int                             `json:"insightDays"`
}
