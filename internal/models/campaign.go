// internal/models/campaign.go
package models

import "time"

// Supported ad platforms.
const (
	PlatformMeta     = "meta"
	PlatformGoogle   = "google"
	PlatformLinkedIn = "linkedin"
	PlatformIndeed   = "indeed"
)

// Campaign statuses used by the host system.
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusActive    = "active"
	CampaignStatusPaused    = "paused"
	CampaignStatusCompleted = "completed"
)

type Campaign struct {
	ID             string    `json:"id"`
	JobID          string    `json:"jobId"`
	Platform       string    `json:"platform"`
	Status         string    `json:"status"`
	DailyBudget    int64     `json:"dailyBudget"` // minor currency units
	TotalBudget    int64     `json:"totalBudget,omitempty"`
	TargetSegments []int64   `json:"targetSegments,omitempty"`
	StartedAt      time.Time `json:"startedAt"`
}

// Insight is one time bucket of campaign performance.
type Insight struct {
	CampaignID  string    `json:"campaignId"`
	Date        time.Time `json:"date"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Spend       int64     `json:"spend"` // minor currency units
	Conversions int64     `json:"conversions"`
}

// CampaignWithInsights pairs a historical campaign with its job attributes
// and insight stream for the recommender.
type CampaignWithInsights struct {
	Campaign Campaign   `json:"campaign"`
	Job      JobOpening `json:"job"`
	Insights []Insight  `json:"insights"`
}

// Totals sums the insight stream.
func (c *CampaignWithInsights) Totals() (impressions, clicks, spend, conversions int64) {
	for _, in := range c.Insights {
		impressions += in.Impressions
		clicks += in.Clicks
		spend += in.Spend
		conversions += in.Conversions
	}
	return
}

// CTR returns clicks/impressions over the whole stream, 0 when no impressions.
func (c *CampaignWithInsights) CTR() float64 {
	impressions, clicks, _, _ := c.Totals()
	if impressions == 0 {
		return 0
	}
	return float64(clicks) / float64(impressions)
}
