// internal/workers/campaign/recommend-campaign/models.go
package recommendcampaign

import "talentads-workers/internal/models"

type Input struct {
	JobID string `json:"jobId"`
}

// Output embeds the recommendation so its fields land as flat process
// variables alongside the job id.
type Output struct {
	JobID string `json:"jobId"`
	models.Recommendation
}
