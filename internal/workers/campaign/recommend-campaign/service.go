// internal/workers/campaign/recommend-campaign/service.go
package recommendcampaign

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	commonerrors "talentads-workers/internal/common/errors"
	"talentads-workers/internal/models"
)

func (h *Handler) loadJob(ctx context.Context, jobID string) (*models.JobOpening, error) {
	row := h.db.QueryRowContext(ctx, `
		SELECT id, title, COALESCE(description, ''), required_skills,
		       COALESCE(location, ''), COALESCE(salary_min, 0),
		       COALESCE(salary_max, 0), target_segments
		FROM job_openings
		WHERE id = $1`, jobID)

	var job models.JobOpening
	err := row.Scan(&job.ID, &job.Title, &job.Description,
		pq.Array(&job.RequiredSkills), &job.Location,
		&job.SalaryMin, &job.SalaryMax, pq.Array(&job.TargetSegments))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, commonerrors.NewJobNotFoundError(jobID)
		}
		return nil, commonerrors.NewQueryExecutionFailedError("load job", err)
	}
	return &job, nil
}

// loadHistory pulls completed and active campaigns started inside the
// history window, joined with their job and daily insights.
func (h *Handler) loadHistory(ctx context.Context) ([]models.CampaignWithInsights, error) {
	since := time.Now().AddDate(0, 0, -h.config.HistoryWindowDays)

	rows, err := h.db.QueryContext(ctx, `
		SELECT c.id, c.job_id, c.platform, c.status, c.daily_budget, c.started_at,
		       j.id, j.title, j.required_skills, COALESCE(j.location, ''),
		       COALESCE(j.salary_min, 0), COALESCE(j.salary_max, 0)
		FROM campaigns c
		JOIN job_openings j ON j.id = c.job_id
		WHERE c.started_at >= $1
		  AND c.status IN ($2, $3)
		ORDER BY c.started_at DESC`,
		since, models.CampaignStatusActive, models.CampaignStatusCompleted)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("load campaign history", err)
	}
	defer rows.Close()

	var history []models.CampaignWithInsights
	index := make(map[string]int)
	for rows.Next() {
		var entry models.CampaignWithInsights
		err := rows.Scan(&entry.Campaign.ID, &entry.Campaign.JobID,
			&entry.Campaign.Platform, &entry.Campaign.Status,
			&entry.Campaign.DailyBudget, &entry.Campaign.StartedAt,
			&entry.Job.ID, &entry.Job.Title, pq.Array(&entry.Job.RequiredSkills),
			&entry.Job.Location, &entry.Job.SalaryMin, &entry.Job.SalaryMax)
		if err != nil {
			return nil, commonerrors.NewQueryExecutionFailedError("scan campaign history", err)
		}
		index[entry.Campaign.ID] = len(history)
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("load campaign history", err)
	}
	if len(history) == 0 {
		return history, nil
	}

	ids := make([]string, 0, len(history))
	for _, entry := range history {
		ids = append(ids, entry.Campaign.ID)
	}

	insightRows, err := h.db.QueryContext(ctx, `
		SELECT campaign_id, date, impressions, clicks, spend, conversions
		FROM campaign_insights
		WHERE campaign_id = ANY($1)
		ORDER BY campaign_id, date`, pq.Array(ids))
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("load campaign insights", err)
	}
	defer insightRows.Close()

	for insightRows.Next() {
		var in models.Insight
		if err := insightRows.Scan(&in.CampaignID, &in.Date,
			&in.Impressions, &in.Clicks, &in.Spend, &in.Conversions); err != nil {
			return nil, commonerrors.NewQueryExecutionFailedError("scan campaign insight", err)
		}
		if i, ok := index[in.CampaignID]; ok {
			history[i].Insights = append(history[i].Insights, in)
		}
	}
	if err := insightRows.Err(); err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("load campaign insights", err)
	}
	return history, nil
}

func (h *Handler) loadSegmentProfiles(ctx context.Context) ([]models.SegmentProfile, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, candidate_count, avg_experience,
		       top_skills, top_locations, education_counts
		FROM segments
		ORDER BY id`)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("load segment profiles", err)
	}
	defer rows.Close()

	var profiles []models.SegmentProfile
	for rows.Next() {
		var (
			p               models.SegmentProfile
			topSkills       []byte
			topLocations    []byte
			educationCounts []byte
		)
		if err := rows.Scan(&p.SegmentID, &p.CandidateCount, &p.AvgExperience,
			&topSkills, &topLocations, &educationCounts); err != nil {
			return nil, commonerrors.NewQueryExecutionFailedError("scan segment profile", err)
		}
		if err := unmarshalProfile(&p, topSkills, topLocations, educationCounts); err != nil {
			return nil, commonerrors.NewQueryExecutionFailedError("decode segment profile", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("load segment profiles", err)
	}
	return profiles, nil
}

func unmarshalProfile(p *models.SegmentProfile, topSkills, topLocations, educationCounts []byte) error {
	if len(topSkills) > 0 {
		if err := json.Unmarshal(topSkills, &p.TopSkills); err != nil {
			return fmt.Errorf("top_skills: %w", err)
		}
	}
	if len(topLocations) > 0 {
		if err := json.Unmarshal(topLocations, &p.TopLocations); err != nil {
			return fmt.Errorf("top_locations: %w", err)
		}
	}
	if len(educationCounts) > 0 {
		if err := json.Unmarshal(educationCounts, &p.EducationCounts); err != nil {
			return fmt.Errorf("education_counts: %w", err)
		}
	}
	return nil
}
