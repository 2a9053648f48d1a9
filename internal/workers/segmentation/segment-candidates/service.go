// internal/workers/segmentation/segment-candidates/service.go
package segmentcandidates

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	commonerrors "talentads-workers/internal/common/errors"
	"talentads-workers/internal/models"
	"talentads-workers/internal/segmentation/summary"
)

const loadCandidatesQuery = `
	SELECT id, years_experience, education_level, primary_skill,
	       skills, location, desired_salary
	FROM candidates
	ORDER BY id`

func (h *Handler) loadCandidates(ctx context.Context) ([]models.Candidate, error) {
	rows, err := h.db.QueryContext(ctx, loadCandidatesQuery)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, commonerrors.NewQueryTimeoutError("load candidates")
		}
		return nil, commonerrors.NewQueryExecutionFailedError("load candidates", err)
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		var (
			c          models.Candidate
			experience sql.NullFloat64
			education  sql.NullString
			primary    sql.NullString
			location   sql.NullString
			salary     sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &experience, &education, &primary,
			pq.Array(&c.Skills), &location, &salary); err != nil {
			return nil, commonerrors.NewQueryExecutionFailedError("scan candidate", err)
		}
		if experience.Valid {
			v := experience.Float64
			c.YearsExperience = &v
		}
		c.EducationLevel = education.String
		c.PrimarySkill = primary.String
		c.Location = location.String
		if salary.Valid {
			v := salary.Int64
			c.DesiredSalary = &v
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("load candidates", err)
	}
	return candidates, nil
}

// commitRun persists the run, the new segment set, and every candidate
// assignment in one transaction. Either the whole new segmentation becomes
// visible or none of it does.
func (h *Handler) commitRun(ctx context.Context, run *models.SegmentationRun, profiles []models.SegmentProfile, candidates []models.Candidate, assignments []int) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return commonerrors.NewCommitFailedError(run.ID, err)
	}
	defer tx.Rollback()

	finished := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO segmentation_runs
			(id, strategy, k, eps, min_points, status, segment_count,
			 candidates_processed, candidates_unsegmented, requested_by,
			 started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		run.ID, run.Strategy, run.K, run.Eps, run.MinPoints, run.Status,
		run.SegmentCount, run.CandidatesProcessed, run.CandidatesNoise,
		run.RequestedBy, run.StartedAt, finished)
	if err != nil {
		return commonerrors.NewCommitFailedError(run.ID, err)
	}

	// previous segments are superseded, not kept
	if _, err := tx.ExecContext(ctx, `DELETE FROM segments`); err != nil {
		return commonerrors.NewCommitFailedError(run.ID, err)
	}

	// cluster label -> persisted segment id
	segmentIDs := make(map[int64]int64, len(profiles))
	for _, profile := range profiles {
		topSkills, _ := json.Marshal(profile.TopSkills)
		topLocations, _ := json.Marshal(profile.TopLocations)
		educationCounts, _ := json.Marshal(profile.EducationCounts)

		var segmentID int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO segments
				(run_id, name, is_name_manual, is_active, candidate_count,
				 avg_experience, top_skills, top_locations, education_counts, created_at)
			VALUES ($1, $2, false, false, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			run.ID, summary.AutoName(&profile), profile.CandidateCount,
			profile.AvgExperience, topSkills, topLocations, educationCounts,
			finished).Scan(&segmentID)
		if err != nil {
			return commonerrors.NewCommitFailedError(run.ID, err)
		}
		segmentIDs[profile.SegmentID] = segmentID
	}

	for i := range candidates {
		label := assignments[i]
		if label < 0 {
			_, err = tx.ExecContext(ctx, `
				UPDATE candidates
				SET segment_id = NULL, segment_updated_at = $1
				WHERE id = $2`, finished, candidates[i].ID)
		} else {
			_, err = tx.ExecContext(ctx, `
				UPDATE candidates
				SET segment_id = $1, segment_updated_at = $2
				WHERE id = $3`, segmentIDs[int64(label)], finished, candidates[i].ID)
		}
		if err != nil {
			return commonerrors.NewCommitFailedError(run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return commonerrors.NewCommitFailedError(run.ID, err)
	}
	return nil
}

