// internal/workers/segmentation/refresh-segment-profiles/service.go
package refreshsegmentprofiles

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"

	commonerrors "talentads-workers/internal/common/errors"
	"talentads-workers/internal/models"
	"talentads-workers/internal/segmentation/summary"
)

type segmentRow struct {
	ID           int64
	Name         string
	IsNameManual bool
}

func (h *Handler) loadSegments(ctx context.Context) ([]segmentRow, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, name, is_name_manual
		FROM segments
		ORDER BY id`)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("load segments", err)
	}
	defer rows.Close()

	var segments []segmentRow
	for rows.Next() {
		var s segmentRow
		if err := rows.Scan(&s.ID, &s.Name, &s.IsNameManual); err != nil {
			return nil, commonerrors.NewQueryExecutionFailedError("scan segment", err)
		}
		segments = append(segments, s)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("load segments", err)
	}
	return segments, nil
}

// loadAssignments reads all candidates and maps their stored segment id
// back onto the position of that segment in the segments slice, the label
// space Summarize works in. Unassigned candidates get -1.
func (h *Handler) loadAssignments(ctx context.Context, segments []segmentRow) ([]models.Candidate, []int, int, error) {
	labelOf := make(map[int64]int, len(segments))
	for i, s := range segments {
		labelOf[s.ID] = i
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, years_experience, education_level, primary_skill,
		       skills, location, desired_salary, segment_id
		FROM candidates
		ORDER BY id`)
	if err != nil {
		return nil, nil, 0, commonerrors.NewQueryExecutionFailedError("load candidates", err)
	}
	defer rows.Close()

	var (
		candidates  []models.Candidate
		assignments []int
		assigned    int
	)
	for rows.Next() {
		var (
			c          models.Candidate
			experience sql.NullFloat64
			education  sql.NullString
			primary    sql.NullString
			location   sql.NullString
			salary     sql.NullInt64
			segmentID  sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &experience, &education, &primary,
			pq.Array(&c.Skills), &location, &salary, &segmentID); err != nil {
			return nil, nil, 0, commonerrors.NewQueryExecutionFailedError("scan candidate", err)
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

		label := -1
		if segmentID.Valid {
			if l, ok := labelOf[segmentID.Int64]; ok {
				label = l
				assigned++
			}
		}
		candidates = append(candidates, c)
		assignments = append(assignments, label)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, 0, commonerrors.NewQueryExecutionFailedError("load candidates", err)
	}
	return candidates, assignments, assigned, nil
}

// loadActiveSegmentIDs collects the segments any active campaign targets.
func (h *Handler) loadActiveSegmentIDs(ctx context.Context) (map[int64]bool, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT DISTINCT unnest(target_segments)
		FROM campaigns
		WHERE status = $1`, models.CampaignStatusActive)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("load active segments", err)
	}
	defer rows.Close()

	active := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, commonerrors.NewQueryExecutionFailedError("scan active segment", err)
		}
		active[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError("load active segments", err)
	}
	return active, nil
}

// storeProfiles writes refreshed stats per segment in one transaction.
// Manual names are preserved; auto-names are regenerated so they keep
// tracking the segment's current make-up.
func (h *Handler) storeProfiles(ctx context.Context, segments []segmentRow, profiles []models.SegmentProfile, activeIDs map[int64]bool) error {
	profileOf := make(map[int64]*models.SegmentProfile, len(profiles))
	for i := range profiles {
		profileOf[profiles[i].SegmentID] = &profiles[i]
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return commonerrors.NewQueryExecutionFailedError("begin refresh", err)
	}
	defer tx.Rollback()

	for label, segment := range segments {
		profile := profileOf[int64(label)]
		if profile == nil {
			// segment lost all members since the last run
			profile = &models.SegmentProfile{
				TopSkills:       []models.ValueCount{},
				TopLocations:    []models.ValueCount{},
				EducationCounts: map[string]int{},
			}
		}

		topSkills, _ := json.Marshal(profile.TopSkills)
		topLocations, _ := json.Marshal(profile.TopLocations)
		educationCounts, _ := json.Marshal(profile.EducationCounts)

		name := segment.Name
		if !segment.IsNameManual {
			name = summary.AutoName(profile)
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE segments
			SET name = $1, is_active = $2, candidate_count = $3,
			    avg_experience = $4, top_skills = $5, top_locations = $6,
			    education_counts = $7
			WHERE id = $8`,
			name, activeIDs[segment.ID], profile.CandidateCount,
			profile.AvgExperience, topSkills, topLocations, educationCounts,
			segment.ID)
		if err != nil {
			return commonerrors.NewQueryExecutionFailedError("update segment", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return commonerrors.NewQueryExecutionFailedError("commit refresh", err)
	}
	return nil
}
