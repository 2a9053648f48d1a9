// Package summary derives human-readable segment profiles from raw
// cluster assignments. Summarize is a pure function of its inputs, so
// recomputing a profile over unchanged data yields identical results.
package summary

import (
	"fmt"
	"math"
	"sort"

	"talentads-workers/internal/models"
)

// Summarize aggregates candidates per cluster label. Noise points
// (label < 0) are excluded from every profile. The returned profiles use
// the cluster label as SegmentID and are ordered by label ascending;
// callers persisting segments remap the ids afterwards.
func Summarize(candidates []models.Candidate, assignments []int, topK int) ([]models.SegmentProfile, error) {
	if len(candidates) != len(assignments) {
		return nil, fmt.Errorf("assignment count %d does not match candidate count %d", len(assignments), len(candidates))
	}
	if topK <= 0 {
		topK = 5
	}

	groups := make(map[int][]*models.Candidate)
	for i := range candidates {
		label := assignments[i]
		if label < 0 {
			continue
		}
		groups[label] = append(groups[label], &candidates[i])
	}

	labels := make([]int, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	profiles := make([]models.SegmentProfile, 0, len(labels))
	for _, label := range labels {
		profiles = append(profiles, profileGroup(int64(label), groups[label], topK))
	}
	return profiles, nil
}

func profileGroup(id int64, members []*models.Candidate, topK int) models.SegmentProfile {
	profile := models.SegmentProfile{
		SegmentID:       id,
		CandidateCount:  len(members),
		EducationCounts: make(map[string]int),
	}
	if len(members) == 0 {
		return profile
	}

	expSum, expN := 0.0, 0
	skillCounts := make(map[string]int)
	locationCounts := make(map[string]int)

	for _, c := range members {
		if c.YearsExperience != nil {
			expSum += *c.YearsExperience
			expN++
		}
		for _, s := range c.Skills {
			skillCounts[s]++
		}
		if c.Location != "" {
			locationCounts[c.Location]++
		}
		level := c.EducationLevel
		if level == "" {
			level = models.EducationNone
		}
		profile.EducationCounts[level]++
	}

	if expN > 0 {
		profile.AvgExperience = round2(expSum / float64(expN))
	}
	profile.TopSkills = topValues(skillCounts, topK)
	profile.TopLocations = topValues(locationCounts, topK)
	return profile
}

// topValues ranks by count descending with alphabetical tie-break, so
// repeated runs over the same data produce the same ordering.
func topValues(counts map[string]int, k int) []models.ValueCount {
	values := make([]models.ValueCount, 0, len(counts))
	for v, n := range counts {
		values = append(values, models.ValueCount{Value: v, Count: n})
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Count != values[j].Count {
			return values[i].Count > values[j].Count
		}
		return values[i].Value < values[j].Value
	})
	if len(values) > k {
		values = values[:k]
	}
	return values
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AutoName derives a readable segment name from a profile's strongest
// signals, e.g. "go / berlin (42)". Manually named segments keep their
// name; this is only for machine-generated ones.
func AutoName(profile *models.SegmentProfile) string {
	skill, location := "", ""
	if len(profile.TopSkills) > 0 {
		skill = profile.TopSkills[0].Value
	}
	if len(profile.TopLocations) > 0 {
		location = profile.TopLocations[0].Value
	}
	switch {
	case skill != "" && location != "":
		return fmt.Sprintf("%s / %s (%d)", skill, location, profile.CandidateCount)
	case skill != "":
		return fmt.Sprintf("%s (%d)", skill, profile.CandidateCount)
	case location != "":
		return fmt.Sprintf("%s (%d)", location, profile.CandidateCount)
	default:
		return fmt.Sprintf("segment (%d)", profile.CandidateCount)
	}
}
