package recommend

import (
	"sort"
	"strings"

	"talentads-workers/internal/models"
)

const (
	maxTargetingSkills    = 10
	maxTargetingLocations = 4
	maxTargetingSegments  = 3
)

// platformDefaults returns sensible campaign settings per platform. Daily
// budget and segment ids are reported elsewhere in the recommendation.
func platformDefaults(platform string) models.CampaignConfig {
	switch platform {
	case models.PlatformMeta:
		return models.CampaignConfig{
			BidStrategy:      "lowest_cost",
			Objective:        "conversions",
			AdFormat:         "single_image",
			OptimizationGoal: "offsite_conversions",
		}
	case models.PlatformGoogle:
		return models.CampaignConfig{
			BidStrategy:      "maximize_clicks",
			Objective:        "website_traffic",
			AdFormat:         "responsive_search",
			OptimizationGoal: "clicks",
		}
	case models.PlatformLinkedIn:
		return models.CampaignConfig{
			BidStrategy:      "max_delivery",
			Objective:        "website_visits",
			AdFormat:         "sponsored_content",
			OptimizationGoal: "landing_page_clicks",
		}
	case models.PlatformIndeed:
		return models.CampaignConfig{
			BidStrategy:      "cpc",
			Objective:        "applies",
			AdFormat:         "sponsored_job",
			OptimizationGoal: "applies",
		}
	default:
		return models.CampaignConfig{
			BidStrategy: "auto",
			Objective:   "website_traffic",
		}
	}
}

// buildTargeting derives audience hints from the job plus the segment
// profiles whose skill mix overlaps the job's requirements.
func buildTargeting(job models.JobOpening, profiles []models.SegmentProfile) models.TargetingSuggestions {
	t := models.TargetingSuggestions{
		Seniority: seniorityOf(job.Title),
	}

	if len(job.RequiredSkills) > 0 {
		skills := append([]string(nil), job.RequiredSkills...)
		if len(skills) > maxTargetingSkills {
			skills = skills[:maxTargetingSkills]
		}
		t.Skills = skills
	}

	type match struct {
		id      int64
		overlap int
		profile *models.SegmentProfile
	}
	matches := make([]match, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		if n := skillOverlap(job.RequiredSkills, p.TopSkills); n > 0 {
			matches = append(matches, match{id: p.SegmentID, overlap: n, profile: p})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].overlap != matches[j].overlap {
			return matches[i].overlap > matches[j].overlap
		}
		return matches[i].id < matches[j].id
	})
	if len(matches) > maxTargetingSegments {
		matches = matches[:maxTargetingSegments]
	}

	locations := make([]string, 0, maxTargetingLocations)
	seen := make(map[string]bool)
	addLocation := func(loc string) {
		key := strings.ToLower(strings.TrimSpace(loc))
		if key == "" || seen[key] || len(locations) >= maxTargetingLocations {
			return
		}
		seen[key] = true
		locations = append(locations, loc)
	}
	addLocation(job.Location)

	for _, m := range matches {
		t.SegmentIDs = append(t.SegmentIDs, m.id)
		for _, vc := range m.profile.TopLocations {
			addLocation(vc.Value)
		}
	}
	t.Locations = locations
	return t
}

func seniorityOf(title string) string {
	switch {
	case isSenior(title):
		return "senior"
	case isEntryLevel(title):
		return "entry"
	case title == "":
		return ""
	default:
		return "mid"
	}
}

func skillOverlap(jobSkills []string, topSkills []models.ValueCount) int {
	set := make(map[string]bool, len(jobSkills))
	for _, s := range jobSkills {
		set[strings.ToLower(s)] = true
	}
	n := 0
	for _, vc := range topSkills {
		if set[strings.ToLower(vc.Value)] {
			n++
		}
	}
	return n
}
