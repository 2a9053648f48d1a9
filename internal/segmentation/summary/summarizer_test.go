package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentads-workers/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func summaryCandidates() []models.Candidate {
	return []models.Candidate{
		{ID: "1", YearsExperience: floatPtr(2), EducationLevel: models.EducationBachelor, Skills: []string{"go", "sql"}, Location: "berlin"},
		{ID: "2", YearsExperience: floatPtr(4), EducationLevel: models.EducationBachelor, Skills: []string{"go", "kubernetes"}, Location: "berlin"},
		{ID: "3", YearsExperience: floatPtr(9), EducationLevel: models.EducationMaster, Skills: []string{"java", "sql"}, Location: "munich"},
		{ID: "4", YearsExperience: nil, EducationLevel: "", Skills: []string{"python"}, Location: ""},
		{ID: "5", YearsExperience: floatPtr(12), EducationLevel: models.EducationDoctorate, Skills: []string{"ml", "python"}, Location: "zurich"},
	}
}

func TestSummarize_GroupsAndStats(t *testing.T) {
	candidates := summaryCandidates()
	assignments := []int{0, 0, 1, 0, -1}

	profiles, err := Summarize(candidates, assignments, 5)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	first := profiles[0]
	assert.Equal(t, int64(0), first.SegmentID)
	assert.Equal(t, 3, first.CandidateCount)
	// mean over the two present experience values only
	assert.Equal(t, 3.0, first.AvgExperience)
	assert.Equal(t, models.ValueCount{Value: "go", Count: 2}, first.TopSkills[0])
	assert.Equal(t, []models.ValueCount{{Value: "berlin", Count: 2}}, first.TopLocations)
	assert.Equal(t, 2, first.EducationCounts[models.EducationBachelor])
	assert.Equal(t, 1, first.EducationCounts[models.EducationNone])

	second := profiles[1]
	assert.Equal(t, int64(1), second.SegmentID)
	assert.Equal(t, 1, second.CandidateCount)
	assert.Equal(t, 9.0, second.AvgExperience)
}

func TestSummarize_NoiseExcludedEverywhere(t *testing.T) {
	candidates := summaryCandidates()
	assignments := []int{0, 0, 0, 0, -1}

	profiles, err := Summarize(candidates, assignments, 5)
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	assert.Equal(t, 4, profiles[0].CandidateCount)
	for _, vc := range profiles[0].TopSkills {
		assert.NotEqual(t, "ml", vc.Value)
	}
}

func TestSummarize_TopKCapsLists(t *testing.T) {
	candidates := summaryCandidates()
	assignments := []int{0, 0, 0, 0, 0}

	profiles, err := Summarize(candidates, assignments, 2)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Len(t, profiles[0].TopSkills, 2)
}

func TestSummarize_TieBreakIsAlphabetical(t *testing.T) {
	candidates := []models.Candidate{
		{ID: "1", Skills: []string{"zig", "ada"}, EducationLevel: models.EducationBachelor},
		{ID: "2", Skills: []string{"zig", "ada"}, EducationLevel: models.EducationBachelor},
	}
	profiles, err := Summarize(candidates, []int{0, 0}, 5)
	require.NoError(t, err)
	assert.Equal(t, "ada", profiles[0].TopSkills[0].Value)
	assert.Equal(t, "zig", profiles[0].TopSkills[1].Value)
}

func TestSummarize_MismatchedLengths(t *testing.T) {
	_, err := Summarize(summaryCandidates(), []int{0, 1}, 5)
	assert.Error(t, err)
}

func TestSummarize_Idempotent(t *testing.T) {
	candidates := summaryCandidates()
	assignments := []int{0, 1, 0, 1, 0}

	first, err := Summarize(candidates, assignments, 3)
	require.NoError(t, err)
	second, err := Summarize(candidates, assignments, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSummarize_AllNoise(t *testing.T) {
	candidates := summaryCandidates()
	profiles, err := Summarize(candidates, []int{-1, -1, -1, -1, -1}, 5)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}
