package advisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentads-workers/internal/models"
)

func testAdvisor() *Advisor {
	return New(Config{
		CTRFloors: map[string]float64{
			models.PlatformMeta:     0.009,
			models.PlatformGoogle:   0.020,
			models.PlatformLinkedIn: 0.004,
			models.PlatformIndeed:   0.010,
		},
		ConversionFloor: 0.01,
		MinInsightDays:  3,
	})
}

func metaCampaign(dailyBudget int64) models.Campaign {
	return models.Campaign{
		ID:          "camp-1",
		JobID:       "job-1",
		Platform:    models.PlatformMeta,
		Status:      models.CampaignStatusActive,
		DailyBudget: dailyBudget,
		StartedAt:   time.Now().Add(-7 * 24 * time.Hour),
	}
}

// flatDays builds n identical daily insight buckets.
func flatDays(n int, impressions, clicks, spend, conversions int64) []models.Insight {
	insights := make([]models.Insight, n)
	for i := range insights {
		insights[i] = models.Insight{
			CampaignID:  "camp-1",
			Date:        time.Now().AddDate(0, 0, -n+i),
			Impressions: impressions,
			Clicks:      clicks,
			Spend:       spend,
			Conversions: conversions,
		}
	}
	return insights
}

func TestEvaluate_TooFewDaysReturnsEmpty(t *testing.T) {
	suggestions := testAdvisor().Evaluate(metaCampaign(2000), flatDays(2, 10000, 10, 2000, 0))
	assert.Empty(t, suggestions)
	assert.NotNil(t, suggestions)
}

func TestEvaluate_HealthyCampaignHasNoSuggestions(t *testing.T) {
	// ctr 1.5%, spend on pace, conversions 2% of clicks
	suggestions := testAdvisor().Evaluate(metaCampaign(2000), flatDays(7, 10000, 150, 2000, 3))
	assert.Empty(t, suggestions)
}

func TestEvaluate_LowCTRFlagsTargeting(t *testing.T) {
	// ctr 0.4%, below the 0.9% meta floor
	suggestions := testAdvisor().Evaluate(metaCampaign(2000), flatDays(7, 10000, 40, 2000, 2))

	require.NotEmpty(t, suggestions)
	assert.Equal(t, models.SuggestionTargeting, suggestions[0].Type)
	assert.Equal(t, models.ImpactHigh, suggestions[0].Impact)
	assert.Contains(t, suggestions[0].Recommendation, "segments")
}

func TestEvaluate_UnderspendFlagsBudget(t *testing.T) {
	// spending 25% of the booked budget, ctr healthy
	suggestions := testAdvisor().Evaluate(metaCampaign(4000), flatDays(7, 10000, 150, 1000, 3))

	require.Len(t, suggestions, 1)
	assert.Equal(t, models.SuggestionBudget, suggestions[0].Type)
	assert.Equal(t, models.ImpactMedium, suggestions[0].Impact)
}

func TestEvaluate_OverspendFlagsBudget(t *testing.T) {
	suggestions := testAdvisor().Evaluate(metaCampaign(1000), flatDays(7, 10000, 150, 2000, 3))

	require.Len(t, suggestions, 1)
	assert.Equal(t, models.SuggestionBudget, suggestions[0].Type)
	assert.Contains(t, suggestions[0].Recommendation, "pacing")
}

func TestEvaluate_GoodClicksBadConversionsFlagsCreative(t *testing.T) {
	// ctr 1.5% with zero conversions across 1050 clicks
	suggestions := testAdvisor().Evaluate(metaCampaign(2000), flatDays(7, 10000, 150, 2000, 0))

	require.Len(t, suggestions, 1)
	assert.Equal(t, models.SuggestionCreative, suggestions[0].Type)
	assert.Equal(t, models.ImpactMedium, suggestions[0].Impact)
}

func TestEvaluate_ConversionRuleNeedsClickVolume(t *testing.T) {
	// same shape but only 21 clicks total: too little signal for the rule
	suggestions := testAdvisor().Evaluate(metaCampaign(50), flatDays(7, 300, 3, 50, 0))
	assert.Empty(t, suggestions)
}

func TestEvaluate_TrailingCTRDropFlagsFatigue(t *testing.T) {
	insights := flatDays(4, 10000, 200, 2000, 4)
	insights = append(insights, flatDays(3, 10000, 30, 2000, 1)...)

	suggestions := testAdvisor().Evaluate(metaCampaign(2000), insights)

	require.NotEmpty(t, suggestions)
	last := suggestions[len(suggestions)-1]
	assert.Equal(t, models.SuggestionCreative, last.Type)
	assert.Equal(t, models.ImpactLow, last.Impact)
	assert.Contains(t, last.Recommendation, "fatigued")
}

func TestEvaluate_SortsHighImpactFirst(t *testing.T) {
	// low ctr AND underspend: targeting (high) must precede budget (medium)
	suggestions := testAdvisor().Evaluate(metaCampaign(8000), flatDays(7, 10000, 40, 2000, 0))

	require.GreaterOrEqual(t, len(suggestions), 2)
	assert.Equal(t, models.ImpactHigh, suggestions[0].Impact)
	for i := 1; i < len(suggestions); i++ {
		assert.LessOrEqual(t,
			impactRank(suggestions[i-1].Impact),
			impactRank(suggestions[i].Impact))
	}
}

func TestEvaluate_UnknownPlatformUsesDefaultFloor(t *testing.T) {
	campaign := metaCampaign(2000)
	campaign.Platform = "tiktok"

	// ctr 0.8% < default 1% floor
	suggestions := testAdvisor().Evaluate(campaign, flatDays(7, 10000, 80, 2000, 2))
	require.NotEmpty(t, suggestions)
	assert.Equal(t, models.SuggestionTargeting, suggestions[0].Type)
}
