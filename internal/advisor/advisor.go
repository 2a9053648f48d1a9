// Package advisor inspects a running campaign's insight stream and emits
// optimization suggestions. It is advisory only: nothing here mutates the
// campaign, and an empty result means no anomaly worth acting on.
package advisor

import (
	"fmt"
	"math"
	"sort"

	"talentads-workers/internal/models"
)

type Config struct {
	// CTRFloors holds the per-platform click-through floor below which
	// targeting is considered off.
	CTRFloors map[string]float64
	// ConversionFloor is the conversions/clicks rate below which creative
	// is considered weak despite healthy clicks.
	ConversionFloor float64
	// MinInsightDays gates the whole evaluation: younger campaigns are
	// too noisy to judge.
	MinInsightDays int
}

type Advisor struct {
	cfg Config
}

func New(cfg Config) *Advisor {
	if cfg.MinInsightDays <= 0 {
		cfg.MinInsightDays = 3
	}
	if cfg.ConversionFloor <= 0 {
		cfg.ConversionFloor = 0.01
	}
	return &Advisor{cfg: cfg}
}

// pacing thresholds relative to the booked daily budget
const (
	underspendRatio = 0.5
	overspendRatio  = 1.5

	// clicks needed before the conversion rule may fire
	minClicksForConversionRule = 50

	// trailing CTR below this share of the overall CTR reads as fatigue
	fatigueRatio  = 0.6
	fatigueWindow = 3
)

// Evaluate runs the rule set over the campaign. Insights are expected in
// date order, one bucket per day. The result is sorted high impact first;
// an empty slice means either no anomalies or not enough data to judge.
func (a *Advisor) Evaluate(campaign models.Campaign, insights []models.Insight) []models.OptimizationSuggestion {
	if len(insights) < a.cfg.MinInsightDays {
		return []models.OptimizationSuggestion{}
	}

	var impressions, clicks, spend, conversions int64
	for _, in := range insights {
		impressions += in.Impressions
		clicks += in.Clicks
		spend += in.Spend
		conversions += in.Conversions
	}

	suggestions := []models.OptimizationSuggestion{}

	ctr := 0.0
	if impressions > 0 {
		ctr = float64(clicks) / float64(impressions)
	}
	floor := a.ctrFloor(campaign.Platform)
	if ctr < floor {
		suggestions = append(suggestions, models.OptimizationSuggestion{
			Type: models.SuggestionTargeting,
			Recommendation: fmt.Sprintf(
				"Click-through rate %.2f%% is below the %.2f%% floor for %s; narrow the audience to better matching segments or revise targeting criteria",
				ctr*100, floor*100, campaign.Platform),
			Impact: models.ImpactHigh,
		})
	}

	if campaign.DailyBudget > 0 {
		expected := campaign.DailyBudget * int64(len(insights))
		ratio := float64(spend) / float64(expected)
		if ratio < underspendRatio {
			suggestions = append(suggestions, models.OptimizationSuggestion{
				Type: models.SuggestionBudget,
				Recommendation: fmt.Sprintf(
					"Campaign is spending %.0f%% of its booked daily budget; broaden targeting or lower bids are leaving budget on the table",
					ratio*100),
				Impact: models.ImpactMedium,
			})
		} else if ratio > overspendRatio {
			suggestions = append(suggestions, models.OptimizationSuggestion{
				Type: models.SuggestionBudget,
				Recommendation: fmt.Sprintf(
					"Spend is pacing at %.0f%% of the booked daily budget; raise the budget or tighten bids to avoid early exhaustion",
					ratio*100),
				Impact: models.ImpactMedium,
			})
		}
	}

	if ctr >= floor && clicks >= minClicksForConversionRule {
		convRate := float64(conversions) / float64(clicks)
		if convRate < a.cfg.ConversionFloor {
			suggestions = append(suggestions, models.OptimizationSuggestion{
				Type: models.SuggestionCreative,
				Recommendation: fmt.Sprintf(
					"Healthy click-through but conversion rate %.2f%% is below %.2f%%; the ad promises more than the landing page delivers, refresh creative or landing content",
					convRate*100, a.cfg.ConversionFloor*100),
				Impact: models.ImpactMedium,
			})
		}
	}

	if fatigued(insights, ctr) {
		suggestions = append(suggestions, models.OptimizationSuggestion{
			Type:           models.SuggestionCreative,
			Recommendation: "Click-through rate over the last days has dropped well below the campaign average; the audience is likely fatigued, rotate in fresh creative",
			Impact:         models.ImpactLow,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return impactRank(suggestions[i].Impact) < impactRank(suggestions[j].Impact)
	})
	return suggestions
}

func (a *Advisor) ctrFloor(platform string) float64 {
	if f, ok := a.cfg.CTRFloors[platform]; ok {
		return f
	}
	return 0.01
}

// fatigued compares the trailing window's CTR against the whole stream.
func fatigued(insights []models.Insight, overallCTR float64) bool {
	if overallCTR == 0 || len(insights) < 2*fatigueWindow {
		return false
	}
	var impressions, clicks int64
	for _, in := range insights[len(insights)-fatigueWindow:] {
		impressions += in.Impressions
		clicks += in.Clicks
	}
	if impressions == 0 {
		return false
	}
	trailing := float64(clicks) / float64(impressions)
	return trailing < fatigueRatio*overallCTR && !math.IsNaN(trailing)
}

func impactRank(impact string) int {
	switch impact {
	case models.ImpactHigh:
		return 0
	case models.ImpactMedium:
		return 1
	default:
		return 2
	}
}
