package recommend

import (
	"math"
	"strings"

	"talentads-workers/internal/models"
)

// fallback when a platform has no configured minimum, minor units
const defaultMinViableDaily = 500

// expensive ad markets get a cost multiplier on the viable minimum
var locationCostIndex = map[string]float64{
	"san francisco": 1.30,
	"new york":      1.25,
	"seattle":       1.20,
	"london":        1.20,
	"zurich":        1.30,
	"munich":        1.15,
	"singapore":     1.20,
	"sydney":        1.15,
}

// budgetBand derives a daily budget range for the chosen platform from
// its minimum viable spend, role competitiveness (salary band), and
// location cost. When matched history exists, the recommended point is
// anchored on the observed cost per click.
func (e *Engine) budgetBand(job models.JobOpening, platform string, matched []models.CampaignWithInsights) models.BudgetBand {
	minViable := e.cfg.MinDailyBudget[platform]
	if minViable <= 0 {
		minViable = defaultMinViableDaily
	}

	mult := competitivenessMultiplier(job.SalaryMidpoint()) * locationMultiplier(job.Location)

	dailyMin := int64(math.Round(float64(minViable) * mult))
	dailyMax := dailyMin * 4

	recommended := dailyMin + (dailyMax-dailyMin)/3
	if cpc := observedCPC(platform, matched); cpc > 0 {
		// aim for roughly 30 clicks a day at the observed cost
		recommended = clampInt64(int64(math.Round(cpc*30)), dailyMin, dailyMax)
	}

	return models.BudgetBand{
		DailyMin:         dailyMin,
		DailyRecommended: recommended,
		DailyMax:         dailyMax,
	}
}

// competitivenessMultiplier scales with the salary midpoint: senior,
// high-paying roles cost more to advertise. Unknown bands stay at 1.
func competitivenessMultiplier(salaryMid int64) float64 {
	if salaryMid <= 0 {
		return 1.0
	}
	return 1.0 + math.Min(1.0, float64(salaryMid)/20_000_000)
}

func locationMultiplier(location string) float64 {
	l := strings.ToLower(location)
	for market, mult := range locationCostIndex {
		if strings.Contains(l, market) {
			return mult
		}
	}
	return 1.0
}

func observedCPC(platform string, matched []models.CampaignWithInsights) float64 {
	var spend, clicks int64
	for _, h := range matched {
		if h.Campaign.Platform != platform {
			continue
		}
		_, c, s, _ := h.Totals()
		spend += s
		clicks += c
	}
	if clicks == 0 {
		return 0
	}
	return float64(spend) / float64(clicks)
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
