// Package recommend scores ad platforms for a job opening. When enough
// similar historical campaigns exist it ranks platforms on observed
// performance; otherwise it falls back to job-attribute heuristics with
// deliberately lower confidence.
package recommend

import (
	"math"
	"sort"
	"strings"
	"time"

	commonerrors "talentads-workers/internal/common/errors"
	"talentads-workers/internal/models"
)

// Scoring weights and bounds. Exploratory confidence tops out strictly
// below the historical floor so the two modes never overlap.
const (
	similarityThreshold = 0.35

	weightCTR        = 0.50
	weightConversion = 0.35
	weightRecency    = 0.15

	historicalConfidenceMin = 45
	historicalConfidenceMax = 95
	exploratoryConfidenceMin = 15
	exploratoryConfidenceMax = 40

	// impressions at which the sample factor reaches 0.5
	sampleHalfPoint = 5000
)

type Config struct {
	Platforms         []string
	MinSimilarJobs    int
	HistoryWindowDays int
	MinDailyBudget    map[string]int64
}

type Engine struct {
	cfg Config
	now func() time.Time
}

func NewEngine(cfg Config) *Engine {
	if cfg.MinSimilarJobs <= 0 {
		cfg.MinSimilarJobs = 3
	}
	return &Engine{cfg: cfg, now: time.Now}
}

// Recommend produces a full platform/budget/config recommendation for the
// job. History is the candidate pool of past campaigns with insights;
// profiles are the current segment profiles used for targeting hints.
func (e *Engine) Recommend(job models.JobOpening, history []models.CampaignWithInsights, profiles []models.SegmentProfile) (*models.Recommendation, error) {
	if len(e.cfg.Platforms) == 0 {
		return nil, commonerrors.NewNoPlatformAvailableError()
	}

	matched, similarJobs := e.matchHistory(job, history)
	historical := !job.IsEmpty() && similarJobs >= e.cfg.MinSimilarJobs

	var ranking []models.PlatformScore
	if historical {
		ranking = e.rankHistorical(job, matched)
	} else {
		ranking = e.rankExploratory(job)
	}

	best := ranking[0]
	rec := &models.Recommendation{
		BestPlatform:      best.Platform,
		ConfidenceScore:   best.Confidence,
		PlatformRanking:   ranking,
		Budget:            e.budgetBand(job, best.Platform, matched),
		Config:            platformDefaults(best.Platform),
		Targeting:         buildTargeting(job, profiles),
		BasedOnHistorical: historical,
		SimilarJobCount:   similarJobs,
	}

	// a job with no signal gets the floor, never an inflated default
	if job.IsEmpty() {
		rec.ConfidenceScore = exploratoryConfidenceMin
		for i := range rec.PlatformRanking {
			rec.PlatformRanking[i].Confidence = exploratoryConfidenceMin
		}
	}
	return rec, nil
}

// matchHistory filters campaigns whose job is similar enough and counts
// the distinct jobs behind them.
func (e *Engine) matchHistory(job models.JobOpening, history []models.CampaignWithInsights) ([]models.CampaignWithInsights, int) {
	if job.IsEmpty() {
		return nil, 0
	}

	matched := make([]models.CampaignWithInsights, 0, len(history))
	jobs := make(map[string]bool)
	for _, h := range history {
		if JobSimilarity(job, h.Job) >= similarityThreshold {
			matched = append(matched, h)
			jobs[h.Job.ID] = true
		}
	}
	return matched, len(jobs)
}

// JobSimilarity scores two openings in [0,1]: skill overlap dominates,
// location and salary band refine.
func JobSimilarity(a, b models.JobOpening) float64 {
	return 0.60*jaccard(a.RequiredSkills, b.RequiredSkills) +
		0.25*locationSimilarity(a.Location, b.Location) +
		0.15*salarySimilarity(a.SalaryMidpoint(), b.SalaryMidpoint())
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[strings.ToLower(s)] = true
	}
	inter := 0
	seen := make(map[string]bool, len(b))
	for _, s := range b {
		l := strings.ToLower(s)
		if seen[l] {
			continue
		}
		seen[l] = true
		if set[l] {
			inter++
		}
	}
	union := len(set) + len(seen) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func locationSimilarity(a, b string) float64 {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	switch {
	case a == "" || b == "":
		return 0
	case a == b:
		return 1
	case strings.Contains(a, b) || strings.Contains(b, a):
		return 0.7
	default:
		return 0
	}
}

func salarySimilarity(a, b int64) float64 {
	if a == 0 || b == 0 {
		return 0.5 // unknown band, neutral
	}
	hi, lo := float64(a), float64(b)
	if lo > hi {
		hi, lo = lo, hi
	}
	return lo / hi
}

// platformStats aggregates matched history per platform.
type platformStats struct {
	impressions int64
	clicks      int64
	conversions int64

	campaignCTRs  []float64
	recencyWeight float64
	campaigns     int
}

func (e *Engine) rankHistorical(job models.JobOpening, matched []models.CampaignWithInsights) []models.PlatformScore {
	stats := make(map[string]*platformStats)
	now := e.now()
	for _, h := range matched {
		ps := stats[h.Campaign.Platform]
		if ps == nil {
			ps = &platformStats{}
			stats[h.Campaign.Platform] = ps
		}
		impressions, clicks, _, conversions := h.Totals()
		ps.impressions += impressions
		ps.clicks += clicks
		ps.conversions += conversions
		ps.campaignCTRs = append(ps.campaignCTRs, h.CTR())
		ps.recencyWeight += recencyWeight(now.Sub(h.Campaign.StartedAt))
		ps.campaigns++
	}

	var maxCTR, maxConv, maxRecency float64
	scores := make(map[string]models.PlatformScore, len(e.cfg.Platforms))
	for _, platform := range e.cfg.Platforms {
		ps := stats[platform]
		if ps == nil || ps.impressions == 0 {
			continue
		}
		ctr := float64(ps.clicks) / float64(ps.impressions)
		conv := 0.0
		if ps.clicks > 0 {
			conv = float64(ps.conversions) / float64(ps.clicks)
		}
		scores[platform] = models.PlatformScore{
			Platform:       platform,
			CTR:            round4(ctr),
			ConversionRate: round4(conv),
			CampaignCount:  ps.campaigns,
		}
		maxCTR = math.Max(maxCTR, ctr)
		maxConv = math.Max(maxConv, conv)
		maxRecency = math.Max(maxRecency, ps.recencyWeight)
	}

	type ranked struct {
		score models.PlatformScore
		value float64
	}
	rankedScores := make([]ranked, 0, len(e.cfg.Platforms))
	for _, platform := range e.cfg.Platforms {
		if s, ok := scores[platform]; ok {
			ps := stats[platform]
			value := weightCTR*norm(s.CTR, maxCTR) +
				weightConversion*norm(s.ConversionRate, maxConv) +
				weightRecency*norm(ps.recencyWeight, maxRecency)
			s.Confidence = historicalConfidence(ps, value)
			rankedScores = append(rankedScores, ranked{score: s, value: value})
			continue
		}
		// no history on this platform: exploratory entry, capped confidence
		s := exploratoryScore(job, platform)
		rankedScores = append(rankedScores, ranked{score: s, value: -1 + s.ExploratoryScore})
	}

	sort.SliceStable(rankedScores, func(i, j int) bool {
		if rankedScores[i].value != rankedScores[j].value {
			return rankedScores[i].value > rankedScores[j].value
		}
		return rankedScores[i].score.Platform < rankedScores[j].score.Platform
	})

	out := make([]models.PlatformScore, len(rankedScores))
	for i, r := range rankedScores {
		out[i] = r.score
	}
	return out
}

// recencyWeight decays a campaign's vote with its age.
func recencyWeight(age time.Duration) float64 {
	days := age.Hours() / 24
	switch {
	case days <= 30:
		return 1.0
	case days <= 90:
		return 0.7
	case days <= 180:
		return 0.4
	default:
		return 0.2
	}
}

// historicalConfidence combines sample size, CTR consistency, and the
// platform's relative weighted performance, clamped to [45,95]. The
// performance term keeps a clearly stronger platform at a strictly
// higher confidence than a weaker one with the same sample.
func historicalConfidence(ps *platformStats, performance float64) int {
	sample := float64(ps.impressions) / float64(ps.impressions+sampleHalfPoint)
	consistency := 1.0
	if cv := coefficientOfVariation(ps.campaignCTRs); cv > 0 {
		consistency = 1 / (1 + cv*cv)
	}
	strength := 0.5 + 0.5*performance
	return clampInt(int(math.Round(100*sample*consistency*strength)), historicalConfidenceMin, historicalConfidenceMax)
}

func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if mean == 0 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance) / mean
}

func (e *Engine) rankExploratory(job models.JobOpening) []models.PlatformScore {
	out := make([]models.PlatformScore, 0, len(e.cfg.Platforms))
	for _, platform := range e.cfg.Platforms {
		out = append(out, exploratoryScore(job, platform))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ExploratoryScore != out[j].ExploratoryScore {
			return out[i].ExploratoryScore > out[j].ExploratoryScore
		}
		return out[i].Platform < out[j].Platform
	})
	return out
}

// exploratoryScore is the cold-start heuristic: platform affinity derived
// from seniority, specialization, and expected application volume.
func exploratoryScore(job models.JobOpening, platform string) models.PlatformScore {
	senior := isSenior(job.Title)
	entry := isEntryLevel(job.Title)
	specialized := len(job.RequiredSkills) >= 4
	highVolume := entry || len(job.RequiredSkills) == 0

	score := 0.30
	switch platform {
	case models.PlatformLinkedIn:
		if senior {
			score += 0.40
		}
		if specialized {
			score += 0.25
		}
	case models.PlatformMeta:
		if entry {
			score += 0.35
		}
		if highVolume {
			score += 0.20
		}
	case models.PlatformIndeed:
		if highVolume {
			score += 0.30
		}
		if entry {
			score += 0.15
		}
	case models.PlatformGoogle:
		if specialized {
			score += 0.25
		}
		if !entry && !senior {
			score += 0.15
		}
	}

	confidence := clampInt(int(math.Round(score*40)), exploratoryConfidenceMin, exploratoryConfidenceMax)
	return models.PlatformScore{
		Platform:         platform,
		Confidence:       confidence,
		ExploratoryScore: round4(score),
	}
}

func isSenior(title string) bool {
	return containsAny(title, "senior", "lead", "principal", "staff", "head of", "director")
}

func isEntryLevel(title string) bool {
	return containsAny(title, "junior", "intern", "entry", "trainee", "assistant", "graduate")
}

func containsAny(s string, terms ...string) bool {
	s = strings.ToLower(s)
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func norm(v, max float64) float64 {
	if max == 0 {
		return 0
	}
	return v / max
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
