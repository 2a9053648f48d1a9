// internal/models/recommendation.go
package models

// Recommendation is the transient result of the platform/budget recommender.
// It is never persisted; the host pre-fills campaign creation from it.
type Recommendation struct {
	BestPlatform      string               `json:"bestPlatform"`
	ConfidenceScore   int                  `json:"confidenceScore"` // 0-100
	PlatformRanking   []PlatformScore      `json:"platformRanking"`
	Budget            BudgetBand           `json:"recommendedBudget"`
	Config            CampaignConfig       `json:"recommendedConfig"`
	Targeting         TargetingSuggestions `json:"targetingSuggestions"`
	BasedOnHistorical bool                 `json:"basedOnHistorical"`
	SimilarJobCount   int                  `json:"similarJobCount"`
}

type PlatformScore struct {
	Platform         string  `json:"platform"`
	Confidence       int     `json:"confidence"`
	CTR              float64 `json:"ctr"`
	ConversionRate   float64 `json:"conversionRate"`
	CampaignCount    int     `json:"campaignCount"`
	ExploratoryScore float64 `json:"exploratoryScore"`
}

// BudgetBand is a daily budget range in minor currency units.
type BudgetBand struct {
	DailyMin         int64 `json:"dailyMin"`
	DailyRecommended int64 `json:"dailyRecommended"`
	DailyMax         int64 `json:"dailyMax"`
}

// CampaignConfig holds platform-appropriate campaign defaults. Segment ids
// and daily budget are deliberately not part of this struct; they are
// reported through Targeting and Budget instead.
type CampaignConfig struct {
	BidStrategy      string            `json:"bidStrategy"`
	Objective        string            `json:"objective"`
	AdFormat         string            `json:"adFormat,omitempty"`
	OptimizationGoal string            `json:"optimizationGoal,omitempty"`
	Extra            map[string]string `json:"extra,omitempty"`
}

// TargetingSuggestions are derived from the job and matching segment
// profiles. Empty fields are omitted from the wire form.
type TargetingSuggestions struct {
	Skills     []string `json:"skills,omitempty"`
	Locations  []string `json:"locations,omitempty"`
	Seniority  string   `json:"seniority,omitempty"`
	SegmentIDs []int64  `json:"segmentIds,omitempty"`
}

// OptimizationSuggestion is one advisor finding for a live campaign.
type OptimizationSuggestion struct {
	Type           string `json:"type"` // targeting | budget | creative
	Recommendation string `json:"recommendation"`
	Impact         string `json:"impact"` // low | medium | high
}

// Suggestion types and impact levels.
const (
	SuggestionTargeting = "targeting"
	SuggestionBudget    = "budget"
	SuggestionCreative  = "creative"

	ImpactLow    = "low"
	ImpactMedium = "medium"
	ImpactHigh   = "high"
)
