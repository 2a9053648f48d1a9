// internal/workers/campaign/recommend-campaign/config.go
package recommendcampaign

import (
	"time"

	"talentads-workers/internal/common/config"
)

type Config struct {
	Platforms         []string
	MinSimilarJobs    int
	HistoryWindowDays int
	MinDailyBudget    map[string]int64
	CacheTTL          time.Duration
	Timeout           time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	rec := cfg.Recommender
	timeout := 30 * time.Second
	if wc, ok := cfg.Workers[TaskType]; ok && wc.Timeout > 0 {
		timeout = time.Duration(wc.Timeout) * time.Millisecond
	}
	return &Config{
		Platforms:         rec.Platforms,
		MinSimilarJobs:    rec.MinSimilarJobs,
		HistoryWindowDays: rec.HistoryWindowDays,
		MinDailyBudget:    rec.MinDailyBudget,
		CacheTTL:          time.Duration(rec.CacheTTL) * time.Millisecond,
		Timeout:           timeout,
	}
}
