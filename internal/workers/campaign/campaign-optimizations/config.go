// internal/workers/campaign/campaign-optimizations/config.go
package campaignoptimizations

import (
	"time"

	"talentads-workers/internal/common/config"
)

type Config struct {
	InsightWindowDays int
	MinInsightDays    int
	CTRFloors         map[string]float64
	ConversionFloor   float64
	Timeout           time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	adv := cfg.Advisor
	timeout := 30 * time.Second
	if wc, ok := cfg.Workers[TaskType]; ok && wc.Timeout > 0 {
		timeout = time.Duration(wc.Timeout) * time.Millisecond
	}
	return &Config{
		InsightWindowDays: adv.InsightWindowDays,
		MinInsightDays:    adv.MinInsightDays,
		CTRFloors:         adv.CTRFloors,
		ConversionFloor:   adv.ConversionFloor,
		Timeout:           timeout,
	}
}
