// internal/workers/segmentation/refresh-segment-profiles/config.go
package refreshsegmentprofiles

import (
	"time"

	"talentads-workers/internal/common/config"
)

type Config struct {
	TopSkills int
	Timeout   time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	timeout := 60 * time.Second
	if wc, ok := cfg.Workers[TaskType]; ok && wc.Timeout > 0 {
		timeout = time.Duration(wc.Timeout) * time.Millisecond
	}
	return &Config{
		TopSkills: cfg.Segmentation.TopSkills,
		Timeout:   timeout,
	}
}
