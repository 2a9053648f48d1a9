// internal/workers/segmentation/segment-candidates/config.go
package segmentcandidates

import (
	"time"

	"talentads-workers/internal/common/config"
)

type Config struct {
	DefaultStrategy string
	MinCandidates   int
	MaxIterations   int
	Seed            int64
	DefaultEps      float64
	DefaultMinPts   int
	TopSkills       int
	OneHotMax       int
	LockKey         string
	LockTTL         time.Duration
	Timeout         time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	seg := cfg.Segmentation
	timeout := 120 * time.Second
	if wc, ok := cfg.Workers[TaskType]; ok && wc.Timeout > 0 {
		timeout = time.Duration(wc.Timeout) * time.Millisecond
	}
	return &Config{
		DefaultStrategy: seg.DefaultStrategy,
		MinCandidates:   seg.MinCandidates,
		MaxIterations:   seg.MaxIterations,
		Seed:            seg.Seed,
		DefaultEps:      seg.DefaultEps,
		DefaultMinPts:   seg.DefaultMinPts,
		TopSkills:       seg.TopSkills,
		OneHotMax:       seg.OneHotMax,
		LockKey:         seg.LockKey,
		LockTTL:         time.Duration(seg.LockTTL) * time.Millisecond,
		Timeout:         timeout,
	}
}
