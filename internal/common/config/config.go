// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Segmentation SegmentationConfig      `mapstructure:"segmentation"`
	Recommender  RecommenderConfig       `mapstructure:"recommender"`
	Advisor      AdvisorConfig           `mapstructure:"advisor"`
	Registry     RegistryConfig          `mapstructure:"registry"`
	Logging      LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Domain Configuration Sections ---

// SegmentationConfig holds tunables for the segment-candidates worker and
// the clustering engine.
type SegmentationConfig struct {
	DefaultStrategy string  `mapstructure:"default_strategy"`
	MinCandidates   int     `mapstructure:"min_candidates"`
	MaxIterations   int     `mapstructure:"max_iterations"`
	Seed            int64   `mapstructure:"seed"`
	DefaultEps      float64 `mapstructure:"default_eps"`
	DefaultMinPts   int     `mapstructure:"default_min_points"`
	TopSkills       int     `mapstructure:"top_skills"`          // top-K skills/locations per profile
	OneHotMax       int     `mapstructure:"one_hot_max"`         // one-hot cap for primary_skill
	LockTTL         int     `mapstructure:"lock_ttl"`            // milliseconds
	LockKey         string  `mapstructure:"lock_key"`
}

// RecommenderConfig holds tunables for the recommend-campaign worker.
type RecommenderConfig struct {
	Platforms         []string         `mapstructure:"platforms"`
	MinSimilarJobs    int              `mapstructure:"min_similar_jobs"`
	HistoryWindowDays int              `mapstructure:"history_window_days"`
	MinDailyBudget    map[string]int64 `mapstructure:"min_daily_budget"` // minor units per platform
	CacheTTL          int              `mapstructure:"cache_ttl"`        // milliseconds
}

// AdvisorConfig holds tunables for the campaign-optimizations worker.
type AdvisorConfig struct {
	InsightWindowDays int                `mapstructure:"insight_window_days"`
	MinInsightDays    int                `mapstructure:"min_insight_days"`
	CTRFloors         map[string]float64 `mapstructure:"ctr_floors"` // per platform
	ConversionFloor   float64            `mapstructure:"conversion_floor"`
}

// RegistryConfig points at the activity registry JSON.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
