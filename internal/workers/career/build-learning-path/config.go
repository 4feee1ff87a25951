// internal/workers/career/build-learning-path/config.go
package buildlearningpath

import (
	"time"

	"nexus-talent/internal/common/config"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	QuerySuffix   string
	EstimatedTime string
}

func LoadConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       45 * time.Second,
		QuerySuffix:   "masterclass full course 2026",
		EstimatedTime: "12-15 hours",
	}
}

func NewConfig(app *config.Config) *Config {
	cfg := LoadConfig()
	wc := config.GetWorkerConfig(app, TaskType)
	cfg.Enabled = wc.Enabled
	cfg.MaxJobsActive = wc.MaxJobsActive
	cfg.Timeout = config.GetDuration(wc.Timeout)
	return cfg
}
