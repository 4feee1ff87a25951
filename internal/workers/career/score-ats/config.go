// internal/workers/career/score-ats/config.go
package scoreats

import (
	"time"

	"nexus-talent/internal/common/config"
)

type Config struct {
	Enabled            bool
	MaxJobsActive      int
	Timeout            time.Duration
	MaxScoredJobs      int
	ShortlistThreshold int
}

func LoadConfig() *Config {
	return &Config{
		Enabled:            true,
		MaxJobsActive:      5,
		Timeout:            20 * time.Second,
		MaxScoredJobs:      5,
		ShortlistThreshold: 80,
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
