// internal/workers/career/source-jobs/config.go
package sourcejobs

import (
	"time"

	"nexus-talent/internal/common/config"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	IndexLimit    int
	MinIndexHits  int
}

func LoadConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		IndexLimit:    5,
		MinIndexHits:  3,
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
