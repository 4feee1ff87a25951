// internal/workers/career/analyze-skill-gaps/config.go
package analyzeskillgaps

import (
	"time"

	"nexus-talent/internal/common/config"
)

type Config struct {
	Enabled               bool
	MaxJobsActive         int
	Timeout               time.Duration
	PerfectMatchThreshold int
	PromptChars           int
}

func LoadConfig() *Config {
	return &Config{
		Enabled:               true,
		MaxJobsActive:         5,
		Timeout:               60 * time.Second,
		PerfectMatchThreshold: 90,
		PromptChars:           3000,
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
