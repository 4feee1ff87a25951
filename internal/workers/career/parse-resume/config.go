// internal/workers/career/parse-resume/config.go
package parseresume

import (
	"time"

	"nexus-talent/internal/common/config"
)

type Config struct {
	Enabled        bool
	MaxJobsActive  int
	Timeout        time.Duration
	MaxUploadMB    int
	MaxResumeChars int
}

func LoadConfig() *Config {
	return &Config{
		Enabled:        true,
		MaxJobsActive:  5,
		Timeout:        60 * time.Second,
		MaxUploadMB:    5,
		MaxResumeChars: 50000,
	}
}

// NewConfig reads the worker entry and security limits from the app config.
func NewConfig(app *config.Config) *Config {
	cfg := LoadConfig()
	wc := config.GetWorkerConfig(app, TaskType)
	cfg.Enabled = wc.Enabled
	cfg.MaxJobsActive = wc.MaxJobsActive
	cfg.Timeout = config.GetDuration(wc.Timeout)
	if app.Security.MaxUploadMB > 0 {
		cfg.MaxUploadMB = app.Security.MaxUploadMB
	}
	if app.Security.MaxResumeChars > 0 {
		cfg.MaxResumeChars = app.Security.MaxResumeChars
	}
	return cfg
}
