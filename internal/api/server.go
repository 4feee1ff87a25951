// Package api exposes the career graph over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nexus-talent/internal/common/config"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/models"
	"nexus-talent/internal/orchestration"
)

// Analyzer runs one career analysis.
type Analyzer interface {
	Run(ctx context.Context, req orchestration.Request) (*orchestration.State, error)
}

// HistoryStore reads stored analyses. A nil store answers 503.
type HistoryStore interface {
	Get(ctx context.Context, id string) (*models.CareerAnalysisResponse, error)
	ListRecent(ctx context.Context, limit int) ([]models.AnalysisSummary, error)
}

// Workflow starts the career process on the workflow engine.
type Workflow interface {
	StartProcess(ctx context.Context, processID string, variables interface{}) (int64, error)
}

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	MaxUploadMB  int
	CORSOrigins  []string
	ReadyTimeout time.Duration
	ProcessID    string
}

func DefaultConfig() *Config {
	return &Config{
		MaxUploadMB:  5,
		CORSOrigins:  []string{"*"},
		ReadyTimeout: 2 * time.Second,
		ProcessID:    "career-analysis",
	}
}

// NewConfig reads the HTTP settings from the application config.
func NewConfig(app *config.Config) *Config {
	cfg := DefaultConfig()
	if app == nil {
		return cfg
	}
	if app.Security.MaxUploadMB > 0 {
		cfg.MaxUploadMB = app.Security.MaxUploadMB
	}
	if len(app.Server.CORSOrigins) > 0 {
		cfg.CORSOrigins = app.Server.CORSOrigins
	}
	if app.Camunda.ProcessID != "" {
		cfg.ProcessID = app.Camunda.ProcessID
	}
	return cfg
}

type Dependencies struct {
	Analyzer Analyzer
	History  HistoryStore
	// Workflow is nil unless camunda is enabled.
	Workflow Workflow
	// Ready maps a component name to its health check.
	Ready map[string]Pinger
	// Web serves GET and POST /analyze when set.
	Web http.Handler
}

type Server struct {
	config *Config
	deps   Dependencies
	logger logger.Logger
}

func NewServer(config *Config, deps Dependencies, log logger.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	return &Server{
		config: config,
		deps:   deps,
		logger: log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/career/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /v1/career/analyze/upload", s.handleUpload)
	mux.HandleFunc("POST /v1/career/analyze/workflow", s.handleStartWorkflow)
	mux.HandleFunc("GET /v1/career/analyses/{id}", s.handleGetAnalysis)
	mux.HandleFunc("GET /v1/career/analyses", s.handleListAnalyses)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	if s.deps.Web != nil {
		mux.Handle("/analyze", s.deps.Web)
	}

	var h http.Handler = mux
	h = s.metricsMiddleware(h)
	h = s.corsMiddleware(h)
	h = s.accessLogMiddleware(h)
	h = s.recoveryMiddleware(h)
	h = requestIDMiddleware(h)
	return h
}
