// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"nexus-talent/internal/bootstrap"
	"nexus-talent/internal/common/camunda"
	"nexus-talent/internal/common/config"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/common/observability"
	analyzeskillgaps "nexus-talent/internal/workers/career/analyze-skill-gaps"
	buildlearningpath "nexus-talent/internal/workers/career/build-learning-path"
	parseresume "nexus-talent/internal/workers/career/parse-resume"
	scoreats "nexus-talent/internal/workers/career/score-ats"
	sourcejobs "nexus-talent/internal/workers/career/source-jobs"
	"nexus-talent/pkg/registry"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	zapLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	log.Info("Starting worker manager...", map[string]interface{}{"version": cfg.App.Version})

	if !cfg.Camunda.Enabled {
		zapLog.Fatal("camunda is disabled; set camunda.enabled to run workers")
	}

	ctx := context.Background()

	obs, err := observability.New(cfg.Observability.ServiceName + "-workers")
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	shutdownTracer, err := observability.InitTracer(cfg.Observability.ServiceName+"-workers", cfg.Observability.JaegerEndpoint)
	if err != nil {
		zapLog.Fatal("tracer init failed", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = bootstrap.RetryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(camunda.NewClientConfig(cfg.Camunda), log)
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	log.Info("Zeebe client connected successfully", map[string]interface{}{"broker": cfg.Camunda.BrokerAddress})

	if cfg.Camunda.ProcessFile != "" {
		if _, err := zeebe.DeployProcess(ctx, cfg.Camunda.ProcessFile); err != nil {
			log.Error("process deployment failed", map[string]interface{}{
				"file":  cfg.Camunda.ProcessFile,
				"error": err.Error(),
			})
		}
	}

	// --- Infrastructure ---
	infra, err := bootstrap.Connect(ctx, cfg, obs, log)
	if err != nil {
		zapLog.Fatal("infrastructure init failed", zap.Error(err))
	}
	defer infra.Close()

	agents := bootstrap.NewAgents(cfg, infra, log)

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		log.Warn("activity registry unavailable, input validation disabled", map[string]interface{}{
			"path":  cfg.Registry.Path,
			"error": err.Error(),
		})
	} else if err := reg.Validate(); err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}

	// --- Workers ---
	handlers := []struct {
		taskType string
		handler  camunda.JobHandler
	}{
		{parseresume.TaskType, agents.Parse},
		{sourcejobs.TaskType, agents.Source},
		{scoreats.TaskType, agents.Score},
		{analyzeskillgaps.TaskType, agents.Gap},
		{buildlearningpath.TaskType, agents.Path},
	}

	var workers []*camunda.Worker
	for _, h := range handlers {
		wcfg := config.GetWorkerConfig(cfg, h.taskType)
		if !wcfg.Enabled {
			log.Info("worker disabled", map[string]interface{}{"taskType": h.taskType})
			continue
		}
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), h.taskType, wcfg, withRegistry(reg, h.taskType, h.handler, log), log))
	}
	log.Info("Career workers registered", map[string]interface{}{"count": len(workers)})

	// --- Health & Metrics Server ---
	checks := map[string]pinger{"zeebe": zeebe, "redis": infra.Redis}
	if infra.Postgres != nil {
		checks["postgres"] = infra.Postgres
	}
	srv := &http.Server{
		Addr:              cfg.Server.WorkerAddr(),
		Handler:           probeMux(checks),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutdown signal received, stopping workers...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping Health/Metrics server", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Worker manager stopped gracefully", nil)
}

// withRegistry validates job variables against the activity's input schema
// when the task type is registered.
func withRegistry(reg *registry.ActivityRegistry, taskType string, handler camunda.JobHandler, log logger.Logger) camunda.JobHandler {
	if reg == nil {
		return handler
	}
	activity, ok := reg.FindByTaskType(taskType)
	if !ok {
		log.Warn("task type missing from activity registry", map[string]interface{}{"taskType": taskType})
		return handler
	}
	schema, err := activity.InputValidator()
	if err != nil {
		log.Warn("activity input schema rejected", map[string]interface{}{
			"taskType": taskType,
			"error":    err.Error(),
		})
		return handler
	}
	return camunda.WithInputValidation(handler, schema, log.WithFields(map[string]interface{}{"taskType": taskType}))
}

func probeMux(checks map[string]pinger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status, code := "ready", http.StatusOK
		results := make(map[string]string, len(checks))
		for name, c := range checks {
			if err := c.Ping(ctx); err != nil {
				results[name] = err.Error()
				status, code = "not_ready", http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		writeJSON(w, code, map[string]interface{}{
			"status": status,
			"checks": results,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
