// cmd/career-api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"nexus-talent/internal/api"
	"nexus-talent/internal/bootstrap"
	"nexus-talent/internal/common/camunda"
	"nexus-talent/internal/common/config"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/common/observability"
	"nexus-talent/internal/orchestration"
	"nexus-talent/internal/web"
)

func main() {
	zapLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	log.Info("Starting career API...", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx := context.Background()

	obs, err := observability.New(cfg.Observability.ServiceName)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	shutdownTracer, err := observability.InitTracer(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
	if err != nil {
		zapLog.Fatal("tracer init failed", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	infra, err := bootstrap.Connect(ctx, cfg, obs, log)
	if err != nil {
		zapLog.Fatal("infrastructure init failed", zap.Error(err))
	}
	defer infra.Close()

	agents := bootstrap.NewAgents(cfg, infra, log)
	engine := orchestration.NewEngine(orchestration.DefaultConfig(), agents.Nodes(), infra.SideEffects(), obs, log)

	deps := api.Dependencies{
		Analyzer: engine,
		Ready:    map[string]api.Pinger{"redis": infra.Redis},
		Web:      web.NewPage(engine, log),
	}
	if infra.Store != nil {
		deps.History = infra.Store
		deps.Ready["postgres"] = infra.Postgres
	}

	if cfg.Camunda.Enabled {
		zeebe, err := camunda.NewClient(camunda.NewClientConfig(cfg.Camunda), log)
		if err != nil {
			log.Error("workflow endpoint disabled", map[string]interface{}{"error": err.Error()})
		} else {
			defer zeebe.Close()
			deps.Workflow = zeebe
			deps.Ready["zeebe"] = zeebe
		}
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewServer(api.NewConfig(cfg), deps, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout:      config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutdown signal received, draining requests...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping HTTP server", map[string]interface{}{"error": err.Error()})
	}
	log.Info("Career API stopped gracefully", nil)
}
