// cmd/career-web/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"nexus-talent/internal/client"
	"nexus-talent/internal/common/config"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/web"
)

// career-web serves the Analyze page on its own and forwards each run to
// career-api.
func main() {
	zapLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	api := client.New(cfg.Web.APIBaseURL, config.GetDuration(cfg.Web.Timeout))
	page := web.NewPage(api, log)

	mux := http.NewServeMux()
	mux.Handle("/analyze", page)
	mux.Handle("GET /{$}", http.RedirectHandler("/analyze", http.StatusFound))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Web.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Analyze page listening", map[string]interface{}{
			"addr": srv.Addr,
			"api":  cfg.Web.APIBaseURL,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping HTTP server", map[string]interface{}{"error": err.Error()})
	}
}
