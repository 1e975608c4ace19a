// cmd/photo-api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"listing-photos/internal/api"
	"listing-photos/internal/app"
	"listing-photos/internal/common/config"
	"listing-photos/internal/common/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	ctx := context.Background()
	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("pipeline wiring failed", zap.Error(err))
	}
	defer a.Close()

	requestTimeout := config.GetDuration(cfg.Server.RequestTimeout)
	router := api.NewRouter(api.RouterConfig{
		ServiceName:    cfg.App.Name,
		RequestTimeout: requestTimeout,
		// base64 bodies are about a third larger than the image they carry
		MaxBodyBytes: cfg.Server.MaxUploadBytes * 2,
	}, a.Handler, a.Ready, log)

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
	}

	go func() {
		zapLog.Info("photo api listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	zapLog.Info("photo api stopped")
}
