// internal/api/router.go
package api

import (
	"context"
	"net/http"
	"time"

	"listing-photos/internal/common/logger"
	"listing-photos/internal/models"
	parseupload "listing-photos/internal/workers/photo/parse-upload"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PhotoProcessor runs the pipeline for one upload.
type PhotoProcessor interface {
	Process(ctx context.Context, req *parseupload.Request, entrypoint string) (*models.OutputRecord, error)
}

// ReadinessCheck reports whether optional dependencies answer. Nil means always ready.
type ReadinessCheck func(ctx context.Context) error

type RouterConfig struct {
	ServiceName    string
	RequestTimeout time.Duration
	// MaxBodyBytes bounds the raw request body; zero means unbounded.
	MaxBodyBytes int64
}

// NewRouter builds the HTTP surface of the photo service.
func NewRouter(cfg RouterConfig, processor PhotoProcessor, ready ReadinessCheck, log logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(recoverer(log))
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": cfg.ServiceName,
		})
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				log.Warn("readiness check failed", map[string]interface{}{"error": err.Error()})
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "not_ready",
					"error":  err.Error(),
				})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	r.Handle("/metrics", promhttp.Handler())

	photos := NewPhotoHandler(processor, cfg.MaxBodyBytes, log)
	r.Post("/photos", photos.Upload)

	return r
}

// requestLogger logs one line per request through the service logger.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.Info("http request", map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"requestId":  chimiddleware.GetReqID(r.Context()),
				"durationMs": time.Since(start).Milliseconds(),
			})
		})
	}
}
