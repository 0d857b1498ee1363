// internal/router/router.go
//
// Root HTTP handler.
//
// Middleware order (outermost first)
// ----------------------------------
//
//  1. ForceHTTPS          – only when http.force_https is set
//  2. RequestID, RealIP   – chi; RealIP must run before Enrich reads the IP
//  3. Recoverer           – last-resort 500 for handlers without their own
//  4. Security            – headers on every response, HSTS with force_https
//  5. Enrich              – *requestinfo.RequestInfo on the context
//  6. Instrument          – latency histogram by route pattern
//
// Routes
// ------
//
//	GET /healthz   liveness probe, plain “ok”
//	GET /metrics   Prometheus exposition
//	…              every registered component
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/milli/internal/component"
	"github.com/yanizio/milli/internal/config"
	"github.com/yanizio/milli/internal/logger"
	"github.com/yanizio/milli/internal/metrics"
	"github.com/yanizio/milli/internal/middleware"
	"github.com/yanizio/milli/internal/requestinfo"
)

// New builds the root handler and mounts every registered component.
func New(cfg *config.Config, log *zap.SugaredLogger) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security(cfg.HTTP.ForceHTTPS))
	r.Use(withLogger(log))
	r.Use(requestinfo.Enrich)
	r.Use(metrics.Instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	if err := component.Mount(r, component.Deps{Config: cfg, Log: log}); err != nil {
		return nil, err
	}

	var h http.Handler = r
	if cfg.HTTP.ForceHTTPS {
		h = middleware.ForceHTTPS(h)
	}
	return h, nil
}

// withLogger puts log on every request context so handlers and form
// actions can reach it through logger.FromContext.
func withLogger(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), log)))
		})
	}
}
