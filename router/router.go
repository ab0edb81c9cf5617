// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/quickly-grade/middleware"
)

const pingTimeout = 2 * time.Second

// Pinger reports whether the database is reachable. *store.Store implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(db Pinger, reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", middleware.WithLogging(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			slog.Warn("health check failed", "error", err)
			middleware.ErrorResponse(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}))

	// Prometheus scrape endpoint
	metrics := promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	mux.HandleFunc("GET /metrics", middleware.WithLogging(metrics.ServeHTTP))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("quickly-grade ops"))
	})

	return mux
}
