// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes of the operations listener.

There is no election API here. The listener only exposes liveness and
metrics for whoever runs the process.

# Route Registration

	reg := prometheus.NewRegistry()
	mux := router.NewRouter(st, reg)

# Endpoints

	GET /health  - Pings the database, 200 {"status":"ok"} or 503
	GET /metrics - Prometheus exposition of reg
	GET /        - Banner

/health and /metrics are wrapped with middleware.WithLogging.
*/
package router
