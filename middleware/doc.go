// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions for the
operations listener.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs one "request completed" record per request with method, path,
remote, status and duration_ms.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusServiceUnavailable, "message")

Error responses use ErrorBody:

	{"error": "Service Unavailable", "message": "message"}
*/
package middleware
