// Package shield provides the HTTP middleware in front of the aodacheck API:
// security and CORS headers, request tracing, SQLite-backed rate limiting,
// a maintenance switch, body limits and HEAD handling.
//
// Usage:
//
//	r := chi.NewRouter()
//	stack, rl, mm := shield.DefaultStack(db, 50<<20)
//	rl.StartReloader(done)
//	mm.StartReloader(done)
//	for _, mw := range stack {
//	    r.Use(mw)
//	}
package shield

import (
	"database/sql"
	"encoding/json"
	"net/http"
)

type contextKey string

// LoggerKey is the context key for the per-request structured logger.
const LoggerKey contextKey = "shield_logger"

// DefaultStack returns the middleware stack for the public API, outermost
// first: Maintenance, HeadToGet, SecurityHeaders, CORS, MaxBody, TraceID,
// RateLimiter. /health bypasses maintenance and rate limiting.
func DefaultStack(db *sql.DB, maxBody int64) ([]func(http.Handler) http.Handler, *RateLimiter, *MaintenanceMode) {
	rl := NewRateLimiter(db, "/health")
	mm := NewMaintenanceMode(db, "/health")
	return []func(http.Handler) http.Handler{
		mm.Middleware,
		HeadToGet,
		SecurityHeaders(DefaultHeaders()),
		CORS,
		MaxBody(maxBody),
		TraceID,
		rl.Middleware,
	}, rl, mm
}

// writeJSON writes v with status as the JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
