package handler

import (
	"context"
	"net/http"

	"github.com/authlens/authlens/internal/api/response"
)

// Pinger is anything that can report liveness (database, cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler returns an http.HandlerFunc for GET /api/v1/health.
// It reports degraded with a 503 when either backing service is down.
func NewHealthHandler(db, ca Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}
		degraded := false

		if err := db.Ping(r.Context()); err != nil {
			checks["database"] = "down"
			degraded = true
		}
		if err := ca.Ping(r.Context()); err != nil {
			checks["cache"] = "down"
			degraded = true
		}

		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more backing services are unavailable", checks)
			return
		}
		response.JSON(w, map[string]any{
			"status": "ok",
			"checks": checks,
		})
	}
}
