package handler

import (
	"context"
	"encoding/json"
	"net/http"
)

// Pinger reports whether the database is reachable.
type Pinger func(ctx context.Context) error

// HealthHandler returns a health check endpoint.
func HealthHandler(ping Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
		})
	}
}
