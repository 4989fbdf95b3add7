package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/kozaktomas/face-recognition/internal/constants"
	"github.com/kozaktomas/face-recognition/internal/extractor"
)

// readyTimeout bounds a single readiness probe of the extractor.
const readyTimeout = 5 * time.Second

// HealthCheck handles the liveness endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": constants.ServiceName,
	})
}

// ReadyCheck returns a readiness handler that probes the extractor backend.
func ReadyCheck(detector extractor.Detector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := extractor.Ping(ctx, detector); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "fail",
				"error":  err.Error(),
			})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"extractor": detector.Name(),
		})
	}
}
