package middleware

import (
	"log/slog"
	"net/http"

	"golang.org/x/sync/semaphore"
)

const limitBusyBody = `{"error":"service busy, try again later","match":false,"confidence":0,"distance":1}`

// Limit bounds the number of requests handled at once. Waiting requests give
// up when their context ends and get 503.
func Limit(n int) func(http.Handler) http.Handler {
	if n <= 0 {
		n = 1
	}
	sem := semaphore.NewWeighted(int64(n))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sem.Acquire(r.Context(), 1); err != nil {
				slog.WarnContext(r.Context(), "request abandoned while waiting for a worker", "path", r.URL.Path, "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(limitBusyBody + "\n"))
				return
			}
			defer sem.Release(1)

			next.ServeHTTP(w, r)
		})
	}
}

// MaxBody caps the request body size. Decoding past the limit fails with *http.MaxBytesError.
func MaxBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
