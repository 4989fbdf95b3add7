package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

const panicBody = `{"error":"Internal server error","match":false,"confidence":0,"distance":1}`

// Recover turns a handler panic into a 500 JSON response with safe-default
// decision fields. http.ErrAbortHandler is re-raised so the server can drop
// the connection.
func Recover() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				slog.ErrorContext(r.Context(), "handler panic",
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(panicBody + "\n"))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
