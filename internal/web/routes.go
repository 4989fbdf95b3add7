package web

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kozaktomas/face-recognition/internal/web/handlers"
	"github.com/kozaktomas/face-recognition/internal/web/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() {
	facesHandler := handlers.NewFacesHandler(s.detector, s.metrics)

	// Probes and metrics bypass the worker limit
	s.router.Get("/health", handlers.HealthCheck)
	s.router.Get("/ready", handlers.ReadyCheck(s.detector))
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Group(func(r chi.Router) {
		if s.config.Server.RequestTimeout > 0 {
			r.Use(chiMiddleware.Timeout(s.config.Server.RequestTimeout))
		}
		r.Use(middleware.MaxBody(s.config.Server.MaxBodyBytes))
		r.Use(middleware.Limit(s.config.Server.MaxConcurrentRequests))

		r.Post("/register-face", facesHandler.Register)
		r.Post("/verify-face", facesHandler.Verify)
		r.Post("/compare-faces", facesHandler.Compare)
	})
}
