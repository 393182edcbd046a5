package web

import (
	"github.com/facegate/facegate/internal/web/handlers"
	"github.com/facegate/facegate/internal/web/middleware"
	"github.com/go-chi/chi/v5"
)

func (s *Server) setupRoutes() {
	facesHandler := handlers.NewFacesHandler(s.catalog)
	usersHandler := handlers.NewUsersHandler(s.catalog)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// All other routes require the shared secret
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireSecret(s.config.Auth.Secret))

		r.Post("/register", facesHandler.Register)
		r.Post("/verify", facesHandler.Verify)
		r.Get("/list-users", usersHandler.List)
		r.Delete("/delete-user/{userID}", usersHandler.Delete)
	})
}
