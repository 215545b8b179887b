package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/accounts-api/internal/api"
	apiMiddleware "github.com/phrazzld/accounts-api/internal/api/middleware"
	"github.com/phrazzld/accounts-api/internal/service"
	"github.com/phrazzld/accounts-api/internal/service/auth"
)

// AdminRole is the role claim required for the user administration routes.
const AdminRole = "ADMIN"

// newRouter creates the application router with all routes and middleware.
func newRouter(users service.UserService, verifier auth.TokenVerifier, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(logger))

	userHandler := api.NewUserHandler(users, logger)
	profileHandler := api.NewProfileHandler(users, logger)
	authHandler := api.NewAuthHandler(users, logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(verifier)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/forgot-password", authHandler.ForgotPassword)

		// Admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(apiMiddleware.RequireRole(AdminRole))

			r.Get("/admin/users", userHandler.ListUsers)
			r.Post("/admin/users", userHandler.CreateUser)
			r.Get("/admin/users/email/{email}", userHandler.GetUserByEmail)
			r.Get("/admin/users/{id}", userHandler.GetUser)
			r.Put("/admin/users/{id}", userHandler.UpdateUser)
			r.Delete("/admin/users/{id}", userHandler.DeleteUser)
		})

		// Self-service endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/users/me", profileHandler.GetMyProfile)
			r.Put("/users/me", profileHandler.UpdateMyProfile)
			r.Put("/users/password", profileHandler.ChangePassword)
			r.Put("/users/email", profileHandler.ChangeEmail)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
