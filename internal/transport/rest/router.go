package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/mailroom-io/mailroom/internal/auth"
	"github.com/mailroom-io/mailroom/internal/email"
	"github.com/mailroom-io/mailroom/internal/identity"
	"github.com/mailroom-io/mailroom/internal/template"
	"github.com/mailroom-io/mailroom/internal/transport/middleware"
	"github.com/mailroom-io/mailroom/internal/transport/swagger"
	"github.com/mailroom-io/mailroom/internal/user"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, identityHandler *identity.Handler, templateHandler *template.Handler, emailHandler *email.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	rbac := auth.NewRBACAuthorization(logger)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		if authHandler != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				// Current user
				if userHandler != nil {
					pr.Get("/users/me", userHandler.GetCurrentUser)
				}

				// Sending and history
				if emailHandler != nil {
					pr.Route("/emails", func(er chi.Router) {
						er.Post("/send", emailHandler.SendEmail) // POST /emails/send
						er.Get("/logs", emailHandler.GetHistory) // GET /emails/logs
					})
				}

				// Identities: listing is for every signed-in user (the compose
				// form needs it); mutation is admin only.
				if identityHandler != nil {
					pr.Route("/identities", func(ir chi.Router) {
						ir.Get("/", identityHandler.ListIdentities)

						ir.Group(func(ar chi.Router) {
							ar.Use(rbac.RequireAdmin())
							ar.Post("/", identityHandler.CreateIdentity)
							ar.Patch("/{id}/toggle", identityHandler.ToggleIdentity)
							ar.Delete("/{id}", identityHandler.DeleteIdentity)
						})
					})
				}

				// Templates are readable by everyone, writable by admins
				if templateHandler != nil {
					pr.Route("/templates", func(tr chi.Router) {
						tr.Get("/", templateHandler.ListTemplates)
						tr.Get("/{id}", templateHandler.GetTemplate)

						tr.Group(func(ar chi.Router) {
							ar.Use(rbac.RequireAdmin())
							ar.Post("/", templateHandler.CreateTemplate)
							ar.Put("/{id}", templateHandler.UpdateTemplate)
							ar.Delete("/{id}", templateHandler.DeleteTemplate)
						})
					})
				}

				// User administration
				if userHandler != nil {
					pr.Group(func(ar chi.Router) {
						ar.Use(rbac.RequireAdmin())
						ar.Get("/users", userHandler.ListUsers)
						ar.Post("/users/invite", userHandler.InviteUser)
						ar.Patch("/users/{id}/role", userHandler.UpdateRole)
						ar.Get("/users/{id}/permissions", userHandler.ListGrants)
						ar.Post("/users/{id}/permissions", userHandler.TogglePermission)
					})
				}
			})
		}
	})
}
