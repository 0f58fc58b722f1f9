package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers the routes and the middleware stack.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(h.recoverMiddleware)
	r.Use(h.loggingMiddleware)
	r.Use(h.metrics.Instrument)

	r.Get("/health", h.health)
	r.Get("/readyz", h.readyz)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/refresh", h.refresh)

		r.With(h.authMiddleware).Post("/logout", h.logout)
	})

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.createAccount)
		r.Get("/health", h.health)
		r.Get("/exists/{email}", h.exists)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware)
			r.Get("/", h.listAccounts)
			r.Get("/active", h.listActive)
			r.Get("/verified", h.listVerified)
			r.Get("/search", h.search)
			r.Get("/loyalty-tier/{tier}", h.listByTier)
			r.Get("/email/{email}", h.getAccountByEmail)
			r.Get("/{id}", h.getAccount)
			r.Put("/{id}", h.updateProfile)
			r.Post("/{id}/loyalty-points", h.addLoyaltyPoints)
			r.Post("/{id}/verify-email", h.verifyEmail)
			r.Post("/{id}/deactivate", h.deactivate)
		})
	})

	return r
}
