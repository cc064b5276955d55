package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// session routes
	router.Group(func(r chi.Router) {
		r.Post("/api/login", h.login)
		r.Post("/api/logout", h.logout)
		r.Get("/api/user", h.me)
	})

	// password self-service, blocked under a forced session
	router.Group(func(r chi.Router) {
		r.Post("/api/password/check", h.checkPassword)
		r.Post("/api/password", h.changePassword)
	})

	// administrative surface, reachable from the host itself only
	router.Route("/api/admin", func(r chi.Router) {
		r.Use(requireLoopback)
		r.Post("/force-login", h.forceLogin)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
