package auth

import (
	"net/http"

	"github.com/SnapQuest/SQ-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	fetcher := SessionInfo{}

	r := chi.NewRouter()
	r.Post("/login", LoginHandler)
	r.Post("/logout", LogoutHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(fetcher))
		r.Get("/me", MeHandler)
	})

	return r
}
