package library

import (
	"net/http"

	"github.com/SnapQuest/SQ-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(fetcher middleware.IdentityFetcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(fetcher))

	r.Get("/", ListHandler)
	r.Post("/upload", UploadHandler)
	r.Delete("/{id}", DeleteHandler)

	return r
}
