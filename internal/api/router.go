package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/memo/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.ListNotes)
		r.Post("/", h.CreateNote)
		r.Delete("/", h.DeleteAll)
		r.Get("/grouped", h.Grouped)
		r.Get("/next-id", h.NextID)
		r.Post("/import", h.Import)
		r.Post("/organize", h.Organize)
		r.Put("/status", h.MarkAll)
		r.Delete("/{id}", h.DeleteNote)
		r.Put("/{id}/status", h.MarkNote)
	})

	r.Get("/search", h.Search)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
