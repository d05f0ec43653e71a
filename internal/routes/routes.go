package routes

import (
	"net/http"

	"github.com/AnshRaj112/travel-journal-backend/internal/handlers"
	"github.com/go-chi/chi/v5"
)

// Handlers bundles everything SetupRoutes mounts.
type Handlers struct {
	Entries *handlers.EntryHandler
	Uploads *handlers.UploadHandler
	Pages   *handlers.PageHandler
	Health  http.HandlerFunc
	// APIMiddleware wraps /api only (rate limiting); pages and /health stay unlimited.
	APIMiddleware []func(http.Handler) http.Handler
}

func SetupRoutes(r chi.Router, h Handlers) {
	// Health check (no rate limit)
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(h.APIMiddleware...)

		// Journal entry routes
		r.Get("/entries", h.Entries.ListEntries)
		r.Post("/entries", h.Entries.CreateEntry)
		r.Get("/entries/{id:[0-9]+}", h.Entries.GetEntry)
		r.Put("/entries/{id:[0-9]+}", h.Entries.UpdateEntry)
		r.Delete("/entries/{id:[0-9]+}", h.Entries.DeleteEntry)

		// Photo upload routes
		r.Post("/uploads", h.Uploads.UploadPhoto)
	})

	// Pages
	r.Get("/", h.Pages.Page("index.html"))
	r.Get("/journals", h.Pages.Page("journals.html"))
	r.Get("/editor", h.Pages.Page("editor.html"))
	r.Get("/favicon.ico", h.Pages.Favicon)
	r.Handle("/static/*", h.Pages.Static())
}
