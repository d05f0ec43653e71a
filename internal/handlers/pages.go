package handlers

import (
	"io/fs"
	"net/http"
)

// PageHandler serves the three HTML pages, the favicon and static assets.
type PageHandler struct {
	templates fs.FS
	static    fs.FS
}

// NewPageHandler serves pages from templates and assets from static.
func NewPageHandler(templates, static fs.FS) *PageHandler {
	return &PageHandler{templates: templates, static: static}
}

// Page returns a handler writing the named HTML file.
func (h *PageHandler) Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := fs.ReadFile(h.templates, name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(body)
	}
}

// Favicon serves favicon.ico from the static assets, or 204 when there is none.
func (h *PageHandler) Favicon(w http.ResponseWriter, r *http.Request) {
	body, err := fs.ReadFile(h.static, "favicon.ico")
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/x-icon")
	w.Write(body)
}

// Static serves the asset tree; mount it under /static/.
func (h *PageHandler) Static() http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.FS(h.static)))
}
