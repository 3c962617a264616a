package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router wires every endpoint of the read-only API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/books", h.HandleBooks)
		r.Get("/books/{ref}", h.HandleBook)
		r.Get("/stats", h.HandleStats)
		r.Get("/calendar", h.HandleCalendar)
		r.Get("/highlights", h.HandleHighlights)
		r.Get("/highlights/export", h.HandleHighlightsExport)
		r.Get("/snapshot", h.HandleSnapshotInfo)
		r.Post("/reload", h.HandleReload)
	})

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
