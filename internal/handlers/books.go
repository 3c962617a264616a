package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lehigh-university-libraries/readstats/internal/library"
	"github.com/lehigh-university-libraries/readstats/internal/views"
)

// HandleBooks serves the library view.
// Query params: q, filter (all|reading|finished|highlighted),
// sort (title|percent|highlights|total_read_time|last_open_ts), dir (asc|desc).
func (h *Handler) HandleBooks(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshotOrError(w)
	if !ok {
		return
	}

	q := r.URL.Query()
	opts := h.options()
	opts.Books = library.Options{
		Query:   q.Get("q"),
		Filter:  library.Filter(q.Get("filter")),
		SortKey: library.SortKey(q.Get("sort")),
		SortDir: library.SortDir(q.Get("dir")),
	}

	h.writeJSON(w, views.Books(snap, opts))
}

// HandleBook serves the detail page of one book.
func (h *Handler) HandleBook(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshotOrError(w)
	if !ok {
		return
	}

	ref := chi.URLParam(r, "ref")
	detail, found := views.Book(snap, h.options(), ref)
	if !found {
		h.writeError(w, "Book not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, detail)
}
