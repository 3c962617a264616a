package handlers

import (
	"fmt"
	"net/http"

	"github.com/lehigh-university-libraries/readstats/internal/highlights"
	"github.com/lehigh-university-libraries/readstats/internal/views"
)

func (h *Handler) highlightOptions(r *http.Request) views.Options {
	q := r.URL.Query()
	opts := h.options()
	opts.Highlights = highlights.Options{
		Query:    q.Get("q"),
		Kind:     q.Get("kind"),
		Sort:     highlights.SortMode(q.Get("sort")),
		Location: opts.Now.Location(),
	}
	return opts
}

// HandleHighlights serves annotations grouped by book.
// Query params: q, kind (all|highlight|note), sort (recent|title|count).
func (h *Handler) HandleHighlights(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshotOrError(w)
	if !ok {
		return
	}

	h.writeJSON(w, views.Highlights(snap, h.highlightOptions(r)))
}

// HandleHighlightsExport downloads the filtered highlights.
// Query params: those of HandleHighlights plus format (markdown|json|html).
func (h *Handler) HandleHighlightsExport(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshotOrError(w)
	if !ok {
		return
	}

	opts := h.highlightOptions(r)
	result := views.Highlights(snap, opts)
	exportedAt := opts.Now

	var (
		body        []byte
		contentType string
		ext         string
		err         error
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "markdown", "md":
		body = []byte(highlights.Markdown(result.Groups, exportedAt))
		contentType, ext = "text/markdown; charset=utf-8", "md"
	case "json":
		body, err = highlights.JSON(result.Groups, exportedAt)
		contentType, ext = "application/json", "json"
	case "html":
		body, err = highlights.HTML(result.Groups, exportedAt)
		contentType, ext = "text/html; charset=utf-8", "html"
	default:
		h.writeError(w, fmt.Sprintf("Unsupported export format: %s", format), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.writeError(w, fmt.Sprintf("Failed to export highlights: %v", err), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("highlights-%s.%s", exportedAt.Format("2006-01-02"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(body)
}
