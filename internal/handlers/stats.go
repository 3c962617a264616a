package handlers

import (
	"net/http"

	"github.com/spf13/cast"

	"github.com/lehigh-university-libraries/readstats/internal/analytics"
	"github.com/lehigh-university-libraries/readstats/internal/views"
)

// HandleStats serves the statistics of one trend window.
// Query params: days (30|90|180|365), precedence (longest|freshest).
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshotOrError(w)
	if !ok {
		return
	}

	q := r.URL.Query()
	opts := h.options()
	if days := q.Get("days"); days != "" {
		opts.TrendDays = cast.ToInt(days)
	}
	if p := q.Get("precedence"); p != "" {
		opts.TrendPrecedence = analytics.ParsePrecedence(p)
	}

	h.writeJSON(w, views.Stats(snap, opts))
}

// HandleCalendar serves one month of the reading calendar.
// Query params: month (YYYY-MM), date (YYYY-MM-DD).
func (h *Handler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshotOrError(w)
	if !ok {
		return
	}

	q := r.URL.Query()
	cal, valid := views.Calendar(snap, h.options(), q.Get("month"), q.Get("date"))
	if !valid {
		h.writeError(w, "Invalid month, expected YYYY-MM", http.StatusBadRequest)
		return
	}

	h.writeJSON(w, cal)
}
