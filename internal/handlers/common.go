package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/readstats/internal/storage"
	"github.com/lehigh-university-libraries/readstats/internal/views"
)

// ReloadFunc loads a fresh snapshot.
type ReloadFunc func(ctx context.Context) (storage.Entry, error)

type Handler struct {
	store    *storage.SnapshotStore
	reload   ReloadFunc
	defaults views.Options
	now      func() time.Time
}

// New creates a handler answering from store. defaults carries the
// server-wide options (covers, precedence, location through Now); Now
// itself is taken per request.
func New(store *storage.SnapshotStore, reload ReloadFunc, defaults views.Options) *Handler {
	return &Handler{
		store:    store,
		reload:   reload,
		defaults: defaults,
		now:      time.Now,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Debug(message, "status", code)
	}
	http.Error(w, message, code)
}

// Snapshot helpers
func (h *Handler) snapshotOrError(w http.ResponseWriter) (views.Snapshot, bool) {
	entry, ok := h.store.Get()
	if !ok {
		h.writeError(w, "No snapshot loaded", http.StatusServiceUnavailable)
		return views.Snapshot{}, false
	}
	return entry.Snapshot, true
}

// options returns the server defaults stamped with the current time in
// the configured location.
func (h *Handler) options() views.Options {
	opts := h.defaults
	loc := time.Local
	if !opts.Now.IsZero() {
		loc = opts.Now.Location()
	}
	opts.Now = h.now().In(loc)
	return opts
}
