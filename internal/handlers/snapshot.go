package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type snapshotInfo struct {
	ID          string    `json:"id"`
	LoadedAt    time.Time `json:"loaded_at"`
	Books       int       `json:"books"`
	Annotations int       `json:"annotations"`
	Sessions    int       `json:"sessions"`
	History     []string  `json:"history"`
}

// HandleSnapshotInfo describes the snapshot currently served.
func (h *Handler) HandleSnapshotInfo(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.store.Get()
	if !ok {
		h.writeError(w, "No snapshot loaded", http.StatusServiceUnavailable)
		return
	}

	h.writeJSON(w, snapshotInfo{
		ID:          entry.ID,
		LoadedAt:    entry.LoadedAt,
		Books:       len(entry.Snapshot.Books),
		Annotations: len(entry.Snapshot.Annotations),
		Sessions:    len(entry.Snapshot.Sessions),
		History:     h.store.History(),
	})
}

// HandleReload replaces the served snapshot. A failed reload keeps the
// previous one.
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if h.reload == nil {
		h.writeError(w, "Reload not configured", http.StatusNotImplemented)
		return
	}

	entry, err := h.reload(r.Context())
	if err != nil {
		h.writeError(w, fmt.Sprintf("Failed to reload snapshot: %v", err), http.StatusBadGateway)
		return
	}
	if entry.LoadedAt.IsZero() {
		entry.LoadedAt = h.now()
	}
	h.store.Set(entry)
	slog.Info("Reloaded snapshot", "id", entry.ID, "books", len(entry.Snapshot.Books))

	h.HandleSnapshotInfo(w, r)
}
