package handlers

import (
	"net/http"
	"time"

	"github.com/voxlate/voxlate/internal/history"
)

type AdminHandler struct {
	store *history.Store // nil when no database is configured
}

func NewAdminHandler(store *history.Store) *AdminHandler {
	return &AdminHandler{store: store}
}

// Usage aggregates recorded pipeline runs per language pair. Optional
// ?since=RFC3339 narrows the window.
func (h *AdminHandler) Usage(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "usage store not configured"})
		return
	}

	var since *time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid since parameter"})
			return
		}
		since = &t
	}

	summaries, err := h.store.Summary(r.Context(), since)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "usage query failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"usage": summaries})
}
