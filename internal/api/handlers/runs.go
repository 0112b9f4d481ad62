package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/newsdraft/internal/storage"
)

// GetRuns handles GET /api/runs?limit=. It returns recent pipeline runs,
// newest first.
func GetRuns(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", 20)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		runs, err := store.GetRecentRuns(r.Context(), limit)
		if err != nil {
			slog.Error("failed to get runs", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get runs")
			return
		}

		writeJSON(w, http.StatusOK, runs)
	}
}

// Health handles GET /api/health.
func Health(provider, sender string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":   "ok",
			"provider": provider,
			"sender":   sender,
		})
	}
}
