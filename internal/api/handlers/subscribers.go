package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hoanghai1803/newsdraft/internal/email"
	"github.com/hoanghai1803/newsdraft/internal/storage"
)

// ListSubscribers handles GET /api/subscribers.
func ListSubscribers(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subs, err := store.ListSubscribers(r.Context())
		if err != nil {
			slog.Error("failed to list subscribers", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list subscribers")
			return
		}

		writeJSON(w, http.StatusOK, subs)
	}
}

// AddSubscriber handles POST /api/subscribers with body {"email", "name"}.
func AddSubscriber(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		addr := strings.TrimSpace(body.Email)
		if !email.ValidateAddress(addr) {
			writeError(w, http.StatusBadRequest, "Invalid email address")
			return
		}

		sub, err := store.AddSubscriber(r.Context(), addr, strings.TrimSpace(body.Name))
		if err != nil {
			if errors.Is(err, storage.ErrConflict) {
				writeError(w, http.StatusConflict, "Subscriber already exists")
				return
			}
			slog.Error("failed to add subscriber", "email", addr, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to add subscriber")
			return
		}

		writeJSON(w, http.StatusCreated, sub)
	}
}

// ToggleSubscriber handles PUT /api/subscribers/{id} with body
// {"is_active": bool}.
func ToggleSubscriber(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		var body struct {
			IsActive *bool `json:"is_active"`
		}
		if err := decodeBody(r, &body); err != nil || body.IsActive == nil {
			writeError(w, http.StatusBadRequest, "is_active is required")
			return
		}

		if err := store.SetSubscriberActive(r.Context(), id, *body.IsActive); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Subscriber not found")
				return
			}
			slog.Error("failed to update subscriber", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to update subscriber")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

// DeleteSubscriber handles DELETE /api/subscribers/{id}.
func DeleteSubscriber(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := store.DeleteSubscriber(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Subscriber not found")
				return
			}
			slog.Error("failed to delete subscriber", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to delete subscriber")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
