package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/newsdraft/internal/models"
	"github.com/hoanghai1803/newsdraft/internal/storage"
)

// DraftSender delivers a stored draft.
type DraftSender interface {
	Send(ctx context.Context, draftID string, draft models.NewsletterDraft, subject string, recipients []models.Recipient) (models.DeliveryReport, error)
}

// ListDrafts handles GET /api/drafts?limit=&offset=. Drafts are returned
// newest first.
func ListDrafts(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", 20)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		offset, err := queryInt(r, "offset", 0)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		drafts, err := store.ListDrafts(r.Context(), limit, offset)
		if err != nil {
			slog.Error("failed to list drafts", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list drafts")
			return
		}

		writeJSON(w, http.StatusOK, drafts)
	}
}

// GetDraft handles GET /api/drafts/{id}.
func GetDraft(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		draft, err := store.GetDraft(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Draft not found")
				return
			}
			slog.Error("failed to get draft", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get draft")
			return
		}

		writeJSON(w, http.StatusOK, draft)
	}
}

// SendDraft handles POST /api/drafts/{id}/send. The optional body
// {"subject", "recipients"} overrides the stored subject and the active
// subscriber list.
func SendDraft(store *storage.Store, sender DraftSender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")

		var body struct {
			Subject    string             `json:"subject"`
			Recipients []models.Recipient `json:"recipients"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		draft, err := store.GetDraft(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Draft not found")
				return
			}
			slog.Error("failed to get draft", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to get draft")
			return
		}

		report, err := sender.Send(ctx, draft.ID, draft.NewsletterDraft, body.Subject, body.Recipients)
		if err != nil {
			slog.Error("failed to send draft", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to send draft: "+err.Error())
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

// ListDeliveries handles GET /api/drafts/{id}/deliveries.
func ListDeliveries(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		deliveries, err := store.ListDeliveries(r.Context(), id)
		if err != nil {
			slog.Error("failed to list deliveries", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list deliveries")
			return
		}

		writeJSON(w, http.StatusOK, deliveries)
	}
}
