package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/hoanghai1803/newsdraft/internal/models"
)

func TestAddSubscriber(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"email": "kim@example.com", "name": "김철수"}`, http.StatusCreated},
		{"duplicate", `{"email": "KIM@example.com"}`, http.StatusConflict},
		{"invalid address", `{"email": "not-an-address"}`, http.StatusBadRequest},
		{"missing email", `{}`, http.StatusBadRequest},
		{"malformed", `{"email":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/subscribers", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			AddSubscriber(store).ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	r := httptest.NewRequest(http.MethodGet, "/api/subscribers", nil)
	w := httptest.NewRecorder()
	ListSubscribers(store).ServeHTTP(w, r)

	var subs []models.Subscriber
	if err := json.NewDecoder(w.Body).Decode(&subs); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(subs) != 1 || subs[0].Email != "kim@example.com" {
		t.Errorf("subscribers = %+v, want only kim@example.com", subs)
	}
}

func TestToggleAndDeleteSubscriber(t *testing.T) {
	store := newTestStore(t)
	sub, err := store.AddSubscriber(t.Context(), "a@example.com", "")
	if err != nil {
		t.Fatalf("AddSubscriber() error: %v", err)
	}
	id := strconv.FormatInt(sub.ID, 10)

	t.Run("deactivate", func(t *testing.T) {
		r := withURLParam(httptest.NewRequest(http.MethodPut, "/api/subscribers/"+id, bytes.NewBufferString(`{"is_active": false}`)), "id", id)
		w := httptest.NewRecorder()

		ToggleSubscriber(store).ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
		}
		recipients, err := store.ActiveRecipients(t.Context())
		if err != nil {
			t.Fatalf("ActiveRecipients() error: %v", err)
		}
		if len(recipients) != 0 {
			t.Errorf("active recipients = %v, want none", recipients)
		}
	})

	t.Run("missing is_active", func(t *testing.T) {
		r := withURLParam(httptest.NewRequest(http.MethodPut, "/api/subscribers/"+id, bytes.NewBufferString(`{}`)), "id", id)
		w := httptest.NewRecorder()

		ToggleSubscriber(store).ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Errorf("got status %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("toggle unknown", func(t *testing.T) {
		r := withURLParam(httptest.NewRequest(http.MethodPut, "/api/subscribers/999", bytes.NewBufferString(`{"is_active": true}`)), "id", "999")
		w := httptest.NewRecorder()

		ToggleSubscriber(store).ServeHTTP(w, r)

		if w.Code != http.StatusNotFound {
			t.Errorf("got status %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("delete", func(t *testing.T) {
		r := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/subscribers/"+id, nil), "id", id)
		w := httptest.NewRecorder()

		DeleteSubscriber(store).ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
		}

		w = httptest.NewRecorder()
		DeleteSubscriber(store).ServeHTTP(w, r)
		if w.Code != http.StatusNotFound {
			t.Errorf("second delete status %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		r := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/subscribers/x", nil), "id", "x")
		w := httptest.NewRecorder()

		DeleteSubscriber(store).ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Errorf("got status %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}
