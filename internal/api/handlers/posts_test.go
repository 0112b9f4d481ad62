package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hoanghai1803/newsdraft/internal/crawl"
	"github.com/hoanghai1803/newsdraft/internal/models"
)

func TestListPosts(t *testing.T) {
	store := newTestStore(t)
	posts := []models.RawPost{
		{SourceName: "etnews", URL: "https://etnews.com/1", Title: "5G 요금제 개편"},
		{SourceName: "etnews", URL: "https://etnews.com/2", Title: "알뜰폰 점유율"},
		{SourceName: "zdnet", URL: "https://zdnet.co.kr/1", Title: "위성통신"},
	}
	if _, err := store.SaveRawPosts(t.Context(), posts); err != nil {
		t.Fatalf("SaveRawPosts() error: %v", err)
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"all", "", 3},
		{"by source", "?source=etnews", 2},
		{"limited", "?limit=1", 1},
		{"unknown source", "?source=nobody", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/posts"+tt.query, nil)
			w := httptest.NewRecorder()

			ListPosts(store).ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
			}
			var got []models.RawPost
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d posts, want %d", len(got), tt.want)
			}
		})
	}
}

func TestListPosts_BadLimit(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/posts?limit=abc", nil)
	w := httptest.NewRecorder()

	ListPosts(newTestStore(t)).ServeHTTP(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
}

type keyList []crawl.Key

func (k keyList) Keys() []crawl.Key { return k }

func TestListSources(t *testing.T) {
	keys := keyList{
		crawl.SourceKey("etnews"),
		{Group: "news", Source: "etnews", Target: "mobile"},
	}
	r := httptest.NewRequest(http.MethodGet, "/api/sources", nil)
	w := httptest.NewRecorder()

	ListSources(keys).ServeHTTP(w, r)

	var got []sourceEntry
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d sources, want 2", len(got))
	}
	if got[0].Name != "etnews" {
		t.Errorf("got[0].Name = %q, want %q", got[0].Name, "etnews")
	}
	if got[1].Name != "news:etnews:mobile" || got[1].Target != "mobile" {
		t.Errorf("got[1] = %+v, want news:etnews:mobile", got[1])
	}
}
