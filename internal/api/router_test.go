package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hoanghai1803/newsdraft/internal/crawl"
	"github.com/hoanghai1803/newsdraft/internal/models"
	"github.com/hoanghai1803/newsdraft/internal/pipeline"
	"github.com/hoanghai1803/newsdraft/internal/storage"
)

type stubRunner struct{}

func (stubRunner) Execute(context.Context, pipeline.DraftRequest) (*pipeline.DraftResult, error) {
	return &pipeline.DraftResult{ID: "d-1"}, nil
}

func (stubRunner) Collect(context.Context, pipeline.BatchRequest) (*pipeline.BatchResult, error) {
	return &pipeline.BatchResult{Saved: 3}, nil
}

func (stubRunner) Run(context.Context, pipeline.DailyRequest) (*pipeline.DailyResult, error) {
	return &pipeline.DailyResult{DraftID: "d-2"}, nil
}

func (stubRunner) Send(context.Context, string, models.NewsletterDraft, string, []models.Recipient) (models.DeliveryReport, error) {
	return models.DeliveryReport{}, nil
}

func (stubRunner) Keys() []crawl.Key {
	return []crawl.Key{crawl.SourceKey("etnews")}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return NewRouter(Deps{
		Store:          storage.NewStore(db),
		Drafter:        stubRunner{},
		Batch:          stubRunner{},
		Daily:          stubRunner{},
		Sources:        stubRunner{},
		DefaultSources: []string{"etnews"},
		ProviderName:   "keyword",
		SenderName:     "log",
	})
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodPost, "/api/newsletter/draft", `{}`, http.StatusOK},
		{http.MethodPost, "/api/newsletter/daily", `{}`, http.StatusOK},
		{http.MethodPost, "/api/crawl/batch", `{"targets": {"news": {"etnews": {"main": {}}}}}`, http.StatusOK},
		{http.MethodGet, "/api/drafts", "", http.StatusOK},
		{http.MethodGet, "/api/drafts/unknown", "", http.StatusNotFound},
		{http.MethodPost, "/api/drafts/unknown/send", "", http.StatusNotFound},
		{http.MethodGet, "/api/runs", "", http.StatusOK},
		{http.MethodGet, "/api/posts?source=etnews", "", http.StatusOK},
		{http.MethodGet, "/api/sources", "", http.StatusOK},
		{http.MethodGet, "/api/subscribers", "", http.StatusOK},
		{http.MethodPost, "/api/subscribers", `{"email": "a@example.com"}`, http.StatusCreated},
		{http.MethodPut, "/api/subscribers/1", `{"is_active": false}`, http.StatusOK},
		{http.MethodDelete, "/api/subscribers/1", "", http.StatusOK},
		{http.MethodGet, "/nowhere", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
