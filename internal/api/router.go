package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hoanghai1803/newsdraft/internal/api/handlers"
	"github.com/hoanghai1803/newsdraft/internal/storage"
)

// DailyWorkflow runs the daily workflow and delivers stored drafts.
type DailyWorkflow interface {
	handlers.DailyRunner
	handlers.DraftSender
}

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Store          *storage.Store
	Drafter        handlers.DraftRunner
	Batch          handlers.BatchRunner
	Daily          DailyWorkflow
	Sources        handlers.SourceLister
	DefaultSources []string
	ProviderName   string
	SenderName     string
}

// runTimeout bounds pipeline requests, which crawl and call AI providers.
const runTimeout = 10 * time.Minute

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(CORS)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handlers.Health(deps.ProviderName, deps.SenderName))

		api.Group(func(run chi.Router) {
			run.Use(middleware.Timeout(runTimeout))
			run.Post("/newsletter/draft", handlers.DraftNewsletter(deps.Drafter, deps.DefaultSources))
			run.Post("/newsletter/daily", handlers.DailyNewsletter(deps.Daily, deps.DefaultSources))
			run.Post("/crawl/batch", handlers.CollectBatch(deps.Batch))
			run.Post("/drafts/{id}/send", handlers.SendDraft(deps.Store, deps.Daily))
		})

		api.Get("/drafts", handlers.ListDrafts(deps.Store))
		api.Get("/drafts/{id}", handlers.GetDraft(deps.Store))
		api.Get("/drafts/{id}/deliveries", handlers.ListDeliveries(deps.Store))

		api.Get("/runs", handlers.GetRuns(deps.Store))
		api.Get("/posts", handlers.ListPosts(deps.Store))
		api.Get("/sources", handlers.ListSources(deps.Sources))

		api.Get("/subscribers", handlers.ListSubscribers(deps.Store))
		api.Post("/subscribers", handlers.AddSubscriber(deps.Store))
		api.Put("/subscribers/{id}", handlers.ToggleSubscriber(deps.Store))
		api.Delete("/subscribers/{id}", handlers.DeleteSubscriber(deps.Store))
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}` + "\n"))
	})

	return r
}
