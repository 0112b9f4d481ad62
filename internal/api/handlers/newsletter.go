package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/newsdraft/internal/crawl"
	"github.com/hoanghai1803/newsdraft/internal/pipeline"
)

// DraftRunner runs the draft pipeline.
type DraftRunner interface {
	Execute(ctx context.Context, req pipeline.DraftRequest) (*pipeline.DraftResult, error)
}

// BatchRunner runs a hierarchical batch crawl.
type BatchRunner interface {
	Collect(ctx context.Context, req pipeline.BatchRequest) (*pipeline.BatchResult, error)
}

// DailyRunner runs the daily draft-and-deliver workflow.
type DailyRunner interface {
	Run(ctx context.Context, req pipeline.DailyRequest) (*pipeline.DailyResult, error)
}

// DraftNewsletter handles POST /api/newsletter/draft. An empty sources list
// falls back to defaultSources.
func DraftNewsletter(runner DraftRunner, defaultSources []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pipeline.DraftRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if len(req.Sources) == 0 {
			req.Sources = defaultSources
		}

		res, err := runner.Execute(r.Context(), req)
		if err != nil {
			slog.Error("draft run failed", "sources", req.Sources, "error", err)
			writeError(w, http.StatusInternalServerError, "Draft run failed: "+err.Error())
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

// DailyNewsletter handles POST /api/newsletter/daily.
func DailyNewsletter(runner DailyRunner, defaultSources []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pipeline.DailyRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if len(req.Sources) == 0 {
			req.Sources = defaultSources
		}

		res, err := runner.Run(r.Context(), req)
		if err != nil {
			slog.Error("daily run failed", "sources", req.Sources, "error", err)
			writeError(w, http.StatusInternalServerError, "Daily run failed: "+err.Error())
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

// CollectBatch handles POST /api/crawl/batch. The body is
// {"targets": {group: {source: {target: {pages, days, limit}}}}}.
func CollectBatch(runner BatchRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Targets map[string]map[string]map[string]crawl.Options `json:"targets"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if len(body.Targets) == 0 {
			writeError(w, http.StatusBadRequest, "targets is required")
			return
		}

		res, err := runner.Collect(r.Context(), pipeline.BatchRequest(body.Targets))
		if err != nil {
			slog.Error("batch crawl failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Batch crawl failed: "+err.Error())
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}
