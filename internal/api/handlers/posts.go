package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hoanghai1803/newsdraft/internal/crawl"
	"github.com/hoanghai1803/newsdraft/internal/models"
	"github.com/hoanghai1803/newsdraft/internal/storage"
)

// ListPosts handles GET /api/posts?source=&limit=. It returns the most
// recently crawled raw posts.
func ListPosts(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", 50)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		posts, err := store.ListRawPosts(r.Context(), r.URL.Query().Get("source"), limit)
		if err != nil {
			slog.Error("failed to list posts", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list posts")
			return
		}
		if posts == nil {
			posts = []models.RawPost{}
		}

		writeJSON(w, http.StatusOK, posts)
	}
}

// SourceLister exposes the registered crawl targets.
type SourceLister interface {
	Keys() []crawl.Key
}

type sourceEntry struct {
	Name   string `json:"name"`
	Group  string `json:"group"`
	Source string `json:"source"`
	Target string `json:"target,omitempty"`
}

// ListSources handles GET /api/sources.
func ListSources(sources SourceLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keys := sources.Keys()
		out := make([]sourceEntry, 0, len(keys))
		for _, k := range keys {
			out = append(out, sourceEntry{Name: k.Name(), Group: k.Group, Source: k.Source, Target: k.Target})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
