package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hoanghai1803/newsdraft/internal/models"
	"golang.org/x/sync/errgroup"
)

const multiConcurrency = 4

var _ Crawler = (*MultiCrawler)(nil)

// MultiCrawler fans a source-level crawl out to every target of a source
// and merges the results in target order. A failing target is logged and
// skipped; the crawl fails only when every target fails.
type MultiCrawler struct {
	name  string
	parts []Crawler
}

// NewMultiCrawler combines parts under a display name used in logs.
func NewMultiCrawler(name string, parts ...Crawler) *MultiCrawler {
	return &MultiCrawler{name: name, parts: parts}
}

// ListPosts crawls all parts concurrently and concatenates their posts,
// dropping repeated URLs and stopping at the effective limit.
func (m *MultiCrawler) ListPosts(ctx context.Context, target models.CrawlTarget, opts Options) ([]models.RawPost, error) {
	results := make([][]models.RawPost, len(m.parts))
	errs := make([]error, len(m.parts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(multiConcurrency)
	for i, part := range m.parts {
		g.Go(func() error {
			posts, err := part.ListPosts(gctx, target, opts)
			if err != nil {
				slog.Warn("crawl target failed", "source", m.name, "part", i, "error", err)
				errs[i] = err
				return nil
			}
			results[i] = posts
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if len(m.parts) > 0 && failed == len(m.parts) {
		return nil, fmt.Errorf("all %d targets of %s failed: %w", failed, m.name, errors.Join(errs...))
	}

	limit := effectiveLimit(target, opts)
	seen := make(map[string]bool)
	var merged []models.RawPost
	for _, posts := range results {
		for _, p := range posts {
			if seen[p.URL] {
				continue
			}
			seen[p.URL] = true
			merged = append(merged, p)
			if len(merged) >= limit {
				return merged, nil
			}
		}
	}
	return merged, nil
}
