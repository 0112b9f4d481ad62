package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/hoanghai1803/newsdraft/internal/crawl"
	"github.com/hoanghai1803/newsdraft/internal/models"
)

// BatchRequest maps group -> source -> target -> crawl options.
type BatchRequest map[string]map[string]map[string]crawl.Options

// BatchResult totals a batch crawl.
type BatchResult struct {
	Saved   int             `json:"saved"`
	Skipped []string        `json:"skipped"`
	Failed  []SourceFailure `json:"failed"`
}

// BatchCollector crawls a group/source/target tree and stores raw posts.
type BatchCollector struct {
	registry CrawlerLookup
	repo     RawPostSaver
	runs     RunRecorder
	timeout  time.Duration
}

// NewBatchCollector builds a BatchCollector. runs may be nil. timeout bounds
// each leaf crawl and defaults to DefaultCrawlTimeout.
func NewBatchCollector(registry CrawlerLookup, repo RawPostSaver, runs RunRecorder, timeout time.Duration) (*BatchCollector, error) {
	if registry == nil || repo == nil {
		return nil, errors.New("batch collector: registry and repository are required")
	}
	if timeout <= 0 {
		timeout = DefaultCrawlTimeout
	}
	return &BatchCollector{registry: registry, repo: repo, runs: runs, timeout: timeout}, nil
}

// Collect visits every leaf of req in sorted key order. Each leaf is crawled
// with its options and saved as its own batch; the saved counts are summed.
// Leaves with no crawler are skipped and crawl errors are recorded. A
// persistence error stops the batch; batches saved before it stay saved.
func (b *BatchCollector) Collect(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	started := time.Now()
	res, err := b.collect(ctx, req)
	b.recordRun(ctx, req, res, err, started)
	return res, err
}

func (b *BatchCollector) collect(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	res := &BatchResult{Skipped: []string{}, Failed: []SourceFailure{}}

	for _, group := range sortedKeys(req) {
		for _, source := range sortedKeys(req[group]) {
			for _, target := range sortedKeys(req[group][source]) {
				if err := ctx.Err(); err != nil {
					return res, err
				}

				key := crawl.Key{Group: group, Source: source, Target: target}
				name := key.Name()
				c, ok := b.registry.Lookup(key)
				if !ok {
					slog.Warn("no crawler for target", "target", name)
					res.Skipped = append(res.Skipped, name)
					continue
				}

				opts := req[group][source][target]
				limit := opts.Limit
				if limit <= 0 {
					limit = crawl.DefaultLimit
				}
				crawlCtx, cancel := context.WithTimeout(ctx, b.timeout)
				posts, err := c.ListPosts(crawlCtx, models.CrawlTarget{SourceName: name, Category: group, Limit: limit}, opts)
				cancel()
				if err != nil {
					slog.Warn("crawl failed", "target", name, "error", err)
					res.Failed = append(res.Failed, SourceFailure{Source: name, Error: err.Error()})
					continue
				}

				saved, err := b.repo.SaveRawPosts(ctx, posts)
				if err != nil {
					return res, &PersistError{Op: "raw posts " + name, Err: err}
				}
				res.Saved += saved
				slog.Info("target collected", "target", name, "posts", len(posts), "saved", saved)
			}
		}
	}
	return res, nil
}

func (b *BatchCollector) recordRun(ctx context.Context, req BatchRequest, res *BatchResult, runErr error, started time.Time) {
	if b.runs == nil {
		return
	}

	run := models.CrawlRun{
		Kind:       models.RunKindBatch,
		Status:     models.RunStatusCompleted,
		Sources:    strings.Join(sortedKeys(req), ","),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if res != nil {
		run.PostsSaved = res.Saved
		run.PostsCollected = res.Saved
	}
	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.Error = runErr.Error()
	}
	if _, err := b.runs.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		slog.Warn("recording run failed", "kind", run.Kind, "error", err)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
