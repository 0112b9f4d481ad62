package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hoanghai1803/newsdraft/internal/ai"
	"github.com/hoanghai1803/newsdraft/internal/crawl"
	"github.com/hoanghai1803/newsdraft/internal/models"
)

// Draft defaults.
const (
	DefaultSubject         = "통신시장 주간 뉴스레터(초안)"
	DefaultMaxPerCategory  = 3
	DefaultCallTimeout     = 30 * time.Second
	DefaultCrawlTimeout    = 2 * time.Minute
	DefaultLimitPerSource  = 20
	DefaultItemConcurrency = 1
)

// Deps are the collaborators of a Drafter. Runs, Seen and Notifier are
// optional.
type Deps struct {
	Registry   CrawlerLookup
	Relevance  ai.RelevanceChecker
	Dedup      ai.Deduplicator
	Classifier ai.Classifier
	Summarizer ai.Summarizer
	Repository Repository
	Runs       RunRecorder
	Seen       SeenFilter
	Notifier   Notifier
}

// DrafterConfig tunes a Drafter. Zero values fall back to the defaults.
type DrafterConfig struct {
	Subject          string
	MaxPerCategory   int
	SummarySentences int
	CallTimeout      time.Duration
	CrawlTimeout     time.Duration
	Concurrency      int
}

func (c DrafterConfig) withDefaults() DrafterConfig {
	if c.Subject == "" {
		c.Subject = DefaultSubject
	}
	if c.MaxPerCategory <= 0 {
		c.MaxPerCategory = DefaultMaxPerCategory
	}
	if c.SummarySentences <= 0 {
		c.SummarySentences = models.DefaultSummarySentences
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.CrawlTimeout <= 0 {
		c.CrawlTimeout = DefaultCrawlTimeout
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultItemConcurrency
	}
	return c
}

// DraftRequest names the sources to crawl for one draft.
type DraftRequest struct {
	Sources        []string `json:"sources"`
	LimitPerSource int      `json:"limit_per_source,omitempty"`
}

// Report counts what happened to posts at each stage.
type Report struct {
	Collected      int             `json:"collected"`
	Malformed      int             `json:"malformed"`
	AlreadySent    int             `json:"already_sent"`
	Relevant       int             `json:"relevant"`
	Unique         int             `json:"unique"`
	Drafted        int             `json:"drafted"`
	Saved          int             `json:"saved"`
	SkippedSources []string        `json:"skipped_sources"`
	FailedSources  []SourceFailure `json:"failed_sources"`
	Dropped        []*ItemError    `json:"dropped"`
}

// DraftResult is a persisted draft with its run report.
type DraftResult struct {
	ID string `json:"id"`
	models.NewsletterDraft
	Report Report `json:"report"`
}

// Drafter produces a newsletter draft from configured sources.
type Drafter struct {
	deps Deps
	cfg  DrafterConfig
}

// NewDrafter builds a Drafter. Registry, the four AI collaborators and
// Repository are required.
func NewDrafter(deps Deps, cfg DrafterConfig) (*Drafter, error) {
	switch {
	case deps.Registry == nil:
		return nil, errors.New("drafter: crawler registry is required")
	case deps.Relevance == nil, deps.Dedup == nil, deps.Classifier == nil, deps.Summarizer == nil:
		return nil, errors.New("drafter: relevance, dedup, classifier and summarizer are required")
	case deps.Repository == nil:
		return nil, errors.New("drafter: repository is required")
	}
	return &Drafter{deps: deps, cfg: cfg.withDefaults()}, nil
}

// Execute runs the full draft pipeline. A crawl failure is reported in the
// result and does not fail the run. A relevance or dedup failure aborts the
// run before anything is persisted. Classify or summarize failures drop the
// affected post only.
func (d *Drafter) Execute(ctx context.Context, req DraftRequest) (*DraftResult, error) {
	return d.execute(ctx, req, models.RunKindDraft)
}

func (d *Drafter) execute(ctx context.Context, req DraftRequest, kind string) (*DraftResult, error) {
	started := time.Now()
	res, err := d.run(ctx, req)
	d.recordRun(ctx, kind, req, res, err, started)
	return res, err
}

func (d *Drafter) run(ctx context.Context, req DraftRequest) (*DraftResult, error) {
	res := &DraftResult{Report: Report{
		SkippedSources: []string{},
		FailedSources:  []SourceFailure{},
		Dropped:        []*ItemError{},
	}}
	rep := &res.Report

	limit := req.LimitPerSource
	if limit <= 0 {
		limit = DefaultLimitPerSource
	}

	collected := d.collect(ctx, req.Sources, limit, rep)
	rep.Collected = len(collected)
	slog.Info("posts collected",
		"count", rep.Collected,
		"skipped", len(rep.SkippedSources),
		"failed", len(rep.FailedSources),
	)

	candidates := d.filter(ctx, collected, rep)

	relevant, err := d.relevant(ctx, candidates)
	if err != nil {
		return nil, err
	}
	rep.Relevant = len(relevant)

	unique, err := d.dedup(ctx, relevant)
	if err != nil {
		return nil, err
	}
	rep.Unique = len(unique)

	items, dropped := d.process(ctx, unique)
	rep.Dropped = dropped
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.NewsletterDraft = BuildDraft(d.cfg.Subject, items, d.cfg.MaxPerCategory)
	rep.Drafted = res.ItemCount()

	saved, err := d.deps.Repository.SaveRawPosts(ctx, collected)
	if err != nil {
		return nil, &PersistError{Op: "raw posts", Err: err}
	}
	rep.Saved = saved
	id, err := d.deps.Repository.SaveDraft(ctx, res.NewsletterDraft)
	if err != nil {
		return nil, &PersistError{Op: "draft", Err: err}
	}
	res.ID = id

	slog.Info("draft created",
		"id", id,
		"items", rep.Drafted,
		"categories", len(res.Categories),
		"dropped", len(rep.Dropped),
	)

	if d.deps.Notifier != nil {
		if err := d.deps.Notifier.DraftCreated(ctx, id, res.NewsletterDraft); err != nil {
			slog.Warn("draft notification failed", "id", id, "error", err)
		}
	}
	return res, nil
}

// collect crawls each named source in request order. Unknown sources are
// skipped and crawl errors are recorded as source failures.
func (d *Drafter) collect(ctx context.Context, sources []string, limit int, rep *Report) []models.RawPost {
	var posts []models.RawPost
	for _, name := range sources {
		c, ok := d.deps.Registry.Lookup(crawl.SourceKey(name))
		if !ok {
			slog.Warn("no crawler for source", "source", name)
			rep.SkippedSources = append(rep.SkippedSources, name)
			continue
		}

		target := models.CrawlTarget{SourceName: name, Category: "generic", Limit: limit}
		crawlCtx, cancel := context.WithTimeout(ctx, d.cfg.CrawlTimeout)
		got, err := c.ListPosts(crawlCtx, target, crawl.Options{Limit: limit})
		cancel()
		if err != nil {
			slog.Warn("crawl failed", "source", name, "error", err)
			rep.FailedSources = append(rep.FailedSources, SourceFailure{Source: name, Error: err.Error()})
			continue
		}
		posts = append(posts, got...)
	}
	return posts
}

// filter drops incomplete posts and, when a seen store is configured, posts
// already delivered in an earlier newsletter.
func (d *Drafter) filter(ctx context.Context, posts []models.RawPost, rep *Report) []models.RawPost {
	out := make([]models.RawPost, 0, len(posts))
	for _, p := range posts {
		if !p.Complete() {
			rep.Malformed++
			continue
		}
		if d.deps.Seen != nil {
			seen, err := d.deps.Seen.Seen(ctx, p.URL)
			if err != nil {
				slog.Warn("seen lookup failed", "url", p.URL, "error", err)
			} else if seen {
				rep.AlreadySent++
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func (d *Drafter) relevant(ctx context.Context, posts []models.RawPost) ([]models.RawPost, error) {
	var out []models.RawPost
	for _, p := range posts {
		callCtx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
		ok, err := d.deps.Relevance.IsRelevant(callCtx, p.Title+"\n"+p.ContentSnippet)
		cancel()
		if err != nil {
			return nil, &StageError{Stage: StageRelevance, Err: fmt.Errorf("post %s: %w", p.URL, err)}
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (d *Drafter) dedup(ctx context.Context, posts []models.RawPost) ([]models.RawPost, error) {
	if len(posts) == 0 {
		return nil, nil
	}

	titles := make([]string, len(posts))
	for i, p := range posts {
		titles[i] = p.Title
	}

	callCtx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
	keep, err := d.deps.Dedup.Deduplicate(callCtx, titles)
	cancel()
	if err != nil {
		return nil, &StageError{Stage: StageDedup, Err: err}
	}

	keep = sanitizeIndices(keep, len(posts))
	out := make([]models.RawPost, len(keep))
	for i, idx := range keep {
		out[i] = posts[idx]
	}
	return out, nil
}

// sanitizeIndices drops out-of-range and repeated indices and restores
// ascending order.
func sanitizeIndices(idx []int, n int) []int {
	seen := make(map[int]bool, len(idx))
	out := make([]int, 0, len(idx))
	for _, i := range idx {
		if i < 0 || i >= n || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// process classifies and summarizes posts. Results keep input order
// regardless of concurrency.
func (d *Drafter) process(ctx context.Context, posts []models.RawPost) ([]models.NewsItem, []*ItemError) {
	items := make([]models.NewsItem, len(posts))
	errs := make([]*ItemError, len(posts))

	var g errgroup.Group
	g.SetLimit(d.cfg.Concurrency)
	for i, p := range posts {
		g.Go(func() error {
			items[i], errs[i] = d.processOne(ctx, i, p)
			return nil
		})
	}
	_ = g.Wait()

	var out []models.NewsItem
	dropped := []*ItemError{}
	for i := range posts {
		if errs[i] != nil {
			slog.Warn("post dropped", "url", errs[i].URL, "stage", errs[i].Stage, "error", errs[i].Err)
			dropped = append(dropped, errs[i])
			continue
		}
		out = append(out, items[i])
	}
	return out, dropped
}

func (d *Drafter) processOne(ctx context.Context, i int, p models.RawPost) (models.NewsItem, *ItemError) {
	callCtx, cancel := context.WithTimeout(ctx, d.cfg.CallTimeout)
	label, err := d.deps.Classifier.Classify(callCtx, p.Title+"\n"+p.ContentSnippet)
	cancel()
	if err != nil {
		return models.NewsItem{}, &ItemError{Index: i, URL: p.URL, Stage: StageClassify, Err: err}
	}
	slog.Debug("post classified", "url", p.URL, "label", label)

	callCtx, cancel = context.WithTimeout(ctx, d.cfg.CallTimeout)
	summary, err := d.deps.Summarizer.Summarize(callCtx, p.ContentSnippet, d.cfg.SummarySentences)
	cancel()
	if err != nil {
		return models.NewsItem{}, &ItemError{Index: i, URL: p.URL, Stage: StageSummarize, Err: err}
	}

	return models.NewsItem{
		Title:           p.Title,
		URL:             p.URL,
		SourceName:      p.SourceName,
		Category:        models.ParseCategory(label),
		Summary:         &models.Summary{Text: strings.TrimSpace(summary), Sentences: d.cfg.SummarySentences},
		OriginalExcerpt: p.ContentSnippet,
	}, nil
}

func (d *Drafter) recordRun(ctx context.Context, kind string, req DraftRequest, res *DraftResult, runErr error, started time.Time) {
	if d.deps.Runs == nil {
		return
	}

	run := models.CrawlRun{
		Kind:       kind,
		Status:     models.RunStatusCompleted,
		Sources:    strings.Join(req.Sources, ","),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if res != nil {
		run.PostsCollected = res.Report.Collected
		run.PostsSaved = res.Report.Saved
		run.ItemsDrafted = res.Report.Drafted
		run.DraftID = res.ID
	}
	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.Error = runErr.Error()
	}

	if _, err := d.deps.Runs.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		slog.Warn("recording run failed", "kind", kind, "error", err)
	}
}
