package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hoanghai1803/newsdraft/internal/crawl"
	"github.com/hoanghai1803/newsdraft/internal/email"
	"github.com/hoanghai1803/newsdraft/internal/models"
)

type fakeCrawler struct {
	posts  []models.RawPost
	err    error
	target models.CrawlTarget
	opts   crawl.Options
	calls  int
}

func (f *fakeCrawler) ListPosts(_ context.Context, target models.CrawlTarget, opts crawl.Options) ([]models.RawPost, error) {
	f.calls++
	f.target = target
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.posts, nil
}

// hangingCrawler blocks until its context is done.
type hangingCrawler struct{}

func (hangingCrawler) ListPosts(ctx context.Context, _ models.CrawlTarget, _ crawl.Options) ([]models.RawPost, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// fakeAI classifies by the first word of the text and summarizes with a
// fixed prefix unless a hook overrides it.
type fakeAI struct {
	relevant  func(ctx context.Context, text string) (bool, error)
	dedup     func(titles []string) ([]int, error)
	classify  func(ctx context.Context, text string) (string, error)
	summarize func(ctx context.Context, text string) (string, error)

	mu         sync.Mutex
	dedupCalls int
}

func (f *fakeAI) IsRelevant(ctx context.Context, text string) (bool, error) {
	if f.relevant != nil {
		return f.relevant(ctx, text)
	}
	return true, nil
}

func (f *fakeAI) Deduplicate(_ context.Context, titles []string) ([]int, error) {
	f.mu.Lock()
	f.dedupCalls++
	f.mu.Unlock()
	if f.dedup != nil {
		return f.dedup(titles)
	}
	keep := make([]int, len(titles))
	for i := range titles {
		keep[i] = i
	}
	return keep, nil
}

func (f *fakeAI) Classify(ctx context.Context, text string) (string, error) {
	if f.classify != nil {
		return f.classify(ctx, text)
	}
	return strings.Fields(text)[0], nil
}

func (f *fakeAI) Summarize(ctx context.Context, text string, _ int) (string, error) {
	if f.summarize != nil {
		return f.summarize(ctx, text)
	}
	return "요약: " + text, nil
}

type memRepo struct {
	mu       sync.Mutex
	raw      []models.RawPost
	batches  int
	drafts   []models.NewsletterDraft
	rawErr   error
	draftErr error
}

func (r *memRepo) SaveRawPosts(_ context.Context, posts []models.RawPost) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rawErr != nil {
		return 0, r.rawErr
	}
	r.batches++
	r.raw = append(r.raw, posts...)
	return len(posts), nil
}

func (r *memRepo) SaveDraft(_ context.Context, draft models.NewsletterDraft) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.draftErr != nil {
		return "", r.draftErr
	}
	r.drafts = append(r.drafts, draft)
	return "draft-1", nil
}

type fakeRuns struct {
	runs []models.CrawlRun
}

func (f *fakeRuns) RecordRun(_ context.Context, run models.CrawlRun) (int64, error) {
	f.runs = append(f.runs, run)
	return int64(len(f.runs)), nil
}

type fakeSeen struct {
	urls map[string]bool
	err  error
}

func (f *fakeSeen) Seen(_ context.Context, url string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.urls[url], nil
}

func (f *fakeSeen) Mark(_ context.Context, url string) error {
	f.urls[url] = true
	return nil
}

type fakeNotifier struct {
	ids []string
	err error
}

func (f *fakeNotifier) DraftCreated(_ context.Context, id string, _ models.NewsletterDraft) error {
	f.ids = append(f.ids, id)
	return f.err
}

type fakeSender struct {
	fail map[string]bool
	sent []email.Message
}

func (f *fakeSender) Send(_ context.Context, msg email.Message) (string, error) {
	f.sent = append(f.sent, msg)
	if f.fail[msg.To[0].Email] {
		return "", errors.New("mailbox unavailable")
	}
	return "msg-" + msg.To[0].Email, nil
}

type fakeRecipients struct {
	list []models.Recipient
}

func (f fakeRecipients) ActiveRecipients(context.Context) ([]models.Recipient, error) {
	return f.list, nil
}

type fakeDeliveries struct {
	draftID string
	results []models.RecipientResult
}

func (f *fakeDeliveries) RecordDeliveries(_ context.Context, draftID string, results []models.RecipientResult) error {
	f.draftID = draftID
	f.results = results
	return nil
}

func post(source, url, title, snippet string) models.RawPost {
	return models.RawPost{SourceName: source, URL: url, Title: title, ContentSnippet: snippet}
}

func registryWith(crawlers map[string]crawl.Crawler) *crawl.Registry {
	reg := crawl.NewRegistry()
	for name, c := range crawlers {
		reg.Register(crawl.SourceKey(name), c)
	}
	return reg
}
