// Package pipeline turns crawled posts into newsletter drafts and delivers
// them.
//
// The Drafter runs the collect, filter, relevance, dedup, classify and
// summarize, render and persist stages. The BatchCollector crawls a
// group/source/target tree and stores raw posts only. The DailyWorkflow
// drafts, delivers to subscribers and remembers what was sent.
package pipeline

import (
	"context"

	"github.com/hoanghai1803/newsdraft/internal/crawl"
	"github.com/hoanghai1803/newsdraft/internal/models"
)

// CrawlerLookup resolves crawlers by key. *crawl.Registry implements it.
type CrawlerLookup interface {
	Lookup(key crawl.Key) (crawl.Crawler, bool)
}

// RawPostSaver persists raw crawl results and returns how many were saved.
type RawPostSaver interface {
	SaveRawPosts(ctx context.Context, posts []models.RawPost) (int, error)
}

// Repository stores raw posts and drafts.
type Repository interface {
	RawPostSaver
	SaveDraft(ctx context.Context, draft models.NewsletterDraft) (string, error)
}

// RunRecorder stores run audit records.
type RunRecorder interface {
	RecordRun(ctx context.Context, run models.CrawlRun) (int64, error)
}

// SeenFilter remembers delivered URLs. seen.Store implements it.
type SeenFilter interface {
	Seen(ctx context.Context, url string) (bool, error)
	Mark(ctx context.Context, url string) error
}

// Notifier is told about every persisted draft.
type Notifier interface {
	DraftCreated(ctx context.Context, draftID string, draft models.NewsletterDraft) error
}

// RecipientSource lists the default recipients of a delivery.
type RecipientSource interface {
	ActiveRecipients(ctx context.Context) ([]models.Recipient, error)
}

// DeliveryRecorder stores per-recipient delivery outcomes.
type DeliveryRecorder interface {
	RecordDeliveries(ctx context.Context, draftID string, results []models.RecipientResult) error
}
