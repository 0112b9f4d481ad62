package crawl

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/hoanghai1803/newsdraft/internal/models"
	"github.com/mmcdole/gofeed"
)

var htmlTagPattern = regexp.MustCompile("<[^>]*>")

var _ Crawler = (*RSSCrawler)(nil)

// RSSCrawler lists posts from an RSS or Atom feed.
type RSSCrawler struct {
	feedURL string
	client  *http.Client
	limiter *DomainLimiter
}

// NewRSSCrawler creates a crawler for feedURL. The client and limiter may
// be shared across crawlers.
func NewRSSCrawler(feedURL string, client *http.Client, limiter *DomainLimiter) *RSSCrawler {
	if client == nil {
		client = NewHTTPClient(DefaultHTTPTimeout, DefaultUserAgent)
	}
	return &RSSCrawler{feedURL: feedURL, client: client, limiter: limiter}
}

// ListPosts fetches the feed and returns items published within opts.Days,
// newest first as the feed orders them, capped at the effective limit.
func (c *RSSCrawler) ListPosts(ctx context.Context, target models.CrawlTarget, opts Options) ([]models.RawPost, error) {
	opts = opts.withDefaults()

	if err := c.limiter.Wait(ctx, c.feedURL); err != nil {
		return nil, err
	}

	fp := gofeed.NewParser()
	fp.Client = c.client

	feed, err := fp.ParseURLWithContext(c.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %q: %w", c.feedURL, err)
	}

	return parseFeedItems(target.SourceName, feed, opts.Days, effectiveLimit(target, opts)), nil
}

// parseFeedItems converts gofeed items into raw posts, filtering by the
// lookback window. Items with nil PublishedParsed are always included.
// Items with an empty title or link are skipped.
func parseFeedItems(source string, feed *gofeed.Feed, lookbackDays, limit int) []models.RawPost {
	cutoff := time.Now().AddDate(0, 0, -lookbackDays)

	posts := make([]models.RawPost, 0, len(feed.Items))
	for _, item := range feed.Items {
		if limit > 0 && len(posts) >= limit {
			break
		}
		if item.Title == "" || item.Link == "" {
			continue
		}
		if item.PublishedParsed != nil && item.PublishedParsed.Before(cutoff) {
			continue
		}

		var publishedAt *time.Time
		if item.PublishedParsed != nil {
			t := *item.PublishedParsed
			publishedAt = &t
		}

		snippet := stripHTML(item.Description)
		if snippet == "" {
			snippet = stripHTML(item.Content)
		}

		posts = append(posts, models.RawPost{
			SourceName:     source,
			URL:            item.Link,
			Title:          strings.TrimSpace(item.Title),
			ContentSnippet: snippet,
			PublishedAt:    publishedAt,
		})
	}

	return posts
}

// stripHTML removes HTML tags from s, unescapes entities and collapses
// whitespace.
func stripHTML(s string) string {
	clean := htmlTagPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(html.UnescapeString(clean)), " ")
}
