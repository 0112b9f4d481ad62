package crawl

import (
	"context"
	"time"

	"github.com/hoanghai1803/newsdraft/internal/models"
)

// StaticPost is a post declared directly in the source catalog.
type StaticPost struct {
	Title       string     `yaml:"title" json:"title"`
	URL         string     `yaml:"url" json:"url"`
	Snippet     string     `yaml:"snippet" json:"snippet"`
	PublishedAt *time.Time `yaml:"published_at,omitempty" json:"published_at,omitempty"`
}

var _ Crawler = StaticCrawler(nil)

// StaticCrawler returns a fixed list of posts. It backs catalog entries for
// sources without a crawlable page and is handy as a test double.
type StaticCrawler []StaticPost

// ListPosts returns the declared posts tagged with the target's source
// name, capped at the effective limit.
func (s StaticCrawler) ListPosts(ctx context.Context, target models.CrawlTarget, opts Options) ([]models.RawPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := effectiveLimit(target, opts)
	posts := make([]models.RawPost, 0, min(len(s), limit))
	for _, p := range s {
		if len(posts) >= limit {
			break
		}
		posts = append(posts, models.RawPost{
			SourceName:     target.SourceName,
			URL:            p.URL,
			Title:          p.Title,
			ContentSnippet: p.Snippet,
			PublishedAt:    p.PublishedAt,
		})
	}
	return posts, nil
}
