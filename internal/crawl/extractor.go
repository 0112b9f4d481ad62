package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hoanghai1803/newsdraft/internal/models"
	readability "github.com/go-shiori/go-readability"
)

// DefaultSnippetWords caps the length of an extracted snippet.
const DefaultSnippetWords = 300

// ExtractFunc returns the readable text of the article at url.
type ExtractFunc func(ctx context.Context, url string) (string, error)

var _ Crawler = (*Enricher)(nil)

// Enricher wraps a crawler and fills empty snippets by extracting the
// article body of each post. Extraction failures leave the snippet empty.
type Enricher struct {
	next     Crawler
	extract  ExtractFunc
	maxWords int
}

// NewEnricher returns a crawler that enriches next's posts with extract.
func NewEnricher(next Crawler, extract ExtractFunc) *Enricher {
	return &Enricher{next: next, extract: extract, maxWords: DefaultSnippetWords}
}

// ListPosts delegates to the wrapped crawler, then extracts article text
// for posts whose snippet is empty.
func (e *Enricher) ListPosts(ctx context.Context, target models.CrawlTarget, opts Options) ([]models.RawPost, error) {
	posts, err := e.next.ListPosts(ctx, target, opts)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		if strings.TrimSpace(posts[i].ContentSnippet) != "" || posts[i].URL == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := e.extract(ctx, posts[i].URL)
		if err != nil {
			slog.Warn("article extraction failed", "url", posts[i].URL, "error", err)
			continue
		}
		posts[i].ContentSnippet = truncateWords(text, e.maxWords)
	}
	return posts, nil
}

// ReadabilityExtractor returns an ExtractFunc backed by go-readability.
// Requests share the crawl rate limiter.
func ReadabilityExtractor(timeout time.Duration, userAgent string, limiter *DomainLimiter) ExtractFunc {
	return func(ctx context.Context, url string) (string, error) {
		if err := limiter.Wait(ctx, url); err != nil {
			return "", err
		}

		article, err := readability.FromURL(url, timeout, func(r *http.Request) {
			r.Header.Set("User-Agent", userAgent)
			r.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
			r.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.8")
		})
		if err != nil {
			return "", fmt.Errorf("extracting %q: %w", url, err)
		}

		text := collapseSpace(article.TextContent)
		if text == "" {
			return "", fmt.Errorf("extracting %q: empty article", url)
		}
		return text, nil
	}
}

// truncateWords keeps at most n whitespace-separated words of s.
func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if n <= 0 || len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ")
}
