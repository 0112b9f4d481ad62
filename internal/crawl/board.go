package crawl

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/hoanghai1803/newsdraft/internal/models"
)

// Selectors locate posts on an HTML listing page. Item selects one element
// per post; the remaining selectors are evaluated inside that element.
// An empty Link reuses the Title element.
type Selectors struct {
	Item    string `yaml:"item" json:"item"`
	Title   string `yaml:"title" json:"title"`
	Link    string `yaml:"link,omitempty" json:"link,omitempty"`
	Snippet string `yaml:"snippet,omitempty" json:"snippet,omitempty"`
	Date    string `yaml:"date,omitempty" json:"date,omitempty"`
}

// DefaultDateLayout parses board timestamps such as "2024.05.01".
const DefaultDateLayout = "2006.01.02"

var _ Crawler = (*BoardCrawler)(nil)

// BoardCrawler scrapes an HTML listing page, such as a community board or
// a press-release list, one page at a time.
type BoardCrawler struct {
	pageURL    string
	pageParam  string
	dateLayout string
	selectors  Selectors
	client     *resty.Client
	limiter    *DomainLimiter
}

// BoardConfig configures a BoardCrawler.
type BoardConfig struct {
	URL        string
	PageParam  string
	DateLayout string
	Selectors  Selectors
}

// NewBoardCrawler creates a board crawler. A nil client gets a default one.
func NewBoardCrawler(cfg BoardConfig, client *resty.Client, limiter *DomainLimiter) *BoardCrawler {
	if client == nil {
		client = NewRestyClient(DefaultHTTPTimeout, DefaultUserAgent)
	}
	if cfg.DateLayout == "" {
		cfg.DateLayout = DefaultDateLayout
	}
	return &BoardCrawler{
		pageURL:    cfg.URL,
		pageParam:  cfg.PageParam,
		dateLayout: cfg.DateLayout,
		selectors:  cfg.Selectors,
		client:     client,
		limiter:    limiter,
	}
}

// ListPosts fetches up to opts.Pages listing pages and returns the posts
// found, deduplicated by URL and capped at the effective limit. Pagination
// stops early when a page yields nothing new.
func (c *BoardCrawler) ListPosts(ctx context.Context, target models.CrawlTarget, opts Options) ([]models.RawPost, error) {
	opts = opts.withDefaults()
	limit := effectiveLimit(target, opts)
	cutoff := time.Now().AddDate(0, 0, -opts.Days)

	pages := opts.Pages
	if c.pageParam == "" {
		pages = 1
	}

	seen := make(map[string]bool)
	var posts []models.RawPost

	for page := 1; page <= pages; page++ {
		pageURL, err := c.urlForPage(page)
		if err != nil {
			return nil, err
		}

		body, err := c.fetch(ctx, pageURL.String())
		if err != nil {
			if page > 1 && len(posts) > 0 {
				break
			}
			return nil, err
		}

		found, err := parseBoard(body, pageURL, c.selectors, target.SourceName, c.dateLayout)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", pageURL, err)
		}

		added := 0
		for _, p := range found {
			if seen[p.URL] {
				continue
			}
			if p.PublishedAt != nil && p.PublishedAt.Before(cutoff) {
				continue
			}
			seen[p.URL] = true
			posts = append(posts, p)
			added++
			if len(posts) >= limit {
				return posts, nil
			}
		}
		if added == 0 {
			break
		}
	}

	return posts, nil
}

func (c *BoardCrawler) urlForPage(page int) (*url.URL, error) {
	u, err := url.Parse(c.pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid board url %q: %w", c.pageURL, err)
	}
	if c.pageParam != "" {
		q := u.Query()
		q.Set(c.pageParam, strconv.Itoa(page))
		u.RawQuery = q.Encode()
	}
	return u, nil
}

func (c *BoardCrawler) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx, pageURL); err != nil {
		return nil, err
	}

	resp, err := c.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching %q: %w", pageURL, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetching %q: unexpected status %d", pageURL, resp.StatusCode())
	}
	return resp.Body(), nil
}

// parseBoard extracts posts from one listing page. Relative links are
// resolved against base. Elements without a title or link are skipped.
func parseBoard(body []byte, base *url.URL, sel Selectors, source, dateLayout string) ([]models.RawPost, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var posts []models.RawPost
	doc.Find(sel.Item).Each(func(_ int, s *goquery.Selection) {
		titleSel := s.Find(sel.Title).First()
		title := collapseSpace(titleSel.Text())
		if title == "" {
			return
		}

		linkSel := titleSel
		if sel.Link != "" {
			linkSel = s.Find(sel.Link).First()
		}
		href, ok := linkSel.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		link, err := base.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}

		post := models.RawPost{
			SourceName: source,
			URL:        link.String(),
			Title:      title,
		}
		if sel.Snippet != "" {
			post.ContentSnippet = collapseSpace(s.Find(sel.Snippet).First().Text())
		}
		if sel.Date != "" {
			post.PublishedAt = parseBoardDate(s.Find(sel.Date).First(), dateLayout)
		}
		posts = append(posts, post)
	})

	return posts, nil
}

// parseBoardDate reads a timestamp from a datetime attribute or the element
// text. Unparseable dates yield nil so the post is kept.
func parseBoardDate(s *goquery.Selection, layout string) *time.Time {
	raw, ok := s.Attr("datetime")
	if ok {
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw)); err == nil {
			return &t
		}
	}
	raw = strings.TrimSpace(s.Text())
	if raw == "" {
		return nil
	}
	t, err := time.ParseInLocation(layout, raw, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
