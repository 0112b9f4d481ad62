package pipeline

import (
	"html"
	"net/url"
	"strings"

	"github.com/hoanghai1803/newsdraft/internal/models"
)

// SelectCategories buckets items by category in first-seen order and keeps
// at most limit items per bucket, in processing order.
func SelectCategories(items []models.NewsItem, limit int) []models.CategoryNews {
	var order []string
	buckets := make(map[string][]models.DraftItem)

	for _, it := range items {
		cat := string(it.Category)
		if _, ok := buckets[cat]; !ok {
			order = append(order, cat)
			buckets[cat] = nil
		}
		if limit > 0 && len(buckets[cat]) >= limit {
			continue
		}
		buckets[cat] = append(buckets[cat], models.DraftItem{
			Title:   it.Title,
			URL:     it.URL,
			Summary: it.SummaryText(),
			Source:  it.SourceName,
		})
	}

	out := make([]models.CategoryNews, 0, len(order))
	for _, cat := range order {
		out = append(out, models.CategoryNews{Category: cat, Items: buckets[cat]})
	}
	return out
}

// RenderHTML renders categories as one <h3>/<ul> section each, joined by
// newlines. All text is HTML-escaped. Titles link to their URL only when it
// is an absolute http or https URL.
func RenderHTML(categories []models.CategoryNews) string {
	sections := make([]string, 0, len(categories))
	for _, c := range categories {
		var b strings.Builder
		b.WriteString("<h3>")
		b.WriteString(html.EscapeString(c.Category))
		b.WriteString("</h3><ul>")
		for _, it := range c.Items {
			b.WriteString("<li>")
			if linkable(it.URL) {
				b.WriteString(`<a href="`)
				b.WriteString(html.EscapeString(it.URL))
				b.WriteString(`">`)
				b.WriteString(html.EscapeString(it.Title))
				b.WriteString("</a>")
			} else {
				b.WriteString(html.EscapeString(it.Title))
			}
			b.WriteString("<br/><small>")
			b.WriteString(html.EscapeString(it.Summary))
			b.WriteString("</small></li>")
		}
		b.WriteString("</ul>")
		sections = append(sections, b.String())
	}
	return strings.Join(sections, "\n")
}

func linkable(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// BuildDraft selects and renders items into a draft.
func BuildDraft(subject string, items []models.NewsItem, limit int) models.NewsletterDraft {
	cats := SelectCategories(items, limit)
	return models.NewsletterDraft{
		Subject:     subject,
		Categories:  cats,
		HTMLContent: RenderHTML(cats),
	}
}
