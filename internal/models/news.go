package models

import "time"

// CrawlTarget identifies one logical crawl unit handed to a crawler.
type CrawlTarget struct {
	SourceName string `json:"source_name"`
	BaseURL    string `json:"base_url"`
	Category   string `json:"category"`
	Limit      int    `json:"limit"`
}

// RawPost is an unprocessed crawl result.
type RawPost struct {
	SourceName     string     `json:"source_name"`
	URL            string     `json:"url"`
	Title          string     `json:"title"`
	ContentSnippet string     `json:"content_snippet"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
}

// Complete reports whether the post carries both a title and a snippet.
func (p RawPost) Complete() bool {
	return p.Title != "" && p.ContentSnippet != ""
}

// Category is a telecom-market classification label.
type Category string

const (
	CategorySKT                    Category = "SKT"
	CategoryKT                     Category = "KT"
	CategoryLGU                    Category = "LGU"
	CategoryBroadcastingCommission Category = "방통위"
	CategoryKAIT                   Category = "KAIT"
	CategoryMarketOpinion          Category = "이통시장여론"
	CategoryOther                  Category = "OTHER"
)

// Categories lists every known category in display order, OTHER last.
var Categories = []Category{
	CategorySKT,
	CategoryKT,
	CategoryLGU,
	CategoryBroadcastingCommission,
	CategoryKAIT,
	CategoryMarketOpinion,
	CategoryOther,
}

// categoryNames maps enum names to categories. Display values are matched
// separately in ParseCategory.
var categoryNames = map[string]Category{
	"SKT":                     CategorySKT,
	"KT":                      CategoryKT,
	"LGU":                     CategoryLGU,
	"BROADCASTING_COMMISSION": CategoryBroadcastingCommission,
	"KAIT":                    CategoryKAIT,
	"MARKET_OPINION":          CategoryMarketOpinion,
	"OTHER":                   CategoryOther,
}

// ParseCategory maps a label to a known category. The label must equal an
// enum name ("BROADCASTING_COMMISSION") or a display value ("방통위")
// exactly. Anything else yields CategoryOther; this never fails.
func ParseCategory(label string) Category {
	if c, ok := categoryNames[label]; ok {
		return c
	}
	for _, c := range Categories {
		if string(c) == label {
			return c
		}
	}
	return CategoryOther
}

// Summary is a model-generated summary attached to one news item.
type Summary struct {
	Text      string `json:"text"`
	Sentences int    `json:"sentences"`
}

// DefaultSummarySentences is the sentence count requested when none is set.
const DefaultSummarySentences = 3

// NewsItem is a classified, summarized post ready for newsletter inclusion.
type NewsItem struct {
	Title           string   `json:"title"`
	URL             string   `json:"url"`
	SourceName      string   `json:"source_name"`
	Category        Category `json:"category"`
	Summary         *Summary `json:"summary,omitempty"`
	Score           float64  `json:"score"`
	OriginalExcerpt string   `json:"original_excerpt,omitempty"`
}

// SummaryText returns the summary text or "" when the item has none.
func (n NewsItem) SummaryText() string {
	if n.Summary == nil {
		return ""
	}
	return n.Summary.Text
}
