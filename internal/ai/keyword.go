package ai

import (
	"context"
	"strings"

	"github.com/hoanghai1803/newsdraft/internal/models"
)

var _ Provider = (*KeywordProvider)(nil)

// summaryWordLimit is how many words the keyword provider keeps when
// summarizing.
const summaryWordLimit = 20

// categoryKeywords maps categories to the substrings that select them.
// Order matters: the first matching category wins.
var categoryKeywords = []struct {
	category models.Category
	keywords []string
}{
	{models.CategorySKT, []string{"SKT", "에스케이"}},
	{models.CategoryKT, []string{"KT"}},
	{models.CategoryLGU, []string{"LGU", "LG U+", "엘지유플러스"}},
	{models.CategoryBroadcastingCommission, []string{"방송통신위원회", "방통위"}},
	{models.CategoryKAIT, []string{"KAIT", "한국정보통신진흥협회"}},
	{models.CategoryMarketOpinion, []string{"여론"}},
}

// KeywordProvider is an offline Provider driven by substring matching. It
// needs no network access and is used for development and local runs.
type KeywordProvider struct {
	keywords []string
}

// NewKeywordProvider creates a KeywordProvider. A nil keyword list falls back
// to DefaultKeywords.
func NewKeywordProvider(keywords []string) *KeywordProvider {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	return &KeywordProvider{keywords: keywords}
}

// IsRelevant reports whether any keyword occurs in text.
func (p *KeywordProvider) IsRelevant(_ context.Context, text string) (bool, error) {
	for _, kw := range p.keywords {
		if strings.Contains(text, kw) {
			return true, nil
		}
	}
	return false, nil
}

// Deduplicate keeps the first occurrence of every title after trimming and
// lower-casing.
func (p *KeywordProvider) Deduplicate(_ context.Context, titles []string) ([]int, error) {
	seen := make(map[string]struct{}, len(titles))
	keep := make([]int, 0, len(titles))
	for i, t := range titles {
		key := strings.ToLower(strings.TrimSpace(t))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}
	return keep, nil
}

// Classify returns the first category whose keywords occur in text, or
// OTHER.
func (p *KeywordProvider) Classify(_ context.Context, text string) (string, error) {
	for _, ck := range categoryKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(text, kw) {
				return string(ck.category), nil
			}
		}
	}
	return string(models.CategoryOther), nil
}

// Summarize truncates text to its first twenty words. The sentence count is
// ignored.
func (p *KeywordProvider) Summarize(_ context.Context, text string, _ int) (string, error) {
	words := strings.Fields(text)
	if len(words) <= summaryWordLimit {
		return text, nil
	}
	return strings.Join(words[:summaryWordLimit], " ") + "...", nil
}
