package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hoanghai1803/newsdraft/internal/models"
)

// DefaultKeywords are the telecom topics used for relevance decisions when
// none are configured.
var DefaultKeywords = []string{"통신", "5G", "이통", "KT", "SKT", "LGU", "방통위", "KAIT"}

const relevanceSystemPrompt = `당신은 한국 통신 시장 뉴스레터의 편집자입니다. 주어진 텍스트가 통신/IT 관련 주제와 관련이 있는지 판단해주세요. 관련성이 있으면 'YES', 없으면 'NO'로만 답변해주세요.`

const classifySystemPromptTmpl = `당신은 한국 통신 시장 뉴스 분류기입니다. 주어진 텍스트를 다음 카테고리 중 하나로 분류해주세요: %s. 가장 적절한 카테고리명만 답변해주세요.`

const summarizeSystemPromptTmpl = `다음 텍스트를 %d문장으로 요약해주세요. 스타일: neutral. "요약:" 같은 머리말 없이 첫 문장부터 바로 시작해주세요.`

const dedupSystemPrompt = `You are deduplicating a list of Korean telecom news titles. Titles that report the same story are duplicates even if worded differently. Return ONLY valid JSON: an array of the 0-based indices of the titles to keep, in ascending order, keeping the first title of every group of duplicates.`

// RelevancePrompt builds the system and user prompts for the relevance
// decision.
func RelevancePrompt(text string, keywords []string) (systemPrompt string, userPrompt string) {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	var b strings.Builder
	fmt.Fprintf(&b, "관련 키워드: %s\n\n", strings.Join(keywords, ", "))
	b.WriteString("텍스트: ")
	b.WriteString(text)

	return relevanceSystemPrompt, b.String()
}

// ClassifyPrompt builds the system and user prompts for category
// classification.
func ClassifyPrompt(text string) (systemPrompt string, userPrompt string) {
	labels := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		labels[i] = string(c)
	}
	systemPrompt = fmt.Sprintf(classifySystemPromptTmpl, strings.Join(labels, ", "))
	return systemPrompt, "텍스트: " + text
}

// SummarizePrompt builds the system and user prompts for summarization.
func SummarizePrompt(text string, sentences int) (systemPrompt string, userPrompt string) {
	if sentences <= 0 {
		sentences = models.DefaultSummarySentences
	}
	return fmt.Sprintf(summarizeSystemPromptTmpl, sentences), "텍스트: " + text
}

// DedupPrompt builds the system and user prompts for title deduplication.
func DedupPrompt(titles []string) (systemPrompt string, userPrompt string) {
	var b strings.Builder
	b.WriteString("Titles:\n")
	for i, t := range titles {
		fmt.Fprintf(&b, "%d. %s\n", i, t)
	}
	return dedupSystemPrompt, b.String()
}

// completeFunc sends one system/user prompt pair to a model and returns its
// text reply.
type completeFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

// promptSet implements the four provider operations on top of a single
// text completion call. Vendor providers embed it.
type promptSet struct {
	name     string
	keywords []string
	complete completeFunc
}

func (p promptSet) IsRelevant(ctx context.Context, text string) (bool, error) {
	systemPrompt, userPrompt := RelevancePrompt(text, p.keywords)
	reply, err := p.complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return false, fmt.Errorf("%s relevance: %w", p.name, err)
	}
	return parseYesNo(reply), nil
}

func (p promptSet) Deduplicate(ctx context.Context, titles []string) ([]int, error) {
	systemPrompt, userPrompt := DedupPrompt(titles)
	reply, err := p.complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("%s deduplicate: %w", p.name, err)
	}
	keep, err := parseIndices(reply)
	if err != nil {
		return nil, fmt.Errorf("%s deduplicate: %w", p.name, err)
	}
	return keep, nil
}

func (p promptSet) Classify(ctx context.Context, text string) (string, error) {
	systemPrompt, userPrompt := ClassifyPrompt(text)
	reply, err := p.complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("%s classify: %w", p.name, err)
	}
	return cleanLabel(reply), nil
}

func (p promptSet) Summarize(ctx context.Context, text string, sentences int) (string, error) {
	systemPrompt, userPrompt := SummarizePrompt(text, sentences)
	reply, err := p.complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("%s summarize: %w", p.name, err)
	}
	return strings.TrimSpace(reply), nil
}

// parseYesNo reports whether a model reply affirms the question.
func parseYesNo(reply string) bool {
	return strings.Contains(strings.ToUpper(reply), "YES")
}

// parseIndices decodes a JSON array of integers, tolerating code fences.
func parseIndices(reply string) ([]int, error) {
	var keep []int
	if err := json.Unmarshal([]byte(extractJSON(reply)), &keep); err != nil {
		return nil, fmt.Errorf("parsing index list: %w", err)
	}
	return keep, nil
}

// cleanLabel strips quotes, punctuation and surrounding whitespace that
// models tend to wrap around a one-word answer.
func cleanLabel(reply string) string {
	reply = strings.TrimSpace(reply)
	if line, _, found := strings.Cut(reply, "\n"); found {
		reply = line
	}
	return strings.Trim(reply, " \t\"'`.*")
}

// extractJSON strips markdown code fences from a string that may contain
// JSON wrapped in ```json ... ``` or ``` ... ``` blocks.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if after, found := strings.CutPrefix(s, "```json"); found {
		if idx := strings.LastIndex(after, "```"); idx >= 0 {
			after = after[:idx]
		}
		return strings.TrimSpace(after)
	}

	if after, found := strings.CutPrefix(s, "```"); found {
		if idx := strings.LastIndex(after, "```"); idx >= 0 {
			after = after[:idx]
		}
		return strings.TrimSpace(after)
	}

	return s
}
