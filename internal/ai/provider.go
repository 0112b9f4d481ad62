package ai

import (
	"context"
	"fmt"
)

// RelevanceChecker decides whether a post belongs in the newsletter at all.
type RelevanceChecker interface {
	IsRelevant(ctx context.Context, text string) (bool, error)
}

// Deduplicator returns the positions of titles to keep, in ascending order.
type Deduplicator interface {
	Deduplicate(ctx context.Context, titles []string) ([]int, error)
}

// Classifier returns a category label for the given text. The label is not
// guaranteed to be a known category.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Summarizer condenses text to roughly the requested number of sentences.
type Summarizer interface {
	Summarize(ctx context.Context, text string, sentences int) (string, error)
}

// Provider is implemented by every LLM backend.
type Provider interface {
	RelevanceChecker
	Deduplicator
	Classifier
	Summarizer
}

// NewProvider creates the appropriate provider based on config.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicProvider(cfg), nil
	case "openai":
		return NewOpenAIProvider(cfg), nil
	case "ollama":
		return NewOllamaProvider(cfg), nil
	case "gemini":
		p, err := NewGeminiProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "keyword":
		return NewKeywordProvider(cfg.Keywords), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
