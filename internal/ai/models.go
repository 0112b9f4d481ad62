package ai

import "time"

// ProviderConfig holds the configuration needed to create an AI provider.
type ProviderConfig struct {
	Provider string // "anthropic" | "openai" | "ollama" | "gemini" | "keyword"
	APIKey   string
	Model    string

	// BaseURL overrides the vendor endpoint. Required for ollama, optional
	// elsewhere.
	BaseURL string

	// Timeout bounds a single HTTP call. Zero means 60 seconds.
	Timeout time.Duration

	// Keywords feeds the relevance prompt and the keyword provider.
	Keywords []string
}

func (c ProviderConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return c.Timeout
}
