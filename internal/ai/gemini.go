package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var _ Provider = (*GeminiProvider)(nil)

// GeminiProvider implements Provider using the Google Gemini API.
type GeminiProvider struct {
	promptSet
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini client authenticated with cfg.APIKey.
func NewGeminiProvider(ctx context.Context, cfg ProviderConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini provider requires an API key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	p := &GeminiProvider{client: client, model: cfg.Model}
	p.promptSet = promptSet{name: "gemini", keywords: cfg.Keywords, complete: p.callAPI}
	return p, nil
}

// Close releases the underlying client connection.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func (p *GeminiProvider) callAPI(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	model := p.client.GenerativeModel(p.model)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))

	slog.Debug("calling Gemini API", "model", p.model)

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		break
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("empty response: no text candidates returned")
	}
	return b.String(), nil
}
