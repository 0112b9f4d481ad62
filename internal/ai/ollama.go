package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hoanghai1803/newsdraft/internal/retry"
)

var _ Provider = (*OllamaProvider)(nil)

const defaultOllamaHost = "http://localhost:11434"

// OllamaProvider implements Provider against a local Ollama server's
// /api/generate endpoint.
type OllamaProvider struct {
	promptSet
	host   string
	model  string
	client *http.Client
}

// NewOllamaProvider creates an OllamaProvider. cfg.BaseURL is the server
// host; it defaults to localhost:11434.
func NewOllamaProvider(cfg ProviderConfig) *OllamaProvider {
	host := strings.TrimRight(cfg.BaseURL, "/")
	if host == "" {
		host = defaultOllamaHost
	}
	p := &OllamaProvider{
		host:   host,
		model:  cfg.Model,
		client: &http.Client{Timeout: cfg.timeout()},
	}
	p.promptSet = promptSet{name: "ollama", keywords: cfg.Keywords, complete: p.callAPI}
	return p
}

type ollamaRequest struct {
	Model  string `json:"model"`
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

func (p *OllamaProvider) callAPI(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:  p.model,
		System: systemPrompt,
		Prompt: userPrompt,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("calling Ollama API", "model", p.model, "host", p.host)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", &retry.StatusError{Code: resp.StatusCode}
		}
		return "", fmt.Errorf("ollama unexpected response: %s", string(raw))
	}
	if resp.StatusCode != http.StatusOK {
		return "", &retry.StatusError{Code: resp.StatusCode, Body: parsed.Error}
	}

	return strings.TrimSpace(parsed.Response), nil
}
