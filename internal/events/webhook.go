package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type webhookPublisher struct {
	id      string
	method  string
	url     string
	headers map[string]string
	client  *resty.Client
}

func newWebhookPublisher(_ context.Context, cfg Config) (Publisher, error) {
	if cfg.Webhook == nil {
		return nil, fmt.Errorf("publisher %q missing webhook configuration", cfg.ID)
	}

	client := resty.New().
		SetTimeout(time.Duration(cfg.Webhook.TimeoutSeconds) * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &webhookPublisher{
		id:      cfg.ID,
		method:  cfg.Webhook.Method,
		url:     cfg.Webhook.URL,
		headers: cfg.Webhook.Headers,
		client:  client,
	}, nil
}

func (h *webhookPublisher) ID() string   { return h.id }
func (h *webhookPublisher) Type() string { return TypeWebhook }

func (h *webhookPublisher) Publish(ctx context.Context, evt Event) error {
	req := h.client.R().
		SetContext(ctx).
		SetBody(evt)
	if len(h.headers) > 0 {
		req.SetHeaders(h.headers)
	}
	req.SetHeader("Content-Type", "application/json")

	resp, err := req.Execute(h.method, h.url)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("http response status %d: %s", resp.StatusCode(), bodySnippet(resp.Body()))
	}
	return nil
}

func bodySnippet(body []byte) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
