package events

import (
	"errors"
	"fmt"
	"strings"
)

// Supported publisher types.
const (
	TypeWebhook = "webhook"
	TypeSQS     = "sqs"
	TypeSNS     = "sns"
	TypePubSub  = "pubsub"

	webhookDefaultMethod         = "POST"
	webhookDefaultTimeoutSeconds = 5
)

// Config is one publisher entry from the [[events.publishers]] table.
type Config struct {
	ID      string         `toml:"id"`
	Type    string         `toml:"type"`
	Enabled *bool          `toml:"enabled"`
	Webhook *WebhookConfig `toml:"webhook"`
	SQS     *SQSConfig     `toml:"sqs"`
	SNS     *SNSConfig     `toml:"sns"`
	PubSub  *PubSubConfig  `toml:"pubsub"`
}

// WebhookConfig holds generic HTTP sink settings.
type WebhookConfig struct {
	URL            string            `toml:"url"`
	Method         string            `toml:"method"`
	Headers        map[string]string `toml:"headers"`
	TimeoutSeconds int               `toml:"timeout_seconds"`
}

// SQSConfig holds AWS SQS settings.
type SQSConfig struct {
	QueueURL string `toml:"queue_url"`
	Region   string `toml:"region"`
}

// SNSConfig holds AWS SNS settings.
type SNSConfig struct {
	TopicARN string `toml:"topic_arn"`
	Region   string `toml:"region"`
}

// PubSubConfig holds Google Cloud Pub/Sub settings.
type PubSubConfig struct {
	ProjectID string `toml:"project_id"`
	Topic     string `toml:"topic"`
}

// EnabledValue returns the enabled flag, defaulting to true.
func (c Config) EnabledValue() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// Sanitize trims and normalizes the config fields.
func (c Config) Sanitize() Config {
	c.ID = strings.TrimSpace(c.ID)
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))

	if c.Webhook != nil {
		w := *c.Webhook
		w.URL = strings.TrimSpace(w.URL)
		w.Method = strings.ToUpper(strings.TrimSpace(w.Method))
		if w.Method == "" {
			w.Method = webhookDefaultMethod
		}
		w.Headers = sanitizeHeaders(w.Headers)
		if w.TimeoutSeconds <= 0 {
			w.TimeoutSeconds = webhookDefaultTimeoutSeconds
		}
		c.Webhook = &w
	}
	if c.SQS != nil {
		s := *c.SQS
		s.QueueURL = strings.TrimSpace(s.QueueURL)
		s.Region = strings.TrimSpace(s.Region)
		c.SQS = &s
	}
	if c.SNS != nil {
		s := *c.SNS
		s.TopicARN = strings.TrimSpace(s.TopicARN)
		s.Region = strings.TrimSpace(s.Region)
		c.SNS = &s
	}
	if c.PubSub != nil {
		p := *c.PubSub
		p.ProjectID = strings.TrimSpace(p.ProjectID)
		p.Topic = strings.TrimSpace(p.Topic)
		c.PubSub = &p
	}
	return c
}

func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Validate checks that the fields required by the publisher type are set.
func (c Config) Validate() error {
	if c.ID == "" {
		return errors.New("id is required")
	}
	switch c.Type {
	case TypeWebhook:
		if c.Webhook == nil || c.Webhook.URL == "" {
			return fmt.Errorf("webhook.url is required for publisher %q", c.ID)
		}
	case TypeSQS:
		if c.SQS == nil || c.SQS.QueueURL == "" {
			return fmt.Errorf("sqs.queue_url is required for publisher %q", c.ID)
		}
		if c.SQS.Region == "" {
			return fmt.Errorf("sqs.region is required for publisher %q", c.ID)
		}
	case TypeSNS:
		if c.SNS == nil || c.SNS.TopicARN == "" {
			return fmt.Errorf("sns.topic_arn is required for publisher %q", c.ID)
		}
		if c.SNS.Region == "" {
			return fmt.Errorf("sns.region is required for publisher %q", c.ID)
		}
	case TypePubSub:
		if c.PubSub == nil || c.PubSub.ProjectID == "" || c.PubSub.Topic == "" {
			return fmt.Errorf("pubsub.project_id and pubsub.topic are required for publisher %q", c.ID)
		}
	case "":
		return fmt.Errorf("type is required for publisher %q", c.ID)
	default:
		return fmt.Errorf("unknown type %q for publisher %q", c.Type, c.ID)
	}
	return nil
}
