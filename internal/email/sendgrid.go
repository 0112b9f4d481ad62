package email

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const defaultSendGridBaseURL = "https://api.sendgrid.com"

// SendGridSender delivers mail through the SendGrid v3 mail/send API.
type SendGridSender struct {
	client   *resty.Client
	from     string
	fromName string
}

// NewSendGridSender creates a SendGrid sender.
func NewSendGridSender(cfg Config) *SendGridSender {
	baseURL := cfg.SendGridBaseURL
	if baseURL == "" {
		baseURL = defaultSendGridBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.SendGridAPIKey).
		SetHeader("Content-Type", "application/json")
	return &SendGridSender{client: client, from: cfg.FromEmail, fromName: cfg.FromName}
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

type sendGridError struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Send posts the message and returns SendGrid's X-Message-Id, or a local id
// when the header is absent.
func (s *SendGridSender) Send(ctx context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("sendgrid: no recipients")
	}

	to := make([]sendGridAddress, len(msg.To))
	for i, r := range msg.To {
		to[i] = sendGridAddress{Email: r.Email, Name: r.Name}
	}
	body := sendGridRequest{
		Personalizations: []sendGridPersonalization{{To: to}},
		From:             sendGridAddress{Email: s.from, Name: s.fromName},
		Subject:          msg.Subject,
		Content:          []sendGridContent{{Type: "text/html", Value: msg.HTML}},
	}

	var apiErr sendGridError
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetError(&apiErr).
		Post("/v3/mail/send")
	if err != nil {
		return "", fmt.Errorf("sendgrid: %w", err)
	}
	if resp.IsError() {
		detail := resp.Status()
		if len(apiErr.Errors) > 0 {
			detail = apiErr.Errors[0].Message
		}
		return "", fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode(), detail)
	}

	if id := resp.Header().Get("X-Message-Id"); id != "" {
		return id, nil
	}
	return uuid.NewString(), nil
}
