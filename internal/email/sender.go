// Package email sends rendered newsletters to recipients.
package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hoanghai1803/newsdraft/internal/models"
)

// Message is one outgoing email.
type Message struct {
	Subject string
	HTML    string
	To      []models.Recipient
}

// Sender delivers a message and returns the transport's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Config selects and configures a Sender.
type Config struct {
	Provider  string // "smtp", "sendgrid" or "log"
	FromEmail string
	FromName  string
	Timeout   time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	SendGridAPIKey  string
	SendGridBaseURL string
}

// NewSender builds the Sender named by cfg.Provider.
func NewSender(cfg Config) (Sender, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("smtp sender requires a host")
		}
		if cfg.FromEmail == "" {
			return nil, fmt.Errorf("smtp sender requires a from address")
		}
		return NewSMTPSender(cfg), nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("sendgrid sender requires an api key")
		}
		if cfg.FromEmail == "" {
			return nil, fmt.Errorf("sendgrid sender requires a from address")
		}
		return NewSendGridSender(cfg), nil
	case "", "log":
		return NewLogSender(), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

// formatAddress renders "Name <email>" or just the email when name is empty.
func formatAddress(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", encodeHeader(name), email)
}
