package email

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/hoanghai1803/newsdraft/internal/models"
)

var addressPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// MsgInvalidAddress is the error text recorded for a malformed recipient.
const MsgInvalidAddress = "invalid email address"

// ValidateAddress reports whether email looks like a deliverable address.
func ValidateAddress(email string) bool {
	return addressPattern.MatchString(strings.TrimSpace(email))
}

// Deliver sends the message to each recipient separately, each under its
// own timeout. Invalid addresses fail without a send, and one recipient's
// failure never stops the others.
func Deliver(ctx context.Context, sender Sender, subject, html string, recipients []models.Recipient, timeout time.Duration) models.DeliveryReport {
	report := models.DeliveryReport{Results: []models.RecipientResult{}}

	for _, r := range recipients {
		r.Email = strings.TrimSpace(r.Email)
		if !ValidateAddress(r.Email) {
			slog.Warn("skipping invalid recipient", "email", r.Email)
			report.Add(models.RecipientResult{Recipient: r, Error: MsgInvalidAddress})
			continue
		}

		id, err := sendOne(ctx, sender, Message{Subject: subject, HTML: html, To: []models.Recipient{r}}, timeout)
		if err != nil {
			slog.Warn("email delivery failed", "email", r.Email, "error", err)
			report.Add(models.RecipientResult{Recipient: r, Error: err.Error()})
			continue
		}
		report.Add(models.RecipientResult{Recipient: r, Success: true, MessageID: id})
	}

	slog.Info("email delivery finished",
		"total", report.Total, "successful", report.Successful, "failed", report.Failed)
	return report
}

func sendOne(ctx context.Context, sender Sender, msg Message, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return sender.Send(ctx, msg)
}
