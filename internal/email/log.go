package email

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogSender logs messages instead of sending them. Use it in development.
type LogSender struct{}

// NewLogSender returns a LogSender.
func NewLogSender() *LogSender {
	return &LogSender{}
}

func (LogSender) Send(_ context.Context, msg Message) (string, error) {
	id := "log-" + uuid.NewString()
	for _, r := range msg.To {
		slog.Info("email not sent (log sender)", "to", r.Email, "subject", msg.Subject, "bytes", len(msg.HTML), "message_id", id)
	}
	return id, nil
}
