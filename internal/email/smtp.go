package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SMTPSender delivers mail over SMTP with STARTTLS when offered.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	timeout  time.Duration
}

// NewSMTPSender creates an SMTP sender. Port defaults to 587.
func NewSMTPSender(cfg Config) *SMTPSender {
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     port,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.FromEmail,
		fromName: cfg.FromName,
		timeout:  cfg.Timeout,
	}
}

// Send dials the server, authenticates when credentials are set and submits
// one message addressed to every recipient.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("smtp: no recipients")
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.host)
	body := buildMIME(s.fromName, s.from, messageID, msg)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("smtp: dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return "", fmt.Errorf("smtp: handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return "", fmt.Errorf("smtp: starttls: %w", err)
		}
	}
	if s.username != "" {
		if err := c.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return "", fmt.Errorf("smtp: auth: %w", err)
		}
	}

	if err := c.Mail(s.from); err != nil {
		return "", fmt.Errorf("smtp: mail from: %w", err)
	}
	for _, r := range msg.To {
		if err := c.Rcpt(r.Email); err != nil {
			return "", fmt.Errorf("smtp: rcpt %s: %w", r.Email, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return "", fmt.Errorf("smtp: data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return "", fmt.Errorf("smtp: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("smtp: close body: %w", err)
	}
	if err := c.Quit(); err != nil {
		return "", fmt.Errorf("smtp: quit: %w", err)
	}

	return messageID, nil
}

// buildMIME renders an RFC 5322 message with an HTML body. Non-ASCII
// headers are B-encoded.
func buildMIME(fromName, from, messageID string, msg Message) []byte {
	to := make([]string, len(msg.To))
	for i, r := range msg.To {
		to[i] = formatAddress(r.Name, r.Email)
	}

	var b strings.Builder
	b.WriteString("From: " + formatAddress(fromName, from) + "\r\n")
	b.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	b.WriteString("Subject: " + encodeHeader(msg.Subject) + "\r\n")
	b.WriteString("Message-ID: " + messageID + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

func encodeHeader(s string) string {
	return mime.BEncoding.Encode("UTF-8", s)
}
