package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hoanghai1803/newsdraft/internal/models"
)

type fakeSender struct {
	fail  map[string]bool
	block map[string]bool
	sent  []string
}

func (f *fakeSender) Send(ctx context.Context, msg Message) (string, error) {
	to := msg.To[0].Email
	if f.block[to] {
		<-ctx.Done()
		return "", ctx.Err()
	}
	f.sent = append(f.sent, to)
	if f.fail[to] {
		return "", errors.New("mailbox unavailable")
	}
	return "id-" + to, nil
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"first.last+tag@sub.example.co.kr", true},
		{" padded@example.com ", true},
		{"no-at-sign.example.com", false},
		{"user@nodot", false},
		{"user@example.c", false},
		{"", false},
		{"한글@example.com", false},
	}
	for _, tt := range tests {
		if got := ValidateAddress(tt.email); got != tt.want {
			t.Errorf("ValidateAddress(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestDeliver_ContinuesPastFailures(t *testing.T) {
	sender := &fakeSender{fail: map[string]bool{"b@example.com": true}}
	recipients := []models.Recipient{
		{Email: "a@example.com"},
		{Email: "b@example.com"},
		{Email: "not-an-email"},
		{Email: "c@example.com"},
	}

	report := Deliver(context.Background(), sender, "제목", "<p>x</p>", recipients, time.Second)

	if report.Total != 4 || report.Successful != 2 || report.Failed != 2 {
		t.Errorf("report = %d/%d/%d, want total 4, successful 2, failed 2", report.Total, report.Successful, report.Failed)
	}
	if got := strings.Join(sender.sent, ","); got != "a@example.com,b@example.com,c@example.com" {
		t.Errorf("sent = %q, want invalid address skipped", got)
	}
	if report.Results[2].Error != MsgInvalidAddress {
		t.Errorf("Results[2].Error = %q, want %q", report.Results[2].Error, MsgInvalidAddress)
	}
	if report.Results[0].MessageID != "id-a@example.com" {
		t.Errorf("Results[0].MessageID = %q, want %q", report.Results[0].MessageID, "id-a@example.com")
	}
}

func TestDeliver_PerRecipientTimeout(t *testing.T) {
	sender := &fakeSender{block: map[string]bool{"slow@example.com": true}}
	recipients := []models.Recipient{{Email: "slow@example.com"}, {Email: "fast@example.com"}}

	report := Deliver(context.Background(), sender, "s", "h", recipients, 20*time.Millisecond)

	if report.Results[0].Success {
		t.Error("slow recipient succeeded, want timeout failure")
	}
	if !report.Results[1].Success {
		t.Errorf("fast recipient failed: %s", report.Results[1].Error)
	}
}

func TestNewSender(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{name: "default is log", cfg: Config{}, want: "*email.LogSender"},
		{name: "smtp", cfg: Config{Provider: "smtp", SMTPHost: "smtp.example.com", FromEmail: "a@example.com"}, want: "*email.SMTPSender"},
		{name: "smtp without host", cfg: Config{Provider: "smtp", FromEmail: "a@example.com"}, wantErr: true},
		{name: "sendgrid", cfg: Config{Provider: "SendGrid", SendGridAPIKey: "k", FromEmail: "a@example.com"}, want: "*email.SendGridSender"},
		{name: "sendgrid without key", cfg: Config{Provider: "sendgrid", FromEmail: "a@example.com"}, wantErr: true},
		{name: "unknown", cfg: Config{Provider: "pigeon"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSender(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewSender() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSender() error: %v", err)
			}
			if got := typeName(s); got != tt.want {
				t.Errorf("NewSender() type = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(s Sender) string {
	switch s.(type) {
	case *LogSender:
		return "*email.LogSender"
	case *SMTPSender:
		return "*email.SMTPSender"
	case *SendGridSender:
		return "*email.SendGridSender"
	}
	return "unknown"
}

func TestSendGridSender(t *testing.T) {
	var got sendGridRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/mail/send" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("X-Message-Id", "sg-123")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewSendGridSender(Config{
		SendGridAPIKey:  "secret",
		SendGridBaseURL: srv.URL,
		FromEmail:       "news@example.com",
		FromName:        "뉴스레터",
		Timeout:         time.Second,
	})
	id, err := s.Send(context.Background(), Message{
		Subject: "주간 뉴스",
		HTML:    "<p>hi</p>",
		To:      []models.Recipient{{Email: "a@example.com", Name: "A"}},
	})
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if id != "sg-123" {
		t.Errorf("Send() id = %q, want %q", id, "sg-123")
	}
	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q, want %q", auth, "Bearer secret")
	}
	if got.Subject != "주간 뉴스" || got.From.Email != "news@example.com" {
		t.Errorf("request = %+v, want subject and from set", got)
	}
	if len(got.Personalizations) != 1 || got.Personalizations[0].To[0].Email != "a@example.com" {
		t.Errorf("personalizations = %+v, want one recipient", got.Personalizations)
	}
}

func TestSendGridSender_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	s := NewSendGridSender(Config{SendGridAPIKey: "k", SendGridBaseURL: srv.URL, FromEmail: "a@example.com", Timeout: time.Second})
	_, err := s.Send(context.Background(), Message{Subject: "s", HTML: "h", To: []models.Recipient{{Email: "b@example.com"}}})
	if err == nil || !strings.Contains(err.Error(), "bad key") {
		t.Errorf("Send() error = %v, want containing %q", err, "bad key")
	}
}

func TestBuildMIME(t *testing.T) {
	raw := string(buildMIME("뉴스레터", "news@example.com", "<id@host>", Message{
		Subject: "일일 뉴스레터",
		HTML:    "<p>본문</p>",
		To:      []models.Recipient{{Email: "a@example.com"}, {Email: "b@example.com", Name: "B"}},
	}))

	for _, want := range []string{
		"To: a@example.com, B <b@example.com>\r\n",
		"Subject: =?UTF-8?b?",
		"Message-ID: <id@host>\r\n",
		"Content-Type: text/html; charset=\"UTF-8\"\r\n",
		"\r\n\r\n<p>본문</p>",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("MIME message missing %q:\n%s", want, raw)
		}
	}
}

func TestRenderMessage(t *testing.T) {
	out, err := RenderMessage("뉴스 <특보>", "<h3>SKT</h3><ul></ul>", "")
	if err != nil {
		t.Fatalf("RenderMessage() error: %v", err)
	}
	if !strings.Contains(out, "<h3>SKT</h3><ul></ul>") {
		t.Error("draft HTML was escaped, want inserted verbatim")
	}
	if !strings.Contains(out, "<title>뉴스 &lt;특보&gt;</title>") {
		t.Error("subject not escaped in title")
	}
	if !strings.Contains(out, DefaultFooter) {
		t.Error("default footer missing")
	}
}

func TestLogSender(t *testing.T) {
	id, err := NewLogSender().Send(context.Background(), Message{Subject: "s", To: []models.Recipient{{Email: "a@example.com"}}})
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if !strings.HasPrefix(id, "log-") {
		t.Errorf("Send() id = %q, want log- prefix", id)
	}
}
